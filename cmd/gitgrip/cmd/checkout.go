// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/repoview"
	"github.com/archmagece/gitgrip/pkg/hooks"
)

var (
	checkoutGroups []string
	checkoutCreate bool
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch> [repo...]",
	Short: "Check out a branch across every repo in the workspace",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckout(cmd, args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
	checkoutCmd.Flags().StringSliceVarP(&checkoutGroups, "group", "g", nil, "limit to repos in these groups")
	checkoutCmd.Flags().BoolVarP(&checkoutCreate, "create", "b", false, "create the branch if it doesn't exist")
}

func runCheckout(cmd *cobra.Command, branchName string, names []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	repos := filterRepos(ws.Repos, checkoutGroups, names)

	results, summary := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Parallel}, nil,
		func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
			f, err := gitfacade.OpenRepo(r.AbsolutePath)
			if err != nil {
				return fanout.FailedOutcome(err.Error())
			}
			if err := f.Checkout(ctx, branchName, checkoutCreate); err != nil {
				return fanout.FailedOutcome(err.Error())
			}
			return fanout.SucceededOutcome("checked out " + branchName)
		})

	for _, res := range fanout.SortByManifestOrder(results, repoNames(repos)) {
		printSyncResult(ws, res)
	}

	if err := hooks.ExecuteCommands(cmd.Context(), ws.Manifest.Workspace.Hooks.PostCheckout, ws.Root, nil); err != nil {
		return fmt.Errorf("post-checkout hooks: %w", err)
	}

	fmt.Printf("%d ok, %d failed\n", summary.Succeeded, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d repo(s) failed", summary.Failed)
	}
	return nil
}
