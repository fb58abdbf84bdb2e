// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/repoview"
	"github.com/archmagece/gitgrip/pkg/branch"
)

var (
	branchGroups []string
	branchDelete bool
	branchForce  bool
)

var branchCmd = &cobra.Command{
	Use:   "branch <name> [repo...]",
	Short: "Create or delete a branch across every repo in the workspace",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBranch(cmd, args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(branchCmd)
	branchCmd.Flags().StringSliceVarP(&branchGroups, "group", "g", nil, "limit to repos in these groups")
	branchCmd.Flags().BoolVarP(&branchDelete, "delete", "d", false, "delete the branch instead of creating it")
	branchCmd.Flags().BoolVar(&branchForce, "force", false, "force the create or delete")
}

func runBranch(cmd *cobra.Command, name string, names []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	repos := filterRepos(ws.Repos, branchGroups, names)
	mgr := branch.NewManager()

	results, summary := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Parallel}, nil,
		func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
			if branchDelete {
				if err := mgr.Delete(ctx, r.AbsolutePath, branch.DeleteOptions{Name: name, Force: branchForce}); err != nil {
					return fanout.FailedOutcome(err.Error())
				}
				return fanout.SucceededOutcome("deleted " + name)
			}
			if err := mgr.Create(ctx, r.AbsolutePath, branch.CreateOptions{Name: name, Force: branchForce, Validate: true}); err != nil {
				return fanout.FailedOutcome(err.Error())
			}
			return fanout.SucceededOutcome("created " + name)
		})

	for _, res := range fanout.SortByManifestOrder(results, repoNames(repos)) {
		printSyncResult(ws, res)
	}
	fmt.Printf("%d ok, %d failed\n", summary.Succeeded, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d repo(s) failed", summary.Failed)
	}
	return nil
}
