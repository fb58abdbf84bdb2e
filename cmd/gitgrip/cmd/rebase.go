// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/gitproc"
	"github.com/archmagece/gitgrip/internal/repoview"
	"github.com/archmagece/gitgrip/pkg/merge"
)

var (
	rebaseGroups []string
	rebaseOnto   string
)

var rebaseCmd = &cobra.Command{
	Use:   "rebase <upstream> [repo...]",
	Short: "Rebase the current branch onto upstream across every repo",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		repos := filterRepos(ws.Repos, rebaseGroups, args[1:])
		mgr := merge.NewRebaseManager(gitproc.NewExecutor())

		results, summary := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Sequential}, nil,
			func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
				res, err := mgr.Rebase(ctx, r.AbsolutePath, merge.RebaseOptions{UpstreamName: args[0], Onto: rebaseOnto})
				if err != nil {
					return fanout.FailedOutcome(err.Error())
				}
				if res.Status == merge.RebaseConflict {
					return fanout.FailedOutcome(fmt.Sprintf("conflict: %s", res.Message))
				}
				return fanout.SucceededOutcome(res.Message)
			})

		for _, res := range fanout.SortByManifestOrder(results, repoNames(repos)) {
			printSyncResult(ws, res)
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d repo(s) failed to rebase", summary.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rebaseCmd)
	rebaseCmd.Flags().StringSliceVarP(&rebaseGroups, "group", "g", nil, "limit to repos in these groups")
	rebaseCmd.Flags().StringVar(&rebaseOnto, "onto", "", "rebase onto a different base than upstream")
}
