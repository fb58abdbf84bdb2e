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
)

var (
	cherryPickGroups []string
	cherryPickAbort  bool
	cherryPickNoCommit bool
)

var cherryPickCmd = &cobra.Command{
	Use:   "cherry-pick <commit> [repo...]",
	Short: "Cherry-pick a commit across every repo that has it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		repos := filterRepos(ws.Repos, cherryPickGroups, args[1:])
		executor := gitproc.NewExecutor()

		gitArgs := []string{"cherry-pick"}
		if cherryPickNoCommit {
			gitArgs = append(gitArgs, "--no-commit")
		}
		gitArgs = append(gitArgs, args[0])

		results, summary := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Sequential}, nil,
			func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
				if cherryPickAbort {
					if _, err := executor.Run(ctx, r.AbsolutePath, "cherry-pick", "--abort"); err != nil {
						return fanout.FailedOutcome(err.Error())
					}
					return fanout.SucceededOutcome("aborted")
				}
				if _, err := executor.RunOutput(ctx, r.AbsolutePath, gitArgs...); err != nil {
					return fanout.FailedOutcome(err.Error())
				}
				return fanout.SucceededOutcome("picked")
			})

		for _, res := range fanout.SortByManifestOrder(results, repoNames(repos)) {
			printSyncResult(ws, res)
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d repo(s) failed to cherry-pick", summary.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cherryPickCmd)
	cherryPickCmd.Flags().StringSliceVarP(&cherryPickGroups, "group", "g", nil, "limit to repos in these groups")
	cherryPickCmd.Flags().BoolVar(&cherryPickAbort, "abort", false, "abort an in-progress cherry-pick instead")
	cherryPickCmd.Flags().BoolVar(&cherryPickNoCommit, "no-commit", false, "apply changes without committing")
}
