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
	gcGroups     []string
	gcAggressive bool
)

var gcCmd = &cobra.Command{
	Use:   "gc [repo...]",
	Short: "Run git gc across every repo in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		repos := filterRepos(ws.Repos, gcGroups, args)
		executor := gitproc.NewExecutor()

		gitArgs := []string{"gc"}
		if gcAggressive {
			gitArgs = append(gitArgs, "--aggressive")
		}

		results, summary := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Parallel}, nil,
			func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
				if _, err := executor.Run(ctx, r.AbsolutePath, gitArgs...); err != nil {
					return fanout.FailedOutcome(err.Error())
				}
				return fanout.SucceededOutcome("gc complete")
			})

		for _, res := range fanout.SortByManifestOrder(results, repoNames(repos)) {
			printSyncResult(ws, res)
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d repo(s) failed to gc", summary.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gcCmd)
	gcCmd.Flags().StringSliceVarP(&gcGroups, "group", "g", nil, "limit to repos in these groups")
	gcCmd.Flags().BoolVar(&gcAggressive, "aggressive", false, "run an aggressive gc pass")
}
