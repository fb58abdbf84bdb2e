// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/forall"
	"github.com/archmagece/gitgrip/internal/gitproc"
	"github.com/archmagece/gitgrip/internal/repoview"
)

var (
	forallGroups      []string
	forallNoIntercept bool
)

var forallCmd = &cobra.Command{
	Use:   "forall -- <command>",
	Short: "Run a command (or a recognised git subcommand) in every repo",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runForall(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(forallCmd)
	forallCmd.Flags().StringSliceVarP(&forallGroups, "group", "g", nil, "limit to repos in these groups")
	forallCmd.Flags().BoolVar(&forallNoIntercept, "no-intercept", false, "always run via the shell instead of the recognised-git fast path")
}

func runForall(cmd *cobra.Command, command string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	repos := filterRepos(ws.Repos, forallGroups, nil)
	executor := gitproc.NewExecutor()
	classification := forall.Classify(command, forallNoIntercept)

	results, summary := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Sequential}, nil,
		func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
			outcome := forall.Execute(ctx, executor, r.AbsolutePath, r, classification)
			if outcome.Err != nil {
				return fanout.FailedOutcome(outcome.Err.Error())
			}
			return fanout.SucceededOutcome(outcome.Output)
		})

	for _, res := range results {
		fmt.Printf("==> %s\n", res.Name)
		switch res.Outcome.Kind {
		case fanout.Failed:
			fmt.Fprintf(ws.Log.Out, "%s\n", res.Outcome.Reason)
		default:
			if out, ok := res.Outcome.Data.(string); ok && out != "" {
				fmt.Println(out)
			}
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d repo(s) failed", summary.Failed)
	}
	return nil
}
