// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/gitproc"
	"github.com/archmagece/gitgrip/internal/repoview"
)

var (
	grepGroups       []string
	grepIgnoreCase   bool
	grepFunctionCtx  bool
)

var grepCmd = &cobra.Command{
	Use:   "grep <pattern> [-- pathspec...]",
	Short: "Run git grep across every repo in the workspace",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGrep(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(grepCmd)
	grepCmd.Flags().StringSliceVarP(&grepGroups, "group", "g", nil, "limit to repos in these groups")
	grepCmd.Flags().BoolVarP(&grepIgnoreCase, "ignore-case", "i", false, "case-insensitive match")
	grepCmd.Flags().BoolVarP(&grepFunctionCtx, "function-context", "p", false, "show the enclosing function for each match")
}

func runGrep(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	repos := filterRepos(ws.Repos, grepGroups, nil)
	executor := gitproc.NewExecutor()

	gitArgs := []string{"grep", "-n"}
	if grepIgnoreCase {
		gitArgs = append(gitArgs, "-i")
	}
	if grepFunctionCtx {
		gitArgs = append(gitArgs, "-p")
	}
	gitArgs = append(gitArgs, args...)

	results, _ := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Parallel}, nil,
		func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
			out, err := executor.RunOutput(ctx, r.AbsolutePath, gitArgs...)
			if err != nil && out == "" {
				return fanout.SkippedOutcome("no matches")
			}
			return fanout.SucceededOutcome(out)
		})

	for _, res := range fanout.SortByManifestOrder(results, repoNames(repos)) {
		out, ok := res.Outcome.Data.(string)
		if !ok || out == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
			fmt.Printf("%s: %s\n", res.Name, line)
		}
	}
	return nil
}
