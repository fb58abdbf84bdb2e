// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/repoview"
	"github.com/archmagece/gitgrip/internal/statusview"
)

var (
	statusGroups []string
	statusJobs   int
)

var statusCmd = &cobra.Command{
	Use:   "status [repo...]",
	Short: "Show working tree status across every repo in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringSliceVarP(&statusGroups, "group", "g", nil, "limit to repos in these groups")
	statusCmd.Flags().IntVarP(&statusJobs, "jobs", "j", fanout.DefaultParallelism, "parallel worker count")
}

func runStatus(cmd *cobra.Command, names []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	repos := filterRepos(ws.Repos, statusGroups, names)

	results, _ := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Parallel, Parallelism: statusJobs}, nil,
		func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
			return fanout.SucceededOutcome(statusview.Build(ctx, r))
		})
	results = fanout.SortByManifestOrder(results, repoNames(repos))

	rows := make([]statusview.RepoStatus, 0, len(results))
	for _, res := range results {
		if row, ok := res.Outcome.Data.(statusview.RepoStatus); ok {
			rows = append(rows, row)
		}
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Println(statusview.RenderStatusTable(rows))
	return nil
}

func repoNames(repos []repoview.RepoView) []string {
	names := make([]string, len(repos))
	for i, r := range repos {
		names[i] = r.Name
	}
	return names
}
