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
	pruneGroups []string
	pruneRemote bool
	pruneDryRun bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune [repo...]",
	Short: "Delete branches already merged into each repo's default branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		repos := filterRepos(ws.Repos, pruneGroups, args)
		mgr := branch.NewManager()

		results, summary := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Parallel}, nil,
			func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
				return pruneOne(ctx, mgr, r)
			})

		for _, res := range fanout.SortByManifestOrder(results, repoNames(repos)) {
			printSyncResult(ws, res)
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d repo(s) failed to prune", summary.Failed)
		}
		return nil
	},
}

func pruneOne(ctx context.Context, mgr branch.BranchManager, r repoview.RepoView) fanout.Outcome {
	branches, err := mgr.List(ctx, r.AbsolutePath, branch.ListOptions{Merged: true})
	if err != nil {
		return fanout.FailedOutcome(err.Error())
	}

	deleted := 0
	for _, b := range branches {
		if b.IsHead || b.Name == r.DefaultBranch {
			continue
		}
		if pruneDryRun {
			deleted++
			continue
		}
		if err := mgr.Delete(ctx, r.AbsolutePath, branch.DeleteOptions{Name: b.Name, Remote: pruneRemote}); err != nil {
			return fanout.FailedOutcome(fmt.Sprintf("delete %s: %v", b.Name, err))
		}
		deleted++
	}
	return fanout.SucceededOutcome(fmt.Sprintf("pruned %d branch(es)", deleted))
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().StringSliceVarP(&pruneGroups, "group", "g", nil, "limit to repos in these groups")
	pruneCmd.Flags().BoolVar(&pruneRemote, "remote", false, "also delete the remote-tracking branch")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "list branches that would be pruned without deleting them")
}
