// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/gitproc"
	"github.com/archmagece/gitgrip/pkg/hooks"
	"github.com/archmagece/gitgrip/internal/repoview"
)

var (
	syncGroups []string
	syncJobs   int
	syncRebase bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [repo...]",
	Short: "Clone missing repos and fast-forward existing ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringSliceVarP(&syncGroups, "group", "g", nil, "limit to repos in these groups")
	syncCmd.Flags().IntVarP(&syncJobs, "jobs", "j", fanout.DefaultParallelism, "parallel worker count")
	syncCmd.Flags().BoolVar(&syncRebase, "rebase", false, "pull with rebase instead of merge")
}

func runSync(cmd *cobra.Command, names []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	repos := filterRepos(ws.Repos, syncGroups, names)

	executor := gitproc.NewExecutor()
	mode := gitfacade.PullMerge
	if syncRebase {
		mode = gitfacade.PullRebase
	}

	results, summary := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Parallel, Parallelism: syncJobs}, nil,
		func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
			return syncOne(ctx, executor, r, mode)
		})

	for _, res := range fanout.SortByManifestOrder(results, repoNames(repos)) {
		printSyncResult(ws, res)
	}

	if err := hooks.ExecuteCommands(cmd.Context(), ws.Manifest.Workspace.Hooks.PostSync, ws.Root, nil); err != nil {
		return fmt.Errorf("post-sync hooks: %w", err)
	}

	fmt.Fprintf(os.Stdout, "synced %d repos: %d ok, %d skipped, %d failed\n", summary.Total, summary.Succeeded, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d repo(s) failed to sync", summary.Failed)
	}
	return nil
}

func syncOne(ctx context.Context, executor *gitproc.Executor, r repoview.RepoView, mode gitfacade.PullMode) fanout.Outcome {
	if _, err := os.Stat(r.AbsolutePath); os.IsNotExist(err) {
		if _, cerr := executor.Run(ctx, "", "clone", r.URL, r.AbsolutePath); cerr != nil {
			return fanout.FailedOutcome(fmt.Sprintf("clone: %v", cerr))
		}
		return fanout.SucceededOutcome("cloned")
	}

	f, err := gitfacade.OpenRepo(r.AbsolutePath)
	if err != nil {
		return fanout.FailedOutcome(err.Error())
	}

	res, err := f.SafePull(ctx, r.DefaultBranch, "origin", mode)
	if err != nil {
		return fanout.FailedOutcome(err.Error())
	}
	if res.Recovered {
		return fanout.SucceededOutcome(res.Message)
	}
	return fanout.SucceededOutcome("up to date")
}

func printSyncResult(ws *workspace, res fanout.Result) {
	entry := ws.Log.WithField("repo", res.Name)
	switch res.Outcome.Kind {
	case fanout.Failed:
		entry.Errorf("sync failed: %s", res.Outcome.Reason)
	case fanout.Skipped:
		entry.Infof("skipped: %s", res.Outcome.Reason)
	default:
		if msg, ok := res.Outcome.Data.(string); ok {
			entry.Info(msg)
		}
	}
}
