// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// localops.go wires the thin per-repo fan-out wrappers around gitfacade's
// working-tree operations: add, commit, push, pull.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/repoview"
)

var (
	addGroups []string
	addPaths  []string

	commitGroups  []string
	commitMessage string
	commitAmend   bool

	pushGroups       []string
	pushSetUpstream  bool
	pushForce        bool

	pullGroups []string
	pullRebase bool
)

var addCmd = &cobra.Command{
	Use:   "add [repo...]",
	Short: "Stage paths across every repo in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFanoutWorkTree(cmd, args, addGroups, func(ctx context.Context, f *gitfacade.Facade) error {
			paths := addPaths
			if len(paths) == 0 {
				paths = []string{"."}
			}
			return f.Add(ctx, paths...)
		}, "staged")
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit [repo...]",
	Short: "Commit staged changes across every repo in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		if commitMessage == "" && !commitAmend {
			return fmt.Errorf("commit requires -m <message>")
		}
		return runFanoutWorkTree(cmd, args, commitGroups, func(ctx context.Context, f *gitfacade.Facade) error {
			return f.Commit(ctx, commitMessage, commitAmend)
		}, "committed")
	},
}

var pushCmd = &cobra.Command{
	Use:   "push [repo...]",
	Short: "Push the current branch across every repo in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFanoutWorkTree(cmd, args, pushGroups, func(ctx context.Context, f *gitfacade.Facade) error {
			b, err := f.CurrentBranch(ctx)
			if err != nil {
				return err
			}
			return f.Push(ctx, "origin", b, pushSetUpstream, pushForce)
		}, "pushed")
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull [repo...]",
	Short: "Pull the current branch across every repo in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := gitfacade.PullMerge
		if pullRebase {
			mode = gitfacade.PullRebase
		}
		return runFanoutWorkTree(cmd, args, pullGroups, func(ctx context.Context, f *gitfacade.Facade) error {
			return f.Pull(ctx, "origin", mode)
		}, "pulled")
	},
}

func init() {
	rootCmd.AddCommand(addCmd, commitCmd, pushCmd, pullCmd)

	addCmd.Flags().StringSliceVarP(&addGroups, "group", "g", nil, "limit to repos in these groups")
	addCmd.Flags().StringSliceVar(&addPaths, "path", nil, "paths to stage (default: all changes)")

	commitCmd.Flags().StringSliceVarP(&commitGroups, "group", "g", nil, "limit to repos in these groups")
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	commitCmd.Flags().BoolVar(&commitAmend, "amend", false, "amend the previous commit")

	pushCmd.Flags().StringSliceVarP(&pushGroups, "group", "g", nil, "limit to repos in these groups")
	pushCmd.Flags().BoolVarP(&pushSetUpstream, "set-upstream", "u", false, "set upstream tracking")
	pushCmd.Flags().BoolVar(&pushForce, "force", false, "force push")

	pullCmd.Flags().StringSliceVarP(&pullGroups, "group", "g", nil, "limit to repos in these groups")
	pullCmd.Flags().BoolVar(&pullRebase, "rebase", false, "pull with rebase instead of merge")
}

// runFanoutWorkTree opens each filtered repo's facade and applies op,
// printing a per-repo result line and returning an error if any repo
// failed.
func runFanoutWorkTree(cmd *cobra.Command, names, groups []string, op func(ctx context.Context, f *gitfacade.Facade) error, verb string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	repos := filterRepos(ws.Repos, groups, names)

	results, summary := fanout.Run(cmd.Context(), repos, fanout.Options{Mode: fanout.Parallel}, nil,
		func(ctx context.Context, r repoview.RepoView) fanout.Outcome {
			f, err := gitfacade.OpenRepo(r.AbsolutePath)
			if err != nil {
				return fanout.FailedOutcome(err.Error())
			}
			if err := op(ctx, f); err != nil {
				return fanout.FailedOutcome(err.Error())
			}
			return fanout.SucceededOutcome(verb)
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
