// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/platform"
	"github.com/archmagece/gitgrip/internal/prcoord"
	"github.com/archmagece/gitgrip/internal/repoview"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Coordinate pull requests across the workspace",
}

var (
	prGroups      []string
	prTitle       string
	prBody        string
	prDraft       bool
	prSetUpstream bool
)

var prCreateCmd = &cobra.Command{
	Use:   "create [repo...]",
	Short: "Open a pull request for the current branch in every matching repo",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		repos := filterRepos(ws.Repos, prGroups, args)

		outcomes := prcoord.Create(cmd.Context(), repos, facadeFor, adapters.For, prcoord.CreateOptions{
			Title:       prTitle,
			Body:        prBody,
			Draft:       prDraft,
			SetUpstream: prSetUpstream,
			Mode:        fanout.Parallel,
		})

		failed := 0
		for _, o := range outcomes {
			switch {
			case o.Err != nil:
				failed++
				ws.Log.WithField("repo", o.RepoName).Errorf("pr create failed: %v", o.Err)
			case o.Skipped:
				ws.Log.WithField("repo", o.RepoName).Infof("skipped: %s", o.Reason)
			case o.PR != nil:
				ws.Log.WithField("repo", o.RepoName).Infof("opened %s", o.PR.URL)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d pr(s) failed to open", failed)
		}
		return nil
	},
}

var (
	prMergeGroups []string
	prMergeMethod string
	prMergeForce  bool
	prMergeUpdate bool
	prMergeAuto   bool
)

var prMergeCmd = &cobra.Command{
	Use:   "merge [repo...]",
	Short: "Merge open pull requests for the current branch across the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		repos := filterRepos(ws.Repos, prMergeGroups, args)

		outcomes := prcoord.Merge(cmd.Context(), repos, facadeFor, adapters.For, prcoord.MergeOptions{
			Method: platform.MergeMethod(prMergeMethod),
			Force:  prMergeForce,
			Update: prMergeUpdate,
			Auto:   prMergeAuto,
		})

		failed := 0
		for _, o := range outcomes {
			entry := ws.Log.WithField("repo", o.RepoName)
			switch o.Kind {
			case prcoord.MergeMerged, prcoord.MergeAutoEnabled:
				entry.Infof("pr #%d: %s", o.PRNumber, o.Reason)
			case prcoord.MergeSkipped, prcoord.MergeAlreadyMerged:
				entry.Infof("skipped: %s", o.Reason)
			default:
				failed++
				entry.Errorf("pr #%d: %s", o.PRNumber, o.Reason)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d pr(s) failed to merge", failed)
		}
		return nil
	},
}

var prStatusGroups []string

var prStatusCmd = &cobra.Command{
	Use:   "status [repo...]",
	Short: "Show the pull request open on each repo's current branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEachPR(cmd, prStatusGroups, args, func(ctx context.Context, r repoview.RepoView, a platform.Adapter, ref *platform.PRRef) error {
			pr, err := a.GetPullRequest(ctx, r.Owner, r.Repo, ref.Number)
			if err != nil {
				return err
			}
			fmt.Printf("%s: #%d %s [%s]\n", r.Name, pr.Number, pr.Title, pr.State)
			return nil
		})
	},
}

var prChecksGroups []string

var prChecksCmd = &cobra.Command{
	Use:   "checks [repo...]",
	Short: "Show status checks for each repo's open pull request",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEachPR(cmd, prChecksGroups, args, func(ctx context.Context, r repoview.RepoView, a platform.Adapter, ref *platform.PRRef) error {
			pr, err := a.GetPullRequest(ctx, r.Owner, r.Repo, ref.Number)
			if err != nil {
				return err
			}
			checks, err := a.GetStatusChecks(ctx, r.Owner, r.Repo, pr.HeadSHA)
			if err != nil {
				return err
			}
			passed := 0
			for _, s := range checks.Statuses {
				if s.State == platform.CheckSuccess {
					passed++
				}
			}
			fmt.Printf("%s: #%d %s (%d/%d passed)\n", r.Name, ref.Number, checks.State, passed, len(checks.Statuses))
			return nil
		})
	},
}

var prDiffGroups []string

var prDiffCmd = &cobra.Command{
	Use:   "diff [repo...]",
	Short: "Show the diff of each repo's open pull request",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEachPR(cmd, prDiffGroups, args, func(ctx context.Context, r repoview.RepoView, a platform.Adapter, ref *platform.PRRef) error {
			diff, err := a.GetPullRequestDiff(ctx, r.Owner, r.Repo, ref.Number)
			if err != nil {
				return err
			}
			fmt.Printf("--- %s #%d ---\n%s\n", r.Name, ref.Number, diff)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(prCmd)
	prCmd.AddCommand(prCreateCmd, prStatusCmd, prMergeCmd, prChecksCmd, prDiffCmd)

	prCreateCmd.Flags().StringSliceVarP(&prGroups, "group", "g", nil, "limit to repos in these groups")
	prCreateCmd.Flags().StringVarP(&prTitle, "title", "t", "", "pull request title")
	prCreateCmd.Flags().StringVarP(&prBody, "body", "b", "", "pull request body")
	prCreateCmd.Flags().BoolVar(&prDraft, "draft", false, "open as a draft pull request")
	prCreateCmd.Flags().BoolVarP(&prSetUpstream, "set-upstream", "u", true, "push and set upstream before opening")

	prMergeCmd.Flags().StringSliceVarP(&prMergeGroups, "group", "g", nil, "limit to repos in these groups")
	prMergeCmd.Flags().StringVar(&prMergeMethod, "method", "merge", "merge method: merge, squash, or rebase")
	prMergeCmd.Flags().BoolVar(&prMergeForce, "force", false, "skip the approved/checks/mergeable gate")
	prMergeCmd.Flags().BoolVar(&prMergeUpdate, "update", true, "retry once via update-branch on a behind-base branch")
	prMergeCmd.Flags().BoolVar(&prMergeAuto, "auto", false, "enable platform auto-merge instead of merging directly")

	prStatusCmd.Flags().StringSliceVarP(&prStatusGroups, "group", "g", nil, "limit to repos in these groups")
	prChecksCmd.Flags().StringSliceVarP(&prChecksGroups, "group", "g", nil, "limit to repos in these groups")
	prDiffCmd.Flags().StringSliceVarP(&prDiffGroups, "group", "g", nil, "limit to repos in these groups")
}

// adapters is the process-wide platform adapter cache shared by every
// pr/release subcommand invocation.
var adapters = newAdapterCache()

// facadeFor adapts gitfacade.OpenRepo to prcoord.FacadeFor.
func facadeFor(r repoview.RepoView) (*gitfacade.Facade, error) {
	return gitfacade.OpenRepo(r.AbsolutePath)
}

// withEachPR resolves the open pull request for each filtered repo's
// current branch and applies fn, reporting but not aborting on a
// single repo's lookup failure.
func withEachPR(cmd *cobra.Command, groups, names []string, fn func(ctx context.Context, r repoview.RepoView, a platform.Adapter, ref *platform.PRRef) error) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	repos := filterRepos(ws.Repos, groups, names)

	failed := 0
	for _, r := range repos {
		f, err := facadeFor(r)
		if err != nil {
			ws.Log.WithField("repo", r.Name).Errorf("%v", err)
			failed++
			continue
		}
		branch, err := f.CurrentBranch(cmd.Context())
		if err != nil {
			ws.Log.WithField("repo", r.Name).Errorf("%v", err)
			failed++
			continue
		}
		a, err := adapters.For(r)
		if err != nil {
			ws.Log.WithField("repo", r.Name).Errorf("%v", err)
			failed++
			continue
		}
		ref, err := a.FindPullRequestByBranch(cmd.Context(), r.Owner, r.Repo, branch)
		if err != nil || ref == nil {
			ws.Log.WithField("repo", r.Name).Infof("no open pull request for %s", branch)
			continue
		}
		if err := fn(cmd.Context(), r, a, ref); err != nil {
			ws.Log.WithField("repo", r.Name).Errorf("%v", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d repo(s) failed", failed)
	}
	return nil
}
