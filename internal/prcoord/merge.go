// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package prcoord

import (
	"context"
	"time"

	"github.com/archmagece/gitgrip/internal/platform"
	"github.com/archmagece/gitgrip/internal/repoview"
)

// updateBranchSettle is how long mergeOne waits after UpdateBranch
// before retrying the merge, giving the platform's mergeability check
// time to catch up with the just-updated branch.
const updateBranchSettle = 3 * time.Second

// MergeStrategy controls whether one repo's merge failure aborts the
// rest of the batch.
type MergeStrategy int

const (
	MergeIndependent MergeStrategy = iota
	MergeAllOrNothing
)

// MergeOptions configures a `pr merge` batch.
type MergeOptions struct {
	Method   platform.MergeMethod
	Force    bool // skip the approved/checks/mergeable gate
	Update   bool // retry once via UpdateBranch on ErrBranchBehind
	Auto     bool // enable auto-merge instead of merging directly
	Strategy MergeStrategy
}

// MergeOutcomeKind tags the terminal state of one repo's merge attempt.
type MergeOutcomeKind int

const (
	MergeSkipped MergeOutcomeKind = iota
	MergeMerged
	MergeAlreadyMerged
	MergeNotMerged
	MergeFailed
	MergeAutoEnabled
	MergeAutoFailed
)

// MergeOutcome is one repo's result within a `pr merge` batch.
type MergeOutcome struct {
	RepoName string
	PRNumber int
	Kind     MergeOutcomeKind
	Reason   string
}

type candidatePR struct {
	repo      repoview.RepoView
	adapter   platform.Adapter
	number    int
	approved  bool
	mergeable bool
	checks    platform.CheckState
}

// Merge runs the pr-merge state machine across repos: collect open PRs
// for each repo's current branch, gate on readiness unless forced, then
// either enable auto-merge or merge directly with a single
// update-and-retry on a behind-base branch.
func Merge(ctx context.Context, repos []repoview.RepoView, facadeFor FacadeFor, adapterFor AdapterFor, opts MergeOptions) []MergeOutcome {
	var outcomes []MergeOutcome
	var candidates []candidatePR

	for _, repo := range repos {
		if repo.Reference {
			continue
		}
		facade, err := facadeFor(repo)
		if err != nil {
			outcomes = append(outcomes, MergeOutcome{RepoName: repo.Name, Kind: MergeSkipped, Reason: "not cloned: " + err.Error()})
			continue
		}
		branch, err := facade.CurrentBranch(ctx)
		if err != nil {
			outcomes = append(outcomes, MergeOutcome{RepoName: repo.Name, Kind: MergeSkipped, Reason: "failed to get current branch"})
			continue
		}
		if branch == repo.DefaultBranch {
			outcomes = append(outcomes, MergeOutcome{RepoName: repo.Name, Kind: MergeSkipped, Reason: "on default branch"})
			continue
		}

		adapter, err := adapterFor(repo)
		if err != nil {
			outcomes = append(outcomes, MergeOutcome{RepoName: repo.Name, Kind: MergeSkipped, Reason: err.Error()})
			continue
		}

		ref, err := adapter.FindPullRequestByBranch(ctx, repo.Owner, repo.Repo, branch)
		if err != nil {
			outcomes = append(outcomes, MergeOutcome{RepoName: repo.Name, Kind: MergeSkipped, Reason: "failed to find PR: " + err.Error()})
			continue
		}
		if ref == nil {
			outcomes = append(outcomes, MergeOutcome{RepoName: repo.Name, Kind: MergeSkipped, Reason: "no open PR for branch '" + branch + "'"})
			continue
		}

		full, err := adapter.GetPullRequest(ctx, repo.Owner, repo.Repo, ref.Number)
		approved := false
		mergeable := false
		if err == nil {
			approved, _ = adapter.IsPullRequestApproved(ctx, repo.Owner, repo.Repo, ref.Number)
			mergeable = full.Mergeable != nil && *full.Mergeable
			if full.Merged {
				outcomes = append(outcomes, MergeOutcome{RepoName: repo.Name, PRNumber: ref.Number, Kind: MergeAlreadyMerged})
				continue
			}
		}

		checks := platform.CheckUnknown
		if status, err := adapter.GetStatusChecks(ctx, repo.Owner, repo.Repo, branch); err == nil {
			checks = status.State
		}

		candidates = append(candidates, candidatePR{repo: repo, adapter: adapter, number: ref.Number, approved: approved, mergeable: mergeable, checks: checks})
	}

	if !opts.Force {
		var ready []candidatePR
		for _, c := range candidates {
			if !c.approved {
				outcomes = append(outcomes, MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeFailed, Reason: "not approved"})
				continue
			}
			if c.checks == platform.CheckFailure {
				outcomes = append(outcomes, MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeFailed, Reason: "checks failing"})
				continue
			}
			if c.checks == platform.CheckPending {
				outcomes = append(outcomes, MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeFailed, Reason: "checks still running"})
				continue
			}
			if !c.mergeable {
				outcomes = append(outcomes, MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeFailed, Reason: "not mergeable (branch may be behind base, try --update)"})
				continue
			}
			ready = append(ready, c)
		}
		candidates = ready
	}

	if opts.Auto {
		for _, c := range candidates {
			ok, err := c.adapter.EnableAutoMerge(ctx, c.repo.Owner, c.repo.Repo, c.number, opts.Method)
			if err != nil {
				outcomes = append(outcomes, MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeAutoFailed, Reason: err.Error()})
			} else if ok {
				outcomes = append(outcomes, MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeAutoEnabled})
			} else {
				outcomes = append(outcomes, MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeAutoFailed, Reason: "auto-merge not enabled"})
			}
		}
		return outcomes
	}

	for _, c := range candidates {
		outcome, aborted := mergeOne(ctx, c, opts)
		outcomes = append(outcomes, outcome)
		if aborted && opts.Strategy == MergeAllOrNothing && !opts.Force {
			break
		}
	}

	return outcomes
}

// mergeOne drives a single PR through merge, retrying once on
// ErrBranchBehind when opts.Update is set. aborted reports a failure
// that should stop an all-or-nothing batch.
func mergeOne(ctx context.Context, c candidatePR, opts MergeOptions) (MergeOutcome, bool) {
	merged, err := c.adapter.MergePullRequest(ctx, c.repo.Owner, c.repo.Repo, c.number, opts.Method, true)

	if err != nil && platform.IsKind(err, platform.ErrBranchBehind) && opts.Update {
		if updated, uerr := c.adapter.UpdateBranch(ctx, c.repo.Owner, c.repo.Repo, c.number); uerr == nil && updated {
			select {
			case <-time.After(updateBranchSettle):
			case <-ctx.Done():
				return MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeFailed, Reason: ctx.Err().Error()}, true
			}
			merged, err = c.adapter.MergePullRequest(ctx, c.repo.Owner, c.repo.Repo, c.number, opts.Method, true)
		}
	}

	if err != nil {
		reason := err.Error()
		if platform.IsKind(err, platform.ErrBranchBehind) {
			reason = "branch behind base (use --update to retry)"
		} else if platform.IsKind(err, platform.ErrBranchProtected) {
			reason = "branch protected (use --auto to enable auto-merge)"
		}
		return MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeFailed, Reason: reason}, true
	}

	if !merged {
		return MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeNotMerged, Reason: "platform returned merged=false"}, false
	}

	return MergeOutcome{RepoName: c.repo.Name, PRNumber: c.number, Kind: MergeMerged}, false
}
