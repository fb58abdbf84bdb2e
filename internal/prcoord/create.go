// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package prcoord drives cross-repository pull-request creation and
// merge as two independent state machines, composing the git facade,
// fan-out engine, and platform adapters.
package prcoord

import (
	"context"

	"github.com/archmagece/gitgrip/internal/fanout"
	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/platform"
	"github.com/archmagece/gitgrip/internal/repoview"
)

// AdapterFor resolves the platform adapter for a repo view.
type AdapterFor func(repo repoview.RepoView) (platform.Adapter, error)

// FacadeFor opens (or returns a cached) git facade for a repo view.
type FacadeFor func(repo repoview.RepoView) (*gitfacade.Facade, error)

// CreateOptions configures a `pr create` batch.
type CreateOptions struct {
	Title        string
	Body         string
	Draft        bool
	SetUpstream  bool
	Remote       string // default "origin"
	Mode         fanout.Mode
}

// CreateOutcome is one repo's result within a `pr create` batch.
type CreateOutcome struct {
	RepoName string
	Skipped  bool
	Reason   string
	PR       *platform.PRRef
	Err      error
}

// Create runs the pr-create state machine across repos.
func Create(ctx context.Context, repos []repoview.RepoView, facadeFor FacadeFor, adapterFor AdapterFor, opts CreateOptions) []CreateOutcome {
	remote := opts.Remote
	if remote == "" {
		remote = "origin"
	}

	results, _ := fanout.Run(ctx, repos, fanout.Options{Mode: opts.Mode}, nil,
		func(ctx context.Context, repo repoview.RepoView) fanout.Outcome {
			outcome := createOne(ctx, repo, facadeFor, adapterFor, opts, remote)
			if outcome.Skipped {
				return fanout.SkippedOutcome(outcome.Reason)
			}
			if outcome.Err != nil {
				return fanout.FailedOutcome(outcome.Err.Error())
			}
			return fanout.SucceededOutcome(outcome)
		})

	outcomes := make([]CreateOutcome, 0, len(results))
	for _, r := range results {
		if co, ok := r.Outcome.Data.(CreateOutcome); ok {
			outcomes = append(outcomes, co)
		} else {
			outcomes = append(outcomes, CreateOutcome{RepoName: r.Name, Skipped: r.Outcome.Kind == fanout.Skipped, Reason: r.Outcome.Reason})
		}
	}

	linkSiblingPRs(ctx, outcomes, adapterFor, repos)
	return outcomes
}

func createOne(ctx context.Context, repo repoview.RepoView, facadeFor FacadeFor, adapterFor AdapterFor, opts CreateOptions, remote string) CreateOutcome {
	facade, err := facadeFor(repo)
	if err != nil {
		return CreateOutcome{RepoName: repo.Name, Err: err}
	}

	current, err := facade.CurrentBranch(ctx)
	if err != nil {
		return CreateOutcome{RepoName: repo.Name, Err: err}
	}
	if current == repo.DefaultBranch {
		return CreateOutcome{RepoName: repo.Name, Skipped: true, Reason: "on default branch"}
	}

	ahead, err := facade.HasCommitsAhead(ctx, repo.DefaultBranch)
	if err != nil {
		return CreateOutcome{RepoName: repo.Name, Err: err}
	}
	if !ahead {
		return CreateOutcome{RepoName: repo.Name, Skipped: true, Reason: "no commits ahead of default branch"}
	}

	hasUpstream, _ := facade.RemoteBranchExists(ctx, remote, current)
	if opts.SetUpstream || !hasUpstream {
		if err := facade.Push(ctx, remote, current, true, false); err != nil {
			return CreateOutcome{RepoName: repo.Name, Err: err}
		}
	}

	adapter, err := adapterFor(repo)
	if err != nil {
		return CreateOutcome{RepoName: repo.Name, Err: err}
	}

	ref, err := adapter.CreatePullRequest(ctx, repo.Owner, repo.Repo, current, repo.DefaultBranch, opts.Title, opts.Body, opts.Draft)
	if err != nil {
		return CreateOutcome{RepoName: repo.Name, Err: err}
	}

	return CreateOutcome{RepoName: repo.Name, PR: &ref}
}

// linkSiblingPRs updates every successful PR's body to include a
// linked-PR comment referencing every other successful PR in the
// batch. Runs only after all repos have returned.
func linkSiblingPRs(ctx context.Context, outcomes []CreateOutcome, adapterFor AdapterFor, repos []repoview.RepoView) {
	var links []platform.LinkedPR
	for _, o := range outcomes {
		if o.PR != nil {
			links = append(links, platform.LinkedPR{RepoName: o.RepoName, Number: o.PR.Number})
		}
	}
	if len(links) < 2 {
		return
	}

	byName := make(map[string]repoview.RepoView, len(repos))
	for _, r := range repos {
		byName[r.Name] = r
	}

	comment := platform.GenerateLinkedPRComment(links)
	for _, o := range outcomes {
		if o.PR == nil {
			continue
		}
		repo, ok := byName[o.RepoName]
		if !ok {
			continue
		}
		adapter, err := adapterFor(repo)
		if err != nil {
			continue
		}
		pr, err := adapter.GetPullRequest(ctx, repo.Owner, repo.Repo, o.PR.Number)
		if err != nil {
			continue
		}
		_ = adapter.UpdatePullRequestBody(ctx, repo.Owner, repo.Repo, o.PR.Number, pr.Body+"\n\n"+comment)
	}
}
