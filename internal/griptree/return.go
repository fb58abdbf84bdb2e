// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package griptree

import (
	"context"

	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/repoview"
)

// ReturnOptions configures a `tree return` invocation.
type ReturnOptions struct {
	Sync            bool
	AutostashAndPop bool
	PruneBranch     string // empty means "current branch"; "-" means none
	PruneRemote     bool
}

// ReturnResult reports what happened to one repo during `tree return`.
type ReturnResult struct {
	Name  string
	Error error
}

// Return checks out each repo's default branch, optionally syncing and
// pruning the griptree branch.
func (m *Manager) Return(ctx context.Context, repos []repoview.RepoView, opts ReturnOptions) []ReturnResult {
	results := make([]ReturnResult, 0, len(repos))
	for _, repo := range repos {
		results = append(results, m.returnOne(ctx, repo, opts))
	}
	return results
}

func (m *Manager) returnOne(ctx context.Context, repo repoview.RepoView, opts ReturnOptions) ReturnResult {
	facade, err := m.OpenFacade(repo.AbsolutePath)
	if err != nil {
		return ReturnResult{Name: repo.Name, Error: err}
	}

	pruneBranch := opts.PruneBranch
	if pruneBranch == "" {
		pruneBranch, err = facade.CurrentBranch(ctx)
		if err != nil {
			return ReturnResult{Name: repo.Name, Error: err}
		}
	}

	if err := facade.Checkout(ctx, repo.DefaultBranch, false); err != nil {
		return ReturnResult{Name: repo.Name, Error: err}
	}

	if opts.Sync {
		if _, err := facade.SafePull(ctx, repo.DefaultBranch, "origin", gitfacade.PullMerge); err != nil {
			return ReturnResult{Name: repo.Name, Error: err}
		}
	}

	if pruneBranch != "-" && pruneBranch != "" && pruneBranch != repo.DefaultBranch {
		if opts.PruneRemote {
			_ = facade.DeleteRemoteBranch(ctx, "origin", pruneBranch)
		}
	}

	return ReturnResult{Name: repo.Name}
}
