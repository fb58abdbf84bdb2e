// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package statusview

import (
	"context"

	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/repoview"
)

// Build opens repo via a facade and collects its RepoStatus row. A git
// failure is recorded on the row's Error field rather than returned, so
// one bad repo doesn't abort rendering the rest of a fan-out.
func Build(ctx context.Context, repo repoview.RepoView) RepoStatus {
	row := RepoStatus{Name: repo.Name, Path: repo.Path}

	f, err := gitfacade.OpenRepo(repo.AbsolutePath)
	if err != nil {
		row.Error = err.Error()
		return row
	}

	branch, err := f.CurrentBranch(ctx)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	row.Branch = branch

	st, err := f.Status(ctx)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	row.Dirty = !st.IsClean
	row.Staged = len(st.StagedFiles)
	row.Modified = len(st.ModifiedFiles)
	row.Untracked = len(st.UntrackedFiles)
	row.Conflicts = len(st.ConflictFiles)

	ahead, behind, err := f.AheadBehind(ctx, branch)
	if err == nil {
		row.AheadBy, row.BehindBy = ahead, behind
		row.Divergence = classifyDivergence(ahead, behind)
	}

	return row
}

func classifyDivergence(ahead, behind int) Divergence {
	switch {
	case ahead > 0 && behind > 0:
		return DivergenceDiverged
	case ahead > 0:
		return DivergenceAhead
	case behind > 0:
		return DivergenceBehind
	default:
		return DivergenceNone
	}
}
