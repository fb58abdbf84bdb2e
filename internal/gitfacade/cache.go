// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitfacade

import (
	"context"
	"sync"

	gogit "github.com/go-git/go-git/v5"

	"github.com/archmagece/gitgrip/internal/parser"
)

// statusCache is a process-wide mapping from repo path to last-known
// status.
var statusCache sync.Map // map[string]*parser.Status

// Status returns the working tree status, consulting and populating the
// status cache. Mutating operations (Pull, ResetHard) invalidate it.
func (f *Facade) Status(ctx context.Context) (*parser.Status, error) {
	if cached, ok := statusCache.Load(f.path); ok {
		return cached.(*parser.Status), nil
	}

	wt, err := f.repo.Worktree()
	if err != nil {
		return nil, &OperationError{Op: "status", Cause: err}
	}
	raw, err := wt.Status()
	if err != nil {
		return nil, &OperationError{Op: "status", Cause: err}
	}

	status := convertStatus(raw)
	statusCache.Store(f.path, status)
	return status, nil
}

// convertStatus maps go-git's per-file staging/worktree codes onto the
// same Status shape the subprocess porcelain parser produces.
func convertStatus(raw gogit.Status) *parser.Status {
	status := &parser.Status{
		IsClean:        raw.IsClean(),
		ModifiedFiles:  []string{},
		StagedFiles:    []string{},
		UntrackedFiles: []string{},
		ConflictFiles:  []string{},
		DeletedFiles:   []string{},
		RenamedFiles:   []parser.RenamedFile{},
	}

	for path, fs := range raw {
		if fs.Staging == gogit.Renamed || fs.Worktree == gogit.Renamed {
			old := fs.Extra
			if old == "" {
				old = path
			}
			status.RenamedFiles = append(status.RenamedFiles, parser.RenamedFile{OldPath: old, NewPath: path})
			status.StagedFiles = append(status.StagedFiles, path)
			continue
		}

		switch fs.Staging {
		case gogit.Modified, gogit.Added, gogit.Copied:
			status.StagedFiles = append(status.StagedFiles, path)
		case gogit.Deleted:
			status.StagedFiles = append(status.StagedFiles, path)
			status.DeletedFiles = append(status.DeletedFiles, path)
		case gogit.UpdatedButUnmerged:
			status.ConflictFiles = append(status.ConflictFiles, path)
		}

		switch fs.Worktree {
		case gogit.Modified:
			status.ModifiedFiles = append(status.ModifiedFiles, path)
		case gogit.Deleted:
			status.DeletedFiles = append(status.DeletedFiles, path)
		case gogit.UpdatedButUnmerged:
			status.ConflictFiles = append(status.ConflictFiles, path)
		case gogit.Untracked:
			status.UntrackedFiles = append(status.UntrackedFiles, path)
		}
	}

	return status
}

// RawFileStatus carries a single file's porcelain status pair, one
// character per side, using git's own status-code alphabet.
type RawFileStatus struct {
	Staging  byte
	Worktree byte
}

func statusCodeChar(code gogit.StatusCode) byte {
	switch code {
	case gogit.Unmodified:
		return ' '
	case gogit.Untracked:
		return '?'
	case gogit.Modified:
		return 'M'
	case gogit.Added:
		return 'A'
	case gogit.Deleted:
		return 'D'
	case gogit.Renamed:
		return 'R'
	case gogit.Copied:
		return 'C'
	case gogit.UpdatedButUnmerged:
		return 'U'
	}
	return ' '
}

// RawStatus returns every changed path's two-character porcelain
// status code, uncached (callers needing the cached, higher-level view
// should use Status).
func (f *Facade) RawStatus(ctx context.Context) (map[string]RawFileStatus, error) {
	wt, err := f.repo.Worktree()
	if err != nil {
		return nil, &OperationError{Op: "status", Cause: err}
	}
	raw, err := wt.Status()
	if err != nil {
		return nil, &OperationError{Op: "status", Cause: err}
	}
	out := make(map[string]RawFileStatus, len(raw))
	for path, fs := range raw {
		out[path] = RawFileStatus{Staging: statusCodeChar(fs.Staging), Worktree: statusCodeChar(fs.Worktree)}
	}
	return out, nil
}

// InvalidateStatusCache drops the cached status for path, if any.
func InvalidateStatusCache(path string) {
	statusCache.Delete(path)
}

// IsDirty reports whether the working tree has any uncommitted changes.
func (f *Facade) IsDirty(ctx context.Context) (bool, error) {
	st, err := f.Status(ctx)
	if err != nil {
		return false, err
	}
	return !st.IsClean, nil
}
