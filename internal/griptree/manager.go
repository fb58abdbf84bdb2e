// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package griptree

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/gitproc"
	"github.com/archmagece/gitgrip/internal/repoview"
)

// Manager drives the griptree lifecycle for one workspace.
type Manager struct {
	WorkspaceRoot string
	Executor      *gitproc.Executor
	// OpenFacade opens a git facade for an absolute repo path; overridable
	// in tests.
	OpenFacade func(path string) (*gitfacade.Facade, error)
	// ManifestRepoPath, if non-empty, is the absolute path of a
	// self-tracked manifest repo to also branch off.
	ManifestRepoPath string
	// Now supplies the creation timestamp (overridable in tests).
	Now func() time.Time
}

// NewManager constructs a Manager with default collaborators.
func NewManager(workspaceRoot string) *Manager {
	return &Manager{
		WorkspaceRoot: workspaceRoot,
		Executor:      gitproc.NewExecutor(),
		OpenFacade:    gitfacade.OpenRepo,
		Now:           time.Now,
	}
}

func sanitizeBranch(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}

// Add creates a griptree pinned to branch across repos.
func (m *Manager) Add(ctx context.Context, branch string, repos []repoview.RepoView) (*AddResult, error) {
	reg, err := loadRegistry(m.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	if _, exists := reg.Griptrees[branch]; exists {
		return nil, fmt.Errorf("griptree: branch %q already has a griptree", branch)
	}

	treePath := filepath.Join(filepath.Dir(m.WorkspaceRoot), sanitizeBranch(branch))
	if _, err := os.Stat(treePath); err == nil {
		return nil, fmt.Errorf("griptree: path %q already exists", treePath)
	}
	if err := os.MkdirAll(treePath, 0o755); err != nil {
		return nil, fmt.Errorf("griptree: mkdir %q: %w", treePath, err)
	}

	result := &AddResult{Path: treePath, Branch: branch}
	var pointerRepos []PointerRepo

	for _, repo := range repos {
		outcome, pr := m.addOneRepo(ctx, treePath, branch, repo)
		result.Repos = append(result.Repos, outcome)
		if outcome.Kind == RepoCreated {
			result.SucceededCount++
			pointerRepos = append(pointerRepos, pr)
		} else {
			result.FailedCount++
		}
	}

	var manifestBranch string
	if m.ManifestRepoPath != "" {
		manifestBranch = "griptree-" + sanitizeBranch(branch)
		if err := m.addManifestWorktree(ctx, treePath, manifestBranch); err != nil {
			result.Repos = append(result.Repos, RepoOutcome{Name: "<manifest>", Kind: RepoFailed, Reason: err.Error()})
			result.FailedCount++
			manifestBranch = ""
		}
	}

	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	pointer := &Pointer{
		MainWorkspace:  m.WorkspaceRoot,
		Branch:         branch,
		CreatedAt:      now(),
		Repos:          pointerRepos,
		ManifestBranch: manifestBranch,
	}
	if err := writePointer(treePath, pointer); err != nil {
		return result, err
	}
	if err := writeGriptreeConfig(treePath, pointer); err != nil {
		return result, err
	}

	reg.Griptrees[branch] = RegistryEntry{Path: treePath, Branch: branch}
	if err := saveRegistry(m.WorkspaceRoot, reg); err != nil {
		return result, err
	}

	return result, nil
}

func (m *Manager) addOneRepo(ctx context.Context, treePath, branch string, repo repoview.RepoView) (RepoOutcome, PointerRepo) {
	facade, err := m.OpenFacade(repo.AbsolutePath)
	if err != nil {
		return RepoOutcome{Name: repo.Name, Kind: RepoFailed, Reason: err.Error()}, PointerRepo{}
	}

	originalBranch, err := facade.CurrentBranch(ctx)
	if err != nil {
		return RepoOutcome{Name: repo.Name, Kind: RepoFailed, Reason: err.Error()}, PointerRepo{}
	}

	if repo.Reference {
		if err := facade.Fetch(ctx, "origin"); err == nil {
			_ = facade.ResetHard(ctx, "origin/"+repo.DefaultBranch)
		}
	}

	worktreePath := filepath.Join(treePath, repo.Path)
	if err := facade.CreateWorktree(ctx, worktreePath, branch); err != nil {
		return RepoOutcome{Name: repo.Name, Kind: RepoFailed, Reason: err.Error()}, PointerRepo{}
	}

	return RepoOutcome{Name: repo.Name, Kind: RepoCreated},
		PointerRepo{Name: repo.Name, OriginalBranch: originalBranch, IsReference: repo.Reference}
}

func (m *Manager) addManifestWorktree(ctx context.Context, treePath, manifestBranch string) error {
	dest := filepath.Join(treePath, ".gitgrip", "manifests")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := AddWorktree(ctx, m.Executor, m.ManifestRepoPath, dest, manifestBranch, true); err != nil {
		return err
	}
	manifestFile := filepath.Join(dest, "manifest.yaml")
	if _, err := os.Stat(manifestFile); os.IsNotExist(err) {
		src := filepath.Join(m.ManifestRepoPath, "manifest.yaml")
		if data, rerr := os.ReadFile(src); rerr == nil {
			_ = os.WriteFile(manifestFile, data, 0o644)
		}
	}
	return nil
}

type griptreeConfig struct {
	Branch    string    `json:"branch"`
	CreatedAt time.Time `json:"createdAt"`
}

func writeGriptreeConfig(treePath string, p *Pointer) error {
	dir := filepath.Join(treePath, ".gitgrip")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(griptreeConfig{Branch: p.Branch, CreatedAt: p.CreatedAt}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "griptree.json"), data, 0o644)
}

// List returns every registry entry annotated with derived state.
func (m *Manager) List() ([]ListEntry, error) {
	reg, err := loadRegistry(m.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	entries := make([]ListEntry, 0, len(reg.Griptrees))
	for branch, e := range reg.Griptrees {
		_, statErr := os.Stat(e.Path)
		entries = append(entries, ListEntry{
			Branch:  branch,
			Path:    e.Path,
			Locked:  e.Locked,
			Missing: os.IsNotExist(statErr),
		})
	}
	return entries, nil
}

// Remove deletes the griptree for branch; fails if locked unless force.
func (m *Manager) Remove(branch string, force bool) error {
	reg, err := loadRegistry(m.WorkspaceRoot)
	if err != nil {
		return err
	}
	entry, ok := reg.Griptrees[branch]
	if !ok {
		return fmt.Errorf("griptree: no griptree for branch %q", branch)
	}
	if entry.Locked && !force {
		return fmt.Errorf("griptree: branch %q is locked (use --force)", branch)
	}

	if err := os.RemoveAll(entry.Path); err != nil {
		return fmt.Errorf("griptree: remove %q: %w", entry.Path, err)
	}

	delete(reg.Griptrees, branch)
	return saveRegistry(m.WorkspaceRoot, reg)
}

// SetLock updates the registry entry's lock state and reason, mirroring
// the change into the pointer file if it still exists.
func (m *Manager) SetLock(branch string, locked bool, reason string) error {
	reg, err := loadRegistry(m.WorkspaceRoot)
	if err != nil {
		return err
	}
	entry, ok := reg.Griptrees[branch]
	if !ok {
		return fmt.Errorf("griptree: no griptree for branch %q", branch)
	}
	entry.Locked = locked
	entry.LockReason = reason
	reg.Griptrees[branch] = entry

	if err := saveRegistry(m.WorkspaceRoot, reg); err != nil {
		return err
	}

	if pointerExists(entry.Path) {
		p, err := readPointer(entry.Path)
		if err == nil {
			p.Locked = locked
			p.LockReason = reason
			_ = writePointer(entry.Path, p)
		}
	}
	return nil
}

// LoadPointer returns the registry path and pointer metadata for branch's
// griptree, used by `tree return` to walk its per-repo worktrees.
func (m *Manager) LoadPointer(branch string) (path string, pointer *Pointer, err error) {
	reg, err := loadRegistry(m.WorkspaceRoot)
	if err != nil {
		return "", nil, err
	}
	entry, ok := reg.Griptrees[branch]
	if !ok {
		return "", nil, fmt.Errorf("griptree: no griptree for branch %q", branch)
	}
	p, err := readPointer(entry.Path)
	if err != nil {
		return "", nil, fmt.Errorf("griptree: read pointer for %q: %w", branch, err)
	}
	return entry.Path, p, nil
}
