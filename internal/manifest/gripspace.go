// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package manifest

import (
	"context"
	"fmt"
	"strings"
)

// MaxGripspaceDepth bounds gripspace recursion. Depths 0..4 are
// resolvable; depth 5 is rejected.
const MaxGripspaceDepth = 5

// GripspaceGit is the subset of git operations gripspace resolution
// needs: clone-if-absent and fetch-then-checkout-or-reset. Gripspaces
// are themselves git repositories that must be cloned before their
// manifests can be read.
type GripspaceGit interface {
	// EnsureGripspace clones url under spacesDir/<name> if absent and
	// checks out rev (falling back to origin/<rev>); idempotent.
	// Returns the local manifest path to load.
	EnsureGripspace(ctx context.Context, spacesDir, url, rev string) (localManifestPath string, raw []byte, err error)
	// UpdateGripspace fetches origin and fast-forwards (or resets hard
	// to origin/HEAD on a non-fast-forward pull). A fetch failure is a
	// warning, not fatal; the cached copy is used.
	UpdateGripspace(ctx context.Context, spacesDir, url, rev string) error
}

// accumulator holds the merge state threaded through gripspace recursion.
type accumulator struct {
	repos          map[string]RepoConfig
	scripts        map[string]Script
	env            map[string]string
	hooksPostSync  []string
	hooksPostCheck []string
	linkfiles      []FileMap
	copyfiles      []FileMap
}

func newAccumulator() *accumulator {
	return &accumulator{
		repos:   map[string]RepoConfig{},
		scripts: map[string]Script{},
		env:     map[string]string{},
	}
}

// Resolve performs depth-first gripspace inclusion and returns the
// fully merged, but not-yet-validated, manifest.
func Resolve(m *Manifest, spacesDir string, git GripspaceGit) (*Manifest, error) {
	if len(m.Gripspaces) == 0 {
		return m, nil
	}

	acc := newAccumulator()
	visited := map[string]bool{}

	for _, gs := range m.Gripspaces {
		if err := resolveOne(context.Background(), gs, spacesDir, git, visited, 0, acc); err != nil {
			return nil, err
		}
	}

	spliceInto(m, acc)
	return m, nil
}

// resolveOne loads one gripspace's manifest, recurses into its own
// gripspaces, and merges results into acc using first-writer-wins
// (the deepest already-processed gripspace wins on key conflict, since
// merge calls happen bottom-up as the recursion unwinds and
// mergeFirstWriterWins never overwrites a key the accumulator already
// holds).
func resolveOne(ctx context.Context, gs Gripspace, spacesDir string, git GripspaceGit, visited map[string]bool, depth int, acc *accumulator) error {
	if visited[gs.URL] {
		return &GripspaceError{URL: gs.URL, Reason: fmt.Sprintf("%v", ErrCircularInclude)}
	}
	if depth >= MaxGripspaceDepth {
		return &GripspaceError{URL: gs.URL, Reason: fmt.Sprintf("%v", ErrMaxDepthExceeded)}
	}

	localPath, raw, err := git.EnsureGripspace(ctx, spacesDir, gs.URL, gs.Rev)
	if err != nil {
		return &GripspaceError{URL: gs.URL, Reason: err.Error()}
	}

	child, err := Parse(localPath, raw)
	if err != nil {
		return &GripspaceError{URL: gs.URL, Reason: err.Error()}
	}

	childVisited := map[string]bool{}
	for k := range visited {
		childVisited[k] = true
	}
	childVisited[gs.URL] = true

	childAcc := newAccumulator()
	for _, nested := range child.Gripspaces {
		if err := resolveOne(ctx, nested, spacesDir, git, childVisited, depth+1, childAcc); err != nil {
			return err
		}
	}
	// Entries inherited from deeper gripspaces were written first and
	// win over the child's own entries on key conflict.
	local := newAccumulator()
	mergeLocalOverInherited(local, child)
	mergeFirstWriterWins(childAcc, local)

	name := gripspaceName(gs.URL)
	rewriteFileRefs(childAcc, name)

	mergeFirstWriterWins(acc, childAcc)

	return nil
}

// mergeFirstWriterWins copies src into dst, keeping dst's existing
// entries on key conflicts (dst was populated by an earlier-declared,
// already-processed gripspace, which wins).
func mergeFirstWriterWins(dst, src *accumulator) {
	for k, v := range src.repos {
		if _, exists := dst.repos[k]; !exists {
			dst.repos[k] = v
		}
	}
	for k, v := range src.scripts {
		if _, exists := dst.scripts[k]; !exists {
			dst.scripts[k] = v
		}
	}
	for k, v := range src.env {
		if _, exists := dst.env[k]; !exists {
			dst.env[k] = v
		}
	}
	// Hooks concatenate instead of merging by key.
	dst.hooksPostSync = append(dst.hooksPostSync, src.hooksPostSync...)
	dst.hooksPostCheck = append(dst.hooksPostCheck, src.hooksPostCheck...)
	dst.linkfiles = dedupFileMapsDestWins(dst.linkfiles, src.linkfiles)
	dst.copyfiles = dedupFileMapsDestWins(dst.copyfiles, src.copyfiles)
}

// mergeLocalOverInherited folds a manifest's own repos/scripts/env/hooks/
// file maps into acc, with the local value winning on key conflicts.
func mergeLocalOverInherited(acc *accumulator, m *Manifest) {
	for k, v := range m.Repos {
		acc.repos[k] = v
	}
	for k, v := range m.Workspace.Scripts {
		acc.scripts[k] = v
	}
	for k, v := range m.Workspace.Env {
		acc.env[k] = v
	}
	acc.hooksPostSync = append(acc.hooksPostSync, m.Workspace.Hooks.PostSync...)
	acc.hooksPostCheck = append(acc.hooksPostCheck, m.Workspace.Hooks.PostCheckout...)
	acc.linkfiles = dedupFileMapsDestWins(acc.linkfiles, m.Manifest.LinkFile)
	acc.copyfiles = dedupFileMapsDestWins(acc.copyfiles, m.Manifest.CopyFile)
}

// dedupFileMapsDestWins appends newer into base, deduplicating by Dest
// with the newer (local) entry winning.
func dedupFileMapsDestWins(base, newer []FileMap) []FileMap {
	byDest := map[string]FileMap{}
	order := make([]string, 0, len(base)+len(newer))
	for _, fm := range base {
		if _, exists := byDest[fm.Dest]; !exists {
			order = append(order, fm.Dest)
		}
		byDest[fm.Dest] = fm
	}
	for _, fm := range newer {
		if _, exists := byDest[fm.Dest]; !exists {
			order = append(order, fm.Dest)
		}
		byDest[fm.Dest] = fm
	}
	out := make([]FileMap, 0, len(order))
	for _, d := range order {
		out = append(out, byDest[d])
	}
	return out
}

// rewriteFileRefs prefixes a gripspace's own link/copy file sources with
// "gripspace:<name>:<src>" so the link applier resolves them under
// spacesDir/<name>/<src>.
func rewriteFileRefs(acc *accumulator, name string) {
	for i, fm := range acc.linkfiles {
		if !strings.HasPrefix(fm.Src, "gripspace:") {
			acc.linkfiles[i].Src = fmt.Sprintf("gripspace:%s:%s", name, fm.Src)
		}
	}
	for i, fm := range acc.copyfiles {
		if !strings.HasPrefix(fm.Src, "gripspace:") {
			acc.copyfiles[i].Src = fmt.Sprintf("gripspace:%s:%s", name, fm.Src)
		}
	}
}

// spliceInto merges the resolved accumulator into the top-level
// manifest, with the local manifest winning on repos/scripts/env
// conflicts and hooks/file maps combined.
func spliceInto(m *Manifest, acc *accumulator) {
	for k, v := range m.Repos {
		acc.repos[k] = v
	}
	m.Repos = acc.repos

	for k, v := range m.Workspace.Scripts {
		acc.scripts[k] = v
	}
	if m.Workspace.Scripts == nil {
		m.Workspace.Scripts = map[string]Script{}
	}
	for k, v := range acc.scripts {
		m.Workspace.Scripts[k] = v
	}

	if m.Workspace.Env == nil {
		m.Workspace.Env = map[string]string{}
	}
	merged := map[string]string{}
	for k, v := range acc.env {
		merged[k] = v
	}
	for k, v := range m.Workspace.Env {
		merged[k] = v
	}
	m.Workspace.Env = merged

	m.Workspace.Hooks.PostSync = append(append([]string{}, acc.hooksPostSync...), m.Workspace.Hooks.PostSync...)
	m.Workspace.Hooks.PostCheckout = append(append([]string{}, acc.hooksPostCheck...), m.Workspace.Hooks.PostCheckout...)

	m.Manifest.LinkFile = dedupFileMapsDestWins(acc.linkfiles, m.Manifest.LinkFile)
	m.Manifest.CopyFile = dedupFileMapsDestWins(acc.copyfiles, m.Manifest.CopyFile)
}

// gripspaceName derives the local directory name for a gripspace URL:
// strip a trailing "/", take the segment after the last "/" or ":",
// strip a trailing ".git".
func gripspaceName(url string) string {
	s := strings.TrimSuffix(url, "/")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ".git")
	return s
}
