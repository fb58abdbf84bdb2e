// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package griptree

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/repoview"
	"github.com/archmagece/gitgrip/internal/testutil"
)

// TestAddCreatesGriptreeAcrossRepos creates a griptree for "feat/x" over
// two repos on "main" and "dev", and verifies the sibling directory,
// per-worktree branch, unchanged original branches, registry entry, and
// pointer's originalBranch snapshot.
func TestAddCreatesGriptreeAcrossRepos(t *testing.T) {
	workspaceParent := t.TempDir()
	workspace := filepath.Join(workspaceParent, "workspace")
	if err := os.Mkdir(workspace, 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	repoA := testutil.TempGitRepoWithBranch(t, "main")
	repoB := testutil.TempGitRepoWithBranch(t, "dev")

	repos := []repoview.RepoView{
		{Name: "a", Path: "a", AbsolutePath: repoA, DefaultBranch: "main"},
		{Name: "b", Path: "b", AbsolutePath: repoB, DefaultBranch: "main"},
	}

	mgr := NewManager(workspace)
	mgr.Now = func() time.Time { return time.Unix(0, 0) }

	result, err := mgr.Add(context.Background(), "feat/x", repos)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if result.SucceededCount != 2 || result.FailedCount != 0 {
		t.Fatalf("Add() result = %+v, want 2 succeeded", result)
	}

	wantTree := filepath.Join(workspaceParent, "feat-x")
	if result.Path != wantTree {
		t.Errorf("Add().Path = %q, want %q", result.Path, wantTree)
	}
	if _, err := os.Stat(wantTree); err != nil {
		t.Fatalf("sibling directory missing: %v", err)
	}

	for _, name := range []string{"a", "b"} {
		f, err := gitfacade.OpenRepo(filepath.Join(wantTree, name))
		if err != nil {
			t.Fatalf("OpenRepo(%s worktree) error = %v", name, err)
		}
		branch, err := f.CurrentBranch(context.Background())
		if err != nil {
			t.Fatalf("CurrentBranch(%s) error = %v", name, err)
		}
		if branch != "feat/x" {
			t.Errorf("worktree %s branch = %q, want feat/x", name, branch)
		}
	}

	fa, _ := gitfacade.OpenRepo(repoA)
	branchA, _ := fa.CurrentBranch(context.Background())
	if branchA != "main" {
		t.Errorf("original repo a branch = %q, want main (unchanged)", branchA)
	}
	fb, _ := gitfacade.OpenRepo(repoB)
	branchB, _ := fb.CurrentBranch(context.Background())
	if branchB != "dev" {
		t.Errorf("original repo b branch = %q, want dev (unchanged)", branchB)
	}

	entries, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Branch == "feat/x" {
			found = true
			if e.Missing {
				t.Error("registry entry reports Missing = true, want false")
			}
		}
	}
	if !found {
		t.Error("registry does not contain feat/x")
	}

	p, err := readPointer(wantTree)
	if err != nil {
		t.Fatalf("readPointer() error = %v", err)
	}
	got := map[string]string{}
	for _, r := range p.Repos {
		got[r.Name] = r.OriginalBranch
	}
	if got["a"] != "main" || got["b"] != "dev" {
		t.Errorf("pointer.Repos originalBranch = %+v, want a=main b=dev", got)
	}
}

// TestRemoveDeletesRegistryAndDirectory grounds P6: add(b); ...; remove(b)
// leaves the registry's branch set equal to its pre-add set.
func TestRemoveDeletesRegistryAndDirectory(t *testing.T) {
	workspaceParent := t.TempDir()
	workspace := filepath.Join(workspaceParent, "workspace")
	_ = os.Mkdir(workspace, 0o755)

	repoA := testutil.TempGitRepoWithCommit(t)
	repos := []repoview.RepoView{{Name: "a", Path: "a", AbsolutePath: repoA, DefaultBranch: "main"}}

	mgr := NewManager(workspace)
	mgr.Now = func() time.Time { return time.Unix(0, 0) }

	before, _ := mgr.List()

	added, err := mgr.Add(context.Background(), "feat/y", repos)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := mgr.Remove("feat/y", false); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(added.Path); !os.IsNotExist(err) {
		t.Errorf("griptree directory %q still exists after remove (stat err = %v)", added.Path, err)
	}

	after, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("registry after remove = %v, want same size as before add (%v)", after, before)
	}
}

func TestRemoveLockedFailsWithoutForce(t *testing.T) {
	workspaceParent := t.TempDir()
	workspace := filepath.Join(workspaceParent, "workspace")
	_ = os.Mkdir(workspace, 0o755)

	repoA := testutil.TempGitRepoWithCommit(t)
	repos := []repoview.RepoView{{Name: "a", Path: "a", AbsolutePath: repoA, DefaultBranch: "main"}}

	mgr := NewManager(workspace)
	mgr.Now = func() time.Time { return time.Unix(0, 0) }

	if _, err := mgr.Add(context.Background(), "feat/z", repos); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := mgr.SetLock("feat/z", true, "in review"); err != nil {
		t.Fatalf("SetLock() error = %v", err)
	}
	if err := mgr.Remove("feat/z", false); err == nil {
		t.Error("Remove() without force on locked griptree should fail")
	}
	if err := mgr.Remove("feat/z", true); err != nil {
		t.Errorf("Remove() with force error = %v", err)
	}
}
