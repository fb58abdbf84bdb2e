// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package griptree

import (
	"context"
	"fmt"
	"strings"

	"github.com/archmagece/gitgrip/internal/gitproc"
)

// WorktreeInfo mirrors one block of `git worktree list --porcelain`
// output.
type WorktreeInfo struct {
	Path       string
	Ref        string
	Branch     string
	IsMain     bool
	IsBare     bool
	IsDetached bool
	IsLocked   bool
	IsPrunable bool
}

// ListWorktrees runs `git worktree list --porcelain` in repoPath and
// parses its output.
func ListWorktrees(ctx context.Context, executor *gitproc.Executor, repoPath string) ([]WorktreeInfo, error) {
	out, err := executor.RunOutput(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("griptree: list worktrees: %w", err)
	}
	return parseWorktreeList(out), nil
}

func parseWorktreeList(output string) []WorktreeInfo {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	var worktrees []WorktreeInfo
	var current *WorktreeInfo

	flush := func() {
		if current != nil {
			worktrees = append(worktrees, *current)
			current = nil
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = &WorktreeInfo{Path: strings.TrimPrefix(line, "worktree ")}
		case current == nil:
			continue
		case strings.HasPrefix(line, "HEAD "):
			current.Ref = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "bare":
			current.IsBare = true
		case line == "detached":
			current.IsDetached = true
		case strings.HasPrefix(line, "locked"):
			current.IsLocked = true
		case strings.HasPrefix(line, "prunable"):
			current.IsPrunable = true
		}
	}
	flush()

	if len(worktrees) > 0 {
		worktrees[0].IsMain = true
	}
	return worktrees
}

// BranchCheckedOut reports whether branch is already checked out in
// some worktree of repoPath.
func BranchCheckedOut(ctx context.Context, executor *gitproc.Executor, repoPath, branch string) (bool, error) {
	worktrees, err := ListWorktrees(ctx, executor, repoPath)
	if err != nil {
		return false, err
	}
	for _, wt := range worktrees {
		if wt.Branch == branch {
			return true, nil
		}
	}
	return false, nil
}

// AddWorktree creates a worktree at worktreePath pinned to branch,
// creating the branch from HEAD when createBranch is set. It does not
// check whether the branch already exists.
func AddWorktree(ctx context.Context, executor *gitproc.Executor, repoPath, worktreePath, branch string, createBranch bool) error {
	args := []string{"worktree", "add"}
	if createBranch {
		args = append(args, "-b", branch, worktreePath)
	} else {
		args = append(args, worktreePath, branch)
	}
	if _, err := executor.Run(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("griptree: add worktree for branch %q: %w", branch, err)
	}
	return nil
}

// RemoveWorktree removes the worktree at worktreePath.
func RemoveWorktree(ctx context.Context, executor *gitproc.Executor, repoPath, worktreePath string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, worktreePath)
	if _, err := executor.Run(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("griptree: remove worktree %q: %w", worktreePath, err)
	}
	return nil
}
