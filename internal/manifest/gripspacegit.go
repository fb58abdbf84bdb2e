// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package manifest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/archmagece/gitgrip/internal/gitproc"
)

// ExecGripspaceGit implements GripspaceGit against a real git binary via
// internal/gitproc, using a shallow-clone-then-unshallow-fallback
// strategy: a clone with no pinned rev uses --depth 1, and falls back
// to an unshallow fetch the moment a rev lookup misses locally.
type ExecGripspaceGit struct {
	Executor *gitproc.Executor
}

// NewExecGripspaceGit builds an ExecGripspaceGit using a default executor.
func NewExecGripspaceGit() *ExecGripspaceGit {
	return &ExecGripspaceGit{Executor: gitproc.NewExecutor()}
}

func (g *ExecGripspaceGit) manifestPath(dir string) string {
	return filepath.Join(dir, "manifest.yaml")
}

// EnsureGripspace implements GripspaceGit.
func (g *ExecGripspaceGit) EnsureGripspace(ctx context.Context, spacesDir, url, rev string) (string, []byte, error) {
	name := gripspaceName(url)
	dir := filepath.Join(spacesDir, name)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(spacesDir, 0o755); err != nil {
			return "", nil, err
		}
		args := []string{"clone"}
		if rev == "" {
			args = append(args, "--depth", "1")
		}
		args = append(args, url, dir)
		if _, err := g.Executor.Run(ctx, "", args...); err != nil {
			return "", nil, err
		}
	}

	if rev != "" {
		if _, err := g.Executor.RunOutput(ctx, dir, "checkout", rev); err != nil {
			// Shallow clone may not have the rev; unshallow and retry.
			_, _ = g.Executor.Run(ctx, dir, "fetch", "--unshallow", "origin")
			if _, err := g.Executor.RunOutput(ctx, dir, "checkout", rev); err != nil {
				if _, err := g.Executor.RunOutput(ctx, dir, "checkout", "origin/"+rev); err != nil {
					return "", nil, err
				}
			}
		}
	}

	raw, err := os.ReadFile(g.manifestPath(dir))
	if err != nil {
		return "", nil, err
	}
	return g.manifestPath(dir), raw, nil
}

// UpdateGripspace implements GripspaceGit. A fetch failure is not
// propagated as a fatal error: the cached copy is used and the caller
// is only expected to log the returned error, not abort on it.
func (g *ExecGripspaceGit) UpdateGripspace(ctx context.Context, spacesDir, url, rev string) error {
	dir := filepath.Join(spacesDir, gripspaceName(url))

	if _, err := g.Executor.Run(ctx, dir, "fetch", "origin"); err != nil {
		return err
	}

	if rev != "" {
		_, err := g.Executor.RunOutput(ctx, dir, "checkout", rev)
		return err
	}

	if _, err := g.Executor.RunOutput(ctx, dir, "pull", "--ff-only", "origin"); err != nil {
		_, resetErr := g.Executor.Run(ctx, dir, "reset", "--hard", "origin/HEAD")
		return resetErr
	}
	return nil
}
