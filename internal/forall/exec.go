// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package forall

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/gitproc"
	"github.com/archmagece/gitgrip/internal/repoview"
)

// Outcome is the textual result of executing one classified command.
type Outcome struct {
	Output string
	Err    error
}

// ExecuteGit answers a recognised GitCommand against repo at path,
// in-process via gitfacade/Render. git stash has no go-git equivalent,
// so it is the one recognised form still run through executor as a
// subprocess.
func ExecuteGit(ctx context.Context, executor *gitproc.Executor, path string, c GitCommand) (string, error) {
	if c.Kind == CmdStashList {
		return executor.RunOutput(ctx, path, "stash", "list")
	}

	facade, err := gitfacade.OpenRepo(path)
	if err != nil {
		return "", err
	}
	return Render(ctx, facade, c)
}

// Execute runs a Classification in repo r's directory. repoEnv supplies
// REPO_NAME/REPO_PATH/REPO_URL/REPO_BRANCH for Shell invocations.
func Execute(ctx context.Context, executor *gitproc.Executor, path string, r repoview.RepoView, c Classification) Outcome {
	switch c.Kind {
	case KindGit:
		out, err := ExecuteGit(ctx, executor, path, c.Git)
		return Outcome{Output: out, Err: err}

	case KindPiped:
		gitOut, err := ExecuteGit(ctx, executor, path, c.Git)
		if err != nil {
			return Outcome{Err: err}
		}
		out, err := runShellWithInput(ctx, path, c.PipeTo, gitOut, repoEnv(r))
		return Outcome{Output: out, Err: err}

	case KindRedirect:
		gitOut, err := ExecuteGit(ctx, executor, path, c.Git)
		if err != nil {
			return Outcome{Err: err}
		}
		if err := writeRedirect(path, c.File, c.Append, gitOut); err != nil {
			return Outcome{Err: err}
		}
		return Outcome{Output: fmt.Sprintf("wrote output to %s", c.File)}

	case KindShell:
		out, err := runShell(ctx, path, c.Shell, repoEnv(r))
		return Outcome{Output: out, Err: err}
	}
	return Outcome{Err: fmt.Errorf("forall: unknown classification kind %v", c.Kind)}
}

func repoEnv(r repoview.RepoView) []string {
	return []string{
		"REPO_NAME=" + r.Name,
		"REPO_PATH=" + r.AbsolutePath,
		"REPO_URL=" + r.URL,
		"REPO_BRANCH=" + r.DefaultBranch,
	}
}

func runShell(ctx context.Context, dir, script string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func runShellWithInput(ctx context.Context, dir, script, input string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = newStringReader(input)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func writeRedirect(dir, file string, appendMode bool, content string) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(resolveRedirectPath(dir, file), flags, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}
