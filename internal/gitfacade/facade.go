// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package gitfacade exposes uniform per-repository git operations.
// Read-only plumbing runs in-process via go-git; operations with
// corner cases too numerous to reimplement (push, pull, fetch,
// checkout, remote, worktree) delegate to a git subprocess via
// internal/gitproc.
package gitfacade

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/archmagece/gitgrip/internal/gitproc"
	"github.com/archmagece/gitgrip/internal/parser"
)

// Facade wraps a single opened repository and the subprocess executor
// used for operations go-git cannot safely perform.
type Facade struct {
	path     string
	repo     *git.Repository
	executor *gitproc.Executor
}

// OpenError reports that path does not contain a git repository.
type OpenError struct {
	Path  string
	Cause error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("not a git repository: %s: %v", e.Path, e.Cause)
}

func (e *OpenError) Unwrap() error { return e.Cause }

// OperationError reports a failed git operation, carrying an
// interpreted hint alongside the raw cause.
type OperationError struct {
	Op    string
	Hint  string
	Cause error
}

func (e *OperationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%v)", e.Op, e.Hint, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *OperationError) Unwrap() error { return e.Cause }

// OpenRepo opens path as a git repository with go-git's PlainOpen.
func OpenRepo(path string) (*Facade, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, &OpenError{Path: path, Cause: err}
	}
	return &Facade{path: path, repo: repo, executor: gitproc.NewExecutor()}, nil
}

// Path returns the repository's root directory.
func (f *Facade) Path() string { return f.path }

// CurrentBranch returns the checked-out branch name, or "HEAD" if
// detached.
func (f *Facade) CurrentBranch(ctx context.Context) (string, error) {
	head, err := f.repo.Head()
	if err != nil {
		return "", &OperationError{Op: "current_branch", Cause: err}
	}
	if !head.Name().IsBranch() {
		return "HEAD", nil
	}
	return head.Name().Short(), nil
}

// BranchScope selects which refs ListBranches returns.
type BranchScope int

const (
	BranchScopeLocal BranchScope = iota
	BranchScopeRemote
	BranchScopeAll
)

// ListBranches lists branch names for the given scope, marking which one
// is current.
func (f *Facade) ListBranches(ctx context.Context, scope BranchScope) (names []string, current string, err error) {
	if scope == BranchScopeLocal || scope == BranchScopeAll {
		if head, herr := f.repo.Head(); herr == nil && head.Name().IsBranch() {
			current = head.Name().Short()
		}
		iter, berr := f.repo.Branches()
		if berr != nil {
			return nil, "", &OperationError{Op: "list_branches", Cause: berr}
		}
		if ferr := iter.ForEach(func(ref *plumbing.Reference) error {
			names = append(names, ref.Name().Short())
			return nil
		}); ferr != nil {
			return nil, "", &OperationError{Op: "list_branches", Cause: ferr}
		}
	}
	if scope == BranchScopeRemote || scope == BranchScopeAll {
		refs, rerr := f.repo.References()
		if rerr != nil {
			return nil, "", &OperationError{Op: "list_branches", Cause: rerr}
		}
		if ferr := refs.ForEach(func(ref *plumbing.Reference) error {
			if ref.Name().IsRemote() {
				names = append(names, strings.TrimPrefix(ref.Name().String(), "refs/remotes/"))
			}
			return nil
		}); ferr != nil {
			return nil, "", &OperationError{Op: "list_branches", Cause: ferr}
		}
	}
	sort.Strings(names)
	return names, current, nil
}

// BranchExists reports whether a local branch exists.
func (f *Facade) BranchExists(ctx context.Context, name string) (bool, error) {
	_, err := f.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, &OperationError{Op: "branch_exists", Cause: err}
	}
	return true, nil
}

// RemoteBranchExists reports whether a remote-tracking branch exists.
func (f *Facade) RemoteBranchExists(ctx context.Context, remote, name string) (bool, error) {
	_, err := f.repo.Reference(plumbing.NewRemoteReferenceName(remote, name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, &OperationError{Op: "remote_branch_exists", Cause: err}
	}
	return true, nil
}

// HasCommitsAhead reports whether HEAD has commits not reachable from
// base (rev-list count base..HEAD > 0).
func (f *Facade) HasCommitsAhead(ctx context.Context, base string) (bool, error) {
	head, err := f.repo.Head()
	if err != nil {
		return false, &OperationError{Op: "has_commits_ahead", Cause: err}
	}
	baseHash, err := f.repo.ResolveRevision(plumbing.Revision(base))
	if err != nil {
		return false, &OperationError{Op: "has_commits_ahead", Cause: err}
	}
	if head.Hash() == *baseHash {
		return false, nil
	}
	baseAncestors, err := f.ancestorHashes(*baseHash)
	if err != nil {
		return false, &OperationError{Op: "has_commits_ahead", Cause: err}
	}
	_, behind := baseAncestors[head.Hash()]
	return !behind, nil
}

// AheadBehind reports how many commits branch is ahead of and behind
// its upstream. Returns (0, 0, nil) if there is no upstream.
func (f *Facade) AheadBehind(ctx context.Context, branch string) (ahead, behind int, err error) {
	branchHash, herr := f.repo.ResolveRevision(plumbing.Revision(branch))
	if herr != nil {
		return 0, 0, nil
	}

	cfg, cerr := f.repo.Config()
	if cerr != nil {
		return 0, 0, &OperationError{Op: "ahead_behind", Cause: cerr}
	}
	branchCfg, ok := cfg.Branches[branch]
	if !ok || branchCfg.Remote == "" || branchCfg.Merge == "" {
		return 0, 0, nil
	}
	upstreamRef, uerr := f.repo.Reference(plumbing.NewRemoteReferenceName(branchCfg.Remote, branchCfg.Merge.Short()), true)
	if uerr != nil {
		return 0, 0, nil
	}

	branchAncestors, aerr := f.ancestorHashes(*branchHash)
	if aerr != nil {
		return 0, 0, &OperationError{Op: "ahead_behind", Cause: aerr}
	}
	upstreamAncestors, uaerr := f.ancestorHashes(upstreamRef.Hash())
	if uaerr != nil {
		return 0, 0, &OperationError{Op: "ahead_behind", Cause: uaerr}
	}

	for h := range branchAncestors {
		if _, ok := upstreamAncestors[h]; !ok {
			ahead++
		}
	}
	for h := range upstreamAncestors {
		if _, ok := branchAncestors[h]; !ok {
			behind++
		}
	}
	return ahead, behind, nil
}

// ancestorHashes walks commit parents from start and returns the set of
// every reachable commit hash, start included.
func (f *Facade) ancestorHashes(start plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	seen := make(map[plumbing.Hash]struct{})
	queue := []plumbing.Hash{start}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := f.repo.CommitObject(h)
		if err != nil {
			return nil, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return seen, nil
}

// Checkout switches to branch, optionally creating it.
func (f *Facade) Checkout(ctx context.Context, branch string, create bool) error {
	args := []string{"checkout"}
	if create {
		args = append(args, "-b")
	}
	args = append(args, branch)
	if _, err := f.executor.RunOutput(ctx, f.path, args...); err != nil {
		return &OperationError{Op: "checkout", Hint: gitproc.Hint(err.Error()), Cause: err}
	}
	return nil
}

// Add stages the given paths ("." for everything).
func (f *Facade) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	args := append([]string{"add"}, paths...)
	if _, err := f.executor.RunOutput(ctx, f.path, args...); err != nil {
		return &OperationError{Op: "add", Cause: err}
	}
	return nil
}

// Commit records a commit with msg, optionally amending.
func (f *Facade) Commit(ctx context.Context, msg string, amend bool) error {
	args := []string{"commit", "-m", msg}
	if amend {
		args = append(args, "--amend")
	}
	if _, err := f.executor.RunOutput(ctx, f.path, args...); err != nil {
		return &OperationError{Op: "commit", Hint: gitproc.Hint(err.Error()), Cause: err}
	}
	return nil
}

// PullMode selects the integration strategy for Pull.
type PullMode int

const (
	PullMerge PullMode = iota
	PullRebase
)

// Push pushes branch to remote, optionally setting upstream. Failure
// stderr is interpreted into a short hint.
func (f *Facade) Push(ctx context.Context, remote, branch string, setUpstream, force bool) error {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "--set-upstream")
	}
	if force {
		args = append(args, "--force-with-lease")
	}
	args = append(args, remote, branch)
	res, err := f.executor.Run(ctx, f.path, args...)
	if err != nil || res.ExitCode != 0 {
		return &OperationError{Op: "push", Hint: gitproc.Hint(res.Stderr), Cause: fmt.Errorf("%s", res.Stderr)}
	}
	return nil
}

// Pull fetches and integrates remote/<current branch> using mode.
func (f *Facade) Pull(ctx context.Context, remote string, mode PullMode) error {
	args := []string{"pull"}
	if mode == PullRebase {
		args = append(args, "--rebase")
	}
	args = append(args, remote)
	res, err := f.executor.Run(ctx, f.path, args...)
	if err != nil || res.ExitCode != 0 {
		return &OperationError{Op: "pull", Hint: gitproc.Hint(res.Stderr), Cause: fmt.Errorf("%s", res.Stderr)}
	}
	InvalidateStatusCache(f.path)
	return nil
}

// SafePullResult reports what SafePull actually did.
type SafePullResult struct {
	Pulled    bool
	Recovered bool
	Message   string
}

// SafePull applies a recovery rule: if on a non-default branch whose
// upstream was deleted and there are no local-ahead commits, switch to
// the default branch before pulling; otherwise surface a descriptive
// message.
func (f *Facade) SafePull(ctx context.Context, defaultBranch, remote string, mode PullMode) (*SafePullResult, error) {
	current, err := f.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	if current == defaultBranch {
		if err := f.Pull(ctx, remote, mode); err != nil {
			return nil, err
		}
		return &SafePullResult{Pulled: true}, nil
	}

	hasUpstream, _ := f.RemoteBranchExists(ctx, remote, current)
	ahead, _ := f.HasCommitsAhead(ctx, defaultBranch)

	if !hasUpstream && !ahead {
		if err := f.Checkout(ctx, defaultBranch, false); err != nil {
			return nil, err
		}
		if err := f.Pull(ctx, remote, mode); err != nil {
			return nil, err
		}
		return &SafePullResult{Pulled: true, Recovered: true, Message: "upstream of " + current + " was deleted; switched to " + defaultBranch}, nil
	}

	if err := f.Pull(ctx, remote, mode); err != nil {
		return nil, err
	}
	return &SafePullResult{Pulled: true}, nil
}

// ResetHard resets the working tree to target and invalidates any
// cached status for this repo.
func (f *Facade) ResetHard(ctx context.Context, target string) error {
	if _, err := f.executor.RunOutput(ctx, f.path, "reset", "--hard", target); err != nil {
		return &OperationError{Op: "reset_hard", Cause: err}
	}
	InvalidateStatusCache(f.path)
	return nil
}

// Fetch fetches remote.
func (f *Facade) Fetch(ctx context.Context, remote string) error {
	if _, err := f.executor.RunOutput(ctx, f.path, "fetch", remote); err != nil {
		return &OperationError{Op: "fetch", Cause: err}
	}
	return nil
}

// SetRemoteURL sets remote's URL.
func (f *Facade) SetRemoteURL(ctx context.Context, remote, url string) error {
	if _, err := f.executor.RunOutput(ctx, f.path, "remote", "set-url", remote, url); err != nil {
		return &OperationError{Op: "set_remote_url", Cause: err}
	}
	return nil
}

// GetRemoteURL returns remote's URL.
func (f *Facade) GetRemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := f.executor.RunOutput(ctx, f.path, "remote", "get-url", remote)
	if err != nil {
		return "", &OperationError{Op: "get_remote_url", Cause: err}
	}
	return parser.ParseRemoteInfo(out), nil
}

// DeleteRemoteBranch deletes branch on remote.
func (f *Facade) DeleteRemoteBranch(ctx context.Context, remote, branch string) error {
	if _, err := f.executor.RunOutput(ctx, f.path, "push", remote, "--delete", branch); err != nil {
		return &OperationError{Op: "delete_remote_branch", Cause: err}
	}
	return nil
}

// ForcePush force-pushes branch to remote.
func (f *Facade) ForcePush(ctx context.Context, remote, branch string) error {
	return f.Push(ctx, remote, branch, false, true)
}

// SetUpstream configures branch's upstream to remote/branch.
func (f *Facade) SetUpstream(ctx context.Context, remote, branch string) error {
	if _, err := f.executor.RunOutput(ctx, f.path, "branch", "--set-upstream-to="+remote+"/"+branch, branch); err != nil {
		return &OperationError{Op: "set_upstream", Cause: err}
	}
	return nil
}

// GetUpstream returns branch's configured upstream, if any.
func (f *Facade) GetUpstream(ctx context.Context) (string, error) {
	out, err := f.executor.RunOutput(ctx, f.path, "rev-parse", "--abbrev-ref", "@{upstream}")
	if err != nil {
		return "", nil // no upstream set is not fatal
	}
	return parser.ParseUpstreamInfo(out), nil
}

// CreateWorktree creates a worktree at path pinned to branch, creating
// branch from HEAD if it does not already exist.
func (f *Facade) CreateWorktree(ctx context.Context, path, branch string) error {
	exists, _ := f.BranchExists(ctx, branch)
	args := []string{"worktree", "add"}
	if !exists {
		args = append(args, "-b", branch, path)
	} else {
		args = append(args, path, branch)
	}
	if _, err := f.executor.RunOutput(ctx, f.path, args...); err != nil {
		return &OperationError{Op: "create_worktree", Cause: err}
	}
	return nil
}
