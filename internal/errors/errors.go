// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package errors provides shared error wrapping helpers and the common
// git-state sentinel errors reused across the manifest, git facade,
// griptree, and forall packages.
package errors

import "errors"

// Common git-state errors shared across packages that drive subprocess
// or in-process git operations.
var (
	ErrNotFound         = errors.New("not found")
	ErrNotGitRepository = errors.New("not a git repository")
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
	ErrBranchExists     = errors.New("branch already exists")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrRemoteNotFound   = errors.New("remote not found")
	ErrMergeConflict    = errors.New("merge conflict")
	ErrDetachedHead     = errors.New("repository in detached HEAD state")
)

// Wrap associates err with target so that errors.Is(result, target) is
// true, preserving err's message. If err is nil, target is returned
// unchanged (possibly nil). If target is nil, err is returned unchanged.
func Wrap(err, target error) error {
	if err == nil {
		return target
	}
	if target == nil {
		return err
	}
	return &wrapped{msg: err.Error(), err: err, target: target}
}

// WrapWithMessage wraps err so that errors.Is(result, err) holds, with
// msg prefixed to its message. Returns nil if err is nil.
func WrapWithMessage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrapped{msg: msg + ": " + err.Error(), err: err}
}

type wrapped struct {
	msg    string
	err    error
	target error
}

func (w *wrapped) Error() string { return w.msg }

func (w *wrapped) Unwrap() error {
	if w.target != nil {
		return w.target
	}
	return w.err
}

// Is reports whether err matches target, per the standard errors.Is
// semantics (re-exported for callers that only import this package).
func Is(err, target error) bool {
	return errors.Is(err, target)
}
