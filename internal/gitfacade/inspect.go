// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitfacade

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// HeadHash returns HEAD's full commit hash.
func (f *Facade) HeadHash(ctx context.Context) (string, error) {
	head, err := f.repo.Head()
	if err != nil {
		return "", &OperationError{Op: "head_hash", Cause: err}
	}
	return head.Hash().String(), nil
}

// HeadShortHash returns HEAD's abbreviated (7-char) commit hash.
func (f *Facade) HeadShortHash(ctx context.Context) (string, error) {
	full, err := f.HeadHash(ctx)
	if err != nil {
		return "", err
	}
	return full[:7], nil
}

// LogEntry is one commit as rendered by log --oneline.
type LogEntry struct {
	ShortHash string
	Summary   string
}

// Log returns the first n commits reachable from HEAD, most recent
// first.
func (f *Facade) Log(ctx context.Context, n int) ([]LogEntry, error) {
	head, err := f.repo.Head()
	if err != nil {
		return nil, &OperationError{Op: "log", Cause: err}
	}
	iter, err := f.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, &OperationError{Op: "log", Cause: err}
	}
	defer iter.Close()

	var entries []LogEntry
	err = iter.ForEach(func(c *object.Commit) error {
		if len(entries) >= n {
			return storer.ErrStop
		}
		summary := c.Message
		if idx := strings.IndexByte(summary, '\n'); idx >= 0 {
			summary = summary[:idx]
		}
		entries = append(entries, LogEntry{ShortHash: c.Hash.String()[:7], Summary: summary})
		return nil
	})
	if err != nil {
		return nil, &OperationError{Op: "log", Cause: err}
	}
	return entries, nil
}

// LsFiles lists tracked files, or only those modified in the worktree
// when modifiedOnly is set.
func (f *Facade) LsFiles(ctx context.Context, modifiedOnly bool) ([]string, error) {
	if !modifiedOnly {
		idx, err := f.repo.Storer.Index()
		if err != nil {
			return nil, &OperationError{Op: "ls_files", Cause: err}
		}
		names := make([]string, 0, len(idx.Entries))
		for _, e := range idx.Entries {
			names = append(names, e.Name)
		}
		sort.Strings(names)
		return names, nil
	}

	wt, err := f.repo.Worktree()
	if err != nil {
		return nil, &OperationError{Op: "ls_files", Cause: err}
	}
	raw, err := wt.Status()
	if err != nil {
		return nil, &OperationError{Op: "ls_files", Cause: err}
	}
	var names []string
	for path, fs := range raw {
		if fs.Worktree == git.Modified {
			names = append(names, path)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Tags lists tag names.
func (f *Facade) Tags(ctx context.Context) ([]string, error) {
	iter, err := f.repo.Tags()
	if err != nil {
		return nil, &OperationError{Op: "tags", Cause: err}
	}
	defer iter.Close()

	var names []string
	if err := iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	}); err != nil {
		return nil, &OperationError{Op: "tags", Cause: err}
	}
	sort.Strings(names)
	return names, nil
}

// RemoteInfo is one configured remote.
type RemoteInfo struct {
	Name string
	URL  string
}

// Remotes lists configured remotes.
func (f *Facade) Remotes(ctx context.Context) ([]RemoteInfo, error) {
	remotes, err := f.repo.Remotes()
	if err != nil {
		return nil, &OperationError{Op: "remotes", Cause: err}
	}
	infos := make([]RemoteInfo, 0, len(remotes))
	for _, r := range remotes {
		cfg := r.Config()
		url := ""
		if len(cfg.URLs) > 0 {
			url = cfg.URLs[0]
		}
		infos = append(infos, RemoteInfo{Name: cfg.Name, URL: url})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// ConfigGet looks up a dotted section.key (or section.subsection.key)
// config value, returning "" if unset.
func (f *Facade) ConfigGet(ctx context.Context, key string) (string, error) {
	cfg, err := f.repo.Config()
	if err != nil {
		return "", &OperationError{Op: "config_get", Cause: err}
	}
	parts := strings.SplitN(key, ".", 3)
	if len(parts) < 2 {
		return "", &OperationError{Op: "config_get", Cause: fmt.Errorf("invalid config key %q", key)}
	}
	section := cfg.Raw.Section(parts[0])
	if len(parts) == 2 {
		return section.Option(parts[1]), nil
	}
	return section.Subsection(parts[1]).Option(parts[2]), nil
}

// BlameLine is one line of blame output against HEAD.
type BlameLine struct {
	Hash   string
	Author string
	Text   string
}

// Blame runs line-level blame of path against HEAD.
func (f *Facade) Blame(ctx context.Context, path string) ([]BlameLine, error) {
	head, err := f.repo.Head()
	if err != nil {
		return nil, &OperationError{Op: "blame", Cause: err}
	}
	commit, err := f.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, &OperationError{Op: "blame", Cause: err}
	}
	result, err := git.Blame(commit, path)
	if err != nil {
		return nil, &OperationError{Op: "blame", Cause: err}
	}
	lines := make([]BlameLine, 0, len(result.Lines))
	for _, l := range result.Lines {
		lines = append(lines, BlameLine{Hash: l.Hash.String()[:7], Author: l.Author, Text: l.Text})
	}
	return lines, nil
}
