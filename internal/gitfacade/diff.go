// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitfacade

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffFileStat is one changed file's line-level diff statistics.
type DiffFileStat struct {
	Path       string
	Status     string // "A", "M", "D", "R", "C"
	Insertions int
	Deletions  int

	before string
	after  string
}

// DiffResult is a working-tree diff: the index against HEAD when
// staged, or the worktree against the index otherwise.
type DiffResult struct {
	Files      []DiffFileStat
	Insertions int
	Deletions  int
}

// changedFiles resolves before/after blob content for every path with
// a pending change, relative to HEAD (staged) or the index (unstaged).
func (f *Facade) changedFiles(staged bool) ([]DiffFileStat, error) {
	wt, err := f.repo.Worktree()
	if err != nil {
		return nil, err
	}
	raw, err := wt.Status()
	if err != nil {
		return nil, err
	}

	idx, err := f.repo.Storer.Index()
	if err != nil {
		return nil, err
	}
	indexContent := func(path string) (string, bool) {
		for _, e := range idx.Entries {
			if e.Name == path {
				blob, err := f.repo.BlobObject(e.Hash)
				if err != nil {
					return "", false
				}
				return blobText(blob)
			}
		}
		return "", false
	}

	headContent := func(string) (string, bool) { return "", false }
	if head, herr := f.repo.Head(); herr == nil {
		if commit, cerr := f.repo.CommitObject(head.Hash()); cerr == nil {
			if tree, terr := commit.Tree(); terr == nil {
				headContent = func(path string) (string, bool) {
					file, err := tree.File(path)
					if err != nil {
						return "", false
					}
					content, err := file.Contents()
					if err != nil {
						return "", false
					}
					return content, true
				}
			}
		}
	}

	worktreeContent := func(path string) (string, bool) {
		data, err := os.ReadFile(filepath.Join(f.path, path))
		if err != nil {
			return "", false
		}
		return string(data), true
	}

	var files []DiffFileStat
	for path, fs := range raw {
		code := fs.Worktree
		before, after := indexContent, worktreeContent
		if staged {
			code = fs.Staging
			before, after = headContent, indexContent
		}
		if code == git.Unmodified {
			continue
		}
		if !staged && code == git.Untracked {
			code = git.Added
		}

		beforeText, _ := before(path)
		afterText, _ := after(path)
		ins, del := lineDiffStats(beforeText, afterText)

		status := "M"
		switch code {
		case git.Added, git.Untracked:
			status = "A"
		case git.Deleted:
			status = "D"
		case git.Renamed:
			status = "R"
		case git.Copied:
			status = "C"
		}

		files = append(files, DiffFileStat{
			Path: path, Status: status, Insertions: ins, Deletions: del,
			before: beforeText, after: afterText,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Diff computes per-file and aggregate insertion/deletion counts.
func (f *Facade) Diff(ctx context.Context, staged bool) (*DiffResult, error) {
	files, err := f.changedFiles(staged)
	if err != nil {
		return nil, &OperationError{Op: "diff", Cause: err}
	}
	result := &DiffResult{Files: files}
	for _, fs := range files {
		result.Insertions += fs.Insertions
		result.Deletions += fs.Deletions
	}
	return result, nil
}

// DiffPatch renders a unified-diff-style patch of every changed file.
func (f *Facade) DiffPatch(ctx context.Context, staged bool) (string, error) {
	files, err := f.changedFiles(staged)
	if err != nil {
		return "", &OperationError{Op: "diff", Cause: err}
	}

	var sb strings.Builder
	for _, fs := range files {
		fmt.Fprintf(&sb, "diff --git a/%s b/%s\n", fs.Path, fs.Path)
		fmt.Fprintf(&sb, "--- a/%s\n", fs.Path)
		fmt.Fprintf(&sb, "+++ b/%s\n", fs.Path)
		sb.WriteString(unifiedBody(fs.before, fs.after))
	}
	return sb.String(), nil
}

// unifiedBody renders before/after as +/- prefixed lines, the way a
// line-mode diff without context collapsing would.
func unifiedBody(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func blobText(blob *object.Blob) (string, bool) {
	r, err := blob.Reader()
	if err != nil {
		return "", false
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// lineDiffStats counts inserted/deleted lines between before and
// after using line-mode diffing.
func lineDiffStats(before, after string) (insertions, deletions int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		if n == 0 && d.Text != "" {
			n = 1
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			insertions += n
		case diffmatchpatch.DiffDelete:
			deletions += n
		}
	}
	return insertions, deletions
}
