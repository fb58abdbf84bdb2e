// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package forall

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/archmagece/gitgrip/internal/gitfacade"
)

// Render answers a recognised GitCommand from facade, in a format
// byte-compatible with git's own porcelain output for status/diff/log/
// rev-parse, and a reasonable approximation for the rest.
func Render(ctx context.Context, facade *gitfacade.Facade, c GitCommand) (string, error) {
	switch c.Kind {
	case CmdStatus:
		if c.Porcelain {
			return renderStatusPorcelain(ctx, facade)
		}
		return renderStatusLong(ctx, facade)
	case CmdListBranches:
		return renderBranches(ctx, facade, c)
	case CmdGetHead:
		hash, err := facade.HeadHash(ctx)
		if err != nil {
			return "", err
		}
		return hash + "\n", nil
	case CmdGetBranch:
		branch, err := facade.CurrentBranch(ctx)
		if err != nil {
			return "", err
		}
		return branch + "\n", nil
	case CmdGetHeadShort:
		hash, err := facade.HeadShortHash(ctx)
		if err != nil {
			return "", err
		}
		return hash + "\n", nil
	case CmdLogOneline:
		return renderLog(ctx, facade, c.Count)
	case CmdDiff:
		return renderDiff(ctx, facade, c)
	case CmdLsFiles:
		files, err := facade.LsFiles(ctx, c.Modified)
		if err != nil {
			return "", err
		}
		return joinLines(files), nil
	case CmdTagList:
		tags, err := facade.Tags(ctx)
		if err != nil {
			return "", err
		}
		return joinLines(tags), nil
	case CmdRemote:
		return renderRemotes(ctx, facade, c)
	case CmdBlame:
		return renderBlame(ctx, facade, c.File)
	case CmdConfigGet:
		val, err := facade.ConfigGet(ctx, c.Key)
		if err != nil {
			return "", err
		}
		if val == "" {
			return "", nil
		}
		return val + "\n", nil
	}
	return "", fmt.Errorf("forall: unrecognised git command kind %v", c.Kind)
}

func renderStatusPorcelain(ctx context.Context, facade *gitfacade.Facade) (string, error) {
	raw, err := facade.RawStatus(ctx)
	if err != nil {
		return "", err
	}
	paths := make([]string, 0, len(raw))
	for p := range raw {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var sb strings.Builder
	for _, p := range paths {
		st := raw[p]
		sb.WriteByte(st.Staging)
		sb.WriteByte(st.Worktree)
		sb.WriteByte(' ')
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func renderStatusLong(ctx context.Context, facade *gitfacade.Facade) (string, error) {
	st, err := facade.Status(ctx)
	if err != nil {
		return "", err
	}
	if st.IsClean {
		return "nothing to commit, working tree clean\n", nil
	}

	var sb strings.Builder
	if len(st.StagedFiles) > 0 {
		sb.WriteString("Changes to be committed:\n")
		for _, p := range sortedCopy(st.StagedFiles) {
			fmt.Fprintf(&sb, "\t%s\n", p)
		}
	}
	unstaged := append(append([]string{}, st.ModifiedFiles...), st.ConflictFiles...)
	if len(unstaged) > 0 {
		sb.WriteString("Changes not staged for commit:\n")
		for _, p := range sortedCopy(unstaged) {
			fmt.Fprintf(&sb, "\t%s\n", p)
		}
	}
	if len(st.UntrackedFiles) > 0 {
		sb.WriteString("Untracked files:\n")
		for _, p := range sortedCopy(st.UntrackedFiles) {
			fmt.Fprintf(&sb, "\t%s\n", p)
		}
	}
	return sb.String(), nil
}

func renderBranches(ctx context.Context, facade *gitfacade.Facade, c GitCommand) (string, error) {
	var sb strings.Builder

	if !c.Remotes {
		locals, current, err := facade.ListBranches(ctx, gitfacade.BranchScopeLocal)
		if err != nil {
			return "", err
		}
		for _, name := range locals {
			prefix := "  "
			if name == current {
				prefix = "* "
			}
			sb.WriteString(prefix)
			sb.WriteString(name)
			sb.WriteByte('\n')
		}
	}

	if c.All || c.Remotes {
		remotes, _, err := facade.ListBranches(ctx, gitfacade.BranchScopeRemote)
		if err != nil {
			return "", err
		}
		for _, name := range remotes {
			sb.WriteString("  remotes/")
			sb.WriteString(name)
			sb.WriteByte('\n')
		}
	}

	return sb.String(), nil
}

func renderLog(ctx context.Context, facade *gitfacade.Facade, n int) (string, error) {
	entries, err := facade.Log(ctx, n)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s %s\n", e.ShortHash, e.Summary)
	}
	return sb.String(), nil
}

func renderDiff(ctx context.Context, facade *gitfacade.Facade, c GitCommand) (string, error) {
	switch c.Format {
	case "stat":
		result, err := facade.Diff(ctx, c.Staged)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		for _, fs := range result.Files {
			fmt.Fprintf(&sb, " %s |\n", fs.Path)
		}
		fmt.Fprintf(&sb, " %d files changed, %d insertions(+), %d deletions(-)\n",
			len(result.Files), result.Insertions, result.Deletions)
		return sb.String(), nil

	case "name-only":
		result, err := facade.Diff(ctx, c.Staged)
		if err != nil {
			return "", err
		}
		paths := make([]string, len(result.Files))
		for i, fs := range result.Files {
			paths[i] = fs.Path
		}
		return joinLines(paths), nil

	case "name-status":
		result, err := facade.Diff(ctx, c.Staged)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		for _, fs := range result.Files {
			fmt.Fprintf(&sb, "%s\t%s\n", fs.Status, fs.Path)
		}
		return sb.String(), nil

	default:
		return facade.DiffPatch(ctx, c.Staged)
	}
}

func renderRemotes(ctx context.Context, facade *gitfacade.Facade, c GitCommand) (string, error) {
	remotes, err := facade.Remotes(ctx)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, r := range remotes {
		if c.Verbose {
			fmt.Fprintf(&sb, "%s\t%s (fetch)\n%s\t%s (push)\n", r.Name, r.URL, r.Name, r.URL)
		} else {
			fmt.Fprintf(&sb, "%s\n", r.Name)
		}
	}
	return sb.String(), nil
}

func renderBlame(ctx context.Context, facade *gitfacade.Facade, path string) (string, error) {
	lines, err := facade.Blame(ctx, path)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s (%s) %s\n", l.Hash, l.Author, l.Text)
	}
	return sb.String(), nil
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func sortedCopy(s []string) []string {
	out := append([]string{}, s...)
	sort.Strings(out)
	return out
}
