// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package statusview

import (
	"fmt"
	"strings"

	"github.com/archmagece/gitgrip/internal/griptree"
)

// styleForRow picks the foreground style matching a row's condition.
func styleForRow(row RepoStatus) func(...string) string {
	switch {
	case row.Error != "":
		return ErrorStyle.Render
	case row.Divergence == DivergenceDiverged:
		return DivergedStyle.Render
	case row.Dirty:
		return DirtyStyle.Render
	default:
		return CleanStyle.Render
	}
}

// RenderStatusTable renders a list of RepoStatus rows as a styled,
// column-aligned table for the status command's human-readable output.
func RenderStatusTable(rows []RepoStatus) string {
	if len(rows) == 0 {
		return SubtleStyle.Render("no repositories in workspace")
	}

	nameW, branchW := len("REPO"), len("BRANCH")
	for _, r := range rows {
		if len(r.Name) > nameW {
			nameW = len(r.Name)
		}
		if len(r.Branch) > branchW {
			branchW = len(r.Branch)
		}
	}

	var b strings.Builder
	header := fmt.Sprintf(" %-*s  %-*s  %-2s  %s", nameW, "REPO", branchW, "BRANCH", "", "STATUS")
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n")

	for _, r := range rows {
		style := styleForRow(r)
		icon := FormatHealthIcon(r)
		var detail string
		if r.Error != "" {
			detail = r.Error
		} else {
			detail = FormatDivergenceText(r) + "    " + FormatChangeSummary(r)
		}
		line := fmt.Sprintf(" %-*s  %-*s  %-2s  %s", nameW, r.Name, branchW, r.Branch, icon, detail)
		b.WriteString(style(line))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderTreeList renders the active griptree registry as a styled
// table for the `tree list` command.
func RenderTreeList(entries []griptree.ListEntry) string {
	if len(entries) == 0 {
		return SubtleStyle.Render("no griptrees")
	}

	branchW := len("BRANCH")
	for _, e := range entries {
		if len(e.Branch) > branchW {
			branchW = len(e.Branch)
		}
	}

	var b strings.Builder
	header := fmt.Sprintf(" %-*s  %s", branchW, "BRANCH", "PATH")
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n")

	for _, e := range entries {
		status := ""
		style := CleanStyle.Render
		switch {
		case e.Missing:
			status = " (missing)"
			style = ErrorStyle.Render
		case e.Locked:
			status = " (locked)"
			style = LockedStyle.Render
		}
		line := fmt.Sprintf(" %-*s  %s%s", branchW, e.Branch, e.Path, status)
		b.WriteString(style(line))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
