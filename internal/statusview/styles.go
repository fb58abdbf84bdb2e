// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package statusview renders human-readable "status" and "tree list"
// output with lipgloss styling. JSON output bypasses this package
// entirely and marshals the typed result structs directly.
package statusview

import "github.com/charmbracelet/lipgloss"

// Pre-defined styles for status/tree-list tabular output.
var (
	// HeaderStyle is used for the column header row.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	// CleanStyle marks a repo with no pending local changes or divergence.
	CleanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	// DirtyStyle marks a repo with uncommitted changes.
	DirtyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	// DivergedStyle marks a repo that is both ahead and behind upstream.
	DivergedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	// ErrorStyle marks a repo that failed to report status.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	// LockedStyle marks a locked griptree entry.
	LockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	// SubtleStyle is used for the placeholder shown when a table is empty.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)
