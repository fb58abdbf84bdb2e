// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package statusview

import "fmt"

// FormatHealthIcon returns a plain-text icon for a repo row's overall
// condition: an unreachable repo, a dirty working tree, or clean.
func FormatHealthIcon(row RepoStatus) string {
	switch {
	case row.Error != "":
		return "✗"
	case row.Dirty:
		return "⚠"
	default:
		return "✓"
	}
}

// FormatDivergenceText renders the ahead/behind counts the way "git
// status" describes them.
func FormatDivergenceText(row RepoStatus) string {
	switch row.Divergence {
	case DivergenceAhead:
		return fmt.Sprintf("%d↑ ahead", row.AheadBy)
	case DivergenceBehind:
		return fmt.Sprintf("%d↓ behind", row.BehindBy)
	case DivergenceDiverged:
		return fmt.Sprintf("%d↑ %d↓ diverged", row.AheadBy, row.BehindBy)
	default:
		return "up-to-date"
	}
}

// FormatChangeSummary renders the working-tree file counts, omitting
// any that are zero.
func FormatChangeSummary(row RepoStatus) string {
	if !row.Dirty {
		return "clean"
	}
	var parts []string
	if row.Staged > 0 {
		parts = append(parts, fmt.Sprintf("%d staged", row.Staged))
	}
	if row.Modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", row.Modified))
	}
	if row.Untracked > 0 {
		parts = append(parts, fmt.Sprintf("%d untracked", row.Untracked))
	}
	if row.Conflicts > 0 {
		parts = append(parts, fmt.Sprintf("%d conflict", row.Conflicts))
	}
	result := ""
	for i, p := range parts {
		if i > 0 {
			result += ", "
		}
		result += p
	}
	if result == "" {
		return "dirty"
	}
	return result
}
