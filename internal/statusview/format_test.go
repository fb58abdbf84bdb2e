// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package statusview

import (
	"strings"
	"testing"
)

func TestFormatHealthIcon(t *testing.T) {
	cases := []struct {
		row  RepoStatus
		want string
	}{
		{RepoStatus{}, "✓"},
		{RepoStatus{Dirty: true}, "⚠"},
		{RepoStatus{Error: "not a git repository"}, "✗"},
	}
	for _, c := range cases {
		if got := FormatHealthIcon(c.row); got != c.want {
			t.Errorf("FormatHealthIcon(%+v) = %q, want %q", c.row, got, c.want)
		}
	}
}

func TestFormatDivergenceText(t *testing.T) {
	cases := []struct {
		row  RepoStatus
		want string
	}{
		{RepoStatus{Divergence: DivergenceNone}, "up-to-date"},
		{RepoStatus{Divergence: DivergenceAhead, AheadBy: 3}, "3↑ ahead"},
		{RepoStatus{Divergence: DivergenceBehind, BehindBy: 2}, "2↓ behind"},
		{RepoStatus{Divergence: DivergenceDiverged, AheadBy: 1, BehindBy: 4}, "1↑ 4↓ diverged"},
	}
	for _, c := range cases {
		if got := FormatDivergenceText(c.row); got != c.want {
			t.Errorf("FormatDivergenceText(%+v) = %q, want %q", c.row, got, c.want)
		}
	}
}

func TestFormatChangeSummary(t *testing.T) {
	clean := RepoStatus{}
	if got := FormatChangeSummary(clean); got != "clean" {
		t.Errorf("clean row = %q, want clean", got)
	}

	dirty := RepoStatus{Dirty: true, Staged: 2, Modified: 1, Untracked: 3}
	got := FormatChangeSummary(dirty)
	for _, want := range []string{"2 staged", "1 modified", "3 untracked"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatChangeSummary(%+v) = %q, missing %q", dirty, got, want)
		}
	}
}
