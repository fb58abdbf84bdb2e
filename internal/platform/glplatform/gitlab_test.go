// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package glplatform

import "testing"

func TestParseRepoURL(t *testing.T) {
	a := &Adapter{}
	parsed, ok := a.ParseRepoURL("https://gitlab.com/group/sub/widgets.git")
	if !ok || parsed.Owner != "group/sub" || parsed.Repo != "widgets" {
		t.Fatalf("ParseRepoURL() = %+v, ok=%v", parsed, ok)
	}
}

func TestMatchesURL(t *testing.T) {
	a := &Adapter{}
	if !a.MatchesURL("https://gitlab.com/group/widgets") {
		t.Error("MatchesURL() = false, want true")
	}
	if a.MatchesURL("https://github.com/group/widgets") {
		t.Error("MatchesURL() = true, want false")
	}
}
