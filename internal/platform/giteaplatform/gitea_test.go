// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package giteaplatform

import "testing"

func TestParseRepoURL(t *testing.T) {
	a := &Adapter{baseURL: "https://gitea.example.com"}
	parsed, ok := a.ParseRepoURL("https://gitea.example.com/acme/widgets.git")
	if !ok || parsed.Owner != "acme" || parsed.Repo != "widgets" {
		t.Fatalf("ParseRepoURL() = %+v, ok=%v", parsed, ok)
	}
}

func TestMatchesURL(t *testing.T) {
	a := &Adapter{baseURL: "https://gitea.example.com"}
	if !a.MatchesURL("https://gitea.example.com/acme/widgets") {
		t.Error("MatchesURL() = false, want true")
	}
	if a.MatchesURL("https://github.com/acme/widgets") {
		t.Error("MatchesURL() = true, want false")
	}
}
