// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package adoplatform

import "testing"

func TestParseRepoURL(t *testing.T) {
	a := &Adapter{}

	tests := []struct {
		name        string
		url         string
		wantOwner   string
		wantProject string
		wantRepo    string
	}{
		{"devops url", "https://dev.azure.com/myorg/myproject/_git/myrepo", "myorg", "myproject", "myrepo"},
		{"visualstudio legacy", "https://myorg.visualstudio.com/myproject/_git/myrepo", "myorg", "myproject", "myrepo"},
		{"ssh v3", "git@ssh.dev.azure.com:v3/myorg/myproject/myrepo", "myorg", "myproject", "myrepo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := a.ParseRepoURL(tt.url)
			if !ok {
				t.Fatalf("ParseRepoURL(%q) not ok", tt.url)
			}
			if parsed.Owner != tt.wantOwner || parsed.Project != tt.wantProject || parsed.Repo != tt.wantRepo {
				t.Errorf("ParseRepoURL(%q) = %+v, want owner=%q project=%q repo=%q",
					tt.url, parsed, tt.wantOwner, tt.wantProject, tt.wantRepo)
			}
		})
	}
}

func TestMatchesURL(t *testing.T) {
	a := &Adapter{}
	if !a.MatchesURL("https://dev.azure.com/myorg/myproject/_git/myrepo") {
		t.Error("MatchesURL() = false, want true")
	}
	if a.MatchesURL("https://github.com/acme/widgets") {
		t.Error("MatchesURL() = true, want false")
	}
}
