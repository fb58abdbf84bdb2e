// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package repoview

// Filter selects a subset of repo views. Applied in order:
// include-reference toggle, name filter, group filter.
type Filter struct {
	IncludeReference bool
	Names            []string
	Groups           []string
}

// Apply returns the repos in views that satisfy f, preserving order.
func (f Filter) Apply(views []RepoView) []RepoView {
	out := make([]RepoView, 0, len(views))
	for _, v := range views {
		if v.Reference && !f.IncludeReference {
			continue
		}
		if len(f.Names) > 0 && !contains(f.Names, v.Name) {
			continue
		}
		if len(f.Groups) > 0 && !anyGroupMatches(f.Groups, v.Groups) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func anyGroupMatches(want, have []string) bool {
	for _, w := range want {
		if contains(have, w) {
			return true
		}
	}
	return false
}
