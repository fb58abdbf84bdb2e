// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package repoview derives per-repository views from manifest entries:
// URL parsing (owner/repo/project, platform detection) and resolved
// absolute paths, plus the {names, groups, include-reference} filter.
package repoview

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/archmagece/gitgrip/internal/manifest"
)

// PlatformType identifies the hosting platform a repo URL resolves to.
type PlatformType string

const (
	PlatformGitHub      PlatformType = "github"
	PlatformAzureDevOps PlatformType = "azuredevops"
	PlatformBitbucket   PlatformType = "bitbucket"
	PlatformGitLab      PlatformType = "gitlab"
)

// RepoView is a derived, never-persisted record combining manifest data
// with URL parse results and computed paths.
type RepoView struct {
	Name          string
	URL           string
	Path          string
	AbsolutePath  string
	DefaultBranch string
	Owner         string
	Repo          string
	Project       string // Azure DevOps only
	Platform      PlatformType
	Reference     bool
	Groups        []string
}

var (
	sshHostPath   = regexp.MustCompile(`^git@([^:]+):(.+)$`)
	sshSchemePath = regexp.MustCompile(`^ssh://[^@]*@?([^/:]+)(?::\d+)?/(.+)$`)
	azureSSHV3    = regexp.MustCompile(`^v3/([^/]+)/([^/]+)/([^/]+)$`)
	azureDevOps   = regexp.MustCompile(`^dev\.azure\.com$`)
	azureVS       = regexp.MustCompile(`\.visualstudio\.com$`)
	bitbucketHost = regexp.MustCompile(`bitbucket\.`)
	gitlabHost    = regexp.MustCompile(`gitlab\.`)
)

// ParseRepoURL parses a repository URL into its host-relative components.
// Total over SSH (git@host:path), ssh://, HTTPS, file://, and the three
// Azure DevOps shapes. Platform detection order is github.com ->
// dev.azure.com|visualstudio.com -> bitbucket.* -> gitlab.* -> default
// GitHub.
func ParseRepoURL(rawURL string) (owner, repo, project string, platform PlatformType, ok bool) {
	host, path, ok := splitHostPath(rawURL)
	if !ok {
		return "", "", "", "", false
	}

	platform = detectPlatform(host)

	path = strings.TrimSuffix(path, ".git")
	path = strings.TrimSuffix(path, "/")

	switch {
	case azureDevOps.MatchString(host):
		// dev.azure.com/org/project/_git/repo
		parts := strings.Split(path, "/_git/")
		if len(parts) == 2 {
			orgProject := strings.SplitN(parts[0], "/", 2)
			if len(orgProject) == 2 {
				return orgProject[0], parts[1], orgProject[1], PlatformAzureDevOps, true
			}
		}
	case azureVS.MatchString(host):
		// org.visualstudio.com/project/_git/repo
		parts := strings.Split(path, "/_git/")
		if len(parts) == 2 {
			org := strings.TrimSuffix(host, ".visualstudio.com")
			return org, parts[1], parts[0], PlatformAzureDevOps, true
		}
	default:
		if m := azureSSHV3.FindStringSubmatch(path); m != nil {
			return m[1], m[3], m[2], PlatformAzureDevOps, true
		}
	}

	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) < 2 {
		return "", "", "", "", false
	}
	owner = strings.Join(segs[:len(segs)-1], "/")
	repo = segs[len(segs)-1]
	return owner, repo, "", platform, true
}

func splitHostPath(rawURL string) (host, path string, ok bool) {
	switch {
	case strings.HasPrefix(rawURL, "git@"):
		m := sshHostPath.FindStringSubmatch(rawURL)
		if m == nil {
			return "", "", false
		}
		return m[1], m[2], true
	case strings.HasPrefix(rawURL, "ssh://"):
		m := sshSchemePath.FindStringSubmatch(rawURL)
		if m == nil {
			return "", "", false
		}
		return m[1], m[2], true
	case strings.HasPrefix(rawURL, "https://"), strings.HasPrefix(rawURL, "http://"):
		rest := rawURL
		rest = strings.TrimPrefix(rest, "https://")
		rest = strings.TrimPrefix(rest, "http://")
		if i := strings.Index(rest, "@"); i >= 0 && i < strings.Index(rest, "/") {
			rest = rest[i+1:]
		}
		i := strings.Index(rest, "/")
		if i < 0 {
			return "", "", false
		}
		return rest[:i], rest[i+1:], true
	case strings.HasPrefix(rawURL, "file://"):
		return "", strings.TrimPrefix(rawURL, "file://"), true
	default:
		return "", "", false
	}
}

func detectPlatform(host string) PlatformType {
	switch {
	case host == "github.com" || strings.HasSuffix(host, ".github.com"):
		return PlatformGitHub
	case azureDevOps.MatchString(host) || azureVS.MatchString(host) || host == "":
		if host == "" {
			return PlatformGitHub
		}
		return PlatformAzureDevOps
	case bitbucketHost.MatchString(host):
		return PlatformBitbucket
	case gitlabHost.MatchString(host):
		return PlatformGitLab
	default:
		return PlatformGitHub
	}
}

// Build constructs a RepoView for a named manifest repo entry rooted at
// workspaceRoot.
func Build(name string, r manifest.RepoConfig, workspaceRoot string) RepoView {
	owner, repo, project, platform, ok := ParseRepoURL(r.URL)
	if !ok {
		owner, repo = "", name
		platform = PlatformGitHub
	}
	if r.Platform != "" {
		platform = PlatformType(r.Platform)
	}

	defaultBranch := r.DefaultBranch
	if defaultBranch == "" {
		defaultBranch = "main"
	}

	return RepoView{
		Name:          name,
		URL:           r.URL,
		Path:          r.Path,
		AbsolutePath:  filepath.Join(workspaceRoot, r.Path),
		DefaultBranch: defaultBranch,
		Owner:         owner,
		Repo:          repo,
		Project:       project,
		Platform:      platform,
		Reference:     r.Reference,
		Groups:        r.Groups,
	}
}

// BuildAll builds a RepoView for every repo in a resolved manifest,
// sorted by repo name for determinism.
func BuildAll(m *manifest.Manifest, workspaceRoot string) []RepoView {
	names := make([]string, 0, len(m.Repos))
	for name := range m.Repos {
		names = append(names, name)
	}
	sort.Strings(names)

	views := make([]RepoView, 0, len(names))
	for _, name := range names {
		views = append(views, Build(name, m.Repos[name], workspaceRoot))
	}
	return views
}
