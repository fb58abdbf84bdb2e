// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/archmagece/gitgrip/internal/gitlog"
	"github.com/archmagece/gitgrip/internal/manifest"
	"github.com/archmagece/gitgrip/internal/platform"
	"github.com/archmagece/gitgrip/internal/platform/adoplatform"
	"github.com/archmagece/gitgrip/internal/platform/ghplatform"
	"github.com/archmagece/gitgrip/internal/platform/giteaplatform"
	"github.com/archmagece/gitgrip/internal/platform/glplatform"
	"github.com/archmagece/gitgrip/internal/repoview"
)

const manifestRelPath = ".gitgrip/manifests/manifest.yaml"

// workspace bundles everything a subcommand needs once the manifest has
// been loaded: the resolved manifest, its derived repo views, the root
// directory they are relative to, and a logger carrying global flags.
type workspace struct {
	Root     string
	Manifest *manifest.Manifest
	Repos    []repoview.RepoView
	Log      *logrus.Logger
}

// loadWorkspace resolves --workspace (default: cwd), reads and validates
// its manifest, resolves gripspaces, and builds every repo's RepoView.
func loadWorkspace() (*workspace, error) {
	root := workspaceDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}

	path := filepath.Join(root, manifestRelPath)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w (run 'gitgrip init' first)", path, err)
	}

	spacesDir := filepath.Join(root, ".gitgrip", "spaces")
	m, err := manifest.LoadAndResolve(path, data, spacesDir, manifest.NewExecGripspaceGit())
	if err != nil {
		return nil, err
	}

	return &workspace{
		Root:     root,
		Manifest: m,
		Repos:    repoview.BuildAll(m, root),
		Log:      gitlog.New(gitlog.Options{Verbose: verbose, Quiet: quiet, JSON: format == "json"}),
	}, nil
}

// filterRepos applies --group and explicit name args on top of a
// workspace's full repo list.
func filterRepos(repos []repoview.RepoView, groups []string, names []string) []repoview.RepoView {
	filtered := repoview.Filter{Groups: groups, Names: names}.Apply(repos)
	return filtered
}

// adapterCache lazily constructs one platform.Adapter per (platform,
// host) pair and reuses it across an invocation's fan-out, since
// constructing per-call would re-parse tokens and re-negotiate rate
// limiter defaults for no benefit.
type adapterCache struct {
	mu    sync.Mutex
	byKey map[string]platform.Adapter
}

func newAdapterCache() *adapterCache {
	return &adapterCache{byKey: map[string]platform.Adapter{}}
}

// For resolves the platform.Adapter for a repo, based on its detected
// or manifest-overridden platform and the host parsed from its URL.
func (c *adapterCache) For(repo repoview.RepoView) (platform.Adapter, error) {
	host := hostOf(repo.URL)
	key := string(repo.Platform) + "|" + host

	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.byKey[key]; ok {
		return a, nil
	}

	a, err := newAdapter(platform.Type(repo.Platform), host)
	if err != nil {
		return nil, err
	}
	c.byKey[key] = a
	return a, nil
}

func newAdapter(t platform.Type, host string) (platform.Adapter, error) {
	switch t {
	case platform.GitHub:
		return ghplatform.New(platform.TokenFromEnv(platform.GitHub)), nil
	case platform.GitLab:
		return glplatform.New(platform.TokenFromEnv(platform.GitLab), baseURLFor(host))
	case platform.AzureDevOps:
		return adoplatform.New(context.Background(), baseURLFor(host), platform.TokenFromEnv(platform.AzureDevOps))
	case platform.Gitea:
		return giteaplatform.New(baseURLFor(host), platform.TokenFromEnv(platform.Gitea))
	default:
		return nil, fmt.Errorf("unsupported platform %q", t)
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

func baseURLFor(host string) string {
	return "https://" + host
}
