// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/gitproc"
	"github.com/archmagece/gitgrip/internal/manifest"
	"github.com/archmagece/gitgrip/internal/repoview"
)

var (
	initPath       string
	initFromDirs   bool
	initDirs       []string
	initFromRepo   bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init [url]",
	Short: "Create a workspace from a manifest repo, a single repo, or existing directories",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var url string
		if len(args) == 1 {
			url = args[0]
		}
		return runInit(cmd.Context(), url)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initPath, "path", "p", "", "workspace directory to create (default: current directory)")
	initCmd.Flags().BoolVar(&initFromDirs, "from-dirs", false, "generate a manifest from existing git directories instead of cloning one")
	initCmd.Flags().StringSliceVar(&initDirs, "dirs", nil, "directories to scan with --from-dirs")
	initCmd.Flags().BoolVar(&initFromRepo, "from-repo", false, "treat the url argument as a single managed repo rather than a manifest repo")
	initCmd.Flags().BoolVar(&initInteractive, "interactive", false, "prompt for manifest details (not supported in this build)")
}

func runInit(ctx context.Context, url string) error {
	if initInteractive {
		return fmt.Errorf("init --interactive is not supported; pass --from-dirs, --from-repo, or a manifest url instead")
	}

	root := initPath
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create workspace directory: %w", err)
	}

	manifestDir := filepath.Join(root, ".gitgrip", "manifests")
	manifestPath := filepath.Join(manifestDir, "manifest.yaml")

	switch {
	case initFromDirs:
		if err := generateManifestFromDirs(ctx, root, initDirs, manifestPath); err != nil {
			return err
		}
	case initFromRepo:
		if url == "" {
			return fmt.Errorf("init --from-repo requires a repo url argument")
		}
		if err := generateManifestFromRepo(root, url, manifestPath); err != nil {
			return err
		}
	case url != "":
		if err := os.MkdirAll(filepath.Dir(manifestDir), 0o755); err != nil {
			return err
		}
		executor := gitproc.NewExecutor()
		if _, err := executor.Run(ctx, root, "clone", url, manifestDir); err != nil {
			return fmt.Errorf("clone manifest repo: %w", err)
		}
		if _, err := os.Stat(manifestPath); err != nil {
			return fmt.Errorf("manifest repo %s has no manifest.yaml at its root: %w", url, err)
		}
	default:
		return fmt.Errorf("init requires a manifest url, --from-repo <url>, or --from-dirs --dirs <paths>")
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	if _, err := manifest.Parse(manifestPath, data); err != nil {
		return fmt.Errorf("generated manifest is invalid: %w", err)
	}

	fmt.Printf("workspace initialized at %s\n", root)
	return nil
}

// generateManifestFromDirs builds a manifest entry per existing git
// directory, reading its origin remote and current branch rather than
// asking the user to repeat what's already on disk.
func generateManifestFromDirs(ctx context.Context, root string, dirs []string, manifestPath string) error {
	if len(dirs) == 0 {
		return fmt.Errorf("--from-dirs requires --dirs <path>[,<path>...]")
	}

	m := &manifest.Manifest{Version: manifest.SchemaVersion, Repos: map[string]manifest.RepoConfig{}}
	for _, dir := range dirs {
		abs := dir
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, dir)
		}
		f, err := gitfacade.OpenRepo(abs)
		if err != nil {
			return fmt.Errorf("open %s: %w", dir, err)
		}
		branch, err := f.CurrentBranch(ctx)
		if err != nil {
			return fmt.Errorf("read branch for %s: %w", dir, err)
		}
		remoteURL, err := f.GetRemoteURL(ctx, "origin")
		if err != nil {
			return fmt.Errorf("read origin remote for %s: %w", dir, err)
		}

		rel, err := filepath.Rel(root, abs)
		if err != nil {
			rel = dir
		}
		name := filepath.Base(rel)
		m.Repos[name] = manifest.RepoConfig{
			URL:           remoteURL,
			Path:          rel,
			DefaultBranch: branch,
		}
	}

	return writeManifest(manifestPath, m)
}

// generateManifestFromRepo writes a single-repo manifest so `init
// --from-repo <url>` can manage one repo without a manifest repo of
// its own.
func generateManifestFromRepo(root, url, manifestPath string) error {
	owner, repoName, _, _, ok := repoview.ParseRepoURL(url)
	name := repoName
	if !ok || name == "" {
		name = filepath.Base(url)
	}
	_ = owner

	m := &manifest.Manifest{
		Version: manifest.SchemaVersion,
		Repos: map[string]manifest.RepoConfig{
			name: {URL: url, Path: name, DefaultBranch: "main"},
		},
	}
	return writeManifest(manifestPath, m)
}

func writeManifest(path string, m *manifest.Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := manifest.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
