// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package manifest implements the workspace descriptor: parsing,
// validation, and gripspace (upstream manifest) resolution.
package manifest

// SchemaVersion is the current manifest schema version.
const SchemaVersion = 1

// Manifest is the root workspace descriptor.
type Manifest struct {
	Version    int               `yaml:"version"`
	Gripspaces []Gripspace       `yaml:"gripspaces,omitempty"`
	Manifest   ManifestRepoBlock `yaml:"manifest,omitempty"`
	Repos      map[string]RepoConfig `yaml:"repos"`
	Settings   Settings          `yaml:"settings,omitempty"`
	Workspace  Workspace         `yaml:"workspace,omitempty"`
}

// Gripspace names an upstream manifest to include.
type Gripspace struct {
	URL string `yaml:"url"`
	Rev string `yaml:"rev,omitempty"`
}

// ManifestRepoBlock describes the self-tracked manifest repo, if any.
type ManifestRepoBlock struct {
	URL            string       `yaml:"url,omitempty"`
	DefaultBranch  string       `yaml:"default_branch,omitempty"`
	CopyFile       []FileMap    `yaml:"copyfile,omitempty"`
	LinkFile       []FileMap    `yaml:"linkfile,omitempty"`
	ComposeFile    []ComposeFile `yaml:"composefile,omitempty"`
	Platform       string       `yaml:"platform,omitempty"`
}

// FileMap is a copyfile/linkfile entry: a source rewritten to dest
// relative to the repo it is declared on.
type FileMap struct {
	Src  string `yaml:"src"`
	Dest string `yaml:"dest"`
}

// ComposeFile assembles a destination file from a sequence of parts,
// optionally sourced from an included gripspace.
type ComposeFile struct {
	Dest  string           `yaml:"dest"`
	Parts []ComposeFilePart `yaml:"parts"`
}

// ComposeFilePart is one fragment of a ComposeFile.
type ComposeFilePart struct {
	Src       string `yaml:"src"`
	Gripspace string `yaml:"gripspace,omitempty"`
}

// RepoConfig describes one managed repository entry.
type RepoConfig struct {
	URL           string    `yaml:"url"`
	Path          string    `yaml:"path"`
	DefaultBranch string    `yaml:"default_branch,omitempty"`
	CopyFile      []FileMap `yaml:"copyfile,omitempty"`
	LinkFile      []FileMap `yaml:"linkfile,omitempty"`
	Platform      string    `yaml:"platform,omitempty"`
	Reference     bool      `yaml:"reference,omitempty"`
	Groups        []string  `yaml:"groups,omitempty"`
}

// MergeStrategy controls pr merge batch semantics.
type MergeStrategy string

const (
	MergeStrategyAllOrNothing MergeStrategy = "all-or-nothing"
	MergeStrategyIndependent  MergeStrategy = "independent"
)

// Settings holds cross-cutting defaults.
type Settings struct {
	PRPrefix      string        `yaml:"pr_prefix,omitempty"`
	MergeStrategy MergeStrategy `yaml:"merge_strategy,omitempty"`
}

// DefaultSettings returns the settings defaults named in the data model.
func DefaultSettings() Settings {
	return Settings{
		PRPrefix:      "[cross-repo]",
		MergeStrategy: MergeStrategyIndependent,
	}
}

// Workspace holds cross-repo environment, scripts, hooks, CI and release
// configuration.
type Workspace struct {
	Env     map[string]string    `yaml:"env,omitempty"`
	Scripts map[string]Script    `yaml:"scripts,omitempty"`
	Hooks   Hooks                `yaml:"hooks,omitempty"`
	CI      CI                   `yaml:"ci,omitempty"`
	Release Release              `yaml:"release,omitempty"`
	Agent   map[string]string    `yaml:"agent,omitempty"`
}

// Script is a workspace-level named command, expressed either as a
// single command or as a sequence of named steps, never both.
type Script struct {
	Command string       `yaml:"command,omitempty"`
	Steps   []ScriptStep `yaml:"steps,omitempty"`
}

// ScriptStep is one named step of a multi-step Script.
type ScriptStep struct {
	Name           string `yaml:"name"`
	Command        string `yaml:"command"`
	ContinueOnError bool  `yaml:"continue_on_error,omitempty"`
}

// Hooks holds workspace-wide lifecycle hook command lists.
type Hooks struct {
	PostSync      []string `yaml:"post-sync,omitempty"`
	PostCheckout  []string `yaml:"post-checkout,omitempty"`
}

// CI declares named pipelines runnable via `gitgrip ci`.
type CI struct {
	Pipelines map[string]Pipeline `yaml:"pipelines,omitempty"`
}

// Pipeline is a named ordered list of steps.
type Pipeline struct {
	Steps []ScriptStep `yaml:"steps,omitempty"`
}

// Release configures the release orchestrator's defaults.
type Release struct {
	VersionFiles []VersionFile `yaml:"version_files,omitempty"`
	Changelog    string        `yaml:"changelog,omitempty"`
}

// VersionFile names a file the release step bumps and how to recognise
// its kind: by filename (Cargo.toml, package.json) or by an explicit
// pattern containing the literal "{version}" placeholder.
type VersionFile struct {
	Path    string `yaml:"path"`
	Pattern string `yaml:"pattern,omitempty"`
}
