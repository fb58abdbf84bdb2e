// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package release implements the fixed multi-repo release pipeline:
// version bump, changelog update, build hooks, branch/commit/push,
// PR create and merge, sync, and platform release creation.
package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/manifest"
	"github.com/archmagece/gitgrip/internal/platform"
	"github.com/archmagece/gitgrip/internal/prcoord"
	"github.com/archmagece/gitgrip/internal/repoview"
	"github.com/archmagece/gitgrip/pkg/branch"
	"github.com/archmagece/gitgrip/pkg/hooks"
)

// StepStatus tags one step's terminal state.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// StepResult records the outcome of one pipeline step.
type StepResult struct {
	Name    string     `json:"name"`
	Status  StepStatus `json:"status"`
	Detail  string     `json:"detail,omitempty"`
	Files   []string   `json:"files,omitempty"`
	URL     string     `json:"url,omitempty"`
	Number  int        `json:"number,omitempty"`
}

// Options configures one release run.
type Options struct {
	WorkspaceRoot string
	Version       string // e.g. "0.2.0" or "v0.2.0"
	Notes         string
	DryRun        bool
	SkipPR        bool
	TargetRepo    string // release target for CreateRelease; default first non-reference repo
}

// Result is the full pipeline output.
type Result struct {
	Version string       `json:"version"`
	Tag     string       `json:"tag"`
	Steps   []StepResult `json:"steps"`
}

// AdapterFor resolves the platform adapter for a repo view.
type AdapterFor func(repo repoview.RepoView) (platform.Adapter, error)

// Run executes the 12-step release pipeline:
// bump_version_files -> update_changelog -> build_hooks -> branch ->
// add -> commit -> push -> pr_create -> pr_merge -> sync ->
// create_platform_release -> post_release_hooks.
//
// In --dry-run mode every step still runs its read-only/reporting half
// but no file, branch, commit, or remote is actually modified.
func Run(ctx context.Context, m *manifest.Manifest, repos []repoview.RepoView, adapterFor AdapterFor, opts Options) Result {
	bare, tag, err := NormalizeVersion(opts.Version)
	if err != nil {
		return Result{Version: opts.Version, Steps: []StepResult{{Name: "bump_version_files", Status: StepFailed, Detail: err.Error()}}}
	}

	result := Result{Version: bare, Tag: tag}
	releaseBranch := "release/" + tag
	commitMsg := "chore: release " + tag

	result.Steps = append(result.Steps, stepBumpVersionFiles(m, opts, bare))
	result.Steps = append(result.Steps, stepUpdateChangelog(m, opts, tag))
	result.Steps = append(result.Steps, stepBuildHooks(ctx, m, opts))

	targets := nonReferenceRepos(repos)
	result.Steps = append(result.Steps, stepBranch(ctx, targets, releaseBranch, opts))
	result.Steps = append(result.Steps, stepAdd(ctx, targets, opts))
	result.Steps = append(result.Steps, stepCommit(ctx, targets, commitMsg, opts))
	result.Steps = append(result.Steps, stepPush(ctx, targets, releaseBranch, opts))

	var prStep StepResult
	if opts.SkipPR {
		prStep = StepResult{Name: "pr_create", Status: StepSkipped, Detail: "--skip-pr"}
	} else {
		prStep = stepPRCreate(ctx, targets, adapterFor, releaseBranch, commitMsg, opts)
	}
	result.Steps = append(result.Steps, prStep)

	if opts.SkipPR {
		result.Steps = append(result.Steps, StepResult{Name: "pr_merge", Status: StepSkipped, Detail: "--skip-pr"})
	} else {
		result.Steps = append(result.Steps, stepPRMerge(ctx, targets, adapterFor, opts))
	}

	result.Steps = append(result.Steps, stepSync(ctx, targets, opts))
	result.Steps = append(result.Steps, stepCreatePlatformRelease(ctx, targets, adapterFor, tag, opts))
	result.Steps = append(result.Steps, stepPostReleaseHooks(ctx, m, opts))

	return result
}

func nonReferenceRepos(repos []repoview.RepoView) []repoview.RepoView {
	var out []repoview.RepoView
	for _, r := range repos {
		if !r.Reference {
			out = append(out, r)
		}
	}
	return out
}

func stepBumpVersionFiles(m *manifest.Manifest, opts Options, bareVersion string) StepResult {
	var bumped []string

	configured := m.Workspace.Release.VersionFiles
	if len(configured) > 0 {
		for _, vf := range configured {
			path := filepath.Join(opts.WorkspaceRoot, vf.Path)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			changed, err := bumpFileByName(path, vf.Pattern, bareVersion, opts.DryRun)
			if err == nil && changed {
				bumped = append(bumped, vf.Path)
			}
		}
	} else {
		for _, name := range []string{"Cargo.toml", "package.json"} {
			path := filepath.Join(opts.WorkspaceRoot, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			var changed bool
			var err error
			if name == "Cargo.toml" {
				changed, err = BumpCargoToml(path, bareVersion, opts.DryRun)
			} else {
				changed, err = BumpPackageJSON(path, bareVersion, opts.DryRun)
			}
			if err == nil && changed {
				bumped = append(bumped, name)
			}
		}
	}

	if len(bumped) == 0 {
		return StepResult{Name: "bump_version_files", Status: StepSkipped, Detail: "no version files were updated"}
	}
	return StepResult{Name: "bump_version_files", Status: StepOK, Files: bumped}
}

func stepUpdateChangelog(m *manifest.Manifest, opts Options, tag string) StepResult {
	changelog := m.Workspace.Release.Changelog
	if changelog == "" {
		changelog = "CHANGELOG.md"
	}
	path := filepath.Join(opts.WorkspaceRoot, changelog)
	date := time.Now().Format("2006-01-02")
	updated, err := UpdateChangelog(path, tag, opts.Notes, date, opts.DryRun)
	if err != nil {
		return StepResult{Name: "update_changelog", Status: StepFailed, Detail: err.Error()}
	}
	if !updated {
		return StepResult{Name: "update_changelog", Status: StepSkipped, Detail: changelog + " not found"}
	}
	return StepResult{Name: "update_changelog", Status: StepOK, Files: []string{changelog}}
}

func stepBuildHooks(ctx context.Context, m *manifest.Manifest, opts Options) StepResult {
	if len(m.Workspace.Hooks.PostSync) == 0 {
		return StepResult{Name: "build_hooks", Status: StepSkipped, Detail: "no post-sync hooks configured"}
	}
	if opts.DryRun {
		return StepResult{Name: "build_hooks", Status: StepSkipped, Detail: "dry-run: hooks not executed"}
	}
	if err := hooks.ExecuteCommands(ctx, m.Workspace.Hooks.PostSync, opts.WorkspaceRoot, nil); err != nil {
		return StepResult{Name: "build_hooks", Status: StepFailed, Detail: err.Error()}
	}
	return StepResult{Name: "build_hooks", Status: StepOK}
}

func stepBranch(ctx context.Context, repos []repoview.RepoView, releaseBranch string, opts Options) StepResult {
	if opts.DryRun {
		return StepResult{Name: "branch", Status: StepSkipped, Detail: fmt.Sprintf("dry-run: would create %s in %d repos", releaseBranch, len(repos))}
	}
	mgr := branch.NewManager()
	var failed []string
	for _, r := range repos {
		if err := mgr.Create(ctx, r.AbsolutePath, branch.CreateOptions{Name: releaseBranch, Checkout: true}); err != nil {
			failed = append(failed, r.Name+": "+err.Error())
		}
	}
	if len(failed) > 0 {
		return StepResult{Name: "branch", Status: StepFailed, Detail: fmt.Sprintf("%v", failed)}
	}
	return StepResult{Name: "branch", Status: StepOK, Detail: releaseBranch}
}

func stepAdd(ctx context.Context, repos []repoview.RepoView, opts Options) StepResult {
	if opts.DryRun {
		return StepResult{Name: "add", Status: StepSkipped, Detail: "dry-run"}
	}
	var failed []string
	for _, r := range repos {
		f, err := gitfacade.OpenRepo(r.AbsolutePath)
		if err != nil {
			failed = append(failed, r.Name+": "+err.Error())
			continue
		}
		if err := f.Add(ctx, "."); err != nil {
			failed = append(failed, r.Name+": "+err.Error())
		}
	}
	if len(failed) > 0 {
		return StepResult{Name: "add", Status: StepFailed, Detail: fmt.Sprintf("%v", failed)}
	}
	return StepResult{Name: "add", Status: StepOK}
}

func stepCommit(ctx context.Context, repos []repoview.RepoView, msg string, opts Options) StepResult {
	if opts.DryRun {
		return StepResult{Name: "commit", Status: StepSkipped, Detail: msg}
	}
	var failed []string
	for _, r := range repos {
		f, err := gitfacade.OpenRepo(r.AbsolutePath)
		if err != nil {
			failed = append(failed, r.Name+": "+err.Error())
			continue
		}
		if err := f.Commit(ctx, msg, false); err != nil {
			failed = append(failed, r.Name+": "+err.Error())
		}
	}
	if len(failed) > 0 {
		return StepResult{Name: "commit", Status: StepFailed, Detail: fmt.Sprintf("%v", failed)}
	}
	return StepResult{Name: "commit", Status: StepOK, Detail: msg}
}

func stepPush(ctx context.Context, repos []repoview.RepoView, releaseBranch string, opts Options) StepResult {
	if opts.DryRun {
		return StepResult{Name: "push", Status: StepSkipped, Detail: "dry-run"}
	}
	var failed []string
	for _, r := range repos {
		f, err := gitfacade.OpenRepo(r.AbsolutePath)
		if err != nil {
			failed = append(failed, r.Name+": "+err.Error())
			continue
		}
		if err := f.Push(ctx, "origin", releaseBranch, true, false); err != nil {
			failed = append(failed, r.Name+": "+err.Error())
		}
	}
	if len(failed) > 0 {
		return StepResult{Name: "push", Status: StepFailed, Detail: fmt.Sprintf("%v", failed)}
	}
	return StepResult{Name: "push", Status: StepOK}
}

func stepPRCreate(ctx context.Context, repos []repoview.RepoView, adapterFor AdapterFor, releaseBranch, title string, opts Options) StepResult {
	if opts.DryRun {
		return StepResult{Name: "pr_create", Status: StepSkipped, Detail: "dry-run: would open PRs from " + releaseBranch}
	}
	facadeFor := func(r repoview.RepoView) (*gitfacade.Facade, error) { return gitfacade.OpenRepo(r.AbsolutePath) }
	outcomes := prcoord.Create(ctx, repos, facadeFor, adapterFor, prcoord.CreateOptions{Title: title, SetUpstream: true})
	var failed []string
	var urls []string
	for _, o := range outcomes {
		if o.Skipped {
			continue
		}
		if o.Err != nil {
			failed = append(failed, o.RepoName+": "+o.Err.Error())
		} else if o.PR != nil {
			urls = append(urls, o.PR.URL)
		}
	}
	if len(failed) > 0 {
		return StepResult{Name: "pr_create", Status: StepFailed, Detail: fmt.Sprintf("%v", failed)}
	}
	detail := ""
	if len(urls) > 0 {
		detail = urls[0]
	}
	return StepResult{Name: "pr_create", Status: StepOK, Detail: detail, Files: urls}
}

// stepPRMerge merges the PRs opened in stepPRCreate in a single pass of
// prcoord.Merge. It does not poll or wait: a PR whose review, checks or
// mergeability are not yet ready is reported as a failure of this step.
func stepPRMerge(ctx context.Context, repos []repoview.RepoView, adapterFor AdapterFor, opts Options) StepResult {
	if opts.DryRun {
		return StepResult{Name: "pr_merge", Status: StepSkipped, Detail: "dry-run"}
	}
	facadeFor := func(r repoview.RepoView) (*gitfacade.Facade, error) { return gitfacade.OpenRepo(r.AbsolutePath) }
	outcomes := prcoord.Merge(ctx, repos, facadeFor, adapterFor, prcoord.MergeOptions{
		Method:   platform.MergeSquash,
		Update:   true,
		Strategy: prcoord.MergeAllOrNothing,
	})
	var failed []string
	for _, o := range outcomes {
		if o.Kind == prcoord.MergeFailed {
			failed = append(failed, o.RepoName+": "+o.Reason)
		}
	}
	if len(failed) > 0 {
		return StepResult{Name: "pr_merge", Status: StepFailed, Detail: fmt.Sprintf("%v", failed)}
	}
	return StepResult{Name: "pr_merge", Status: StepOK}
}

func stepSync(ctx context.Context, repos []repoview.RepoView, opts Options) StepResult {
	if opts.DryRun {
		return StepResult{Name: "sync", Status: StepSkipped, Detail: "dry-run"}
	}
	var failed []string
	for _, r := range repos {
		f, err := gitfacade.OpenRepo(r.AbsolutePath)
		if err != nil {
			failed = append(failed, r.Name+": "+err.Error())
			continue
		}
		if _, err := f.SafePull(ctx, r.DefaultBranch, "origin", gitfacade.PullMerge); err != nil {
			failed = append(failed, r.Name+": "+err.Error())
		}
	}
	if len(failed) > 0 {
		return StepResult{Name: "sync", Status: StepFailed, Detail: fmt.Sprintf("%v", failed)}
	}
	return StepResult{Name: "sync", Status: StepOK}
}

func stepCreatePlatformRelease(ctx context.Context, repos []repoview.RepoView, adapterFor AdapterFor, tag string, opts Options) StepResult {
	target, err := findReleaseTarget(repos, opts.TargetRepo)
	if err != nil {
		return StepResult{Name: "create_platform_release", Status: StepFailed, Detail: err.Error()}
	}
	if opts.DryRun {
		return StepResult{Name: "create_platform_release", Status: StepSkipped, Detail: "dry-run: would tag " + tag + " on " + target.Name}
	}
	adapter, err := adapterFor(*target)
	if err != nil {
		return StepResult{Name: "create_platform_release", Status: StepFailed, Detail: err.Error()}
	}
	url, err := adapter.CreateRelease(ctx, target.Owner, target.Repo, tag, tag, opts.Notes, false)
	if err != nil {
		return StepResult{Name: "create_platform_release", Status: StepFailed, Detail: err.Error()}
	}
	return StepResult{Name: "create_platform_release", Status: StepOK, URL: url}
}

func findReleaseTarget(repos []repoview.RepoView, name string) (*repoview.RepoView, error) {
	if name != "" {
		for i := range repos {
			if repos[i].Name == name {
				return &repos[i], nil
			}
		}
		return nil, fmt.Errorf("repository %q not found in manifest", name)
	}
	for i := range repos {
		if !repos[i].Reference {
			return &repos[i], nil
		}
	}
	return nil, fmt.Errorf("no non-reference repos found for release target")
}

func stepPostReleaseHooks(ctx context.Context, m *manifest.Manifest, opts Options) StepResult {
	if len(m.Workspace.Hooks.PostCheckout) == 0 {
		return StepResult{Name: "post_release_hooks", Status: StepSkipped, Detail: "no post-checkout hooks configured"}
	}
	if opts.DryRun {
		return StepResult{Name: "post_release_hooks", Status: StepSkipped, Detail: "dry-run: hooks not executed"}
	}
	if err := hooks.ExecuteCommands(ctx, m.Workspace.Hooks.PostCheckout, opts.WorkspaceRoot, nil); err != nil {
		return StepResult{Name: "post_release_hooks", Status: StepFailed, Detail: err.Error()}
	}
	return StepResult{Name: "post_release_hooks", Status: StepOK}
}
