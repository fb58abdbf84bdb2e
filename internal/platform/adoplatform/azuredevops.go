// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package adoplatform implements platform.Adapter against Azure DevOps
// via microsoft/azure-devops-go-api, following the same client-
// construction and capability-surface shape used by the GitHub and
// GitLab adapters, extended to a third hosted platform.
package adoplatform

import (
	"context"
	"fmt"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	"github.com/archmagece/gitgrip/internal/platform"
)

// Adapter implements platform.Adapter for Azure DevOps.
type Adapter struct {
	conn    *azuredevops.Connection
	gitCli  git.Client
	orgURL  string
	token   string
}

// New constructs an Azure DevOps adapter for organisation orgURL
// (e.g. "https://dev.azure.com/myorg"). If token is empty, it falls
// back to platform.TokenFromEnv(platform.AzureDevOps).
func New(ctx context.Context, orgURL, token string) (*Adapter, error) {
	if token == "" {
		token = platform.TokenFromEnv(platform.AzureDevOps)
	}
	conn := azuredevops.NewPatConnection(orgURL, token)
	cli, err := git.NewClient(ctx, conn)
	if err != nil {
		return nil, &platform.Error{Kind: platform.ErrAuth, Message: "azuredevops: client init failed", Cause: err}
	}
	return &Adapter{conn: conn, gitCli: cli, orgURL: orgURL, token: token}, nil
}

func (a *Adapter) PlatformType() platform.Type { return platform.AzureDevOps }
func (a *Adapter) GetToken() string            { return a.token }

func wrapErr(kind platform.ErrorKind, msg string, err error) error {
	return &platform.Error{Kind: kind, Message: msg, Cause: err}
}

func classifyErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "authentication"):
		return wrapErr(platform.ErrAuth, msg, err)
	case strings.Contains(lower, "not found") || strings.Contains(lower, "tf401019"):
		return wrapErr(platform.ErrNotFound, msg, err)
	}
	return wrapErr(platform.ErrAPI, msg, err)
}

func ref(s string) *string { return &s }

func branchRef(branch string) string {
	if strings.HasPrefix(branch, "refs/heads/") {
		return branch
	}
	return "refs/heads/" + branch
}

func (a *Adapter) CreatePullRequest(ctx context.Context, owner, repo, head, base, title, body string, draft bool) (platform.PRRef, error) {
	source := branchRef(head)
	target := branchRef(base)
	pr, err := a.gitCli.CreatePullRequest(ctx, git.CreatePullRequestArgs{
		Project:      &owner,
		RepositoryId: &repo,
		GitPullRequestToCreate: &git.GitPullRequest{
			Title:         &title,
			Description:   &body,
			SourceRefName: &source,
			TargetRefName: &target,
			IsDraft:       &draft,
		},
	})
	if err != nil {
		return platform.PRRef{}, classifyErr("azuredevops: create pull request", err)
	}
	return platform.PRRef{Number: *pr.PullRequestId, URL: fmt.Sprintf("%s/_git/%s/pullrequest/%d", a.orgURL, repo, *pr.PullRequestId)}, nil
}

func (a *Adapter) GetPullRequest(ctx context.Context, owner, repo string, number int) (platform.PullRequest, error) {
	pr, err := a.gitCli.GetPullRequest(ctx, git.GetPullRequestArgs{
		Project:       &owner,
		RepositoryId:  &repo,
		PullRequestId: &number,
	})
	if err != nil {
		return platform.PullRequest{}, classifyErr("azuredevops: get pull request", err)
	}
	return convertPR(pr, a.orgURL, repo), nil
}

func convertPR(pr *git.GitPullRequest, orgURL, repo string) platform.PullRequest {
	state := platform.PROpen
	if pr.Status != nil {
		switch *pr.Status {
		case git.PullRequestStatusValues.Completed:
			state = platform.PRMerged
		case git.PullRequestStatusValues.Abandoned:
			state = platform.PRClosed
		}
	}
	var mergeable *bool
	if pr.MergeStatus != nil {
		ok := *pr.MergeStatus == git.PullRequestAsyncStatusValues.Succeeded
		mergeable = &ok
	}
	out := platform.PullRequest{
		State:   state,
		Merged:  state == platform.PRMerged,
		BaseRef: derefStr(pr.TargetRefName),
		HeadRef: derefStr(pr.SourceRefName),
	}
	if pr.PullRequestId != nil {
		out.Number = *pr.PullRequestId
		out.URL = fmt.Sprintf("%s/_git/%s/pullrequest/%d", orgURL, repo, *pr.PullRequestId)
	}
	if pr.Title != nil {
		out.Title = *pr.Title
	}
	if pr.Description != nil {
		out.Body = *pr.Description
	}
	if pr.LastMergeSourceCommit != nil && pr.LastMergeSourceCommit.CommitId != nil {
		out.HeadSHA = *pr.LastMergeSourceCommit.CommitId
	}
	out.Mergeable = mergeable
	return out
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (a *Adapter) UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error {
	_, err := a.gitCli.UpdatePullRequest(ctx, git.UpdatePullRequestArgs{
		Project:           &owner,
		RepositoryId:      &repo,
		PullRequestId:     &number,
		GitPullRequestToUpdate: &git.GitPullRequest{Description: &body},
	})
	return classifyErr("azuredevops: update pull request body", err)
}

func (a *Adapter) MergePullRequest(ctx context.Context, owner, repo string, number int, method platform.MergeMethod, deleteBranch bool) (bool, error) {
	strategy := git.GitPullRequestMergeStrategyValues.NoFastForward
	switch method {
	case platform.MergeSquash:
		strategy = git.GitPullRequestMergeStrategyValues.Squash
	case platform.MergeRebase:
		strategy = git.GitPullRequestMergeStrategyValues.Rebase
	}
	completed := git.PullRequestStatusValues.Completed
	pr, err := a.gitCli.UpdatePullRequest(ctx, git.UpdatePullRequestArgs{
		Project:       &owner,
		RepositoryId:  &repo,
		PullRequestId: &number,
		GitPullRequestToUpdate: &git.GitPullRequest{
			Status: &completed,
			CompletionOptions: &git.GitPullRequestCompletionOptions{
				MergeStrategy:      &strategy,
				DeleteSourceBranch: &deleteBranch,
			},
		},
	})
	if err != nil {
		lower := strings.ToLower(err.Error())
		if strings.Contains(lower, "out of date") || strings.Contains(lower, "behind") {
			return false, wrapErr(platform.ErrBranchBehind, "azuredevops: pull request source is behind target", err)
		}
		if strings.Contains(lower, "protected") || strings.Contains(lower, "policy") {
			return false, wrapErr(platform.ErrBranchProtected, "azuredevops: branch policy rejected the merge", err)
		}
		return false, classifyErr("azuredevops: merge pull request", err)
	}
	return pr.Status != nil && *pr.Status == git.PullRequestStatusValues.Completed, nil
}

// UpdateBranch has no Azure DevOps equivalent; branch policies handle
// staleness automatically on merge.
func (a *Adapter) UpdateBranch(ctx context.Context, owner, repo string, number int) (bool, error) {
	return false, nil
}

// EnableAutoMerge sets the pull request's auto-complete flag.
func (a *Adapter) EnableAutoMerge(ctx context.Context, owner, repo string, number int, method platform.MergeMethod) (bool, error) {
	strategy := git.GitPullRequestMergeStrategyValues.NoFastForward
	switch method {
	case platform.MergeSquash:
		strategy = git.GitPullRequestMergeStrategyValues.Squash
	case platform.MergeRebase:
		strategy = git.GitPullRequestMergeStrategyValues.Rebase
	}
	_, err := a.gitCli.UpdatePullRequest(ctx, git.UpdatePullRequestArgs{
		Project:       &owner,
		RepositoryId:  &repo,
		PullRequestId: &number,
		GitPullRequestToUpdate: &git.GitPullRequest{
			CompletionOptions: &git.GitPullRequestCompletionOptions{MergeStrategy: &strategy},
		},
	})
	if err != nil {
		return false, classifyErr("azuredevops: enable auto-complete", err)
	}
	return true, nil
}

func (a *Adapter) FindPullRequestByBranch(ctx context.Context, owner, repo, branch string) (*platform.PRRef, error) {
	status := git.PullRequestStatusValues.Active
	src := branchRef(branch)
	prs, err := a.gitCli.GetPullRequests(ctx, git.GetPullRequestsArgs{
		Project:      &owner,
		RepositoryId: &repo,
		SearchCriteria: &git.GitPullRequestSearchCriteria{
			Status:        &status,
			SourceRefName: &src,
		},
	})
	if err != nil {
		return nil, classifyErr("azuredevops: find pull request by branch", err)
	}
	if prs == nil || len(*prs) == 0 {
		return nil, nil
	}
	first := (*prs)[0]
	return &platform.PRRef{Number: *first.PullRequestId, URL: fmt.Sprintf("%s/_git/%s/pullrequest/%d", a.orgURL, repo, *first.PullRequestId)}, nil
}

func (a *Adapter) IsPullRequestApproved(ctx context.Context, owner, repo string, number int) (bool, error) {
	reviews, err := a.GetPullRequestReviews(ctx, owner, repo, number)
	if err != nil {
		return false, err
	}
	for _, r := range reviews {
		if r.State == "approved" {
			return true, nil
		}
	}
	return false, nil
}

func (a *Adapter) GetPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]platform.Review, error) {
	reviewers, err := a.gitCli.GetPullRequestReviewers(ctx, git.GetPullRequestReviewersArgs{
		Project:       &owner,
		RepositoryId:  &repo,
		PullRequestId: &number,
	})
	if err != nil {
		return nil, classifyErr("azuredevops: get pull request reviewers", err)
	}
	out := make([]platform.Review, 0)
	if reviewers == nil {
		return out, nil
	}
	for _, r := range *reviewers {
		state := "pending"
		if r.Vote != nil {
			switch {
			case *r.Vote >= 5:
				state = "approved"
			case *r.Vote < 0:
				state = "changes_requested"
			}
		}
		name := ""
		if r.DisplayName != nil {
			name = *r.DisplayName
		}
		out = append(out, platform.Review{Author: name, State: state})
	}
	return out, nil
}

// GetStatusChecks lists every status posted on commit ref. The aggregate
// state is failure if any status failed, else pending if any is pending,
// else success; it is unknown when no status exists.
func (a *Adapter) GetStatusChecks(ctx context.Context, owner, repo, ref string) (platform.StatusChecks, error) {
	statuses, err := a.gitCli.GetStatuses(ctx, git.GetStatusesArgs{
		Project:      &owner,
		RepositoryId: &repo,
		CommitId:     &ref,
	})
	if err != nil {
		return platform.StatusChecks{}, classifyErr("azuredevops: get statuses", err)
	}
	if statuses == nil || len(*statuses) == 0 {
		return platform.StatusChecks{State: platform.CheckUnknown}, nil
	}

	out := platform.StatusChecks{State: platform.CheckSuccess}
	for _, s := range *statuses {
		state := platform.CheckUnknown
		if s.State != nil {
			switch *s.State {
			case git.GitStatusStateValues.Succeeded:
				state = platform.CheckSuccess
			case git.GitStatusStateValues.Failed, git.GitStatusStateValues.Error:
				state = platform.CheckFailure
			case git.GitStatusStateValues.Pending:
				state = platform.CheckPending
			}
		}
		name := ""
		if s.Context != nil && s.Context.Name != nil {
			name = *s.Context.Name
		}
		out.Statuses = append(out.Statuses, platform.StatusCheck{Name: name, State: state})
		if state == platform.CheckFailure {
			out.State = platform.CheckFailure
		} else if state == platform.CheckPending && out.State == platform.CheckSuccess {
			out.State = platform.CheckPending
		}
	}
	return out, nil
}

// GetAllowedMergeMethods has no direct Azure DevOps project-level
// query; all three strategies are offered unless branch policy
// restricts them, so this reports all enabled.
func (a *Adapter) GetAllowedMergeMethods(ctx context.Context, owner, repo string) (platform.AllowedMergeMethods, error) {
	return platform.AllowedMergeMethods{Merge: true, Squash: true, Rebase: true}, nil
}

func (a *Adapter) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	pr, err := a.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return "", err
	}
	diffs, derr := a.gitCli.GetCommitDiffs(ctx, git.GetCommitDiffsArgs{
		Project:      &owner,
		RepositoryId: &repo,
		BaseVersionDescriptor: &git.GitBaseVersionDescriptor{Version: ref(strings.TrimPrefix(pr.BaseRef, "refs/heads/"))},
		TargetVersionDescriptor: &git.GitTargetVersionDescriptor{Version: ref(strings.TrimPrefix(pr.HeadRef, "refs/heads/"))},
	})
	if derr != nil {
		return "", classifyErr("azuredevops: get commit diffs", derr)
	}
	var b strings.Builder
	if diffs.Changes != nil {
		for _, c := range *diffs.Changes {
			b.WriteString(fmt.Sprintf("%v\n", c))
		}
	}
	return b.String(), nil
}

func (a *Adapter) ParseRepoURL(url string) (platform.ParsedURL, bool) {
	url = strings.TrimSuffix(url, ".git")
	if idx := strings.Index(url, "dev.azure.com/"); idx >= 0 {
		rest := url[idx+len("dev.azure.com/"):]
		parts := strings.Split(rest, "/_git/")
		if len(parts) == 2 {
			orgProject := strings.SplitN(parts[0], "/", 2)
			if len(orgProject) == 2 {
				return platform.ParsedURL{Owner: orgProject[0], Project: orgProject[1], Repo: parts[1], Platform: platform.AzureDevOps}, true
			}
		}
	}
	if idx := strings.Index(url, ".visualstudio.com/"); idx >= 0 {
		org := url[:idx]
		if s := strings.LastIndex(org, "/"); s >= 0 {
			org = org[s+1:]
		}
		rest := url[idx+len(".visualstudio.com/"):]
		parts := strings.Split(rest, "/_git/")
		if len(parts) == 2 {
			return platform.ParsedURL{Owner: org, Project: parts[0], Repo: parts[1], Platform: platform.AzureDevOps}, true
		}
	}
	if m := strings.HasPrefix(url, "git@ssh.dev.azure.com:v3/"); m {
		rest := strings.TrimPrefix(url, "git@ssh.dev.azure.com:v3/")
		segs := strings.SplitN(rest, "/", 3)
		if len(segs) == 3 {
			return platform.ParsedURL{Owner: segs[0], Project: segs[1], Repo: segs[2], Platform: platform.AzureDevOps}, true
		}
	}
	return platform.ParsedURL{}, false
}

func (a *Adapter) MatchesURL(url string) bool {
	return strings.Contains(url, "dev.azure.com") || strings.Contains(url, "visualstudio.com")
}

func (a *Adapter) CreateRepository(ctx context.Context, owner, name string, private bool) error {
	_, err := a.gitCli.CreateRepository(ctx, git.CreateRepositoryArgs{
		Project: &owner,
		GitRepositoryToCreate: &git.GitRepositoryCreateOptions{Name: &name},
	})
	return classifyErr("azuredevops: create repository", err)
}

func (a *Adapter) DeleteRepository(ctx context.Context, owner, name string) error {
	repo, err := a.gitCli.GetRepository(ctx, git.GetRepositoryArgs{Project: &owner, RepositoryId: &name})
	if err != nil {
		return classifyErr("azuredevops: resolve repository id", err)
	}
	err = a.gitCli.DeleteRepository(ctx, git.DeleteRepositoryArgs{RepositoryId: repo.Id})
	return classifyErr("azuredevops: delete repository", err)
}

// CreateRelease has no Azure DevOps equivalent backed by the git
// client: Azure's release concept lives in a separate release
// management service tied to a pre-existing release definition, not a
// tag on a git repository. Callers get an ErrAPI and fall back to the
// tag alone being the release artifact.
func (a *Adapter) CreateRelease(ctx context.Context, owner, repo, tag, name, notes string, draft bool) (string, error) {
	return "", wrapErr(platform.ErrAPI, "azuredevops: platform releases require a release definition, not supported here", nil)
}

var _ platform.Adapter = (*Adapter)(nil)
