// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package glplatform implements platform.Adapter against the GitLab
// API via xanzy/go-gitlab.
package glplatform

import (
	"context"
	"net/http"
	"strings"

	gitlab "github.com/xanzy/go-gitlab"

	"github.com/archmagece/gitgrip/internal/platform"
	"github.com/archmagece/gitgrip/pkg/ratelimit"
)

// Adapter implements platform.Adapter for GitLab.
type Adapter struct {
	client  *gitlab.Client
	token   string
	limiter *ratelimit.Limiter
}

// New constructs a GitLab adapter. If token is empty, it falls back to
// platform.TokenFromEnv(platform.GitLab). Requests are throttled
// against GitLab's published rate limit, refreshed from each
// response's RateLimit-* headers.
func New(token, baseURL string) (*Adapter, error) {
	if token == "" {
		token = platform.TokenFromEnv(platform.GitLab)
	}
	limiter := ratelimit.NewLimiter(2000)
	hc := &http.Client{Transport: platform.NewRateLimitedTransport(nil, limiter)}
	opts := []gitlab.ClientOptionFunc{gitlab.WithHTTPClient(hc)}
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, &platform.Error{Kind: platform.ErrAuth, Message: "gitlab: client init failed", Cause: err}
	}
	return &Adapter{client: client, token: token, limiter: limiter}, nil
}

func (a *Adapter) PlatformType() platform.Type { return platform.GitLab }
func (a *Adapter) GetToken() string            { return a.token }

func pid(owner, repo string) string { return owner + "/" + repo }

func classifyErr(resp *gitlab.Response, err error) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &platform.Error{Kind: platform.ErrAuth, Message: "gitlab: authentication failed", Cause: err}
		case http.StatusNotFound:
			return &platform.Error{Kind: platform.ErrNotFound, Message: "gitlab: not found", Cause: err}
		}
	}
	return &platform.Error{Kind: platform.ErrAPI, Message: "gitlab: api error", Cause: err}
}

func (a *Adapter) CreatePullRequest(ctx context.Context, owner, repo, head, base, title, body string, draft bool) (platform.PRRef, error) {
	if draft {
		title = "Draft: " + title
	}
	mr, resp, err := a.client.MergeRequests.CreateMergeRequest(pid(owner, repo), &gitlab.CreateMergeRequestOptions{
		Title:        &title,
		Description:  &body,
		SourceBranch: &head,
		TargetBranch: &base,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return platform.PRRef{}, classifyErr(resp, err)
	}
	return platform.PRRef{Number: mr.IID, URL: mr.WebURL}, nil
}

func (a *Adapter) GetPullRequest(ctx context.Context, owner, repo string, number int) (platform.PullRequest, error) {
	mr, resp, err := a.client.MergeRequests.GetMergeRequest(pid(owner, repo), number, nil, gitlab.WithContext(ctx))
	if err != nil {
		return platform.PullRequest{}, classifyErr(resp, err)
	}
	return convertMR(mr), nil
}

func convertMR(mr *gitlab.MergeRequest) platform.PullRequest {
	state := platform.PROpen
	switch mr.State {
	case "merged":
		state = platform.PRMerged
	case "closed":
		state = platform.PRClosed
	}
	var mergeable *bool
	if mr.DetailedMergeStatus != "" {
		ok := mr.DetailedMergeStatus == "mergeable"
		mergeable = &ok
	}
	return platform.PullRequest{
		Number:    mr.IID,
		URL:       mr.WebURL,
		Title:     mr.Title,
		Body:      mr.Description,
		State:     state,
		Merged:    mr.State == "merged",
		Mergeable: mergeable,
		HeadRef:   mr.SourceBranch,
		HeadSHA:   mr.SHA,
		BaseRef:   mr.TargetBranch,
	}
}

func (a *Adapter) UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error {
	_, resp, err := a.client.MergeRequests.UpdateMergeRequest(pid(owner, repo), number, &gitlab.UpdateMergeRequestOptions{
		Description: &body,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return classifyErr(resp, err)
	}
	return nil
}

func (a *Adapter) MergePullRequest(ctx context.Context, owner, repo string, number int, method platform.MergeMethod, deleteBranch bool) (bool, error) {
	squash := method == platform.MergeSquash
	mr, resp, err := a.client.MergeRequests.AcceptMergeRequest(pid(owner, repo), number, &gitlab.AcceptMergeRequestOptions{
		Squash:                   &squash,
		ShouldRemoveSourceBranch: &deleteBranch,
	}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusMethodNotAllowed {
			return false, &platform.Error{Kind: platform.ErrBranchBehind, Message: "gitlab: merge request not mergeable (branch behind target)", Cause: err}
		}
		if resp != nil && resp.StatusCode == http.StatusForbidden {
			return false, &platform.Error{Kind: platform.ErrBranchProtected, Message: "gitlab: protected branch rejected the merge", Cause: err}
		}
		return false, classifyErr(resp, err)
	}
	return mr.State == "merged", nil
}

// UpdateBranch rebases the MR's source branch onto the target, GitLab's
// closest equivalent to GitHub's "update branch".
func (a *Adapter) UpdateBranch(ctx context.Context, owner, repo string, number int) (bool, error) {
	_, err := a.client.MergeRequests.RebaseMergeRequest(pid(owner, repo), number, nil, gitlab.WithContext(ctx))
	return err == nil, nil
}

func (a *Adapter) EnableAutoMerge(ctx context.Context, owner, repo string, number int, method platform.MergeMethod) (bool, error) {
	auto := true
	squash := method == platform.MergeSquash
	_, resp, err := a.client.MergeRequests.AcceptMergeRequest(pid(owner, repo), number, &gitlab.AcceptMergeRequestOptions{
		MergeWhenPipelineSucceeds: &auto,
		Squash:                    &squash,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return false, classifyErr(resp, err)
	}
	return true, nil
}

func (a *Adapter) FindPullRequestByBranch(ctx context.Context, owner, repo, branch string) (*platform.PRRef, error) {
	state := "opened"
	mrs, resp, err := a.client.MergeRequests.ListProjectMergeRequests(pid(owner, repo), &gitlab.ListProjectMergeRequestsOptions{
		SourceBranch: &branch,
		State:        &state,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, classifyErr(resp, err)
	}
	if len(mrs) == 0 {
		return nil, nil
	}
	return &platform.PRRef{Number: mrs[0].IID, URL: mrs[0].WebURL}, nil
}

func (a *Adapter) IsPullRequestApproved(ctx context.Context, owner, repo string, number int) (bool, error) {
	approvals, resp, err := a.client.MergeRequestApprovals.GetApprovalState(pid(owner, repo), number, gitlab.WithContext(ctx))
	if err != nil {
		return false, classifyErr(resp, err)
	}
	return len(approvals.ApprovedBy) > 0, nil
}

func (a *Adapter) GetPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]platform.Review, error) {
	approvals, resp, err := a.client.MergeRequestApprovals.GetApprovalState(pid(owner, repo), number, gitlab.WithContext(ctx))
	if err != nil {
		return nil, classifyErr(resp, err)
	}
	out := make([]platform.Review, 0, len(approvals.ApprovedBy))
	for _, ab := range approvals.ApprovedBy {
		out = append(out, platform.Review{Author: ab.User.Username, State: "approved"})
	}
	return out, nil
}

func (a *Adapter) GetStatusChecks(ctx context.Context, owner, repo, ref string) (platform.StatusChecks, error) {
	pipelines, resp, err := a.client.Pipelines.ListProjectPipelines(pid(owner, repo), &gitlab.ListProjectPipelinesOptions{
		SHA: &ref,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return platform.StatusChecks{}, classifyErr(resp, err)
	}
	if len(pipelines) == 0 {
		return platform.StatusChecks{State: platform.CheckUnknown}, nil
	}
	latest := pipelines[0]
	state := platform.CheckUnknown
	switch latest.Status {
	case "success":
		state = platform.CheckSuccess
	case "failed", "canceled":
		state = platform.CheckFailure
	case "running", "pending", "created":
		state = platform.CheckPending
	}
	return platform.StatusChecks{
		State:    state,
		Statuses: []platform.StatusCheck{{Name: "pipeline", State: state}},
	}, nil
}

func (a *Adapter) GetAllowedMergeMethods(ctx context.Context, owner, repo string) (platform.AllowedMergeMethods, error) {
	proj, resp, err := a.client.Projects.GetProject(pid(owner, repo), nil, gitlab.WithContext(ctx))
	if err != nil {
		return platform.AllowedMergeMethods{}, classifyErr(resp, err)
	}
	switch proj.MergeMethod {
	case "ff":
		return platform.AllowedMergeMethods{Rebase: true}, nil
	case "rebase_merge":
		return platform.AllowedMergeMethods{Merge: true, Rebase: true}, nil
	default:
		return platform.AllowedMergeMethods{Merge: true, Squash: proj.SquashOption != "never"}, nil
	}
}

func (a *Adapter) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	changes, resp, err := a.client.MergeRequests.GetMergeRequestChanges(pid(owner, repo), number, nil, gitlab.WithContext(ctx))
	if err != nil {
		return "", classifyErr(resp, err)
	}
	var b strings.Builder
	for _, c := range changes.Changes {
		b.WriteString(c.Diff)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func (a *Adapter) ParseRepoURL(url string) (platform.ParsedURL, bool) {
	url = strings.TrimSuffix(url, ".git")
	idx := strings.Index(url, "gitlab.")
	if idx < 0 {
		return platform.ParsedURL{}, false
	}
	rest := url[idx:]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return platform.ParsedURL{}, false
	}
	rest = strings.TrimPrefix(rest[slash:], "/")
	segs := strings.Split(rest, "/")
	if len(segs) < 2 {
		return platform.ParsedURL{}, false
	}
	owner := strings.Join(segs[:len(segs)-1], "/")
	repo := segs[len(segs)-1]
	return platform.ParsedURL{Owner: owner, Repo: repo, Platform: platform.GitLab}, true
}

func (a *Adapter) MatchesURL(url string) bool {
	return strings.Contains(url, "gitlab.")
}

func (a *Adapter) CreateRepository(ctx context.Context, owner, name string, private bool) error {
	visibility := gitlab.PublicVisibility
	if private {
		visibility = gitlab.PrivateVisibility
	}
	_, resp, err := a.client.Projects.CreateProject(&gitlab.CreateProjectOptions{
		Name:       &name,
		Visibility: &visibility,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return classifyErr(resp, err)
	}
	return nil
}

func (a *Adapter) DeleteRepository(ctx context.Context, owner, name string) error {
	resp, err := a.client.Projects.DeleteProject(pid(owner, name), nil, gitlab.WithContext(ctx))
	if err != nil {
		return classifyErr(resp, err)
	}
	return nil
}

func (a *Adapter) CreateRelease(ctx context.Context, owner, repo, tag, name, notes string, draft bool) (string, error) {
	rel, resp, err := a.client.Releases.CreateRelease(pid(owner, repo), &gitlab.CreateReleaseOptions{
		Name:        &name,
		TagName:     &tag,
		Description: &notes,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return "", classifyErr(resp, err)
	}
	return rel.Links.Self, nil
}

var _ platform.Adapter = (*Adapter)(nil)
