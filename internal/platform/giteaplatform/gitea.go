// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package giteaplatform implements platform.Adapter against a Gitea
// instance via code.gitea.io/sdk/gitea. Gitea is wired in as a fourth,
// URL-discoverable adapter alongside GitHub, GitLab, and Azure DevOps.
package giteaplatform

import (
	"context"
	"net/http"
	"strings"

	"code.gitea.io/sdk/gitea"

	"github.com/archmagece/gitgrip/internal/platform"
	"github.com/archmagece/gitgrip/pkg/ratelimit"
)

// Adapter implements platform.Adapter for a Gitea server.
type Adapter struct {
	client  *gitea.Client
	baseURL string
	token   string
	limiter *ratelimit.Limiter
}

// New constructs a Gitea adapter pointed at baseURL (e.g.
// "https://gitea.example.com"). If token is empty, no
// platform-specific env var is defined for Gitea; callers pass one
// explicitly or leave requests unauthenticated. Self-hosted instances
// rarely publish a rate limit header, so the limiter falls back to a
// conservative default and only tightens if the server reports one.
func New(baseURL, token string) (*Adapter, error) {
	limiter := ratelimit.NewLimiter(1000)
	hc := &http.Client{Transport: platform.NewRateLimitedTransport(nil, limiter)}
	client, err := gitea.NewClient(baseURL, gitea.SetToken(token), gitea.SetHTTPClient(hc))
	if err != nil {
		return nil, &platform.Error{Kind: platform.ErrAuth, Message: "gitea: client init failed", Cause: err}
	}
	return &Adapter{client: client, baseURL: baseURL, token: token, limiter: limiter}, nil
}

func (a *Adapter) PlatformType() platform.Type { return platform.Gitea }
func (a *Adapter) GetToken() string            { return a.token }

func classifyErr(msg string, resp *gitea.Response, err error) error {
	if err == nil {
		return nil
	}
	if resp != nil {
		switch resp.StatusCode {
		case 401, 403:
			return &platform.Error{Kind: platform.ErrAuth, Message: msg, Cause: err}
		case 404:
			return &platform.Error{Kind: platform.ErrNotFound, Message: msg, Cause: err}
		}
	}
	return &platform.Error{Kind: platform.ErrAPI, Message: msg, Cause: err}
}

func (a *Adapter) CreatePullRequest(ctx context.Context, owner, repo, head, base, title, body string, draft bool) (platform.PRRef, error) {
	pr, resp, err := a.client.CreatePullRequest(owner, repo, gitea.CreatePullRequestOption{
		Head:  head,
		Base:  base,
		Title: title,
		Body:  body,
	})
	if err != nil {
		return platform.PRRef{}, classifyErr("gitea: create pull request", resp, err)
	}
	return platform.PRRef{Number: int(pr.Index), URL: pr.HTMLURL}, nil
}

func (a *Adapter) GetPullRequest(ctx context.Context, owner, repo string, number int) (platform.PullRequest, error) {
	pr, resp, err := a.client.GetPullRequest(owner, repo, int64(number))
	if err != nil {
		return platform.PullRequest{}, classifyErr("gitea: get pull request", resp, err)
	}
	return convertPR(pr), nil
}

func convertPR(pr *gitea.PullRequest) platform.PullRequest {
	state := platform.PROpen
	if pr.HasMerged {
		state = platform.PRMerged
	} else if pr.State == gitea.StateClosed {
		state = platform.PRClosed
	}
	var mergeable *bool
	if pr.Mergeable {
		ok := true
		mergeable = &ok
	}
	out := platform.PullRequest{
		Number:    int(pr.Index),
		URL:       pr.HTMLURL,
		Title:     pr.Title,
		Body:      pr.Body,
		State:     state,
		Merged:    pr.HasMerged,
		Mergeable: mergeable,
	}
	if pr.Head != nil {
		out.HeadRef = pr.Head.Ref
		out.HeadSHA = pr.Head.Sha
	}
	if pr.Base != nil {
		out.BaseRef = pr.Base.Ref
	}
	return out
}

func (a *Adapter) UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error {
	_, resp, err := a.client.EditPullRequest(owner, repo, int64(number), gitea.EditPullRequestOption{Body: &body})
	return classifyErr("gitea: update pull request body", resp, err)
}

func (a *Adapter) MergePullRequest(ctx context.Context, owner, repo string, number int, method platform.MergeMethod, deleteBranch bool) (bool, error) {
	style := gitea.MergeStyleMerge
	switch method {
	case platform.MergeSquash:
		style = gitea.MergeStyleSquash
	case platform.MergeRebase:
		style = gitea.MergeStyleRebase
	}
	ok, resp, err := a.client.MergePullRequest(owner, repo, int64(number), gitea.MergePullRequestOption{
		Style:                  style,
		DeleteBranchAfterMerge: deleteBranch,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == 405 {
			return false, &platform.Error{Kind: platform.ErrBranchBehind, Message: "gitea: pull request not mergeable", Cause: err}
		}
		return false, classifyErr("gitea: merge pull request", resp, err)
	}
	return ok, nil
}

// UpdateBranch has no Gitea equivalent.
func (a *Adapter) UpdateBranch(ctx context.Context, owner, repo string, number int) (bool, error) {
	return false, nil
}

// EnableAutoMerge has no stable Gitea API equivalent across versions;
// callers should poll and merge manually instead.
func (a *Adapter) EnableAutoMerge(ctx context.Context, owner, repo string, number int, method platform.MergeMethod) (bool, error) {
	return false, nil
}

func (a *Adapter) FindPullRequestByBranch(ctx context.Context, owner, repo, branch string) (*platform.PRRef, error) {
	prs, resp, err := a.client.ListRepoPullRequests(owner, repo, gitea.ListPullRequestsOptions{
		State: gitea.StateOpen,
	})
	if err != nil {
		return nil, classifyErr("gitea: find pull request by branch", resp, err)
	}
	for _, pr := range prs {
		if pr.Head != nil && pr.Head.Ref == branch {
			return &platform.PRRef{Number: int(pr.Index), URL: pr.HTMLURL}, nil
		}
	}
	return nil, nil
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
	reviews, resp, err := a.client.ListPullReviews(owner, repo, int64(number), gitea.ListPullReviewsOptions{})
	if err != nil {
		return nil, classifyErr("gitea: get pull request reviews", resp, err)
	}
	out := make([]platform.Review, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, platform.Review{Author: r.Reviewer.UserName, State: strings.ToLower(string(r.State))})
	}
	return out, nil
}

func (a *Adapter) GetStatusChecks(ctx context.Context, owner, repo, ref string) (platform.StatusChecks, error) {
	statuses, resp, err := a.client.ListStatuses(owner, repo, ref, gitea.ListStatusesOption{})
	if err != nil {
		return platform.StatusChecks{}, classifyErr("gitea: get status checks", resp, err)
	}
	if len(statuses) == 0 {
		return platform.StatusChecks{State: platform.CheckUnknown}, nil
	}
	out := platform.StatusChecks{State: platform.CheckSuccess}
	for _, s := range statuses {
		state := platform.CheckUnknown
		switch s.State {
		case gitea.StatusSuccess:
			state = platform.CheckSuccess
		case gitea.StatusFailure, gitea.StatusError:
			state = platform.CheckFailure
		case gitea.StatusPending:
			state = platform.CheckPending
		}
		out.Statuses = append(out.Statuses, platform.StatusCheck{Name: s.Context, State: state})
		if state == platform.CheckFailure {
			out.State = platform.CheckFailure
		} else if state == platform.CheckPending && out.State == platform.CheckSuccess {
			out.State = platform.CheckPending
		}
	}
	return out, nil
}

// GetAllowedMergeMethods reports the repository's per-strategy enable
// flags, which Gitea exposes the same way GitHub does.
func (a *Adapter) GetAllowedMergeMethods(ctx context.Context, owner, repo string) (platform.AllowedMergeMethods, error) {
	r, resp, err := a.client.GetRepo(owner, repo)
	if err != nil {
		return platform.AllowedMergeMethods{}, classifyErr("gitea: get repository", resp, err)
	}
	return platform.AllowedMergeMethods{
		Merge:  r.AllowMerge,
		Squash: r.AllowSquash,
		Rebase: r.AllowRebase,
	}, nil
}

func (a *Adapter) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	data, resp, err := a.client.GetPullRequestDiff(owner, repo, int64(number), gitea.PullRequestDiffOptions{})
	if err != nil {
		return "", classifyErr("gitea: get pull request diff", resp, err)
	}
	return string(data), nil
}

func (a *Adapter) ParseRepoURL(url string) (platform.ParsedURL, bool) {
	host := strings.TrimPrefix(strings.TrimPrefix(a.baseURL, "https://"), "http://")
	url = strings.TrimSuffix(url, ".git")
	idx := strings.Index(url, host)
	if idx < 0 {
		return platform.ParsedURL{}, false
	}
	rest := strings.TrimPrefix(url[idx+len(host):], "/")
	segs := strings.Split(rest, "/")
	if len(segs) < 2 {
		return platform.ParsedURL{}, false
	}
	return platform.ParsedURL{Owner: segs[0], Repo: segs[1], Platform: platform.Gitea}, true
}

func (a *Adapter) MatchesURL(url string) bool {
	host := strings.TrimPrefix(strings.TrimPrefix(a.baseURL, "https://"), "http://")
	return host != "" && strings.Contains(url, host)
}

func (a *Adapter) CreateRepository(ctx context.Context, owner, name string, private bool) error {
	_, resp, err := a.client.CreateOrgRepo(owner, gitea.CreateRepoOption{Name: name, Private: private})
	return classifyErr("gitea: create repository", resp, err)
}

func (a *Adapter) DeleteRepository(ctx context.Context, owner, name string) error {
	resp, err := a.client.DeleteRepo(owner, name)
	return classifyErr("gitea: delete repository", resp, err)
}

func (a *Adapter) CreateRelease(ctx context.Context, owner, repo, tag, name, notes string, draft bool) (string, error) {
	rel, resp, err := a.client.CreateRelease(owner, repo, gitea.CreateReleaseOption{
		TagName: tag,
		Title:   name,
		Note:    notes,
		IsDraft: draft,
	})
	if err != nil {
		return "", classifyErr("gitea: create release", resp, err)
	}
	return rel.HTMLURL, nil
}

var _ platform.Adapter = (*Adapter)(nil)
