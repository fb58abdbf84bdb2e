// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package ghplatform implements platform.Adapter against the GitHub
// REST API via google/go-github.
package ghplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/archmagece/gitgrip/internal/platform"
	"github.com/archmagece/gitgrip/pkg/ratelimit"
)

// Adapter implements platform.Adapter for GitHub.
type Adapter struct {
	client  *github.Client
	token   string
	limiter *ratelimit.Limiter
}

// New constructs a GitHub adapter. If token is empty, it falls back to
// platform.TokenFromEnv(platform.GitHub). Requests are throttled
// against GitHub's published rate limit, refreshed from each
// response's X-RateLimit-* headers.
func New(token string) *Adapter {
	if token == "" {
		token = platform.TokenFromEnv(platform.GitHub)
	}
	limiter := ratelimit.NewLimiter(5000)
	var base http.RoundTripper
	if token != "" {
		base = &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	hc := &http.Client{Transport: platform.NewRateLimitedTransport(base, limiter)}
	return &Adapter{client: github.NewClient(hc), token: token, limiter: limiter}
}

func (a *Adapter) PlatformType() platform.Type { return platform.GitHub }
func (a *Adapter) GetToken() string            { return a.token }

func wrapErr(kind platform.ErrorKind, msg string, err error) error {
	return &platform.Error{Kind: kind, Message: msg, Cause: err}
}

func classifyErr(resp *github.Response, err error) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return wrapErr(platform.ErrAuth, "github: authentication failed", err)
		case http.StatusNotFound:
			return wrapErr(platform.ErrNotFound, "github: not found", err)
		}
	}
	return wrapErr(platform.ErrAPI, "github: api error", err)
}

func (a *Adapter) CreatePullRequest(ctx context.Context, owner, repo, head, base, title, body string, draft bool) (platform.PRRef, error) {
	pr, resp, err := a.client.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: &title,
		Head:  &head,
		Base:  &base,
		Body:  &body,
		Draft: &draft,
	})
	if err != nil {
		return platform.PRRef{}, classifyErr(resp, err)
	}
	return platform.PRRef{Number: pr.GetNumber(), URL: pr.GetHTMLURL()}, nil
}

func (a *Adapter) GetPullRequest(ctx context.Context, owner, repo string, number int) (platform.PullRequest, error) {
	pr, resp, err := a.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return platform.PullRequest{}, classifyErr(resp, err)
	}
	return convertPR(pr), nil
}

func convertPR(pr *github.PullRequest) platform.PullRequest {
	state := platform.PROpen
	if pr.GetMerged() {
		state = platform.PRMerged
	} else if pr.GetState() == "closed" {
		state = platform.PRClosed
	}
	var mergeable *bool
	if pr.Mergeable != nil {
		m := *pr.Mergeable
		mergeable = &m
	}
	return platform.PullRequest{
		Number:    pr.GetNumber(),
		URL:       pr.GetHTMLURL(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		State:     state,
		Merged:    pr.GetMerged(),
		Mergeable: mergeable,
		HeadRef:   pr.GetHead().GetRef(),
		HeadSHA:   pr.GetHead().GetSHA(),
		BaseRef:   pr.GetBase().GetRef(),
	}
}

func (a *Adapter) UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error {
	_, resp, err := a.client.PullRequests.Edit(ctx, owner, repo, number, &github.PullRequest{Body: &body})
	if err != nil {
		return classifyErr(resp, err)
	}
	return nil
}

func (a *Adapter) MergePullRequest(ctx context.Context, owner, repo string, number int, method platform.MergeMethod, deleteBranch bool) (bool, error) {
	result, resp, err := a.client.PullRequests.Merge(ctx, owner, repo, number, "", &github.PullRequestOptions{
		MergeMethod: string(method),
	})
	if err != nil {
		msg := strings.ToLower(err.Error())
		if resp != nil && resp.StatusCode == http.StatusMethodNotAllowed && strings.Contains(msg, "head branch was behind") {
			return false, wrapErr(platform.ErrBranchBehind, "github: pull request is not mergeable (branch behind base)", err)
		}
		if resp != nil && resp.StatusCode == http.StatusForbidden &&
			(strings.Contains(msg, "protected branch") || strings.Contains(msg, "required")) {
			return false, wrapErr(platform.ErrBranchProtected, "github: branch protection rejected the merge", err)
		}
		return false, classifyErr(resp, err)
	}
	if deleteBranch {
		pr, _, gerr := a.client.PullRequests.Get(ctx, owner, repo, number)
		if gerr == nil {
			_, _ = a.client.Git.DeleteRef(ctx, owner, repo, "heads/"+pr.GetHead().GetRef())
		}
	}
	return result.GetMerged(), nil
}

func (a *Adapter) UpdateBranch(ctx context.Context, owner, repo string, number int) (bool, error) {
	_, resp, err := a.client.PullRequests.UpdateBranch(ctx, owner, repo, number, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusAccepted {
			return true, nil
		}
		return false, classifyErr(resp, err)
	}
	return true, nil
}

// EnableAutoMerge enables auto-merge via the GraphQL API (not exposed
// over REST). go-github has no typed wrapper for this mutation, so the
// request is built directly against the client's GraphQL endpoint.
func (a *Adapter) EnableAutoMerge(ctx context.Context, owner, repo string, number int, method platform.MergeMethod) (bool, error) {
	pr, resp, err := a.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return false, classifyErr(resp, err)
	}

	query := `mutation($id:ID!,$method:PullRequestMergeMethod!){enablePullRequestAutoMerge(input:{pullRequestId:$id,mergeMethod:$method}){clientMutationId}}`
	vars := map[string]any{"id": pr.GetNodeID(), "method": strings.ToUpper(string(method))}
	body, _ := json.Marshal(map[string]any{"query": query, "variables": vars})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.github.com/graphql", bytes.NewReader(body))
	if err != nil {
		return false, wrapErr(platform.ErrAPI, "github: build graphql request", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := a.client.Client().Do(req)
	if err != nil {
		return false, wrapErr(platform.ErrNetwork, "github: graphql request failed", err)
	}
	defer httpResp.Body.Close()

	return httpResp.StatusCode == http.StatusOK, nil
}

func (a *Adapter) FindPullRequestByBranch(ctx context.Context, owner, repo, branch string) (*platform.PRRef, error) {
	prs, resp, err := a.client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		Head:  owner + ":" + branch,
		State: "open",
	})
	if err != nil {
		return nil, classifyErr(resp, err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return &platform.PRRef{Number: prs[0].GetNumber(), URL: prs[0].GetHTMLURL()}, nil
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
	reviews, resp, err := a.client.PullRequests.ListReviews(ctx, owner, repo, number, nil)
	if err != nil {
		return nil, classifyErr(resp, err)
	}
	out := make([]platform.Review, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, platform.Review{Author: r.GetUser().GetLogin(), State: strings.ToLower(r.GetState())})
	}
	return out, nil
}

func (a *Adapter) GetStatusChecks(ctx context.Context, owner, repo, ref string) (platform.StatusChecks, error) {
	runs, resp, err := a.client.Checks.ListCheckRunsForRef(ctx, owner, repo, ref, nil)
	if err == nil && runs.GetTotal() > 0 {
		return convertCheckRuns(runs), nil
	}

	status, resp2, err2 := a.client.Repositories.GetCombinedStatus(ctx, owner, repo, ref, nil)
	if err2 != nil {
		if resp != nil {
			return platform.StatusChecks{}, classifyErr(resp, err)
		}
		return platform.StatusChecks{}, classifyErr(resp2, err2)
	}
	return convertCombinedStatus(status), nil
}

func convertCheckRuns(runs *github.ListCheckRunsResults) platform.StatusChecks {
	out := platform.StatusChecks{State: platform.CheckSuccess}
	for _, c := range runs.CheckRuns {
		state := platform.CheckPending
		switch c.GetConclusion() {
		case "success", "neutral", "skipped":
			state = platform.CheckSuccess
		case "":
			state = platform.CheckPending
		default:
			state = platform.CheckFailure
		}
		out.Statuses = append(out.Statuses, platform.StatusCheck{Name: c.GetName(), State: state})
		if state == platform.CheckFailure {
			out.State = platform.CheckFailure
		} else if state == platform.CheckPending && out.State != platform.CheckFailure {
			out.State = platform.CheckPending
		}
	}
	return out
}

func convertCombinedStatus(status *github.CombinedStatus) platform.StatusChecks {
	state := platform.CheckUnknown
	switch status.GetState() {
	case "success":
		state = platform.CheckSuccess
	case "failure", "error":
		state = platform.CheckFailure
	case "pending":
		state = platform.CheckPending
	}
	out := platform.StatusChecks{State: state}
	for _, s := range status.Statuses {
		cs := platform.CheckUnknown
		switch s.GetState() {
		case "success":
			cs = platform.CheckSuccess
		case "failure", "error":
			cs = platform.CheckFailure
		case "pending":
			cs = platform.CheckPending
		}
		out.Statuses = append(out.Statuses, platform.StatusCheck{Name: s.GetContext(), State: cs})
	}
	return out
}

func (a *Adapter) GetAllowedMergeMethods(ctx context.Context, owner, repo string) (platform.AllowedMergeMethods, error) {
	r, resp, err := a.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return platform.AllowedMergeMethods{}, classifyErr(resp, err)
	}
	return platform.AllowedMergeMethods{
		Merge:  r.GetAllowMergeCommit(),
		Squash: r.GetAllowSquashMerge(),
		Rebase: r.GetAllowRebaseMerge(),
	}, nil
}

func (a *Adapter) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, resp, err := a.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", classifyErr(resp, err)
	}
	return diff, nil
}

func (a *Adapter) ParseRepoURL(url string) (platform.ParsedURL, bool) {
	owner, repo, ok := parseGitHubURL(url)
	if !ok {
		return platform.ParsedURL{}, false
	}
	return platform.ParsedURL{Owner: owner, Repo: repo, Platform: platform.GitHub}, true
}

func (a *Adapter) MatchesURL(url string) bool {
	return strings.Contains(url, "github.com")
}

func parseGitHubURL(url string) (owner, repo string, ok bool) {
	url = strings.TrimSuffix(url, ".git")
	idx := strings.Index(url, "github.com")
	if idx < 0 {
		return "", "", false
	}
	rest := url[idx+len("github.com"):]
	rest = strings.TrimPrefix(rest, ":")
	rest = strings.TrimPrefix(rest, "/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (a *Adapter) CreateRepository(ctx context.Context, owner, name string, private bool) error {
	_, resp, err := a.client.Repositories.Create(ctx, owner, &github.Repository{Name: &name, Private: &private})
	if err != nil {
		return classifyErr(resp, err)
	}
	return nil
}

func (a *Adapter) DeleteRepository(ctx context.Context, owner, name string) error {
	resp, err := a.client.Repositories.Delete(ctx, owner, name)
	if err != nil {
		return classifyErr(resp, err)
	}
	return nil
}

func (a *Adapter) CreateRelease(ctx context.Context, owner, repo, tag, name, notes string, draft bool) (string, error) {
	rel, resp, err := a.client.Repositories.CreateRelease(ctx, owner, repo, &github.RepositoryRelease{
		TagName: &tag,
		Name:    &name,
		Body:    &notes,
		Draft:   &draft,
	})
	if err != nil {
		return "", classifyErr(resp, err)
	}
	return rel.GetHTMLURL(), nil
}

var _ platform.Adapter = (*Adapter)(nil)
