// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package prcoord

import (
	"context"

	"github.com/archmagece/gitgrip/internal/platform"
)

// fakeAdapter is a minimal in-memory platform.Adapter used to drive
// prcoord's state machines without any network access.
type fakeAdapter struct {
	nextNumber int
	prs        map[int]*platform.PullRequest

	mergeBehindOnce bool // ErrBranchBehind on the first MergePullRequest call, success after UpdateBranch
	merged          bool
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{prs: map[int]*platform.PullRequest{}}
}

func (f *fakeAdapter) PlatformType() platform.Type { return platform.GitHub }
func (f *fakeAdapter) GetToken() string             { return "" }

func (f *fakeAdapter) CreatePullRequest(ctx context.Context, owner, repo, head, base, title, body string, draft bool) (platform.PRRef, error) {
	f.nextNumber++
	n := f.nextNumber
	f.prs[n] = &platform.PullRequest{Number: n, Title: title, Body: body, HeadRef: head, BaseRef: base, State: platform.PROpen}
	return platform.PRRef{Number: n, URL: "https://example.test/pr/" + itoa(n)}, nil
}

func (f *fakeAdapter) GetPullRequest(ctx context.Context, owner, repo string, number int) (platform.PullRequest, error) {
	pr, ok := f.prs[number]
	if !ok {
		return platform.PullRequest{}, &platform.Error{Kind: platform.ErrNotFound, Message: "not found"}
	}
	return *pr, nil
}

func (f *fakeAdapter) UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error {
	pr, ok := f.prs[number]
	if !ok {
		return &platform.Error{Kind: platform.ErrNotFound, Message: "not found"}
	}
	pr.Body = body
	return nil
}

func (f *fakeAdapter) MergePullRequest(ctx context.Context, owner, repo string, number int, method platform.MergeMethod, deleteBranch bool) (bool, error) {
	if f.mergeBehindOnce && !f.merged {
		f.mergeBehindOnce = false
		return false, &platform.Error{Kind: platform.ErrBranchBehind, Message: "branch behind base"}
	}
	if pr, ok := f.prs[number]; ok {
		pr.Merged = true
		pr.State = platform.PRMerged
	}
	return true, nil
}

func (f *fakeAdapter) UpdateBranch(ctx context.Context, owner, repo string, number int) (bool, error) {
	f.merged = true
	return true, nil
}

func (f *fakeAdapter) EnableAutoMerge(ctx context.Context, owner, repo string, number int, method platform.MergeMethod) (bool, error) {
	return true, nil
}

func (f *fakeAdapter) FindPullRequestByBranch(ctx context.Context, owner, repo, branch string) (*platform.PRRef, error) {
	for _, pr := range f.prs {
		if pr.HeadRef == branch && pr.State == platform.PROpen {
			return &platform.PRRef{Number: pr.Number}, nil
		}
	}
	return nil, nil
}

func (f *fakeAdapter) IsPullRequestApproved(ctx context.Context, owner, repo string, number int) (bool, error) {
	return true, nil
}

func (f *fakeAdapter) GetPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]platform.Review, error) {
	return nil, nil
}

func (f *fakeAdapter) GetStatusChecks(ctx context.Context, owner, repo, ref string) (platform.StatusChecks, error) {
	return platform.StatusChecks{State: platform.CheckSuccess}, nil
}

func (f *fakeAdapter) GetAllowedMergeMethods(ctx context.Context, owner, repo string) (platform.AllowedMergeMethods, error) {
	return platform.AllowedMergeMethods{Merge: true, Squash: true, Rebase: true}, nil
}

func (f *fakeAdapter) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	return "", nil
}

func (f *fakeAdapter) ParseRepoURL(url string) (platform.ParsedURL, bool) { return platform.ParsedURL{}, false }
func (f *fakeAdapter) MatchesURL(url string) bool                        { return false }

func (f *fakeAdapter) CreateRepository(ctx context.Context, owner, name string, private bool) error {
	return nil
}
func (f *fakeAdapter) DeleteRepository(ctx context.Context, owner, name string) error { return nil }

func (f *fakeAdapter) CreateRelease(ctx context.Context, owner, repo, tag, name, notes string, draft bool) (string, error) {
	return "https://example.test/releases/" + tag, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// markMergeable sets PR number to mergeable so readiness gates pass.
func (f *fakeAdapter) markMergeable(number int, mergeable bool) {
	if pr, ok := f.prs[number]; ok {
		pr.Mergeable = &mergeable
	}
}
