// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package platform defines the hosted-platform abstraction (GitHub,
// GitLab, Azure DevOps, Gitea/Bitbucket-shaped) used by the PR
// coordinator, generalised from a Provider-interface pattern with one
// implementation per platform.
package platform

import "context"

// Type identifies a hosting platform.
type Type string

const (
	GitHub      Type = "github"
	GitLab      Type = "gitlab"
	AzureDevOps Type = "azuredevops"
	Bitbucket   Type = "bitbucket"
	Gitea       Type = "gitea"
)

// ErrorKind tags the platform error taxonomy.
type ErrorKind int

const (
	ErrAuth ErrorKind = iota
	ErrNetwork
	ErrAPI
	ErrNotFound
	ErrBranchBehind
	ErrBranchProtected
	ErrParse
)

// Error is the typed error every Adapter method returns on failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	pe, ok := err.(*Error)
	return ok && pe.Kind == kind
}

// MergeMethod selects how a pull request is merged.
type MergeMethod string

const (
	MergeCommit MergeMethod = "merge"
	MergeSquash MergeMethod = "squash"
	MergeRebase MergeMethod = "rebase"
)

// PRState is the normalised pull-request lifecycle state.
type PRState string

const (
	PROpen   PRState = "open"
	PRClosed PRState = "closed"
	PRMerged PRState = "merged"
)

// PullRequest is the normalised cross-platform pull-request shape.
type PullRequest struct {
	Number    int
	URL       string
	Title     string
	Body      string
	State     PRState
	Merged    bool
	Mergeable *bool
	HeadRef   string
	HeadSHA   string
	BaseRef   string
}

// PRRef is a lightweight {number, url} pair.
type PRRef struct {
	Number int
	URL    string
}

// CheckState is the normalised state of a ref's status checks.
type CheckState string

const (
	CheckSuccess CheckState = "success"
	CheckFailure CheckState = "failure"
	CheckPending CheckState = "pending"
	CheckUnknown CheckState = "unknown"
)

// StatusCheck is one named check/status result.
type StatusCheck struct {
	Name  string
	State CheckState
}

// StatusChecks is the aggregate readiness of a ref.
type StatusChecks struct {
	State    CheckState
	Statuses []StatusCheck
}

// AllowedMergeMethods reports which merge strategies a repo accepts.
type AllowedMergeMethods struct {
	Merge  bool
	Squash bool
	Rebase bool
}

// Review is one pull-request review.
type Review struct {
	Author string
	State  string // approved, changes_requested, commented, pending
}

// ParsedURL is the result of parsing a repo URL against one platform.
type ParsedURL struct {
	Owner    string
	Repo     string
	Project  string
	Platform Type
}

// Adapter is the capability surface every platform implements.
type Adapter interface {
	PlatformType() Type
	GetToken() string

	CreatePullRequest(ctx context.Context, owner, repo, head, base, title, body string, draft bool) (PRRef, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (PullRequest, error)
	UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error
	MergePullRequest(ctx context.Context, owner, repo string, number int, method MergeMethod, deleteBranch bool) (bool, error)
	UpdateBranch(ctx context.Context, owner, repo string, number int) (bool, error)
	EnableAutoMerge(ctx context.Context, owner, repo string, number int, method MergeMethod) (bool, error)
	FindPullRequestByBranch(ctx context.Context, owner, repo, branch string) (*PRRef, error)
	IsPullRequestApproved(ctx context.Context, owner, repo string, number int) (bool, error)
	GetPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]Review, error)
	GetStatusChecks(ctx context.Context, owner, repo, ref string) (StatusChecks, error)
	GetAllowedMergeMethods(ctx context.Context, owner, repo string) (AllowedMergeMethods, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)

	ParseRepoURL(url string) (ParsedURL, bool)
	MatchesURL(url string) bool

	CreateRepository(ctx context.Context, owner, name string, private bool) error
	DeleteRepository(ctx context.Context, owner, name string) error

	// CreateRelease publishes a platform release for an existing tag
	// and returns its URL. Returns ErrAPI if the platform has no
	// release concept distinct from a tag.
	CreateRelease(ctx context.Context, owner, repo, tag, name, notes string, draft bool) (string, error)
}
