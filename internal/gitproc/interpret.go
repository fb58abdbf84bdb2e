package gitproc

import "strings"

// Hint turns raw stderr from a failed push/pull/fetch into a short,
// actionable message. Git's own stderr is verbose and inconsistent
// across versions; callers want one line they can show a user.
func Hint(stderr string) string {
	s := strings.ToLower(stderr)

	switch {
	case strings.Contains(s, "non-fast-forward"), strings.Contains(s, "fetch first"):
		return "remote has commits you don't have locally; pull or rebase before pushing"
	case strings.Contains(s, "permission denied"), strings.Contains(s, "authentication failed"):
		return "authentication failed; check your credentials or SSH key"
	case strings.Contains(s, "could not resolve host"), strings.Contains(s, "could not read from remote"):
		return "could not reach the remote; check network connectivity and the remote URL"
	case strings.Contains(s, "protected branch"), strings.Contains(s, "branch is protected"):
		return "push rejected by a branch protection rule on the remote"
	case strings.Contains(s, "conflict"):
		return "merge conflict; resolve conflicts and commit before continuing"
	case strings.Contains(s, "detached head"):
		return "repository is in detached HEAD state; checkout a branch first"
	case strings.Contains(s, "no upstream"), strings.Contains(s, "no tracking information"):
		return "branch has no upstream configured; use --set-upstream"
	default:
		return strings.TrimSpace(stderr)
	}
}

// AsGitError wraps err as a *GitError carrying a Hint, if err is a
// *GitError produced by this package. Non-GitError values pass through.
func AsGitError(err error) error {
	ge, ok := err.(*GitError)
	if !ok || ge == nil {
		return err
	}
	if ge.Stderr != "" {
		ge.Cause = &hintError{hint: Hint(ge.Stderr)}
	}
	return ge
}

type hintError struct{ hint string }

func (h *hintError) Error() string { return h.hint }
