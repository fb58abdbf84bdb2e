// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package branch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/archmagece/gitgrip/internal/gitproc"
)

// BranchManager manages Git branch operations.
type BranchManager interface {
	// Create creates a new branch.
	Create(ctx context.Context, repoPath string, opts CreateOptions) error

	// Delete deletes a branch.
	Delete(ctx context.Context, repoPath string, opts DeleteOptions) error

	// List lists branches.
	List(ctx context.Context, repoPath string, opts ListOptions) ([]*Branch, error)

	// Get retrieves a specific branch by name.
	Get(ctx context.Context, repoPath string, name string) (*Branch, error)

	// Current returns the currently checked out branch.
	Current(ctx context.Context, repoPath string) (*Branch, error)

	// Exists checks if a branch exists.
	Exists(ctx context.Context, repoPath string, name string) (bool, error)
}

// manager implements BranchManager.
type manager struct {
	executor *gitproc.Executor
}

// NewManager creates a new BranchManager.
func NewManager() BranchManager {
	return &manager{
		executor: gitproc.NewExecutor(),
	}
}

// NewManagerWithExecutor creates a new BranchManager with custom executor.
func NewManagerWithExecutor(executor *gitproc.Executor) BranchManager {
	return &manager{
		executor: executor,
	}
}

// Create creates a new branch.
func (m *manager) Create(ctx context.Context, repoPath string, opts CreateOptions) error {
	if repoPath == "" {
		return fmt.Errorf("repository path cannot be empty")
	}

	if opts.Name == "" {
		return fmt.Errorf("branch name is required")
	}

	// Validate branch name
	if opts.Validate {
		if err := validateBranchName(opts.Name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidName, err)
		}
	}

	// Check if branch already exists
	exists, err := m.Exists(ctx, repoPath, opts.Name)
	if err != nil {
		return fmt.Errorf("failed to check branch existence: %w", err)
	}

	if exists && !opts.Force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrBranchExists, opts.Name)
	}

	// Set default start ref
	startRef := opts.StartRef
	if startRef == "" {
		startRef = "HEAD"
	}

	// Verify start ref exists
	if _, err := m.executor.Run(ctx, repoPath, "rev-parse", "--verify", startRef); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRef, startRef)
	}

	// Build git branch command
	args := []string{"branch"}

	if opts.Force {
		args = append(args, "--force")
	}

	if opts.Track {
		args = append(args, "--track")
	}

	args = append(args, opts.Name, startRef)

	// Create branch
	if _, err := m.executor.Run(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}

	// Checkout if requested
	if opts.Checkout {
		if _, err := m.executor.Run(ctx, repoPath, "checkout", opts.Name); err != nil {
			return fmt.Errorf("failed to checkout branch: %w", err)
		}
	}

	return nil
}

// Delete deletes a branch.
func (m *manager) Delete(ctx context.Context, repoPath string, opts DeleteOptions) error {
	if repoPath == "" {
		return fmt.Errorf("repository path cannot be empty")
	}

	if opts.Name == "" {
		return fmt.Errorf("branch name is required")
	}

	// Check if branch exists
	exists, err := m.Exists(ctx, repoPath, opts.Name)
	if err != nil {
		return fmt.Errorf("failed to check branch existence: %w", err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, opts.Name)
	}

	// Get branch info
	branch, err := m.Get(ctx, repoPath, opts.Name)
	if err != nil {
		return fmt.Errorf("failed to get branch info: %w", err)
	}

	// "git branch -vv" does not report merge state; ask git whether the
	// branch is reachable from HEAD.
	if merged, err := m.executor.Run(ctx, repoPath, "branch", "--list", "--merged", "HEAD", opts.Name); err == nil && strings.TrimSpace(merged.Stdout) != "" {
		branch.IsMerged = true
	}

	// Safety checks
	if !opts.Force {
		// Cannot delete current branch
		if branch.IsHead {
			return fmt.Errorf("%w: %s", ErrBranchIsHead, opts.Name)
		}

		// Cannot delete protected branch
		if IsProtected(opts.Name) {
			return fmt.Errorf("%w: %s (use --force to override)", ErrProtectedBranch, opts.Name)
		}

		// Warn if branch is unmerged
		if !branch.IsMerged && !opts.Confirm {
			return fmt.Errorf("%w: %s (use --force to delete anyway)", ErrBranchUnmerged, opts.Name)
		}
	}

	// Dry run - just return
	if opts.DryRun {
		return nil
	}

	// Delete local branch
	deleteFlag := "-d"
	if opts.Force {
		deleteFlag = "-D"
	}

	if _, err := m.executor.Run(ctx, repoPath, "branch", deleteFlag, opts.Name); err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}

	// Delete remote branch if requested
	if opts.Remote {
		// Parse remote from upstream
		if branch.Upstream != "" {
			parts := strings.Split(branch.Upstream, "/")
			if len(parts) >= 2 {
				remote := parts[0]
				remoteBranch := strings.Join(parts[1:], "/")

				if _, err := m.executor.Run(ctx, repoPath, "push", remote, "--delete", remoteBranch); err != nil {
					return fmt.Errorf("failed to delete remote branch: %w", err)
				}
			}
		}
	}

	return nil
}

// List lists branches.
func (m *manager) List(ctx context.Context, repoPath string, opts ListOptions) ([]*Branch, error) {
	if repoPath == "" {
		return nil, fmt.Errorf("repository path cannot be empty")
	}

	// Build git branch command
	args := []string{"branch", "--list", "--verbose", "--verbose"}

	if opts.All {
		args = append(args, "--all")
	}

	if opts.Merged {
		args = append(args, "--merged")
	} else if opts.Unmerged {
		args = append(args, "--no-merged")
	}

	// Add pattern if specified
	if opts.Pattern != "" {
		args = append(args, opts.Pattern)
	}

	// Run command
	result, err := m.executor.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	// Parse output
	branches, err := m.parseBranchList(result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse branch list: %w", err)
	}

	// Filter remote if specified
	if opts.Remote != "" {
		filtered := make([]*Branch, 0)
		for _, b := range branches {
			if b.IsRemote && strings.HasPrefix(b.Name, opts.Remote+"/") {
				filtered = append(filtered, b)
			}
		}
		branches = filtered
	}

	// Apply limit
	if opts.Limit > 0 && len(branches) > opts.Limit {
		branches = branches[:opts.Limit]
	}

	return branches, nil
}

// Get retrieves a specific branch by name.
func (m *manager) Get(ctx context.Context, repoPath string, name string) (*Branch, error) {
	if repoPath == "" {
		return nil, fmt.Errorf("repository path cannot be empty")
	}

	if name == "" {
		return nil, fmt.Errorf("branch name is required")
	}

	// List branches with pattern
	branches, err := m.List(ctx, repoPath, ListOptions{Pattern: name})
	if err != nil {
		return nil, err
	}

	// Find exact match
	for _, b := range branches {
		if b.Name == name {
			return b, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
}

// Current returns the currently checked out branch.
func (m *manager) Current(ctx context.Context, repoPath string) (*Branch, error) {
	if repoPath == "" {
		return nil, fmt.Errorf("repository path cannot be empty")
	}

	// Get current branch name
	result, err := m.executor.Run(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}

	branchName := strings.TrimSpace(result.Stdout)

	// Check for detached HEAD
	if branchName == "HEAD" {
		return nil, ErrDetachedHead
	}

	// Get full branch info
	return m.Get(ctx, repoPath, branchName)
}

// Exists checks if a branch exists.
func (m *manager) Exists(ctx context.Context, repoPath string, name string) (bool, error) {
	if repoPath == "" {
		return false, fmt.Errorf("repository path cannot be empty")
	}

	if name == "" {
		return false, fmt.Errorf("branch name is required")
	}

	// Try to get branch ref
	result, err := m.executor.Run(ctx, repoPath, "rev-parse", "--verify", fmt.Sprintf("refs/heads/%s", name))
	if err != nil {
		// Sanitization or other error
		return false, err
	}

	// Check exit code - non-zero means branch doesn't exist
	return result.ExitCode == 0, nil
}

// parseBranchList parses git branch -vv output.
func (m *manager) parseBranchList(output string) ([]*Branch, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	branches := make([]*Branch, 0, len(lines))

	for _, line := range lines {
		if line == "" {
			continue
		}

		branch, err := m.parseBranchLine(line)
		if err != nil {
			// Skip unparseable lines
			continue
		}

		branches = append(branches, branch)
	}

	return branches, nil
}

// parseBranchLine parses a single line from git branch -vv output.
func (m *manager) parseBranchLine(line string) (*Branch, error) {
	// Format: "* main  abc1234 [origin/main] Commit message"
	// Format: "* main  abc1234 [origin/main: ahead 2, behind 3] Commit message"
	// Format: "  feature/x abc1234 Commit message"

	branch := &Branch{}

	// Check if this is the current branch (starts with *)
	if strings.HasPrefix(line, "*") {
		branch.IsHead = true
		line = strings.TrimPrefix(line, "*")
	}

	line = strings.TrimSpace(line)

	// Parse name, SHA, upstream, and message
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid branch line format")
	}

	branch.Name = parts[0]
	branch.SHA = parts[1]
	branch.Ref = fmt.Sprintf("refs/heads/%s", branch.Name)

	// Check if remote branch
	if strings.HasPrefix(branch.Name, "remotes/") {
		branch.IsRemote = true
		branch.Name = strings.TrimPrefix(branch.Name, "remotes/")
		branch.Ref = fmt.Sprintf("refs/remotes/%s", branch.Name)
	}

	// Parse upstream (if present, in brackets)
	if len(parts) > 2 && strings.HasPrefix(parts[2], "[") {
		// Find the complete bracket content
		bracketContent := ""
		for i := 2; i < len(parts); i++ {
			if bracketContent != "" {
				bracketContent += " "
			}
			bracketContent += parts[i]
			if strings.HasSuffix(parts[i], "]") {
				break
			}
		}

		// Remove brackets
		bracketContent = strings.Trim(bracketContent, "[]")

		// Parse upstream and ahead/behind info
		// Format: "origin/main" or "origin/main: ahead 2" or "origin/main: ahead 2, behind 3"
		if colonIdx := strings.Index(bracketContent, ":"); colonIdx != -1 {
			branch.Upstream = strings.TrimSpace(bracketContent[:colonIdx])
			statusPart := bracketContent[colonIdx+1:]

			// Parse ahead/behind counts
			branch.AheadBy, branch.BehindBy = parseAheadBehindFromStatus(statusPart)
		} else {
			branch.Upstream = bracketContent
		}
	}

	return branch, nil
}

// parseAheadBehindFromStatus parses "ahead 2, behind 3" or "ahead 2" or "behind 3".
func parseAheadBehindFromStatus(status string) (ahead, behind int) {
	status = strings.TrimSpace(status)

	// Parse "ahead N"
	if strings.Contains(status, "ahead") {
		fmt.Sscanf(extractNumber(status, "ahead"), "%d", &ahead)
	}

	// Parse "behind N"
	if strings.Contains(status, "behind") {
		fmt.Sscanf(extractNumber(status, "behind"), "%d", &behind)
	}

	return ahead, behind
}

// extractNumber extracts the number following a keyword.
func extractNumber(s, keyword string) string {
	idx := strings.Index(s, keyword)
	if idx == -1 {
		return "0"
	}

	// Skip the keyword and any spaces
	rest := strings.TrimSpace(s[idx+len(keyword):])

	// Extract digits
	var num strings.Builder
	for _, c := range rest {
		if c >= '0' && c <= '9' {
			num.WriteRune(c)
		} else if num.Len() > 0 {
			break
		}
	}

	if num.Len() == 0 {
		return "0"
	}
	return num.String()
}

// validateBranchName validates branch name against Git rules.
func validateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name cannot be empty")
	}

	// Git branch naming rules
	// See: https://git-scm.com/docs/git-check-ref-format

	// Cannot start with .
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("branch name cannot start with '.'")
	}

	// Cannot end with .lock
	if strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("branch name cannot end with '.lock'")
	}

	// Cannot contain certain characters
	invalidChars := []string{" ", "~", "^", ":", "?", "*", "[", "\\", ".."}
	for _, char := range invalidChars {
		if strings.Contains(name, char) {
			return fmt.Errorf("branch name cannot contain '%s'", char)
		}
	}

	// Cannot start or end with /
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("branch name cannot start or end with '/'")
	}

	// Cannot contain consecutive slashes
	if strings.Contains(name, "//") {
		return fmt.Errorf("branch name cannot contain consecutive slashes")
	}

	// Must match pattern (alphanumeric, dash, underscore, slash)
	validPattern := regexp.MustCompile(`^[a-zA-Z0-9/_-]+$`)
	if !validPattern.MatchString(name) {
		return fmt.Errorf("branch name must match pattern: [a-zA-Z0-9/_-]+")
	}

	return nil
}
