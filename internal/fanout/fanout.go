// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package fanout runs a per-repository closure across a filtered repo
// set, sequentially or in parallel, and aggregates typed outcomes.
// Parallel mode uses a bounded errgroup/semaphore, following the same
// bulk-clone concurrency pattern used elsewhere for multi-repo work.
package fanout

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/archmagece/gitgrip/internal/repoview"
)

// Mode selects sequential or parallel execution.
type Mode int

const (
	Sequential Mode = iota
	Parallel
)

// DefaultParallelism is the default worker count in Parallel mode.
const DefaultParallelism = 10

// OutcomeKind tags the three fates a per-repo closure can produce.
type OutcomeKind int

const (
	Succeeded OutcomeKind = iota
	Skipped
	Failed
)

// Outcome is the tagged variant result of one repo's closure invocation.
type Outcome struct {
	Kind   OutcomeKind
	Reason string // set for Skipped/Failed
	Data   any    // set for Succeeded
}

// SucceededOutcome builds a Succeeded outcome carrying data.
func SucceededOutcome(data any) Outcome { return Outcome{Kind: Succeeded, Data: data} }

// SkippedOutcome builds a Skipped outcome with reason.
func SkippedOutcome(reason string) Outcome { return Outcome{Kind: Skipped, Reason: reason} }

// FailedOutcome builds a Failed outcome with reason.
func FailedOutcome(reason string) Outcome { return Outcome{Kind: Failed, Reason: reason} }

// Result pairs one repo's name with its outcome.
type Result struct {
	Name    string
	Outcome Outcome
}

// Summary tallies outcome kinds across a run.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
}

// Options configures a Run invocation.
type Options struct {
	Mode Mode
	// Parallelism bounds concurrent workers in Parallel mode (default
	// DefaultParallelism).
	Parallelism int
	// StopOnFailure aborts remaining work in Sequential mode once a
	// Failed outcome is seen (used by the all-or-nothing merge path).
	StopOnFailure bool
	// ChangedOnly, when set, asks changedFn whether the repo has
	// uncommitted changes and skips it before invoking fn.
	ChangedOnly bool
}

// Func is the per-repo closure; ctx is cancelled if the caller cancels
// the overall run.
type Func func(ctx context.Context, repo repoview.RepoView) Outcome

// ChangedFunc reports whether a repo has uncommitted changes, used by
// the changed-only gate.
type ChangedFunc func(ctx context.Context, repo repoview.RepoView) (bool, error)

// Run drives fn over repos per opts and returns every result (complete:
// one entry per filtered repo) plus aggregate counts. Results are
// returned in manifest order; callers needing parallel completion order
// should inspect Result.Name instead.
func Run(ctx context.Context, repos []repoview.RepoView, opts Options, changed ChangedFunc, fn Func) ([]Result, Summary) {
	results := make([]Result, len(repos))

	gate := func(ctx context.Context, r repoview.RepoView) Outcome {
		if opts.ChangedOnly && changed != nil {
			has, err := changed(ctx, r)
			if err == nil && !has {
				return SkippedOutcome("no changes")
			}
		}
		return fn(ctx, r)
	}

	switch opts.Mode {
	case Parallel:
		runParallel(ctx, repos, opts, gate, results)
	default:
		runSequential(ctx, repos, opts, gate, results)
	}

	return results, summarize(results)
}

func runSequential(ctx context.Context, repos []repoview.RepoView, opts Options, gate Func, results []Result) {
	for i, r := range repos {
		outcome := gate(ctx, r)
		results[i] = Result{Name: r.Name, Outcome: outcome}
		if opts.StopOnFailure && outcome.Kind == Failed {
			for j := i + 1; j < len(repos); j++ {
				results[j] = Result{Name: repos[j].Name, Outcome: SkippedOutcome("aborted: prior repo failed")}
			}
			return
		}
	}
}

func runParallel(ctx context.Context, repos []repoview.RepoView, opts Options, gate Func, results []Result) {
	limit := opts.Parallelism
	if limit <= 0 {
		limit = DefaultParallelism
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	for i, r := range repos {
		i, r := i, r
		g.Go(func() error {
			outcome := gate(gctx, r)
			mu.Lock()
			results[i] = Result{Name: r.Name, Outcome: outcome}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

func summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome.Kind {
		case Succeeded:
			s.Succeeded++
		case Skipped:
			s.Skipped++
		case Failed:
			s.Failed++
		}
	}
	return s
}

// SortByManifestOrder re-sorts results into the order repos appeared in
// names, so output printing follows manifest order rather than
// completion order.
func SortByManifestOrder(results []Result, names []string) []Result {
	order := make(map[string]int, len(names))
	for i, n := range names {
		order[n] = i
	}
	sorted := append([]Result{}, results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return order[sorted[i].Name] < order[sorted[j].Name]
	})
	return sorted
}
