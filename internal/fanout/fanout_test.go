// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package fanout

import (
	"context"
	"testing"

	"github.com/archmagece/gitgrip/internal/repoview"
)

func views(names ...string) []repoview.RepoView {
	out := make([]repoview.RepoView, len(names))
	for i, n := range names {
		out[i] = repoview.RepoView{Name: n}
	}
	return out
}

func TestRunSequentialCompleteAndOrdered(t *testing.T) {
	repos := views("a", "b", "c")
	results, summary := Run(context.Background(), repos, Options{Mode: Sequential}, nil,
		func(ctx context.Context, r repoview.RepoView) Outcome {
			return SucceededOutcome(r.Name)
		})

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i, name := range []string{"a", "b", "c"} {
		if results[i].Name != name {
			t.Errorf("results[%d].Name = %q, want %q", i, results[i].Name, name)
		}
	}
	if summary.Succeeded != 3 || summary.Total != 3 {
		t.Errorf("summary = %+v, want all succeeded", summary)
	}
}

func TestRunStopOnFailureSkipsRest(t *testing.T) {
	repos := views("a", "b", "c")
	results, summary := Run(context.Background(), repos, Options{Mode: Sequential, StopOnFailure: true}, nil,
		func(ctx context.Context, r repoview.RepoView) Outcome {
			if r.Name == "b" {
				return FailedOutcome("boom")
			}
			return SucceededOutcome(nil)
		})

	if results[1].Outcome.Kind != Failed {
		t.Errorf("results[1].Kind = %v, want Failed", results[1].Outcome.Kind)
	}
	if results[2].Outcome.Kind != Skipped {
		t.Errorf("results[2].Kind = %v, want Skipped (aborted)", results[2].Outcome.Kind)
	}
	if summary.Failed != 1 || summary.Skipped != 1 || summary.Succeeded != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRunParallelComplete(t *testing.T) {
	names := make([]string, 20)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	repos := views(names...)

	results, summary := Run(context.Background(), repos, Options{Mode: Parallel, Parallelism: 4}, nil,
		func(ctx context.Context, r repoview.RepoView) Outcome {
			return SucceededOutcome(nil)
		})

	if len(results) != len(repos) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(repos))
	}
	if summary.Succeeded != len(repos) {
		t.Errorf("summary.Succeeded = %d, want %d", summary.Succeeded, len(repos))
	}
}

func TestRunChangedOnlyGate(t *testing.T) {
	repos := views("a", "b")
	changed := func(ctx context.Context, r repoview.RepoView) (bool, error) {
		return r.Name == "a", nil
	}

	results, _ := Run(context.Background(), repos, Options{Mode: Sequential, ChangedOnly: true}, changed,
		func(ctx context.Context, r repoview.RepoView) Outcome {
			return SucceededOutcome(nil)
		})

	if results[0].Outcome.Kind != Succeeded {
		t.Errorf("a: got %v, want Succeeded", results[0].Outcome.Kind)
	}
	if results[1].Outcome.Kind != Skipped {
		t.Errorf("b: got %v, want Skipped", results[1].Outcome.Kind)
	}
}

func TestSortByManifestOrder(t *testing.T) {
	results := []Result{{Name: "c"}, {Name: "a"}, {Name: "b"}}
	sorted := SortByManifestOrder(results, []string{"a", "b", "c"})
	if sorted[0].Name != "a" || sorted[1].Name != "b" || sorted[2].Name != "c" {
		t.Errorf("SortByManifestOrder() = %v", sorted)
	}
}
