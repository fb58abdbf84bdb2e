// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package branch provides per-repository git branch management:
// create, delete, list, and inspect branches, plus analysis and
// execution of merged/stale/orphaned branch cleanup.
//
// # Features
//
//   - Branch creation, deletion, listing, and lookup
//   - Cleanup analysis (merged/stale/orphaned) and execution
//
// # Usage
//
//	mgr := branch.NewManager()
//	branches, err := mgr.List(ctx, repoPath, branch.ListOptions{All: true})
//
//	svc := branch.NewCleanupService()
//	report, err := svc.Analyze(ctx, repoPath, branch.AnalyzeOptions{IncludeMerged: true})
//	err = svc.Execute(ctx, repoPath, report, branch.ExecuteOptions{DryRun: true})
package branch
