// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/release"
)

var (
	releaseNotes      string
	releaseDryRun     bool
	releaseSkipPR     bool
	releaseTargetRepo string
)

var releaseCmd = &cobra.Command{
	Use:   "release <version>",
	Short: "Run the cross-repo release pipeline: bump, changelog, branch, PR, merge, tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}

		result := release.Run(cmd.Context(), ws.Manifest, ws.Repos, adapters.For, release.Options{
			WorkspaceRoot: ws.Root,
			Version:       args[0],
			Notes:         releaseNotes,
			DryRun:        releaseDryRun,
			SkipPR:        releaseSkipPR,
			TargetRepo:    releaseTargetRepo,
		})

		if format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		failed := 0
		fmt.Printf("release %s (%s)\n", result.Version, result.Tag)
		for _, step := range result.Steps {
			fmt.Printf("  %-24s %-8s %s\n", step.Name, step.Status, step.Detail)
			if step.Status == release.StepFailed {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d release step(s) failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(releaseCmd)
	releaseCmd.Flags().StringVar(&releaseNotes, "notes", "", "release notes")
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "report each step's plan without modifying anything")
	releaseCmd.Flags().BoolVar(&releaseSkipPR, "skip-pr", false, "skip the pr_create/pr_merge steps")
	releaseCmd.Flags().StringVar(&releaseTargetRepo, "target-repo", "", "repo to create the platform release on (default: first non-reference repo)")
}
