// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ciCmd = &cobra.Command{
	Use:   "ci <pipeline>",
	Short: "Run a named workspace CI pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		pipeline, ok := ws.Manifest.Workspace.CI.Pipelines[args[0]]
		if !ok {
			return fmt.Errorf("no ci pipeline named %q", args[0])
		}
		return runScript(cmd.Context(), ws, scriptFromPipeline(pipeline))
	},
}

func init() {
	rootCmd.AddCommand(ciCmd)
}
