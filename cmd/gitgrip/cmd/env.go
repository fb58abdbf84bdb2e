// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the workspace's declared environment variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(ws.Manifest.Workspace.Env))
		for k := range ws.Manifest.Workspace.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Printf("%s=%s\n", k, ws.Manifest.Workspace.Env[k])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
