// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect and validate the workspace manifest",
}

var manifestValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate the workspace manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := workspaceDir
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			root = wd
		}
		path := filepath.Join(root, manifestRelPath)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read manifest %s: %w", path, err)
		}
		m, err := manifest.Parse(path, data)
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		if err := manifest.Validate(m); err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}
		fmt.Println("manifest is valid")
		return nil
	},
}

var manifestShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the fully resolved manifest (gripspaces merged in)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		data, err := manifest.Marshal(ws.Manifest)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.AddCommand(manifestValidateCmd, manifestShowCmd)
}
