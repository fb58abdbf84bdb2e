// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Inspect repos declared in the workspace manifest",
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every repo in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		for _, r := range ws.Repos {
			fmt.Printf("%s\t%s\t%s\n", r.Name, r.Path, r.URL)
		}
		return nil
	},
}

var repoShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one repo's resolved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		for _, r := range ws.Repos {
			if r.Name == args[0] {
				fmt.Printf("name: %s\nurl: %s\npath: %s\nabsolute_path: %s\ndefault_branch: %s\nplatform: %s\ngroups: %v\nreference: %v\n",
					r.Name, r.URL, r.Path, r.AbsolutePath, r.DefaultBranch, r.Platform, r.Groups, r.Reference)
				return nil
			}
		}
		return fmt.Errorf("no repo named %q", args[0])
	},
}

func init() {
	rootCmd.AddCommand(repoCmd)
	repoCmd.AddCommand(repoListCmd, repoShowCmd)
}
