// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Inspect repo groups declared in the workspace manifest",
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every group and its repo count",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		counts := map[string]int{}
		for _, r := range ws.Repos {
			for _, g := range r.Groups {
				counts[g]++
			}
		}
		names := make([]string, 0, len(counts))
		for g := range counts {
			names = append(names, g)
		}
		sort.Strings(names)
		for _, g := range names {
			fmt.Printf("%s\t%d repo(s)\n", g, counts[g])
		}
		return nil
	},
}

var groupShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "List the repos belonging to a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		for _, r := range ws.Repos {
			for _, g := range r.Groups {
				if g == args[0] {
					fmt.Println(r.Name)
					break
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupListCmd, groupShowCmd)
}
