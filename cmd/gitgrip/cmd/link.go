// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/manifest"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Materialize each repo's copyfile/linkfile declarations into the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}

		failed := 0
		for name, repo := range ws.Manifest.Repos {
			repoRoot := filepath.Join(ws.Root, repo.Path)
			if err := materializeFileMaps(repoRoot, ws.Root, repo.CopyFile, copyFile); err != nil {
				ws.Log.WithField("repo", name).Errorf("copyfile: %v", err)
				failed++
			}
			if err := materializeFileMaps(repoRoot, ws.Root, repo.LinkFile, linkFile); err != nil {
				ws.Log.WithField("repo", name).Errorf("linkfile: %v", err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d file mapping(s) failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
}

func materializeFileMaps(repoRoot, workspaceRoot string, maps []manifest.FileMap, apply func(src, dest string) error) error {
	for _, m := range maps {
		src := filepath.Join(repoRoot, m.Src)
		dest := filepath.Join(workspaceRoot, m.Dest)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := apply(src, dest); err != nil {
			return fmt.Errorf("%s -> %s: %w", m.Src, m.Dest, err)
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func linkFile(src, dest string) error {
	_ = os.Remove(dest)
	return os.Symlink(src, dest)
}
