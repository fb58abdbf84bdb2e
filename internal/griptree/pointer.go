// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package griptree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const pointerFileName = ".griptree"

func pointerPath(treeDir string) string {
	return filepath.Join(treeDir, pointerFileName)
}

func writePointer(treeDir string, p *Pointer) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("griptree: marshal pointer: %w", err)
	}
	return os.WriteFile(pointerPath(treeDir), data, 0o644)
}

func readPointer(treeDir string) (*Pointer, error) {
	data, err := os.ReadFile(pointerPath(treeDir))
	if err != nil {
		return nil, err
	}
	var p Pointer
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("griptree: parse pointer: %w", err)
	}
	return &p, nil
}

// pointerExists reports whether treeDir has a live .griptree file.
func pointerExists(treeDir string) bool {
	_, err := os.Stat(pointerPath(treeDir))
	return err == nil
}
