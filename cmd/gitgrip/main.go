// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package main is the entry point for the gitgrip CLI application.
package main

import (
	"github.com/archmagece/gitgrip/cmd/gitgrip/cmd"
)

// version is set during build time via ldflags.
var version = "dev"

func main() {
	cmd.Execute(version)
}
