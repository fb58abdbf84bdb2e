// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package gitlog builds the structured logger threaded explicitly through
// every command and manager in this module (no package-global logger).
package gitlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures logger construction from CLI global flags.
type Options struct {
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses everything below warning level.
	Quiet bool
	// JSON switches the formatter to JSON (used with --format json).
	JSON bool
	// Output overrides the log destination; defaults to os.Stderr.
	Output io.Writer
}

// New builds a *logrus.Logger from Options. The returned logger is passed
// explicitly to callers (as *logrus.Entry once fields are attached)
// rather than stored in a package-global.
func New(opts Options) *logrus.Logger {
	l := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)

	switch {
	case opts.Quiet:
		l.SetLevel(logrus.WarnLevel)
	case opts.Verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: !opts.Verbose,
			FullTimestamp:    opts.Verbose,
		})
	}

	return l
}

// ForRepo returns an Entry carrying the repo/gripspace fields that every
// per-repo fan-out log line needs.
func ForRepo(logger *logrus.Logger, repoName, repoPath string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"repo": repoName,
		"path": repoPath,
	})
}
