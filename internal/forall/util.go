// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package forall

import (
	"path/filepath"
	"strings"
)

func newStringReader(s string) *strings.Reader {
	return strings.NewReader(s)
}

func resolveRedirectPath(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}
