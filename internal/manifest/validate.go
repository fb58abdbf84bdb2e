// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

var validComposePartName = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Validator accumulates every invariant violation found while checking a
// Manifest, using a multi-error accumulation idiom.
type Validator struct {
	errors []*FieldError
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks m against its required-field and uniqueness invariants
// and returns a *ValidationError if any fail, nil otherwise.
func Validate(m *Manifest) error {
	v := NewValidator()
	v.validateManifest(m)
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

func (v *Validator) fail(field, reason string) {
	v.errors = append(v.errors, &FieldError{Field: field, Reason: reason})
}

func (v *Validator) validateManifest(m *Manifest) {
	if m == nil {
		v.fail("manifest", "is nil")
		return
	}

	// repos is non-empty.
	if len(m.Repos) == 0 {
		v.fail("repos", "must be non-empty")
	}

	for name, repo := range m.Repos {
		v.validateRepoConfig(name, repo)
	}

	v.validateManifestRepoBlock(&m.Manifest)

	for _, s := range m.Workspace.Scripts {
		v.validateScript(s)
	}

	// gripspaces[i].url non-empty.
	for i, gs := range m.Gripspaces {
		if strings.TrimSpace(gs.URL) == "" {
			v.fail(fieldf("gripspaces[%d].url", i), "must be non-empty")
		}
	}
}

func (v *Validator) validateRepoConfig(name string, r RepoConfig) {
	// path is non-empty, relative, not traversing outside workspace root.
	if err := checkRelativePath(r.Path); err != nil {
		v.errors = append(v.errors, &FieldError{Field: fieldf("repos.%s.path", name), Reason: err.Error()})
	}
	for i, fm := range r.CopyFile {
		v.validateFileMap(fieldf("repos.%s.copyfile[%d]", name, i), fm)
	}
	for i, fm := range r.LinkFile {
		v.validateFileMap(fieldf("repos.%s.linkfile[%d]", name, i), fm)
	}
}

func (v *Validator) validateManifestRepoBlock(mb *ManifestRepoBlock) {
	for i, fm := range mb.CopyFile {
		v.validateFileMap(fieldf("manifest.copyfile[%d]", i), fm)
	}
	for i, fm := range mb.LinkFile {
		v.validateFileMap(fieldf("manifest.linkfile[%d]", i), fm)
	}
	for i, cf := range mb.ComposeFile {
		v.validateComposeFile(i, cf)
	}
}

func (v *Validator) validateFileMap(field string, fm FileMap) {
	if err := checkRelativePath(fm.Src); err != nil {
		v.fail(field+".src", err.Error())
	}
	if err := checkRelativePath(fm.Dest); err != nil {
		v.fail(field+".dest", err.Error())
	}
}

func (v *Validator) validateComposeFile(i int, cf ComposeFile) {
	field := fieldf("manifest.composefile[%d]", i)
	if err := checkRelativePath(cf.Dest); err != nil {
		v.fail(field+".dest", err.Error())
	}
	// a non-empty parts list.
	if len(cf.Parts) == 0 {
		v.fail(field+".parts", "must be non-empty")
	}
	for j, part := range cf.Parts {
		if part.Gripspace != "" {
			if strings.Contains(part.Gripspace, "..") || !validComposePartName.MatchString(part.Gripspace) {
				v.fail(fieldf("%s.parts[%d].gripspace", field, j), "must be a non-empty alphanumeric/-_. token with no ..")
			}
		}
	}
}

func (v *Validator) validateScript(s Script) {
	// exactly one of command or steps.
	hasCommand := s.Command != ""
	hasSteps := len(s.Steps) > 0
	if hasCommand == hasSteps {
		v.fail("workspace.scripts", "must set exactly one of command or steps")
	}
	for i, step := range s.Steps {
		if step.Name == "" {
			v.fail(fieldf("workspace.scripts.steps[%d].name", i), "must be non-empty")
		}
		if step.Command == "" {
			v.fail(fieldf("workspace.scripts.steps[%d].command", i), "must be non-empty")
		}
	}
}

// checkRelativePath enforces: non-empty, not absolute, no leading "..",
// no "/../" segment, no Windows drive letter, no leading "\\".
func checkRelativePath(p string) error {
	if p == "" {
		return &PathTraversalError{Path: p}
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\\\") {
		return &PathTraversalError{Path: p}
	}
	if len(p) >= 2 && p[1] == ':' {
		return &PathTraversalError{Path: p}
	}
	if p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "..\\") {
		return &PathTraversalError{Path: p}
	}
	normalized := strings.ReplaceAll(p, "\\", "/")
	for _, seg := range strings.Split(normalized, "/") {
		if seg == ".." {
			return &PathTraversalError{Path: p}
		}
	}
	return nil
}

func fieldf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
