// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package manifest

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Parse decodes raw YAML into a Manifest without validating it;
// validation runs after gripspace resolution. Unknown fields are
// rejected by the parser.
func Parse(path string, data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m := &Manifest{}
	if err := dec.Decode(m); err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}
	if m.Version == 0 {
		m.Version = SchemaVersion
	}
	if m.Repos == nil {
		m.Repos = map[string]RepoConfig{}
	}
	if m.Settings.PRPrefix == "" && m.Settings.MergeStrategy == "" {
		m.Settings = DefaultSettings()
	} else {
		if m.Settings.PRPrefix == "" {
			m.Settings.PRPrefix = DefaultSettings().PRPrefix
		}
		if m.Settings.MergeStrategy == "" {
			m.Settings.MergeStrategy = DefaultSettings().MergeStrategy
		}
	}
	for name, r := range m.Repos {
		if r.DefaultBranch == "" {
			r.DefaultBranch = "main"
			m.Repos[name] = r
		}
	}
	return m, nil
}

// Marshal encodes a Manifest back to YAML (used by `manifest` CLI
// subcommand round-tripping and by property test P1).
func Marshal(m *Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}

// LoadAndResolve parses the manifest at path, resolves gripspaces under
// spacesDir, and validates the result. This is the top-level entry point
// command drivers call.
func LoadAndResolve(path string, data []byte, spacesDir string, git GripspaceGit) (*Manifest, error) {
	m, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	resolved, err := Resolve(m, spacesDir, git)
	if err != nil {
		return nil, err
	}

	if err := Validate(resolved); err != nil {
		return nil, err
	}

	return resolved, nil
}
