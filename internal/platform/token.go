// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package platform

import "os"

// tokenEnvPriority lists, in priority order, the environment variables
// consulted for each platform's token.
var tokenEnvPriority = map[Type][]string{
	GitHub:      {"GITHUB_TOKEN", "GH_TOKEN"},
	GitLab:      {"GITLAB_TOKEN"},
	AzureDevOps: {"AZURE_DEVOPS_TOKEN", "AZURE_DEVOPS_EXT_PAT"},
}

// TokenFromEnv returns the first non-empty environment variable in t's
// priority list, or "" if none are set.
func TokenFromEnv(t Type) string {
	for _, name := range tokenEnvPriority[t] {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
