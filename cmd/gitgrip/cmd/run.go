// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/manifest"
	"github.com/archmagece/gitgrip/pkg/hooks"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a named workspace script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		script, ok := ws.Manifest.Workspace.Scripts[args[0]]
		if !ok {
			return fmt.Errorf("no script named %q", args[0])
		}
		return runScript(cmd.Context(), ws, script)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runScript executes a Script's single command, or its steps in order,
// stopping at the first step failure unless that step is marked
// continue-on-error.
func runScript(ctx context.Context, ws *workspace, script manifest.Script) error {
	env := scriptEnv(ws.Manifest.Workspace.Env)

	if script.Command != "" {
		return runStep(ctx, ws.Root, script.Command, env)
	}

	for _, step := range script.Steps {
		if err := runStep(ctx, ws.Root, step.Command, env); err != nil {
			ws.Log.Errorf("step %q failed: %v", step.Name, err)
			if !step.ContinueOnError {
				return err
			}
		} else {
			ws.Log.Infof("step %q ok", step.Name)
		}
	}
	return nil
}

func runStep(ctx context.Context, workDir, command string, env []string) error {
	args := hooks.ParseCommand(command)
	if len(args) == 0 {
		return nil
	}
	stepCtx, cancel := context.WithTimeout(ctx, hooks.DefaultTimeout)
	defer cancel()

	execCmd := exec.CommandContext(stepCtx, args[0], args[1:]...)
	execCmd.Dir = workDir
	execCmd.Env = env
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	return execCmd.Run()
}

// scriptEnv merges workspace-declared env vars on top of the process
// environment, matching the precedence documented for workspace.env.
func scriptEnv(workspaceEnv map[string]string) []string {
	env := os.Environ()
	for k, v := range workspaceEnv {
		env = append(env, k+"="+v)
	}
	return env
}

// scriptFromPipeline adapts a CI pipeline to the Script shape runScript
// already knows how to execute, since both are an ordered list of named
// steps with the same continue-on-error semantics.
func scriptFromPipeline(p manifest.Pipeline) manifest.Script {
	return manifest.Script{Steps: p.Steps}
}
