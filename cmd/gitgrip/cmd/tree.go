// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/archmagece/gitgrip/internal/gitfacade"
	"github.com/archmagece/gitgrip/internal/griptree"
	"github.com/archmagece/gitgrip/internal/griptreewatch"
	"github.com/archmagece/gitgrip/internal/repoview"
	"github.com/archmagece/gitgrip/internal/statusview"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Manage griptree sibling worktrees",
}

var treeAddGroups []string

var treeAddCmd = &cobra.Command{
	Use:   "add <branch> [repo...]",
	Short: "Create a griptree worktree set pinned to branch",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		repos := filterRepos(ws.Repos, treeAddGroups, args[1:])

		mgr := griptree.NewManager(ws.Root)
		mgr.ManifestRepoPath = filepath.Join(ws.Root, ".gitgrip", "manifests")

		result, err := mgr.Add(cmd.Context(), args[0], repos)
		if err != nil {
			return err
		}
		fmt.Printf("griptree %q at %s: %d ok, %d failed\n", result.Branch, result.Path, result.SucceededCount, result.FailedCount)
		for _, r := range result.Repos {
			if r.Kind == griptree.RepoFailed {
				ws.Log.WithField("repo", r.Name).Errorf("%s", r.Reason)
			}
		}
		if result.FailedCount > 0 {
			return fmt.Errorf("%d repo(s) failed to add to griptree", result.FailedCount)
		}
		return nil
	},
}

var treeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active griptrees",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		entries, err := griptree.NewManager(ws.Root).List()
		if err != nil {
			return err
		}
		fmt.Println(statusview.RenderTreeList(entries))
		return nil
	},
}

var treeRemoveForce bool

var treeRemoveCmd = &cobra.Command{
	Use:   "remove <branch>",
	Short: "Delete a griptree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		return griptree.NewManager(ws.Root).Remove(args[0], treeRemoveForce)
	},
}

var treeLockReason string

var treeLockCmd = &cobra.Command{
	Use:   "lock <branch>",
	Short: "Lock a griptree against removal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		return griptree.NewManager(ws.Root).SetLock(args[0], true, treeLockReason)
	},
}

var treeUnlockCmd = &cobra.Command{
	Use:   "unlock <branch>",
	Short: "Unlock a griptree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		return griptree.NewManager(ws.Root).SetLock(args[0], false, "")
	},
}

var (
	treeReturnSync  bool
	treeReturnPrune bool
)

var treeReturnCmd = &cobra.Command{
	Use:   "return <branch>",
	Short: "Check out each repo's original branch and optionally prune the griptree branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		mgr := griptree.NewManager(ws.Root)
		treePath, pointer, err := mgr.LoadPointer(args[0])
		if err != nil {
			return err
		}

		failed := 0
		for _, repo := range pointer.Repos {
			entry := ws.Log.WithField("repo", repo.Name)
			worktreePath := filepath.Join(treePath, repoPathFor(ws.Repos, repo.Name))

			f, err := gitfacade.OpenRepo(worktreePath)
			if err != nil {
				entry.Errorf("%v", err)
				failed++
				continue
			}
			if err := f.Checkout(cmd.Context(), repo.OriginalBranch, false); err != nil {
				entry.Errorf("checkout %s: %v", repo.OriginalBranch, err)
				failed++
				continue
			}
			if treeReturnSync {
				if _, err := f.SafePull(cmd.Context(), repo.OriginalBranch, "origin", gitfacade.PullMerge); err != nil {
					entry.Warnf("sync failed: %v", err)
				}
			}
			if treeReturnPrune && pointer.Branch != repo.OriginalBranch {
				if err := f.DeleteRemoteBranch(cmd.Context(), "origin", pointer.Branch); err != nil {
					entry.Warnf("prune remote branch failed: %v", err)
				}
			}
			entry.Infof("returned to %s", repo.OriginalBranch)
		}

		if failed > 0 {
			return fmt.Errorf("%d repo(s) failed to return", failed)
		}
		return nil
	},
}

var treeWatchInterval time.Duration

var treeWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch griptree pointer files and report external removal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		mgr := griptree.NewManager(ws.Root)
		w, err := griptreewatch.New(mgr, griptreewatch.Options{ReconcileInterval: treeWatchInterval})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()

		for {
			select {
			case evt, ok := <-w.Events():
				if !ok {
					return nil
				}
				fmt.Printf("%s: griptree %q %s\n", evt.Timestamp.Format(time.RFC3339), evt.Branch, evt.Type)
			case err, ok := <-w.Errors():
				if !ok {
					return nil
				}
				ws.Log.Errorf("watch: %v", err)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.AddCommand(treeAddCmd, treeListCmd, treeRemoveCmd, treeLockCmd, treeUnlockCmd, treeReturnCmd, treeWatchCmd)

	treeAddCmd.Flags().StringSliceVarP(&treeAddGroups, "group", "g", nil, "limit to repos in these groups")
	treeRemoveCmd.Flags().BoolVar(&treeRemoveForce, "force", false, "remove even if locked")
	treeLockCmd.Flags().StringVar(&treeLockReason, "reason", "", "lock reason")
	treeReturnCmd.Flags().BoolVar(&treeReturnSync, "sync", false, "pull the original branch after checkout")
	treeReturnCmd.Flags().BoolVar(&treeReturnPrune, "prune", false, "delete the griptree's remote branch after returning")
	treeWatchCmd.Flags().DurationVar(&treeWatchInterval, "interval", 30*time.Second, "reconciliation interval")
}

// repoPathFor returns the manifest-relative path a repo was checked out
// at, falling back to its name if the workspace no longer lists it.
func repoPathFor(repos []repoview.RepoView, name string) string {
	for _, r := range repos {
		if r.Name == name {
			return r.Path
		}
	}
	return name
}
