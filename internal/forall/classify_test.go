// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package forall

import "testing"

func TestTryParseGitCommand(t *testing.T) {
	tests := []struct {
		cmd      string
		wantKind CommandKind
		wantOK   bool
	}{
		{"git status", CmdStatus, true},
		{"git status --porcelain", CmdStatus, true},
		{"git status -s", CmdStatus, true},
		{"git branch", CmdListBranches, true},
		{"git branch -a", CmdListBranches, true},
		{"git branch --remotes", CmdListBranches, true},
		{"git rev-parse HEAD", CmdGetHead, true},
		{"git rev-parse --abbrev-ref HEAD", CmdGetBranch, true},
		{"git rev-parse --short HEAD", CmdGetHeadShort, true},
		{"git log --oneline", CmdLogOneline, true},
		{"git log --oneline -5", CmdLogOneline, true},
		{"git log --oneline -n 5", CmdLogOneline, true},
		{"git log -1 --oneline", CmdLogOneline, true},
		{"git diff --staged --stat", CmdDiff, true},
		{"git ls-files -m", CmdLsFiles, true},
		{"git tag -l", CmdTagList, true},
		{"git remote -v", CmdRemote, true},
		{"git stash list", CmdStashList, true},
		{"git blame foo.go", CmdBlame, true},
		{"git config --get user.name", CmdConfigGet, true},
		{"git commit -m x", CmdNone, false},
		{"git checkout -b x", CmdNone, false},
		{"ls -la", CmdNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			gc, ok := TryParseGitCommand(tt.cmd)
			if ok != tt.wantOK {
				t.Fatalf("TryParseGitCommand(%q) ok = %v, want %v", tt.cmd, ok, tt.wantOK)
			}
			if ok && gc.Kind != tt.wantKind {
				t.Errorf("TryParseGitCommand(%q).Kind = %v, want %v", tt.cmd, gc.Kind, tt.wantKind)
			}
		})
	}
}

func TestLogOnelineCount(t *testing.T) {
	gc, ok := TryParseGitCommand("git log --oneline")
	if !ok || gc.Count != 10 {
		t.Fatalf("default count = %d, want 10 (ok=%v)", gc.Count, ok)
	}
	gc, ok = TryParseGitCommand("git log -1 --oneline")
	if !ok || gc.Count != 1 {
		t.Fatalf("count = %d, want 1 (ok=%v)", gc.Count, ok)
	}
	gc, ok = TryParseGitCommand("git log --oneline -n 3")
	if !ok || gc.Count != 3 {
		t.Fatalf("count = %d, want 3 (ok=%v)", gc.Count, ok)
	}
}

func TestClassifyPipedAndRedirect(t *testing.T) {
	c := Classify("git log --oneline | grep fix", false)
	if c.Kind != KindPiped || c.PipeTo != "grep fix" {
		t.Fatalf("Classify(piped) = %+v", c)
	}

	c = Classify("git status --porcelain > out.txt", false)
	if c.Kind != KindRedirect || c.File != "out.txt" || c.Append {
		t.Fatalf("Classify(redirect) = %+v", c)
	}

	c = Classify("git status --porcelain >> out.txt", false)
	if c.Kind != KindRedirect || !c.Append {
		t.Fatalf("Classify(append redirect) = %+v", c)
	}
}

func TestClassifyNoInterceptForcesShell(t *testing.T) {
	c := Classify("git status --porcelain", true)
	if c.Kind != KindShell {
		t.Fatalf("Classify(no_intercept) = %+v, want Shell", c)
	}
}

func TestClassifyUnrecognisedFallsThroughToShell(t *testing.T) {
	c := Classify("git commit -am wip", false)
	if c.Kind != KindShell {
		t.Fatalf("Classify(mutating) = %+v, want Shell", c)
	}

	c = Classify("echo hello | wc -l", false)
	if c.Kind != KindShell {
		t.Fatalf("Classify(non-git) = %+v, want Shell", c)
	}
}
