// Package gitutil wraps the git CLI for per-attempt worktree isolation,
// generalized from the teacher's setupWorktree/cleanupWorktree/
// cleanupPartyWorktrees in pty.go: the teacher keyed worktrees by
// party/agent; here they're keyed by task short-id/agent (spec.md §6
// "Worktree filesystem layout").
package gitutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Disposition is what happens to an attempt's worktree once a parallel
// task is resolved (spec.md §4.6 "Disposition").
type Disposition int

const (
	DispositionKeep Disposition = iota
	DispositionMerge
	DispositionDiscard
)

// Runner abstracts git command execution for testability.
type Runner interface {
	Run(dir string, args ...string) ([]byte, error)
}

// ExecRunner shells out to the real git binary.
type ExecRunner struct{}

func (ExecRunner) Run(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Args = append([]string{"git", "-C", dir}, args...)
	}
	return cmd.CombinedOutput()
}

// WorktreeRoot is the base directory under which all task worktrees live.
func WorktreeRoot(stateDir string) string {
	return filepath.Join(stateDir, "worktrees")
}

// IsRepo reports whether dir is inside a git working tree.
func IsRepo(r Runner, dir string) bool {
	out, err := r.Run(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// AddWorktree creates (or reuses) a worktree for the given branch under
// root/taskID/agentName, creating the branch from projectDir's current
// HEAD if it does not already exist.
func AddWorktree(r Runner, projectDir, root, taskID, agentName, branch string) (path string, err error) {
	path = filepath.Join(root, taskID, strings.ToLower(agentName))

	if _, statErr := os.Stat(path); statErr == nil {
		if IsRepo(r, path) {
			return path, nil
		}
		_, _ = r.Run(projectDir, "worktree", "remove", "--force", path)
		_ = os.RemoveAll(path)
	}

	_, _ = r.Run(projectDir, "worktree", "prune")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir worktree parent: %w", err)
	}

	if _, err := r.Run(projectDir, "worktree", "add", path, branch); err == nil {
		return path, nil
	}
	if out, err := r.Run(projectDir, "worktree", "add", "-b", branch, path); err != nil {
		return "", fmt.Errorf("git worktree add: %w: %s", err, out)
	}
	return path, nil
}

// Resolve applies a disposition to a finished attempt's worktree
// (spec.md §4.6 step 9 "Resolve").
func Resolve(r Runner, projectDir, worktreePath, branch string, d Disposition) error {
	switch d {
	case DispositionMerge:
		if out, err := r.Run(projectDir, "merge", "--squash", branch); err != nil {
			return fmt.Errorf("merge --squash %s: %w: %s", branch, err, out)
		}
		if out, err := r.Run(projectDir, "commit", "--no-edit", "-m",
			fmt.Sprintf("Merge work from %s", branch)); err != nil {
			return fmt.Errorf("commit merge of %s: %w: %s", branch, err, out)
		}
		_, _ = r.Run(projectDir, "worktree", "remove", "--force", worktreePath)
		_, _ = r.Run(projectDir, "branch", "-D", branch)
	case DispositionDiscard:
		_, _ = r.Run(projectDir, "worktree", "remove", "--force", worktreePath)
		_, _ = r.Run(projectDir, "branch", "-D", branch)
	case DispositionKeep:
		// no-op: worktree and branch persist for later inspection.
	}
	return nil
}

// RemoveTaskWorktrees tears down every attempt worktree under
// root/taskID and prunes git's worktree list. Nothing in this module calls
// it; parallelrun.Cancel discards each attempt through Resolve instead.
func RemoveTaskWorktrees(r Runner, projectDir, root, taskID string) {
	taskDir := filepath.Join(root, taskID)
	entries, err := os.ReadDir(taskDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(taskDir, e.Name())
		_, _ = r.Run(projectDir, "worktree", "remove", "--force", path)
	}
	_, _ = r.Run(projectDir, "worktree", "prune")
	_ = os.RemoveAll(taskDir)
}

// CurrentBranchAndCommit reads HEAD's branch name and short commit sha,
// used to record ParallelTask.SourceBranch/SourceCommit at launch time
// (spec.md §4.6 step 2).
func CurrentBranchAndCommit(r Runner, projectDir string) (branch, commit string, err error) {
	b, err := r.Run(projectDir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", "", fmt.Errorf("rev-parse HEAD: %w", err)
	}
	c, err := r.Run(projectDir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", "", fmt.Errorf("rev-parse HEAD sha: %w", err)
	}
	return strings.TrimSpace(string(b)), strings.TrimSpace(string(c)), nil
}
