// Package parallelrun implements the parallel-task orchestrator (spec.md
// §4.6): N sibling git worktrees per task, one agent spawned per worktree
// with an identical prompt, attempt tracking, optional report collection,
// and winner merge+cleanup. Grounded on the teacher's raid.go (one exec.Cmd
// per agent, worktree-per-agent isolation) generalized from a one-shot
// headless runner into a resumable, cancellable, UI-driven task.
package parallelrun

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/johnespinosa/workbench/internal/action"
	"github.com/johnespinosa/workbench/internal/gitutil"
	"github.com/johnespinosa/workbench/internal/model"
)

// ReportFileName is the agent-written summary file read back into
// Attempt.ReportContent when request_report is set (spec.md §4.6 step 8).
const ReportFileName = "PARALLEL_REPORT.md"

// RequestTracker guards the request_id staleness filter from spec.md §4.6
// step 5: only the freshest in-flight worktree-prep request per workspace
// is applied when its result arrives.
type RequestTracker struct {
	mu     sync.Mutex
	latest map[uuid.UUID]uint64
	next   uint64
}

// NewRequestTracker constructs an empty tracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{latest: make(map[uuid.UUID]uint64)}
}

// Begin allocates a new monotonic request id for the given workspace,
// superseding any request already in flight for it.
func (r *RequestTracker) Begin(workspaceID uuid.UUID) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.latest[workspaceID] = r.next
	return r.next
}

// IsCurrent reports whether requestID is still the freshest request
// recorded for workspaceID.
func (r *RequestTracker) IsCurrent(workspaceID uuid.UUID, requestID uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest[workspaceID] == requestID
}

// PrepareWorktrees creates one branch+worktree per agent and returns the
// successful tuples, meant to run on a blocking task pool (spec.md §4.6
// step 4). Failures for individual agents are skipped, not fatal.
func PrepareWorktrees(r gitutil.Runner, projectDir, stateDir, taskShortID string, agents []model.AgentKind) []action.PreparedWorktree {
	root := gitutil.WorktreeRoot(stateDir)
	var out []action.PreparedWorktree
	for _, agent := range agents {
		branch := fmt.Sprintf("parallel-%s/%s", taskShortID, strings.ToLower(agent.String()))
		path, err := gitutil.AddWorktree(r, projectDir, root, taskShortID, agent.String(), branch)
		if err != nil {
			continue
		}
		out = append(out, action.PreparedWorktree{Agent: int(agent), Branch: branch, Path: path})
	}
	return out
}

// CancelActive marks any Running/AwaitingSelection task in the workspace
// Cancelled, without touching its sessions (spec.md §4.6 step 3).
func CancelActive(ws *model.Workspace) *model.ParallelTask {
	t := ws.ActiveParallelTask()
	if t == nil {
		return nil
	}
	t.Status = model.ParallelCancelled
	return t
}

// SpawnFunc spawns a session rooted at a worktree path and returns its id.
type SpawnFunc func(agent model.AgentKind, cwd, branch string) (sessionID uuid.UUID, err error)

// ApplyWorktreesReady handles spec.md §4.6 step 6: for a non-stale
// ParallelWorktreesReady action, creates the task, spawns one session per
// prepared worktree, and records an Attempt for each successful spawn. A
// spawn failure removes that worktree and skips the attempt.
func ApplyWorktreesReady(ws *model.Workspace, ready action.ParallelWorktreesReady, spawn SpawnFunc, runner gitutil.Runner, projectDir string) *model.ParallelTask {
	task := model.NewParallelTask(ready.WorkspaceID, ready.Prompt, ready.SourceBranch, ready.SourceCommit, ready.RequestReport)
	task.ID = ready.TaskID
	ws.ParallelTasks = append(ws.ParallelTasks, task)

	for _, wt := range ready.Worktrees {
		agent := model.AgentKind(wt.Agent)
		sessionID, err := spawn(agent, wt.Path, wt.Branch)
		if err != nil {
			_ = gitutil.Resolve(runner, projectDir, wt.Path, wt.Branch, gitutil.DispositionDiscard)
			continue
		}
		task.Attempts = append(task.Attempts, model.NewAttempt(task.ID, sessionID, agent, wt.Branch, wt.Path))
	}
	return task
}

// PromptFor composes the bytes sent to an attempt's session the first
// time it goes idle (spec.md §4.6 step 7).
func PromptFor(task *model.ParallelTask) []byte {
	var b strings.Builder
	b.WriteString(task.Prompt)
	if task.RequestReport {
		b.WriteString("\n\n---\n")
		b.WriteString(fmt.Sprintf(
			"When you are done, write %s in the repository root summarizing your approach, key changes, and trade-offs.",
			ReportFileName))
	}
	return []byte(b.String())
}

// OnSessionIdle advances one attempt's state on its session going idle
// (spec.md §4.6 steps 7-8). It returns the SendInput actions to emit when
// this is the attempt's first idle (prompt delivery), or nil on subsequent
// idles (where the attempt is instead marked Completed and its report, if
// any, is read from disk).
func OnSessionIdle(task *model.ParallelTask, sessionID uuid.UUID) []action.Action {
	att := task.AttemptBySession(sessionID)
	if att == nil {
		return nil
	}

	if !att.PromptSent {
		att.PromptSent = true
		prompt := PromptFor(task)
		return []action.Action{
			action.SendInput{SessionID: sessionID, Bytes: prompt},
			action.SendInput{SessionID: sessionID, Bytes: []byte("\r")},
		}
	}

	att.Status = model.AttemptCompleted
	if task.RequestReport {
		reportPath := filepath.Join(att.WorktreePath, ReportFileName)
		if contents, err := os.ReadFile(reportPath); err == nil {
			att.ReportContent = string(contents)
		}
	}
	if task.AllAttemptsFinished() {
		task.Status = model.ParallelAwaitingSelection
	}
	return nil
}

// OnSessionExited marks a Running attempt Failed when its session exits or
// errors before ever going idle (spec.md §3 Attempt status, §4.6 step 8).
// Attempts already Completed are left alone.
func OnSessionExited(task *model.ParallelTask, sessionID uuid.UUID) {
	att := task.AttemptBySession(sessionID)
	if att == nil || att.Status != model.AttemptRunning {
		return
	}
	att.Status = model.AttemptFailed
	if task.AllAttemptsFinished() {
		task.Status = model.ParallelAwaitingSelection
	}
}

// MergeWinner runs the blocking git operations for winner selection
// (spec.md §4.6 step 9): checkout the source branch, then merge the
// winner's branch. Meant to run on a blocking task pool; the caller posts
// a ParallelMergeFinished action with the returned error (if any).
func MergeWinner(r gitutil.Runner, projectDir, sourceBranch, winnerBranch string) error {
	if out, err := r.Run(projectDir, "checkout", sourceBranch); err != nil {
		return fmt.Errorf("checkout %s: %w: %s", sourceBranch, err, out)
	}
	if out, err := r.Run(projectDir, "merge", winnerBranch, "--no-edit"); err != nil {
		return fmt.Errorf("merge %s: %w: %s", winnerBranch, err, out)
	}
	return nil
}

// FinishMerged completes task resolution after a successful merge:
// removes every attempt's worktree and marks the task Completed with the
// winner recorded (spec.md §4.6 step 9 "On success"). It does not kill
// sessions; the engine does that before calling this, since only the
// engine holds PTY handles.
func FinishMerged(ws *model.Workspace, task *model.ParallelTask, winner uuid.UUID, runner gitutil.Runner, projectDir string) {
	// The winner's branch was already merged into source in MergeWinner;
	// every attempt's worktree (winner included) is now disposable.
	for _, att := range task.Attempts {
		_ = gitutil.Resolve(runner, projectDir, att.WorktreePath, att.Branch, gitutil.DispositionDiscard)
	}
	task.Status = model.ParallelCompleted
	task.WinnerAttempt = &winner
	removeTask(ws, task.ID)
}

// Cancel tears down every attempt's worktree and marks the task Cancelled
// (spec.md §4.6 step 10). Like FinishMerged, session teardown is the
// engine's responsibility.
func Cancel(ws *model.Workspace, task *model.ParallelTask, runner gitutil.Runner, projectDir string) {
	for _, att := range task.Attempts {
		_ = gitutil.Resolve(runner, projectDir, att.WorktreePath, att.Branch, gitutil.DispositionDiscard)
	}
	task.Status = model.ParallelCancelled
	removeTask(ws, task.ID)
}

func removeTask(ws *model.Workspace, taskID uuid.UUID) {
	for i, t := range ws.ParallelTasks {
		if t.ID == taskID {
			ws.ParallelTasks = append(ws.ParallelTasks[:i], ws.ParallelTasks[i+1:]...)
			return
		}
	}
}
