package parallelrun

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/johnespinosa/workbench/internal/action"
	"github.com/johnespinosa/workbench/internal/model"
)

type nopRunner struct{}

func (nopRunner) Run(dir string, args ...string) ([]byte, error) { return []byte("ok"), nil }

func TestRequestTracker_StaleRequestDiscarded(t *testing.T) {
	rt := NewRequestTracker()
	ws := uuid.New()

	req1 := rt.Begin(ws)
	req2 := rt.Begin(ws)

	assert.False(t, rt.IsCurrent(ws, req1))
	assert.True(t, rt.IsCurrent(ws, req2))
}

func TestApplyWorktreesReady_CreatesTaskAndAttempts(t *testing.T) {
	ws := model.NewWorkspace("demo", "/tmp/demo")
	ready := action.ParallelWorktreesReady{
		TaskID:        uuid.New(),
		WorkspaceID:   ws.ID,
		Prompt:        "Refactor login",
		RequestReport: true,
		SourceBranch:  "main",
		SourceCommit:  "abc123def",
		Worktrees: []action.PreparedWorktree{
			{Agent: int(model.AgentClaude), Branch: "parallel-abcd1234/claude", Path: "/tmp/demo/.worktrees/parallel-abcd1234/claude"},
			{Agent: int(model.AgentGemini), Branch: "parallel-abcd1234/gemini", Path: "/tmp/demo/.worktrees/parallel-abcd1234/gemini"},
		},
	}

	spawn := func(agent model.AgentKind, cwd, branch string) (uuid.UUID, error) {
		return uuid.New(), nil
	}

	task := ApplyWorktreesReady(ws, ready, spawn, nopRunner{}, "/tmp/demo")
	assert.Len(t, task.Attempts, 2)
	assert.Len(t, ws.ParallelTasks, 1)
	assert.Equal(t, model.ParallelRunning, task.Status)
}

func TestOnSessionIdle_FirstIdleSendsPromptThenCompletes(t *testing.T) {
	task := model.NewParallelTask(uuid.New(), "Refactor login", "main", "abc123def", true)
	sid := uuid.New()
	task.Attempts = append(task.Attempts, model.NewAttempt(task.ID, sid, model.AgentClaude, "b", "/tmp/wt"))

	acts := OnSessionIdle(task, sid)
	assert.Len(t, acts, 2)
	assert.Contains(t, string(acts[0].(action.SendInput).Bytes), "Refactor login")
	assert.Equal(t, []byte("\r"), acts[1].(action.SendInput).Bytes)
	assert.True(t, task.Attempts[0].PromptSent)
	assert.Equal(t, model.AttemptRunning, task.Attempts[0].Status)

	acts = OnSessionIdle(task, sid)
	assert.Nil(t, acts)
	assert.Equal(t, model.AttemptCompleted, task.Attempts[0].Status)
	assert.Equal(t, model.ParallelAwaitingSelection, task.Status)
}

func TestOnSessionIdle_ReadsReportFile(t *testing.T) {
	dir := t.TempDir()
	task := model.NewParallelTask(uuid.New(), "prompt", "main", "abc", true)
	sid := uuid.New()
	att := model.NewAttempt(task.ID, sid, model.AgentClaude, "b", dir)
	task.Attempts = append(task.Attempts, att)
	att.PromptSent = true

	err := os.WriteFile(filepath.Join(dir, ReportFileName), []byte("did the thing"), 0o644)
	assert.NoError(t, err)

	OnSessionIdle(task, sid)
	assert.Equal(t, "did the thing", att.ReportContent)
}

func TestFinishMerged_CompletesAndRemovesTask(t *testing.T) {
	ws := model.NewWorkspace("demo", "/tmp/demo")
	task := model.NewParallelTask(ws.ID, "p", "main", "abc", false)
	winner := model.NewAttempt(task.ID, uuid.New(), model.AgentClaude, "b1", "/tmp/wt1")
	loser := model.NewAttempt(task.ID, uuid.New(), model.AgentGemini, "b2", "/tmp/wt2")
	task.Attempts = append(task.Attempts, winner, loser)
	ws.ParallelTasks = append(ws.ParallelTasks, task)

	FinishMerged(ws, task, winner.ID, nopRunner{}, "/tmp/demo")

	assert.Equal(t, model.ParallelCompleted, task.Status)
	assert.Equal(t, winner.ID, *task.WinnerAttempt)
	assert.Empty(t, ws.ParallelTasks)
}
