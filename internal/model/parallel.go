package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParallelStatus models the lifecycle in spec.md §3.
type ParallelStatus int

const (
	ParallelRunning ParallelStatus = iota
	ParallelAwaitingSelection
	ParallelCompleted
	ParallelCancelled
)

// AttemptStatus models one agent's progress within a ParallelTask.
type AttemptStatus int

const (
	AttemptRunning AttemptStatus = iota
	AttemptCompleted
	AttemptFailed
)

// ParallelTask is one multi-agent attempt set inside a workspace.
type ParallelTask struct {
	ID             uuid.UUID
	WorkspaceID    uuid.UUID
	Prompt         string
	SourceBranch   string
	SourceCommit   string
	Status         ParallelStatus
	CreatedAt      time.Time
	CompletedAt    time.Time
	WinnerAttempt  *uuid.UUID
	Attempts       []*Attempt
	RequestReport  bool
}

// NewParallelTask constructs a task with zero attempts; attempts are added
// synchronously as each worktree becomes ready (spec.md §4.6 step 6).
func NewParallelTask(workspaceID uuid.UUID, prompt, sourceBranch, sourceCommit string, requestReport bool) *ParallelTask {
	return &ParallelTask{
		ID:            NewID(),
		WorkspaceID:   workspaceID,
		Prompt:        prompt,
		SourceBranch:  sourceBranch,
		SourceCommit:  sourceCommit,
		Status:        ParallelRunning,
		CreatedAt:     time.Now(),
		RequestReport: requestReport,
	}
}

// ShortID returns the 8-character task id used in branch/worktree naming
// (spec.md §6 "Worktree filesystem layout").
func (t *ParallelTask) ShortID() string {
	return strings.ReplaceAll(t.ID.String(), "-", "")[:8]
}

// BranchFor returns the per-agent working branch name for this task.
func (t *ParallelTask) BranchFor(agent AgentKind) string {
	return fmt.Sprintf("parallel-%s/%s", t.ShortID(), strings.ToLower(agent.String()))
}

// AllAttemptsFinished reports whether every attempt has left Running.
func (t *ParallelTask) AllAttemptsFinished() bool {
	if len(t.Attempts) == 0 {
		return false
	}
	for _, a := range t.Attempts {
		if a.Status == AttemptRunning {
			return false
		}
	}
	return true
}

// AttemptByID finds an attempt owned by this task.
func (t *ParallelTask) AttemptByID(id uuid.UUID) *Attempt {
	for _, a := range t.Attempts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// AttemptBySession finds the attempt bound to the given session.
func (t *ParallelTask) AttemptBySession(sessionID uuid.UUID) *Attempt {
	for _, a := range t.Attempts {
		if a.SessionID == sessionID {
			return a
		}
	}
	return nil
}

// Attempt is one agent working on one parallel task.
type Attempt struct {
	ID            uuid.UUID
	TaskID        uuid.UUID
	SessionID     uuid.UUID
	Agent         AgentKind
	Branch        string
	WorktreePath  string
	Status        AttemptStatus
	PromptSent    bool
	ReportContent string
}

// NewAttempt constructs a Running attempt bound to a freshly spawned
// session.
func NewAttempt(taskID, sessionID uuid.UUID, agent AgentKind, branch, worktreePath string) *Attempt {
	return &Attempt{
		ID:           NewID(),
		TaskID:       taskID,
		SessionID:    sessionID,
		Agent:        agent,
		Branch:       branch,
		WorktreePath: worktreePath,
		Status:       AttemptRunning,
	}
}
