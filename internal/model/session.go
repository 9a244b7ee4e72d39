package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus tracks the lifecycle of a session's attached process.
type SessionStatus int

const (
	SessionRunning SessionStatus = iota
	SessionStopped
	SessionErrored
)

func (s SessionStatus) String() string {
	switch s {
	case SessionRunning:
		return "running"
	case SessionErrored:
		return "errored"
	default:
		return "stopped"
	}
}

// Session is one PTY-attached child process, owned by the engine and
// referenced by id from workspaces and parallel-task attempts.
type Session struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID

	Agent                       AgentKind
	TerminalName                string // set only when Agent == AgentTerminal
	DangerouslySkipPermissions  bool

	Status    SessionStatus
	StartedAt time.Time
	StoppedAt time.Time

	// StartCommand is sent 300ms after a terminal session is restarted;
	// creating a session does not send it.
	StartCommand string

	// Worktree metadata, set only for parallel-task-attached sessions.
	WorktreeBranch string
	WorktreePath   string

	// AttemptID links this session to a ParallelTask attempt, if any.
	AttemptID *uuid.UUID

	// HandoffContext is context captured from a prior agent's final screen
	// output, injected into this session's next prompt (original_source
	// checkout handoff, supplemented per SPEC_FULL.md).
	HandoffContext string
}

// NewSession constructs a session in the Running state with StartedAt set
// to the construction time.
func NewSession(workspaceID uuid.UUID, agent AgentKind) *Session {
	return &Session{
		ID:          NewID(),
		WorkspaceID: workspaceID,
		Agent:       agent,
		Status:      SessionRunning,
		StartedAt:   time.Now(),
	}
}

// MarkStopped records the session's process exit.
func (s *Session) MarkStopped() {
	s.Status = SessionStopped
	s.StoppedAt = time.Now()
}

// ResumeRequested reports whether a restart of this session should pass the
// agent's resume flag/argv (spec.md §4.1: always true for agent kinds,
// irrelevant for terminals).
func (s *Session) ResumeRequested() bool {
	return s.Agent.IsAgent()
}
