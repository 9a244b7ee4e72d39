package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxPinnedSessions is the maximum number of pinned session ids a workspace
// may hold at once (spec.md §3).
const MaxPinnedSessions = 4

// WorkspaceStatus controls whether a workspace contributes sessions to the
// idle queue (spec.md §4.4 only considers Working workspaces).
type WorkspaceStatus int

const (
	WorkspaceWorking WorkspaceStatus = iota
	WorkspacePaused
)

func (s WorkspaceStatus) String() string {
	if s == WorkspacePaused {
		return "paused"
	}
	return "working"
}

// Workspace is a named project directory. All cross-entity references
// (pinned sessions, todos, parallel tasks) are held by id; the owning
// engine resolves them through its central maps (spec.md §9).
type Workspace struct {
	ID         uuid.UUID
	Name       string
	Path       string
	Status     WorkspaceStatus
	CreatedAt  time.Time
	LastActive time.Time

	PinnedSessionIDs []uuid.UUID
	Todos            []*Todo
	ParallelTasks    []*ParallelTask

	// ActiveWorktreeSessionID is the session, if any, currently rooted in a
	// parallel-task worktree and selected as the operator's focus.
	ActiveWorktreeSessionID *uuid.UUID
}

// NewWorkspace constructs a Workspace in the Working status, touched now.
func NewWorkspace(name, path string) *Workspace {
	now := time.Now()
	return &Workspace{
		ID:         NewID(),
		Name:       name,
		Path:       path,
		Status:     WorkspaceWorking,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Touch records significant interaction with the workspace.
func (w *Workspace) Touch() {
	w.LastActive = time.Now()
}

// ToggleStatus flips Working<->Paused.
func (w *Workspace) ToggleStatus() {
	if w.Status == WorkspaceWorking {
		w.Status = WorkspacePaused
	} else {
		w.Status = WorkspaceWorking
	}
}

// Pin appends sessionID to the pinned list if there is room and it is not
// already present. Returns whether the pinned list changed.
func (w *Workspace) Pin(sessionID uuid.UUID) bool {
	if len(w.PinnedSessionIDs) >= MaxPinnedSessions {
		return false
	}
	for _, id := range w.PinnedSessionIDs {
		if id == sessionID {
			return false
		}
	}
	w.PinnedSessionIDs = append(w.PinnedSessionIDs, sessionID)
	return true
}

// Unpin removes sessionID from the pinned list. Returns whether it was
// present.
func (w *Workspace) Unpin(sessionID uuid.UUID) bool {
	for i, id := range w.PinnedSessionIDs {
		if id == sessionID {
			w.PinnedSessionIDs = append(w.PinnedSessionIDs[:i], w.PinnedSessionIDs[i+1:]...)
			return true
		}
	}
	return false
}

// ActiveParallelTask returns the task in {Running, AwaitingSelection}, if
// any — spec.md §3 guarantees at most one.
func (w *Workspace) ActiveParallelTask() *ParallelTask {
	for _, t := range w.ParallelTasks {
		if t.Status == ParallelRunning || t.Status == ParallelAwaitingSelection {
			return t
		}
	}
	return nil
}

// ParallelTaskByID finds a parallel task owned by this workspace,
// regardless of status.
func (w *Workspace) ParallelTaskByID(id uuid.UUID) *ParallelTask {
	for _, t := range w.ParallelTasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TodoByID finds a todo owned by this workspace.
func (w *Workspace) TodoByID(id uuid.UUID) *Todo {
	for _, t := range w.Todos {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// InProgressTodo returns the single todo InProgress(s) for some session, if
// any (spec.md §3 invariant: at most one under autorun).
func (w *Workspace) InProgressTodo() *Todo {
	for _, t := range w.Todos {
		if t.Status == TodoInProgress {
			return t
		}
	}
	return nil
}

// NextPendingTodo returns the next todo to dispatch: Queued first, else
// Pending, in creation order (spec.md §4.5).
func (w *Workspace) NextPendingTodo() *Todo {
	for _, t := range w.Todos {
		if t.Status == TodoQueued {
			return t
		}
	}
	for _, t := range w.Todos {
		if t.Status == TodoPending {
			return t
		}
	}
	return nil
}
