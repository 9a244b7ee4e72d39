// Package dispatch implements the todo dispatcher described in spec.md
// §4.5: it reacts to newly-idle sessions by marking in-flight todos ready
// for review, and in autorun mode hands the next pending todo to the
// first available idle agent.
package dispatch

import (
	"github.com/google/uuid"

	"github.com/johnespinosa/workbench/internal/action"
	"github.com/johnespinosa/workbench/internal/model"
)

// Mode is the dispatcher's operating policy.
type Mode int

const (
	ModeManual Mode = iota
	ModeAutorun
)

// WorkspaceLookup resolves the workspace owning a session id. The engine
// supplies this from its session table.
type WorkspaceLookup func(sessionID uuid.UUID) *model.Workspace

// OnNewlyIdle marks any InProgress(s) todo ReadyForReview(s) for each
// newly-idle session (spec.md §4.5 "On newly-idle session s").
func OnNewlyIdle(newlyIdle []uuid.UUID, lookup WorkspaceLookup) {
	for _, s := range newlyIdle {
		ws := lookup(s)
		if ws == nil {
			continue
		}
		if t := ws.InProgressTodo(); t != nil && t.SessionID != nil && *t.SessionID == s {
			t.MarkReadyForReview()
		}
	}
}

// Autorun walks the idle queue in FIFO order and dispatches at most one
// todo per tick to the first workspace with no InProgress todo (spec.md
// §4.5 "If mode = Autorun"). It returns the actions to emit, in order, and
// reports which session (if any) was dispatched so the caller can remove
// it from the idle queue.
func Autorun(idleQueue []uuid.UUID, lookup WorkspaceLookup) (acts []action.Action, dispatched *uuid.UUID) {
	for _, s := range idleQueue {
		ws := lookup(s)
		if ws == nil {
			continue
		}
		if ws.InProgressTodo() != nil {
			continue
		}
		todo := ws.NextPendingTodo()
		if todo == nil {
			continue
		}

		todo.Dispatch(s)
		acts = []action.Action{
			action.DispatchTodoToSession{SessionID: s, TodoID: todo.ID, Description: todo.Description},
			action.SendInput{SessionID: s, Bytes: []byte(todo.Description)},
			action.SendInput{SessionID: s, Bytes: []byte("\r")},
		}
		id := s
		return acts, &id
	}
	return nil, nil
}

// ManualRun handles an operator-triggered dispatch of a specific todo. If
// an idle session is supplied, it dispatches immediately; otherwise (no
// idle agent available) in Autorun mode the todo is queued instead
// (spec.md §4.5 "Manual run").
func ManualRun(todo *model.Todo, idleSession *uuid.UUID, mode Mode) []action.Action {
	if idleSession != nil {
		todo.Dispatch(*idleSession)
		return []action.Action{
			action.DispatchTodoToSession{SessionID: *idleSession, TodoID: todo.ID, Description: todo.Description},
			action.SendInput{SessionID: *idleSession, Bytes: []byte(todo.Description)},
			action.SendInput{SessionID: *idleSession, Bytes: []byte("\r")},
		}
	}
	if mode == ModeAutorun {
		todo.Queue()
	}
	return nil
}
