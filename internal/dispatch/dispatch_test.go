package dispatch

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/johnespinosa/workbench/internal/action"
	"github.com/johnespinosa/workbench/internal/model"
)

func TestAutorun_DispatchesOneTodoPerTick(t *testing.T) {
	ws := model.NewWorkspace("demo", "/tmp/demo")
	todo := model.NewTodo("Fix bug")
	ws.Todos = append(ws.Todos, todo)

	s := uuid.New()
	lookup := func(uuid.UUID) *model.Workspace { return ws }

	acts, dispatched := Autorun([]uuid.UUID{s}, lookup)
	assert.NotNil(t, dispatched)
	assert.Equal(t, s, *dispatched)
	assert.Equal(t, []action.Action{
		action.DispatchTodoToSession{SessionID: s, TodoID: todo.ID, Description: "Fix bug"},
		action.SendInput{SessionID: s, Bytes: []byte("Fix bug")},
		action.SendInput{SessionID: s, Bytes: []byte("\r")},
	}, acts)
	assert.Equal(t, model.TodoInProgress, todo.Status)
	assert.Equal(t, s, *todo.SessionID)
}

func TestAutorun_SkipsWorkspaceWithInProgress(t *testing.T) {
	ws := model.NewWorkspace("demo", "/tmp/demo")
	inProgressSession := uuid.New()
	existing := model.NewTodo("already running")
	existing.Dispatch(inProgressSession)
	pending := model.NewTodo("Fix bug")
	ws.Todos = append(ws.Todos, existing, pending)

	s := uuid.New()
	lookup := func(uuid.UUID) *model.Workspace { return ws }

	acts, dispatched := Autorun([]uuid.UUID{s}, lookup)
	assert.Nil(t, dispatched)
	assert.Nil(t, acts)
	assert.Equal(t, model.TodoPending, pending.Status)
}

func TestOnNewlyIdle_MarksReadyForReview(t *testing.T) {
	ws := model.NewWorkspace("demo", "/tmp/demo")
	s := uuid.New()
	todo := model.NewTodo("Fix bug")
	todo.Dispatch(s)
	ws.Todos = append(ws.Todos, todo)

	lookup := func(uuid.UUID) *model.Workspace { return ws }
	OnNewlyIdle([]uuid.UUID{s}, lookup)

	assert.Equal(t, model.TodoReadyForReview, todo.Status)
}

func TestManualRun_NoIdleAgentQueuesInAutorun(t *testing.T) {
	todo := model.NewTodo("Fix bug")
	acts := ManualRun(todo, nil, ModeAutorun)
	assert.Nil(t, acts)
	assert.Equal(t, model.TodoQueued, todo.Status)
}

func TestManualRun_IdleAgentDispatchesImmediately(t *testing.T) {
	todo := model.NewTodo("Fix bug")
	s := uuid.New()
	acts := ManualRun(todo, &s, ModeManual)
	assert.Len(t, acts, 3)
	assert.Equal(t, model.TodoInProgress, todo.Status)
}
