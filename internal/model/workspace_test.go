package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWorkspacePinUnpin(t *testing.T) {
	w := NewWorkspace("demo", "/tmp/demo")

	ids := make([]uuid.UUID, MaxPinnedSessions+1)
	for i := range ids {
		ids[i] = NewID()
	}

	for i := 0; i < MaxPinnedSessions; i++ {
		assert.True(t, w.Pin(ids[i]))
	}
	assert.Len(t, w.PinnedSessionIDs, MaxPinnedSessions)

	// Pinning beyond the cap is a no-op.
	assert.False(t, w.Pin(ids[MaxPinnedSessions]))
	assert.Len(t, w.PinnedSessionIDs, MaxPinnedSessions)

	// Re-pinning an already-pinned id is a no-op.
	assert.False(t, w.Pin(ids[0]))

	assert.True(t, w.Unpin(ids[0]))
	assert.Len(t, w.PinnedSessionIDs, MaxPinnedSessions-1)
	assert.False(t, w.Unpin(ids[0]))
}

func TestWorkspaceNextPendingTodo(t *testing.T) {
	w := NewWorkspace("demo", "/tmp/demo")
	pending := NewTodo("pending task")
	queued := NewTodo("queued task")
	queued.Queue()
	w.Todos = append(w.Todos, pending, queued)

	// Queued takes priority over Pending (spec.md §4.5).
	next := w.NextPendingTodo()
	assert.Equal(t, queued.ID, next.ID)
}

func TestWorkspaceToggleStatus(t *testing.T) {
	w := NewWorkspace("demo", "/tmp/demo")
	assert.Equal(t, WorkspaceWorking, w.Status)
	w.ToggleStatus()
	assert.Equal(t, WorkspacePaused, w.Status)
	w.ToggleStatus()
	assert.Equal(t, WorkspaceWorking, w.Status)
}
