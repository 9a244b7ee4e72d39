package persist

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/johnespinosa/workbench/internal/model"
)

func TestSaveLoad_RoundTripsExceptRunningCoercedToStopped(t *testing.T) {
	dir := t.TempDir()

	ws := model.NewWorkspace("demo", "/tmp/demo")
	sess := model.NewSession(ws.ID, model.AgentClaude)
	sess.Status = model.SessionRunning

	state := State{
		Workspaces: []WorkspaceSnapshot{SnapshotWorkspace(ws)},
		Sessions:   map[uuid.UUID][]SessionSnapshot{ws.ID: {SnapshotSession(sess)}},
		Notepads:   map[uuid.UUID]string{ws.ID: "scratch notes"},
	}

	assert.NoError(t, Save(dir, state))

	loaded, err := Load(dir)
	assert.NoError(t, err)
	assert.Len(t, loaded.Workspaces, 1)
	assert.Equal(t, ws.Name, loaded.Workspaces[0].Name)
	assert.Equal(t, "scratch notes", loaded.Notepads[ws.ID])

	loadedSessions := loaded.Sessions[ws.ID]
	assert.Len(t, loadedSessions, 1)
	assert.Equal(t, model.SessionStopped, loadedSessions[0].Status)
}

func TestLoad_MissingFileYieldsEmptyState(t *testing.T) {
	dir := t.TempDir()
	state, err := Load(dir)
	assert.NoError(t, err)
	assert.Empty(t, state.Workspaces)
}
