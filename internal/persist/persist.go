// Package persist snapshots workspaces, sessions, and notepads to a single
// JSON document, grounded on the teacher's config.go path-layout and
// load/save pattern (forgeDir, configPath, os.ReadFile/os.WriteFile) but
// switched from YAML to JSON per the persisted-state format this spec
// requires, and writes rename-over-temp for atomicity (spec.md §6).
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/johnespinosa/workbench/internal/model"
)

// ConfigDirName is the directory under the user config root that holds all
// workbench state (spec.md §6 "<config>/workbench/state.json").
const ConfigDirName = "workbench"

// StateFileName is the persisted-state document name.
const StateFileName = "state.json"

// State is the full persisted snapshot (spec.md §6 "Persisted state").
type State struct {
	Workspaces []WorkspaceSnapshot          `json:"workspaces"`
	Sessions   map[uuid.UUID][]SessionSnapshot `json:"sessions"`
	Notepads   map[uuid.UUID]string          `json:"notepads"`
}

// WorkspaceSnapshot mirrors model.Workspace for JSON (de)serialization.
type WorkspaceSnapshot struct {
	ID             uuid.UUID             `json:"id"`
	Name           string                `json:"name"`
	Path           string                `json:"path"`
	Status         model.WorkspaceStatus `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
	LastActiveAt   time.Time             `json:"last_active_at"`
	PinnedSessions []uuid.UUID           `json:"pinned_session_ids"`
	Todos          []*model.Todo         `json:"todos"`
	ParallelTasks  []*model.ParallelTask `json:"parallel_tasks"`
}

// SessionSnapshot mirrors model.Session for JSON (de)serialization.
type SessionSnapshot struct {
	ID                         uuid.UUID           `json:"id"`
	WorkspaceID                uuid.UUID           `json:"workspace_id"`
	Agent                      model.AgentKind     `json:"agent"`
	TerminalName               string              `json:"terminal_name,omitempty"`
	DangerouslySkipPermissions bool                `json:"dangerously_skip_permissions"`
	Status                     model.SessionStatus `json:"status"`
	StartedAt                  time.Time           `json:"started_at"`
	StoppedAt                  time.Time           `json:"stopped_at,omitempty"`
	StartCommand               string              `json:"start_command,omitempty"`
	WorktreeBranch             string              `json:"worktree_branch,omitempty"`
	WorktreePath               string              `json:"worktree_path,omitempty"`
}

// SnapshotSession converts a live session into its persisted form.
func SnapshotSession(s *model.Session) SessionSnapshot {
	return SessionSnapshot{
		ID:                         s.ID,
		WorkspaceID:                s.WorkspaceID,
		Agent:                      s.Agent,
		TerminalName:               s.TerminalName,
		DangerouslySkipPermissions: s.DangerouslySkipPermissions,
		Status:                     s.Status,
		StartedAt:                  s.StartedAt,
		StoppedAt:                  s.StoppedAt,
		StartCommand:               s.StartCommand,
		WorktreeBranch:             s.WorktreeBranch,
		WorktreePath:               s.WorktreePath,
	}
}

// Restore converts a persisted session back into a live value.
func (s SessionSnapshot) Restore() *model.Session {
	return &model.Session{
		ID:                         s.ID,
		WorkspaceID:                s.WorkspaceID,
		Agent:                      s.Agent,
		TerminalName:               s.TerminalName,
		DangerouslySkipPermissions: s.DangerouslySkipPermissions,
		Status:                     s.Status,
		StartedAt:                  s.StartedAt,
		StoppedAt:                  s.StoppedAt,
		StartCommand:               s.StartCommand,
		WorktreeBranch:             s.WorktreeBranch,
		WorktreePath:               s.WorktreePath,
	}
}

// SnapshotWorkspace converts a live workspace into its persisted form.
func SnapshotWorkspace(w *model.Workspace) WorkspaceSnapshot {
	return WorkspaceSnapshot{
		ID:             w.ID,
		Name:           w.Name,
		Path:           w.Path,
		Status:         w.Status,
		CreatedAt:      w.CreatedAt,
		LastActiveAt:   w.LastActive,
		PinnedSessions: w.PinnedSessionIDs,
		Todos:          w.Todos,
		ParallelTasks:  w.ParallelTasks,
	}
}

// Restore converts a persisted workspace back into a live value.
func (w WorkspaceSnapshot) Restore() *model.Workspace {
	return &model.Workspace{
		ID:               w.ID,
		Name:             w.Name,
		Path:             w.Path,
		Status:           w.Status,
		CreatedAt:        w.CreatedAt,
		LastActive:       w.LastActiveAt,
		PinnedSessionIDs: w.PinnedSessions,
		Todos:            w.Todos,
		ParallelTasks:    w.ParallelTasks,
	}
}

// ConfigDir returns "<user config>/workbench", creating it if necessary.
func ConfigDir() (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

func statePath(configDir string) string {
	return filepath.Join(configDir, StateFileName)
}

// Save writes state as JSON to "<configDir>/state.json", writing to a
// temp file first and renaming over the target so a crash mid-write never
// corrupts the existing snapshot (spec.md §6 "rename-over-temp").
func Save(configDir string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	target := statePath(configDir)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("rename temp state: %w", err)
	}
	return nil
}

// Load reads "<configDir>/state.json", coercing any session marked Running
// to Stopped — PTYs never survive a process restart (spec.md §6 "On
// load"). A missing file is not an error; it yields an empty State.
func Load(configDir string) (State, error) {
	data, err := os.ReadFile(statePath(configDir))
	if os.IsNotExist(err) {
		return State{Sessions: map[uuid.UUID][]SessionSnapshot{}, Notepads: map[uuid.UUID]string{}}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("unmarshal state: %w", err)
	}

	for ws, sessions := range state.Sessions {
		for i := range sessions {
			if sessions[i].Status == model.SessionRunning {
				sessions[i].Status = model.SessionStopped
			}
		}
		state.Sessions[ws] = sessions
	}
	return state, nil
}
