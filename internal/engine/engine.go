// Package engine owns the central session table and the operations in
// spec.md §4.3: create, restart, stop, kill, delete, and pane resize. It
// is the single place PTY handles, screen buffers, and activity timestamps
// are inserted or removed, mirroring the teacher's AgentInstance-table
// ownership in model.go generalized to the uniform Session entity.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/johnespinosa/workbench/internal/action"
	"github.com/johnespinosa/workbench/internal/activity"
	"github.com/johnespinosa/workbench/internal/logging"
	"github.com/johnespinosa/workbench/internal/model"
	"github.com/johnespinosa/workbench/internal/ptyproc"
	"github.com/johnespinosa/workbench/internal/screen"
)

// DeferredStartCommandDelay is the fixed delay before re-sending a
// terminal's saved start_command after restart (spec.md §4.3, §5).
const DeferredStartCommandDelay = 300 * time.Millisecond

// handleWriter adapts ptyproc.Handle.Write to io.Writer so screen buffers
// can send query responses back to the PTY master.
type handleWriter struct{ h *ptyproc.Handle }

func (w handleWriter) Write(p []byte) (int, error) {
	if err := w.h.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// sessionEntry bundles everything the engine keys by session id.
type sessionEntry struct {
	session    *model.Session
	handle     *ptyproc.Handle
	screen     *screen.Buffer
	forwarding bool // a screen.Buffer.ForwardResponses goroutine is running
}

// Engine is the application's single owner of mutable session state.
type Engine struct {
	launcher ptyproc.Launcher

	workspaces map[uuid.UUID]*model.Workspace
	sessions   map[uuid.UUID]*sessionEntry
	tracker    *activity.Tracker

	// internal is where the engine posts self-enqueued follow-up actions
	// (deferred sends, completion signals), consumed by the router.
	internal chan<- action.Action
	// ptyOut is the router's PTY-output channel; each session's reader
	// loop (inside ptyproc.Handle) is pumped into it by pumpPtyOutput.
	ptyOut chan<- action.Action
}

// New constructs an empty engine. internal and ptyOut are the router's
// internal-action and PTY-output send channels, respectively (spec.md
// §4.7).
func New(launcher ptyproc.Launcher, internal, ptyOut chan<- action.Action) *Engine {
	return &Engine{
		launcher:   launcher,
		workspaces: make(map[uuid.UUID]*model.Workspace),
		sessions:   make(map[uuid.UUID]*sessionEntry),
		tracker:    activity.New(),
		internal:   internal,
		ptyOut:     ptyOut,
	}
}

// AddWorkspace registers a workspace with the engine.
func (e *Engine) AddWorkspace(w *model.Workspace) { e.workspaces[w.ID] = w }

// Workspace looks up a workspace by id.
func (e *Engine) Workspace(id uuid.UUID) *model.Workspace { return e.workspaces[id] }

// WorkspaceOf resolves the workspace owning a session, for dispatch.WorkspaceLookup.
func (e *Engine) WorkspaceOf(sessionID uuid.UUID) *model.Workspace {
	entry, ok := e.sessions[sessionID]
	if !ok {
		return nil
	}
	return e.workspaces[entry.session.WorkspaceID]
}

// Session looks up a session by id.
func (e *Engine) Session(id uuid.UUID) *model.Session {
	entry, ok := e.sessions[id]
	if !ok {
		return nil
	}
	return entry.session
}

// Screen returns the screen buffer for a session, if any.
func (e *Engine) Screen(id uuid.UUID) *screen.Buffer {
	entry, ok := e.sessions[id]
	if !ok {
		return nil
	}
	return entry.screen
}

// CreateParams is the input to Create.
type CreateParams struct {
	WorkspaceID                uuid.UUID
	Agent                      model.AgentKind
	TerminalName               string
	Cwd                        string
	Rows, Cols                 int
	DangerouslySkipPermissions bool
}

// Create spawns a new session's PTY and inserts it into all three tables
// (spec.md §4.3 "Create"). On spawn failure the screen buffer is rolled
// back and the error returned; the caller surfaces it to the status bar.
func (e *Engine) Create(p CreateParams) (*model.Session, error) {
	sess := model.NewSession(p.WorkspaceID, p.Agent)
	sess.TerminalName = p.TerminalName
	sess.DangerouslySkipPermissions = p.DangerouslySkipPermissions

	buf := screen.New(p.Rows, p.Cols, nil)

	handle, err := e.launcher.Launch(ptyproc.Spec{
		SessionID:                  sess.ID.String(),
		Agent:                      p.Agent,
		TerminalName:               p.TerminalName,
		Cwd:                        p.Cwd,
		Rows:                       p.Rows,
		Cols:                       p.Cols,
		DangerouslySkipPermissions: p.DangerouslySkipPermissions,
	})
	if err != nil {
		buf.Close()
		logging.ErrorErr(logging.CatEngine, "spawn failed", err, "agent", p.Agent.String())
		return nil, fmt.Errorf("create session: %w", err)
	}
	buf.SetOutput(handleWriter{handle})

	e.sessions[sess.ID] = &sessionEntry{session: sess, handle: handle, screen: buf, forwarding: true}
	if ws := e.workspaces[p.WorkspaceID]; ws != nil {
		ws.Touch()
	}
	go e.pumpPtyOutput(sess.ID, handle)
	go buf.ForwardResponses()
	return sess, nil
}

// pumpPtyOutput forwards a session's reader-thread output into the
// router's PTY-output channel as action.PtyOutput/SessionExited values,
// bridging ptyproc's per-handle channel onto the shared prioritized queue
// (spec.md §4.1, §4.7).
func (e *Engine) pumpPtyOutput(id uuid.UUID, handle *ptyproc.Handle) {
	for ev := range handle.Output() {
		if ev.Exited {
			e.ptyOut <- action.SessionExited{SessionID: id}
			return
		}
		e.ptyOut <- action.PtyOutput{SessionID: id, Chunk: ev.Chunk}
	}
}

// Restore re-inserts a session loaded from persisted state (spec.md §6
// "On load") without a live PTY handle or reader pump; Restart spawns the
// process once the user brings it back. The screen buffer starts blank —
// scrollback is not persisted.
func (e *Engine) Restore(sess *model.Session, rows, cols int) {
	buf := screen.New(rows, cols, nil)
	e.sessions[sess.ID] = &sessionEntry{session: sess, handle: nil, screen: buf}
}

// Restart re-spawns a stopped session's PTY, reusing its id, applying the
// resume flag for agent kinds, and scheduling the deferred start_command
// re-send for terminals (spec.md §4.3 "Restart").
func (e *Engine) Restart(id uuid.UUID, cwd string, rows, cols int) error {
	entry, ok := e.sessions[id]
	if !ok {
		return fmt.Errorf("restart: unknown session %s", id)
	}
	sess := entry.session
	handoff := sess.HandoffContext
	sess.HandoffContext = ""

	handle, err := e.launcher.Launch(ptyproc.Spec{
		SessionID:                  sess.ID.String(),
		Agent:                      sess.Agent,
		TerminalName:               sess.TerminalName,
		Cwd:                        cwd,
		Rows:                       rows,
		Cols:                       cols,
		DangerouslySkipPermissions: sess.DangerouslySkipPermissions,
		Resume:                     sess.ResumeRequested(),
	})
	if err != nil {
		logging.ErrorErr(logging.CatEngine, "restart failed", err, "session", sess.ID.String())
		return fmt.Errorf("restart session: %w", err)
	}

	entry.handle = handle
	entry.screen.SetOutput(handleWriter{handle})
	sess.Status = model.SessionRunning
	go e.pumpPtyOutput(id, handle)
	// A response-forwarding loop started by an earlier Create/Restart is
	// still draining this session's emulator (Kill never closes the
	// buffer); SetOutput above just rewired where it writes. Only a
	// session that came from Restore (no live handle yet, so no forwarder
	// ever started) needs one spawned here.
	if !entry.forwarding {
		entry.forwarding = true
		go entry.screen.ForwardResponses()
	}

	// A captured handoff block is threaded into the start_command for
	// terminals, or sent alone for agent kinds (spec.md SUPPLEMENTED
	// FEATURES "Handoff context between agents"; consumed once here).
	payload := ""
	if sess.Agent == model.AgentTerminal {
		payload = sess.StartCommand
	}
	if handoff != "" {
		if payload != "" {
			payload = "## Handoff\n" + handoff + "\n\n" + payload
		} else {
			payload = "## Handoff\n" + handoff
		}
	}
	if payload != "" {
		bytes := append([]byte(payload), '\n')
		sessionID := sess.ID
		time.AfterFunc(DeferredStartCommandDelay, func() {
			e.internal <- action.DeferredSendInput{SessionID: sessionID, Bytes: bytes}
		})
	}
	return nil
}

// Stop sends Ctrl-C to the session's PTY without changing its status
// (spec.md §4.3 "Stop").
func (e *Engine) Stop(id uuid.UUID) error {
	entry, ok := e.sessions[id]
	if !ok {
		return fmt.Errorf("stop: unknown session %s", id)
	}
	if entry.handle == nil {
		return nil
	}
	return entry.handle.Write([]byte{0x03})
}

// Kill terminates the child, marks the session Stopped, and clears the
// workspace's active-worktree-session pointer if this was it (spec.md
// §4.3 "Kill").
func (e *Engine) Kill(id uuid.UUID) error {
	entry, ok := e.sessions[id]
	if !ok {
		return fmt.Errorf("kill: unknown session %s", id)
	}
	var err error
	if entry.handle != nil {
		err = entry.handle.Kill()
	}
	entry.session.MarkStopped()
	e.tracker.Forget(id)

	if ws := e.workspaces[entry.session.WorkspaceID]; ws != nil && ws.ActiveWorktreeSessionID != nil && *ws.ActiveWorktreeSessionID == id {
		ws.ActiveWorktreeSessionID = nil
	}
	return err
}

// Delete kills (if running), removes the session from every table, and
// unpins it from its workspace (spec.md §4.3 "Delete").
func (e *Engine) Delete(id uuid.UUID) {
	entry, ok := e.sessions[id]
	if !ok {
		return
	}
	if entry.session.Status == model.SessionRunning {
		_ = e.Kill(id)
	}
	if entry.screen != nil {
		entry.screen.Close()
	}
	e.tracker.Forget(id)
	if ws := e.workspaces[entry.session.WorkspaceID]; ws != nil {
		ws.Unpin(id)
	}
	delete(e.sessions, id)
}

// TargetCols is how the engine computes a session's column width for
// ResizeAll, supplied by the UI layout layer.
type TargetCols func(sessionID uuid.UUID) (rows, cols int)

// ResizeAll applies a new size to every Running session's PTY and screen
// buffer, per the pane layout function supplied by the caller (spec.md
// §4.3 "Resize pane set"). Failures are logged and otherwise ignored.
func (e *Engine) ResizeAll(target TargetCols) {
	for id, entry := range e.sessions {
		if entry.session.Status != model.SessionRunning {
			continue
		}
		rows, cols := target(id)
		if err := entry.handle.Resize(rows, cols); err != nil {
			logging.ErrorErr(logging.CatEngine, "resize failed", err, "session", id.String())
		}
		entry.screen.Resize(rows, cols)
	}
}

// HandlePtyOutput feeds PTY bytes into a session's screen buffer and
// touches its activity timestamp (spec.md §4.4).
func (e *Engine) HandlePtyOutput(a action.PtyOutput, now time.Time) {
	entry, ok := e.sessions[a.SessionID]
	if !ok {
		return
	}
	if _, err := entry.screen.Write(a.Chunk); err != nil {
		logging.ErrorErr(logging.CatScreen, "write failed", err, "session", a.SessionID.String())
	}
	e.tracker.Touch(a.SessionID, now)
}

// HandleSessionExited marks a session Stopped on PTY EOF/error (spec.md
// §7 error kind 2). The session remains in the table so its last screen
// stays viewable.
func (e *Engine) HandleSessionExited(a action.SessionExited) {
	entry, ok := e.sessions[a.SessionID]
	if !ok {
		return
	}
	entry.session.MarkStopped()
	e.tracker.Forget(a.SessionID)
}

// Tick recomputes the idle queue against every Running agent session in a
// Working workspace and returns the newly-idle ids (spec.md §4.4).
func (e *Engine) Tick(now time.Time) []uuid.UUID {
	var candidates []activity.SessionView
	for id, entry := range e.sessions {
		ws := e.workspaces[entry.session.WorkspaceID]
		candidates = append(candidates, activity.SessionView{
			ID:               id,
			Running:          entry.session.Status == model.SessionRunning,
			IsAgent:          entry.session.Agent.IsAgent(),
			WorkspaceWorking: ws != nil && ws.Status == model.WorkspaceWorking,
		})
	}
	return e.tracker.Tick(candidates, now)
}

// IdleQueue returns the current idle queue in FIFO order.
func (e *Engine) IdleQueue() []uuid.UUID { return e.tracker.Queue() }

// WorkspaceSnapshot is the read-only view of one workspace and its
// sessions the redraw layer renders from (spec.md §1: the UI widget
// toolkit itself is out of scope, but it still needs a state shape to
// paint).
type WorkspaceSnapshot struct {
	Workspace *model.Workspace
	Sessions  []*model.Session
}

// Snapshot returns every workspace paired with its live sessions, in no
// particular order; the caller sorts for display.
func (e *Engine) Snapshot() []WorkspaceSnapshot {
	out := make([]WorkspaceSnapshot, 0, len(e.workspaces))
	for _, ws := range e.workspaces {
		snap := WorkspaceSnapshot{Workspace: ws}
		for _, entry := range e.sessions {
			if entry.session.WorkspaceID == ws.ID {
				snap.Sessions = append(snap.Sessions, entry.session)
			}
		}
		out = append(out, snap)
	}
	return out
}

// DebugSnapshot reports counts for the debug overlay supplemented from
// original_source's debug_overlay.rs; the TUI layer adds its own router
// channel depths since the engine does not own the router.
type DebugSnapshot struct {
	WorkspaceCount int
	SessionCount   int
	IdleQueueDepth int
}

// Debug returns the current DebugSnapshot.
func (e *Engine) Debug() DebugSnapshot {
	return DebugSnapshot{
		WorkspaceCount: len(e.workspaces),
		SessionCount:   len(e.sessions),
		IdleQueueDepth: len(e.tracker.Queue()),
	}
}

// Write sends raw bytes to a session's PTY, swallowing failures per
// spec.md §7 error kind 3.
func (e *Engine) Write(id uuid.UUID, b []byte) {
	entry, ok := e.sessions[id]
	if !ok || entry.handle == nil {
		return
	}
	if err := entry.handle.Write(b); err != nil {
		logging.ErrorErr(logging.CatPTY, "write failed", err, "session", id.String())
	}
}
