// Package tui is the bubbletea/lipgloss adapter that makes workbench a
// runnable terminal program. The widget toolkit and modal layout the
// teacher built for its party screen are not reused; this is deliberately
// the thinnest layer that can drive a real terminal: it turns tea.Msg into
// action.Action values, feeds them through the router's priority drain,
// and repaints from engine.Snapshot(). All real behavior lives in the core
// packages this wraps.
package tui

import (
	"context"
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/johnespinosa/workbench/internal/action"
	"github.com/johnespinosa/workbench/internal/dispatch"
	"github.com/johnespinosa/workbench/internal/engine"
	"github.com/johnespinosa/workbench/internal/gitutil"
	"github.com/johnespinosa/workbench/internal/logging"
	"github.com/johnespinosa/workbench/internal/model"
	"github.com/johnespinosa/workbench/internal/parallelrun"
	"github.com/johnespinosa/workbench/internal/persist"
	"github.com/johnespinosa/workbench/internal/router"
	"github.com/johnespinosa/workbench/internal/selection"
	"github.com/johnespinosa/workbench/internal/wsconfig"
)

// InputMode selects how a raw key press is interpreted.
type InputMode int

const (
	// ModeNormal routes keys to application commands (focus change,
	// session lifecycle); nothing is forwarded to the PTY.
	ModeNormal InputMode = iota
	// ModeInsert forwards every key verbatim to the focused session,
	// except Esc, which returns to ModeNormal.
	ModeInsert
	// ModePrompt accumulates a line of text for a pending prompt action
	// (new todo description or parallel-task prompt).
	ModePrompt
)

// promptPurpose distinguishes what ModePrompt's buffer is for.
type promptPurpose int

const (
	promptNone promptPurpose = iota
	promptNewTodo
	promptParallel
)

// tickInterval drives the activity tracker (spec.md §4.4 "2 second idle
// threshold" needs sub-second ticks to be responsive).
const tickInterval = 250 * time.Millisecond

// Model is the bubbletea root model. It owns no session state directly;
// everything mutable lives in Engine, reached through action.Action values
// that flow through Router.
type Model struct {
	eng *engine.Engine
	rtr *router.Router

	gitRunner gitutil.Runner
	reqs      *parallelrun.RequestTracker
	stateDir  string
	configDir string

	dispatchMode dispatch.Mode
	cfg          wsconfig.Config

	mode          InputMode
	promptPurpose promptPurpose
	promptBuf     string

	focusSession uuid.UUID
	sel          selection.Selection
	selecting    bool

	width, height int
	status        string
	debug         bool
	quitting      bool
}

// New constructs the root model around an already-populated engine.
func New(eng *engine.Engine, rtr *router.Router, gitRunner gitutil.Runner, stateDir, configDir string, cfg wsconfig.Config) Model {
	return Model{
		eng:          eng,
		rtr:          rtr,
		gitRunner:    gitRunner,
		reqs:         parallelrun.NewRequestTracker(),
		stateDir:     stateDir,
		configDir:    configDir,
		dispatchMode: dispatch.ModeAutorun,
		cfg:          cfg,
	}
}

type actionMsg struct{ a action.Action }
type tickMsg time.Time

func waitForAction(r *router.Router) tea.Cmd {
	return func() tea.Msg {
		a, ok := r.Next(context.Background())
		if !ok {
			return nil
		}
		return actionMsg{a}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the action pump and the tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForAction(m.rtr), tick())
}

// Update is the single bubbletea entry point. Insert-mode keystrokes and
// ticks are enqueued onto the router and applied only once drained as an
// actionMsg, so the router's priority ordering governs their application
// order (spec.md §4.7). Window resizes, mouse events and normal-mode
// commands are applied directly here, without passing through the router.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.eng.ResizeAll(m.targetCols)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tickMsg:
		m.rtr.Internal() <- action.Tick{}
		return m, tick()

	case actionMsg:
		return m.applyAction(msg.a)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeInsert:
		if msg.Type == tea.KeyEsc {
			m.mode = ModeNormal
			return m, nil
		}
		if b := keyToBytes(msg); b != nil && m.focusSession != uuid.Nil {
			m.rtr.Terminal() <- action.KeyPress{Bytes: b}
		}
		return m, waitForAction(m.rtr)

	case ModePrompt:
		return m.handlePromptKey(msg)

	default:
		return m.handleNormalKey(msg)
	}
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode, m.promptPurpose, m.promptBuf = ModeNormal, promptNone, ""
		return m, nil
	case tea.KeyEnter:
		purpose, text := m.promptPurpose, m.promptBuf
		m.mode, m.promptPurpose, m.promptBuf = ModeNormal, promptNone, ""
		m.submitPrompt(purpose, text)
		return m, nil
	case tea.KeyBackspace:
		if n := len(m.promptBuf); n > 0 {
			m.promptBuf = m.promptBuf[:n-1]
		}
		return m, nil
	case tea.KeyRunes:
		m.promptBuf += string(msg.Runes)
		return m, nil
	case tea.KeySpace:
		m.promptBuf += " "
		return m, nil
	}
	return m, nil
}

func (m *Model) submitPrompt(purpose promptPurpose, text string) {
	if text == "" {
		return
	}
	ws := m.focusedWorkspace()
	if ws == nil {
		return
	}
	switch purpose {
	case promptNewTodo:
		desc, difficulty, importance := model.ParseSuggestedLine(text)
		todo := model.NewTodo(desc)
		todo.Difficulty, todo.Importance = difficulty, importance
		ws.Todos = append(ws.Todos, todo)
	case promptParallel:
		m.startParallelTask(ws, text)
	}
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.rtr.Internal() <- action.Quit{}
		return m, waitForAction(m.rtr)
	case "i":
		if m.focusSession != uuid.Nil {
			m.mode = ModeInsert
		}
		return m, nil
	case "tab":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	case "n":
		m.createSession(model.AgentClaude)
		return m, nil
	case "N":
		m.createSession(model.AgentTerminal)
		return m, nil
	case "x":
		if m.focusSession != uuid.Nil {
			if err := m.eng.Kill(m.focusSession); err != nil {
				logging.ErrorErr(logging.CatEngine, "kill failed", err)
			}
		}
		return m, nil
	case "r":
		if m.focusSession != uuid.Nil {
			ws := m.eng.WorkspaceOf(m.focusSession)
			if ws != nil {
				if err := m.eng.Restart(m.focusSession, ws.Path, m.mainRows(), m.mainCols()); err != nil {
					logging.ErrorErr(logging.CatEngine, "restart failed", err)
				}
			}
		}
		return m, nil
	case "t":
		m.mode, m.promptPurpose, m.promptBuf = ModePrompt, promptNewTodo, ""
		return m, nil
	case "p":
		m.mode, m.promptPurpose, m.promptBuf = ModePrompt, promptParallel, ""
		return m, nil
	case "P":
		if ws := m.focusedWorkspace(); ws != nil {
			ws.ToggleStatus()
		}
		return m, nil
	case "d":
		m.debug = !m.debug
		return m, nil
	case "c":
		if m.sel.Active {
			if buf := m.eng.Screen(m.focusSession); buf != nil {
				text := selection.ExtractText(lineReader{buf}, m.sel)
				if err := selection.Copy(text); err != nil {
					m.status = fmt.Sprintf("copy failed: %v", err)
				}
			}
		}
		return m, nil
	case "m":
		m.selectWinnerAtFocus()
		return m, nil
	case "X":
		m.cancelParallelTaskAtFocus()
		return m, nil
	}
	return m, nil
}

// selectWinnerAtFocus resolves the focused session to its parallel attempt
// and, if the owning task is awaiting selection, requests that attempt's
// branch be merged as the winner (spec.md §4.6 step 9).
func (m *Model) selectWinnerAtFocus() {
	if m.focusSession == uuid.Nil {
		return
	}
	ws := m.eng.WorkspaceOf(m.focusSession)
	if ws == nil {
		return
	}
	task := ws.ActiveParallelTask()
	if task == nil || task.Status != model.ParallelAwaitingSelection {
		return
	}
	att := task.AttemptBySession(m.focusSession)
	if att == nil {
		return
	}
	m.rtr.Internal() <- action.SelectWinner{WorkspaceID: ws.ID, TaskID: task.ID, AttemptID: att.ID}
}

// cancelParallelTaskAtFocus requests that the focused workspace's active
// parallel task be torn down outright (spec.md §4.6 step 10).
func (m *Model) cancelParallelTaskAtFocus() {
	ws := m.focusedWorkspace()
	if ws == nil {
		return
	}
	task := ws.ActiveParallelTask()
	if task == nil {
		return
	}
	m.rtr.Internal() <- action.CancelParallelTask{WorkspaceID: ws.ID, TaskID: task.ID}
}

func (m *Model) cycleFocus(dir int) {
	ids := m.sessionOrder()
	if len(ids) == 0 {
		m.focusSession = uuid.Nil
		return
	}
	idx := 0
	for i, id := range ids {
		if id == m.focusSession {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(ids)) % len(ids)
	m.focusSession = ids[idx]
}

func (m *Model) createSession(agent model.AgentKind) {
	ws := m.focusedWorkspace()
	if ws == nil {
		return
	}
	sess, err := m.eng.Create(engine.CreateParams{
		WorkspaceID: ws.ID,
		Agent:       agent,
		Cwd:         ws.Path,
		Rows:        m.mainRows(),
		Cols:        m.mainCols(),
	})
	if err != nil {
		m.status = fmt.Sprintf("create failed: %v", err)
		return
	}
	ws.Pin(sess.ID)
	m.focusSession = sess.ID
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	row, col := msg.Y, msg.X
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.sel = selection.Begin(selection.Point{Row: row, Col: col})
			m.selecting = true
		}
	case tea.MouseActionMotion:
		if m.selecting {
			m.sel = m.sel.Extend(selection.Point{Row: row, Col: col})
		}
	case tea.MouseActionRelease:
		m.selecting = false
	}
	return m, nil
}

// applyAction mutates engine/dispatch/parallelrun state for one drained
// action and re-arms the pump, except for Quit which stops it.
func (m Model) applyAction(a action.Action) (tea.Model, tea.Cmd) {
	switch a := a.(type) {
	case action.KeyPress:
		if m.focusSession != uuid.Nil {
			m.eng.Write(m.focusSession, a.Bytes)
		}
	case action.Paste:
		if m.focusSession != uuid.Nil {
			m.eng.Write(m.focusSession, selection.BracketedPaste(a.Text))
		}
	case action.SendInput:
		m.eng.Write(a.SessionID, a.Bytes)
	case action.DeferredSendInput:
		m.eng.Write(a.SessionID, a.Bytes)
	case action.PtyOutput:
		m.eng.HandlePtyOutput(a, time.Now())
	case action.SessionExited:
		m.eng.HandleSessionExited(a)
		m.onAttemptExited(a.SessionID)
	case action.Tick:
		m.onTick()
	case action.DispatchTodoToSession:
		logging.Info(logging.CatDispatch, "dispatched todo to session",
			"session", a.SessionID.String(), "todo", a.TodoID.String())
	case action.ParallelWorktreesReady:
		m.onWorktreesReady(a)
	case action.ParallelMergeFinished:
		m.onMergeFinished(a)
	case action.SelectWinner:
		m.onSelectWinner(a)
	case action.CancelParallelTask:
		m.onCancelParallelTask(a)
	case action.PersistRequested:
		m.persistNow()
	case action.Quit:
		m.quitting = true
		return m, tea.Quit
	}
	return m, waitForAction(m.rtr)
}

func (m *Model) onTick() {
	now := time.Now()
	newlyIdle := m.eng.Tick(now)
	if len(newlyIdle) == 0 {
		return
	}
	dispatch.OnNewlyIdle(newlyIdle, m.eng.WorkspaceOf)
	for _, s := range newlyIdle {
		m.onAttemptIdle(s)
	}
	if m.dispatchMode == dispatch.ModeAutorun {
		acts, dispatched := dispatch.Autorun(m.eng.IdleQueue(), m.eng.WorkspaceOf)
		if dispatched != nil {
			if sess := m.eng.Session(*dispatched); sess != nil && sess.HandoffContext != "" {
				acts = prependHandoff(acts, sess.HandoffContext)
				sess.HandoffContext = ""
			}
		}
		for _, act := range acts {
			m.rtr.Internal() <- act
		}
	}
}

// prependHandoff folds a captured handoff block onto the first SendInput in
// acts, the same way engine.Restart folds it onto a restarted terminal's
// start_command (spec.md supplemented "Handoff context between agents").
func prependHandoff(acts []action.Action, handoff string) []action.Action {
	for i, act := range acts {
		if send, ok := act.(action.SendInput); ok {
			send.Bytes = append([]byte("## Handoff\n"+handoff+"\n\n"), send.Bytes...)
			acts[i] = send
			break
		}
	}
	return acts
}

// onAttemptIdle advances a parallel-task attempt when its session goes
// idle, mirroring spec.md §4.6 steps 7-8. Sessions not part of any active
// attempt are no-ops.
func (m *Model) onAttemptIdle(sessionID uuid.UUID) {
	ws := m.eng.WorkspaceOf(sessionID)
	if ws == nil {
		return
	}
	task := ws.ActiveParallelTask()
	if task == nil || task.Status != model.ParallelRunning {
		return
	}
	for _, act := range parallelrun.OnSessionIdle(task, sessionID) {
		m.rtr.Internal() <- act
	}
}

// onAttemptExited marks a parallel-task attempt Failed when its session
// exits or errors before ever going idle (spec.md §3 Attempt status, §4.6
// step 8). Sessions not part of any active attempt are no-ops.
func (m *Model) onAttemptExited(sessionID uuid.UUID) {
	ws := m.eng.WorkspaceOf(sessionID)
	if ws == nil {
		return
	}
	task := ws.ActiveParallelTask()
	if task == nil || task.Status != model.ParallelRunning {
		return
	}
	parallelrun.OnSessionExited(task, sessionID)
}

func (m *Model) startParallelTask(ws *model.Workspace, prompt string) {
	parallelrun.CancelActive(ws)
	branch, commit, err := gitutil.CurrentBranchAndCommit(m.gitRunner, ws.Path)
	if err != nil {
		m.status = fmt.Sprintf("parallel task: %v", err)
		return
	}
	taskID := model.NewID()
	reqID := m.reqs.Begin(ws.ID)
	agents := []model.AgentKind{model.AgentClaude, model.AgentGemini, model.AgentCodex}
	projectDir, stateDir, runner := ws.Path, m.stateDir, m.gitRunner

	go func() {
		shortID := taskID.String()
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		worktrees := parallelrun.PrepareWorktrees(runner, projectDir, stateDir, shortID, agents)
		ready := action.ParallelWorktreesReady{
			RequestID:     reqID,
			TaskID:        taskID,
			WorkspaceID:   ws.ID,
			Prompt:        prompt,
			RequestReport: true,
			SourceBranch:  branch,
			SourceCommit:  commit,
			Worktrees:     worktrees,
		}
		// Internal() is unbuffered-safe (capacity 1024); a blocked send
		// here would only ever indicate a stuck main loop.
		defer func() { recover() }()
		m.rtr.Internal() <- ready
	}()
}

func (m *Model) onWorktreesReady(ready action.ParallelWorktreesReady) {
	if !m.reqs.IsCurrent(ready.WorkspaceID, ready.RequestID) {
		return
	}
	ws := m.eng.Workspace(ready.WorkspaceID)
	if ws == nil {
		return
	}
	spawn := func(agent model.AgentKind, cwd, branch string) (uuid.UUID, error) {
		sess, err := m.eng.Create(engine.CreateParams{
			WorkspaceID: ws.ID,
			Agent:       agent,
			Cwd:         cwd,
			Rows:        m.mainRows(),
			Cols:        m.mainCols(),
		})
		if err != nil {
			return uuid.Nil, err
		}
		sess.WorktreeBranch, sess.WorktreePath = branch, cwd
		return sess.ID, nil
	}
	parallelrun.ApplyWorktreesReady(ws, ready, spawn, m.gitRunner, ws.Path)
}

// onSelectWinner runs the blocking merge for a chosen winner off-thread and
// posts its result back as a ParallelMergeFinished action (spec.md §4.6
// step 9), mirroring startParallelTask's async-prep pattern.
func (m *Model) onSelectWinner(a action.SelectWinner) {
	ws := m.eng.Workspace(a.WorkspaceID)
	if ws == nil {
		return
	}
	task := ws.ParallelTaskByID(a.TaskID)
	if task == nil || task.Status != model.ParallelAwaitingSelection {
		return
	}
	att := task.AttemptByID(a.AttemptID)
	if att == nil {
		return
	}
	runner, projectDir := m.gitRunner, ws.Path
	sourceBranch, winnerBranch := task.SourceBranch, att.Branch

	go func() {
		defer func() { recover() }()
		err := parallelrun.MergeWinner(runner, projectDir, sourceBranch, winnerBranch)
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		m.rtr.Internal() <- action.ParallelMergeFinished{
			WorkspaceID:     a.WorkspaceID,
			TaskID:          a.TaskID,
			WinnerAttemptID: a.AttemptID,
			Error:           errMsg,
		}
	}()
}

// onMergeFinished completes winner resolution: on success it kills every
// attempt's session (only the engine holds PTY handles) and hands off to
// parallelrun.FinishMerged for worktree cleanup and task removal (spec.md
// §4.6 step 9 "On success").
func (m *Model) onMergeFinished(a action.ParallelMergeFinished) {
	if a.Error != "" {
		m.status = fmt.Sprintf("merge failed: %s", a.Error)
		return
	}
	ws := m.eng.Workspace(a.WorkspaceID)
	if ws == nil {
		return
	}
	task := ws.ParallelTaskByID(a.TaskID)
	if task == nil {
		return
	}
	for _, att := range task.Attempts {
		if err := m.eng.Kill(att.SessionID); err != nil {
			logging.ErrorErr(logging.CatEngine, "kill attempt session failed", err, "session", att.SessionID.String())
		}
	}
	parallelrun.FinishMerged(ws, task, a.WinnerAttemptID, m.gitRunner, ws.Path)
	m.status = "parallel task merged"
}

// onCancelParallelTask tears down an in-flight parallel task outright:
// kills every attempt's session, then removes its worktrees and the task
// itself (spec.md §4.6 step 10).
func (m *Model) onCancelParallelTask(a action.CancelParallelTask) {
	ws := m.eng.Workspace(a.WorkspaceID)
	if ws == nil {
		return
	}
	task := ws.ParallelTaskByID(a.TaskID)
	if task == nil {
		return
	}
	for _, att := range task.Attempts {
		if err := m.eng.Kill(att.SessionID); err != nil {
			logging.ErrorErr(logging.CatEngine, "kill attempt session failed", err, "session", att.SessionID.String())
		}
	}
	parallelrun.Cancel(ws, task, m.gitRunner, ws.Path)
	m.status = "parallel task cancelled"
}

func (m *Model) persistNow() {
	state := persist.State{Sessions: map[uuid.UUID][]persist.SessionSnapshot{}, Notepads: map[uuid.UUID]string{}}
	for _, snap := range m.eng.Snapshot() {
		state.Workspaces = append(state.Workspaces, persist.SnapshotWorkspace(snap.Workspace))
		var sessions []persist.SessionSnapshot
		for _, s := range snap.Sessions {
			sessions = append(sessions, persist.SnapshotSession(s))
		}
		state.Sessions[snap.Workspace.ID] = sessions
	}
	if err := persist.Save(m.configDir, state); err != nil {
		logging.ErrorErr(logging.CatPersist, "save failed", err)
	}
}

func (m Model) focusedWorkspace() *model.Workspace {
	if m.focusSession != uuid.Nil {
		if ws := m.eng.WorkspaceOf(m.focusSession); ws != nil {
			return ws
		}
	}
	snaps := m.eng.Snapshot()
	if len(snaps) == 0 {
		return nil
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Workspace.CreatedAt.Before(snaps[j].Workspace.CreatedAt) })
	return snaps[0].Workspace
}

func (m Model) sessionOrder() []uuid.UUID {
	snaps := m.eng.Snapshot()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Workspace.CreatedAt.Before(snaps[j].Workspace.CreatedAt) })
	var ids []uuid.UUID
	for _, snap := range snaps {
		sort.Slice(snap.Sessions, func(i, j int) bool { return snap.Sessions[i].StartedAt.Before(snap.Sessions[j].StartedAt) })
		for _, s := range snap.Sessions {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// targetCols implements engine.TargetCols: every session shares the main
// pane's size, since only the focused session is ever visible at once
// (spec.md §1 "no simultaneous split-screen rendering requirement").
func (m Model) targetCols(uuid.UUID) (rows, cols int) {
	return m.mainRows(), m.mainCols()
}

const sidebarWidth = 28

func (m Model) mainCols() int {
	if c := m.width - sidebarWidth - 2; c > 0 {
		return c
	}
	return 80
}

func (m Model) mainRows() int {
	if r := m.height - 3; r > 0 {
		return r
	}
	return 24
}

// lineReader adapts engine's screen buffer to selection.CellReader.
type lineReader struct{ buf interface{ Render() string } }

func (l lineReader) Line(row int) string {
	lines := splitLines(l.buf.Render())
	if row < 0 || row >= len(lines) {
		return ""
	}
	return lines[row]
}
