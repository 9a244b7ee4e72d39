// Package action defines the typed action vocabulary the core mutates
// state from, generalizing the teacher's per-purpose tea.Msg structs
// (AgentStartedMsg, AgentOutputMsg, AgentExitedMsg in pty.go) into one
// enumerable union so the router (spec.md §4.7) can classify and
// prioritise them without a type switch scattered across the codebase.
package action

import "github.com/google/uuid"

// Action is the marker interface every action struct implements.
// Class() tells the router which of the three prioritised sources this
// action nominally belongs to, for logging and testing; the router
// itself classifies by channel origin, not by inspecting the action.
type Action interface {
	Class() Class
}

// Class names the three prioritised sources in spec.md §4.7.
type Class int

const (
	ClassTerminal Class = iota
	ClassPTYOutput
	ClassInternal
)

func (c Class) String() string {
	switch c {
	case ClassTerminal:
		return "terminal"
	case ClassPTYOutput:
		return "pty_output"
	default:
		return "internal"
	}
}

// --- Terminal events (spec.md §4.7 "Terminal events") ---

type KeyPress struct {
	Bytes []byte
}

func (KeyPress) Class() Class { return ClassTerminal }

type MousePress struct{ Row, Col int }
type MouseDrag struct{ Row, Col int }
type MouseRelease struct{ Row, Col int }
type Scroll struct{ Delta int }
type Paste struct{ Text string }
type Resize struct{ Rows, Cols int }
type Tick struct{}

func (MousePress) Class() Class   { return ClassTerminal }
func (MouseDrag) Class() Class    { return ClassTerminal }
func (MouseRelease) Class() Class { return ClassTerminal }
func (Scroll) Class() Class       { return ClassTerminal }
func (Paste) Class() Class        { return ClassTerminal }
func (Resize) Class() Class       { return ClassTerminal }
func (Tick) Class() Class         { return ClassTerminal }

// --- PTY output (spec.md §4.1) ---

type PtyOutput struct {
	SessionID uuid.UUID
	Chunk     []byte
}

func (PtyOutput) Class() Class { return ClassPTYOutput }

type SessionExited struct {
	SessionID uuid.UUID
	ExitCode  int
}

func (SessionExited) Class() Class { return ClassPTYOutput }

// --- Internal actions (spec.md §4.7 "Internal actions") ---

// SendInput delivers raw bytes to a session's PTY, used both for operator
// keystrokes forwarded verbatim and for dispatcher/orchestrator-composed
// payloads (spec.md §4.5, §4.6).
type SendInput struct {
	SessionID uuid.UUID
	Bytes     []byte
}

func (SendInput) Class() Class { return ClassInternal }

// DispatchTodoToSession is emitted by the todo dispatcher when it hands a
// pending todo to a newly-idle agent (spec.md §4.5).
type DispatchTodoToSession struct {
	SessionID   uuid.UUID
	TodoID      uuid.UUID
	Description string
}

func (DispatchTodoToSession) Class() Class { return ClassInternal }

// DeferredSendInput is scheduled 300ms after a terminal restart with a
// saved start_command (spec.md §4.3 "Restart").
type DeferredSendInput struct {
	SessionID uuid.UUID
	Bytes     []byte
}

func (DeferredSendInput) Class() Class { return ClassInternal }

// ParallelWorktreesReady carries the result of off-thread worktree
// preparation back to the main loop (spec.md §4.6 step 5). RequestID is
// checked against the orchestrator's most recent request before applying.
type ParallelWorktreesReady struct {
	RequestID      uint64
	TaskID         uuid.UUID
	WorkspaceID    uuid.UUID
	Prompt         string
	RequestReport  bool
	SourceBranch   string
	SourceCommit   string
	Worktrees      []PreparedWorktree
}

func (ParallelWorktreesReady) Class() Class { return ClassInternal }

// PreparedWorktree is one successfully created (agent, branch, path) tuple.
type PreparedWorktree struct {
	Agent  int // model.AgentKind, duplicated here to avoid an import cycle
	Branch string
	Path   string
}

// ParallelMergeFinished carries the result of an off-thread winner merge
// (spec.md §4.6 step 9).
type ParallelMergeFinished struct {
	WorkspaceID     uuid.UUID
	TaskID          uuid.UUID
	WinnerAttemptID uuid.UUID
	Error           string
}

func (ParallelMergeFinished) Class() Class { return ClassInternal }

// SelectWinner is emitted when the operator picks an attempt to merge from
// an AwaitingSelection parallel task; the selection dialog itself is out
// of scope, but this is the action the core applies (spec.md §4.6 step 9).
type SelectWinner struct {
	WorkspaceID uuid.UUID
	TaskID      uuid.UUID
	AttemptID   uuid.UUID
}

func (SelectWinner) Class() Class { return ClassInternal }

// CancelParallelTask is an operator-triggered cancel of an in-flight
// parallel task (spec.md §4.6 step 10, §4.7 "Internal actions").
type CancelParallelTask struct {
	WorkspaceID uuid.UUID
	TaskID      uuid.UUID
}

func (CancelParallelTask) Class() Class { return ClassInternal }

// PersistRequested asks the persistence layer to snapshot current state.
// cmd/workbench emits it once at startup; no other code path emits it, so
// later mutations are not saved by it.
type PersistRequested struct{}

func (PersistRequested) Class() Class { return ClassInternal }

// Quit terminates the main loop cleanly (spec.md §7 "terminates only on Quit").
type Quit struct{}

func (Quit) Class() Class { return ClassInternal }
