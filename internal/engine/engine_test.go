package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/johnespinosa/workbench/internal/action"
	"github.com/johnespinosa/workbench/internal/model"
	"github.com/johnespinosa/workbench/internal/ptyproc"
)

type fakeHandleState struct {
	written  [][]byte
	resized  [2]int
	killed   bool
	launches int
	lastSpec ptyproc.Spec
}

// fakeLauncher never spawns a real OS process; it hands back a Handle
// whose output channel the test controls directly, so engine tests never
// touch the real pty package.
type fakeLauncher struct {
	state *fakeHandleState
	out   chan ptyproc.OutputEvent
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{state: &fakeHandleState{}, out: make(chan ptyproc.OutputEvent, 16)}
}

// Launch satisfies ptyproc.Launcher without spawning a process. state
// records the launch count and the last Spec; the returned handle's
// Write/Resize/Kill are not recorded.
func (f *fakeLauncher) Launch(spec ptyproc.Spec) (*ptyproc.Handle, error) {
	f.state.launches++
	f.state.lastSpec = spec
	return ptyproc.NewTestHandle(f.out), nil
}

func TestCreate_InsertsSessionAndStartsReaderPump(t *testing.T) {
	l := newFakeLauncher()
	internal := make(chan action.Action, 8)
	ptyOut := make(chan action.Action, 8)
	e := New(l, internal, ptyOut)

	ws := model.NewWorkspace("demo", "/tmp/demo")
	e.AddWorkspace(ws)

	sess, err := e.Create(CreateParams{WorkspaceID: ws.ID, Agent: model.AgentClaude, Cwd: "/tmp/demo", Rows: 24, Cols: 80})
	assert.NoError(t, err)
	assert.Equal(t, model.SessionRunning, sess.Status)
	assert.Equal(t, 1, l.state.launches)

	l.out <- ptyproc.OutputEvent{Chunk: []byte("hello")}
	select {
	case a := <-ptyOut:
		out, ok := a.(action.PtyOutput)
		assert.True(t, ok)
		assert.Equal(t, sess.ID, out.SessionID)
		assert.Equal(t, []byte("hello"), out.Chunk)
	case <-time.After(time.Second):
		t.Fatal("pumpPtyOutput did not forward chunk")
	}
}

func TestRestart_NewPTYSameIDAppliesResume(t *testing.T) {
	l := newFakeLauncher()
	internal := make(chan action.Action, 8)
	ptyOut := make(chan action.Action, 8)
	e := New(l, internal, ptyOut)

	ws := model.NewWorkspace("demo", "/tmp/demo")
	e.AddWorkspace(ws)
	sess, err := e.Create(CreateParams{WorkspaceID: ws.ID, Agent: model.AgentClaude, Cwd: "/tmp/demo", Rows: 24, Cols: 80})
	assert.NoError(t, err)

	assert.NoError(t, e.Kill(sess.ID))
	assert.Equal(t, model.SessionStopped, e.Session(sess.ID).Status)

	assert.NoError(t, e.Restart(sess.ID, "/tmp/demo", 24, 80))
	assert.Equal(t, sess.ID, e.Session(sess.ID).ID)
	assert.Equal(t, model.SessionRunning, e.Session(sess.ID).Status)
	assert.Equal(t, 2, l.state.launches)
	assert.True(t, l.state.lastSpec.Resume)
}

func TestRestart_TerminalSchedulesDeferredStartCommand(t *testing.T) {
	l := newFakeLauncher()
	internal := make(chan action.Action, 8)
	ptyOut := make(chan action.Action, 8)
	e := New(l, internal, ptyOut)

	ws := model.NewWorkspace("demo", "/tmp/demo")
	e.AddWorkspace(ws)
	sess, err := e.Create(CreateParams{WorkspaceID: ws.ID, Agent: model.AgentTerminal, Cwd: "/tmp/demo", Rows: 24, Cols: 80})
	assert.NoError(t, err)
	sess.StartCommand = "npm run dev"
	assert.NoError(t, e.Kill(sess.ID))

	assert.NoError(t, e.Restart(sess.ID, "/tmp/demo", 24, 80))

	select {
	case a := <-internal:
		d, ok := a.(action.DeferredSendInput)
		assert.True(t, ok)
		assert.Equal(t, []byte("npm run dev\n"), d.Bytes)
	case <-time.After(2 * time.Second):
		t.Fatal("deferred start command was not enqueued")
	}
}

func TestTick_NewlyIdleAfterNoOutput(t *testing.T) {
	l := newFakeLauncher()
	internal := make(chan action.Action, 8)
	ptyOut := make(chan action.Action, 8)
	e := New(l, internal, ptyOut)

	ws := model.NewWorkspace("demo", "/tmp/demo")
	e.AddWorkspace(ws)
	sess, err := e.Create(CreateParams{WorkspaceID: ws.ID, Agent: model.AgentClaude, Cwd: "/tmp/demo", Rows: 24, Cols: 80})
	assert.NoError(t, err)

	t0 := time.Now()
	e.HandlePtyOutput(action.PtyOutput{SessionID: sess.ID, Chunk: []byte("x")}, t0)

	newlyIdle := e.Tick(t0.Add(3 * time.Second))
	assert.Equal(t, []uuid.UUID{sess.ID}, newlyIdle)
}
