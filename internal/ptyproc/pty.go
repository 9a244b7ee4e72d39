// Package ptyproc opens the master/slave PTY pair for a session and owns
// the child process spawned in it. Generalized from the teacher's per-agent
// pty.go, which hardcoded a single `claude` launch; here CommandFor builds
// the right argv for any of the five agent kinds (spec.md §4.1).
package ptyproc

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"

	"github.com/johnespinosa/workbench/internal/model"
)

// OutputChunkSize is the read block size for the PTY reader thread
// (spec.md §4.1: "blocks of up to 4 KiB").
const OutputChunkSize = 4 * 1024

// OutputChanCapacity is the minimum bounded-channel depth for PTY output
// (spec.md §4.1 / §5: "Size ≥ 256 is enough headroom").
const OutputChanCapacity = 256

var readBufPool = sync.Pool{New: func() any { return make([]byte, OutputChunkSize) }}

// Launcher abstracts process creation for testability, mirroring the
// teacher's AgentLauncher interface in pty.go.
type Launcher interface {
	Launch(spec Spec) (*Handle, error)
}

// Spec holds everything needed to spawn a session's PTY.
type Spec struct {
	SessionID                  string
	Agent                      model.AgentKind
	TerminalName               string
	Cwd                        string
	Rows, Cols                 int
	DangerouslySkipPermissions bool
	Resume                     bool
}

// Handle owns one running PTY-attached child process. master is an
// interface (rather than *os.File directly) so tests can substitute an
// in-memory pipe without spawning a real pseudo-terminal.
type Handle struct {
	master   io.ReadWriteCloser
	resizeFn func(rows, cols int) error
	cmd      *exec.Cmd

	out chan OutputEvent
	// done is closed exactly once, by the reader thread, after the final
	// OutputEvent (the exit event) has been sent.
	done chan struct{}
}

// NewTestHandle builds a Handle with no backing process, driven entirely
// by the supplied output channel; Write, Resize and Kill are all no-ops.
// Exists so engine tests can exercise
// session lifecycle without a real PTY. Not used by production code.
func NewTestHandle(out chan OutputEvent) *Handle {
	return &Handle{
		resizeFn: func(int, int) error { return nil },
		out:      out,
		done:     make(chan struct{}),
	}
}

// OutputEvent is either a chunk of PTY output or a terminal exit signal.
// Exactly one of Chunk or Exited is meaningful per event.
type OutputEvent struct {
	Chunk  []byte
	Exited bool
	Err    error
}

// RealLauncher is the production Launcher, spawning genuine OS pseudo-terminals.
type RealLauncher struct{}

// CommandFor builds the program name and argv for an agent kind per the
// table in spec.md §4.1. Codex's resume path replaces argv entirely rather
// than appending a flag (spec.md §9 "Open questions").
func CommandFor(spec Spec) (name string, args []string) {
	switch spec.Agent {
	case model.AgentClaude:
		name = "claude"
		if spec.DangerouslySkipPermissions {
			args = append(args, "--dangerously-skip-permissions")
		}
		if spec.Resume {
			args = append(args, "--continue")
		}
	case model.AgentGemini:
		name = "gemini"
		if spec.DangerouslySkipPermissions {
			args = append(args, "--yolo")
		}
		if spec.Resume {
			args = append(args, "--resume")
		}
	case model.AgentCodex:
		if spec.Resume {
			name = "codex"
			args = []string{"resume", "--last"}
			if spec.DangerouslySkipPermissions {
				args = append(args, "--dangerously-bypass-approvals-and-sandbox")
			}
		} else {
			name = "codex"
			if spec.DangerouslySkipPermissions {
				args = append(args, "--dangerously-bypass-approvals-and-sandbox")
			}
		}
	case model.AgentGrok:
		name = "grok"
		if spec.DangerouslySkipPermissions {
			args = append(args, "--permission-mode", "full")
		}
		if spec.Resume {
			args = append(args, "--continue")
		}
	default: // model.AgentTerminal
		name = os.Getenv("SHELL")
		if name == "" {
			name = "/bin/bash"
		}
	}
	return name, args
}

// Launch spawns the child in a new PTY sized rows x cols and starts the
// reader thread that drains the master into a bounded channel.
func (RealLauncher) Launch(spec Spec) (*Handle, error) {
	name, args := CommandFor(spec)
	cmd := exec.Command(name, args...)
	cmd.Dir = spec.Cwd
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	master, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(spec.Rows),
		Cols: uint16(spec.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}

	h := &Handle{
		master:   master,
		resizeFn: func(rows, cols int) error { return pty.Setsize(master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}) },
		cmd:      cmd,
		out:      make(chan OutputEvent, OutputChanCapacity),
		done:     make(chan struct{}),
	}
	go h.readLoop()
	return h, nil
}

func (h *Handle) readLoop() {
	defer close(h.done)
	for {
		buf := readBufPool.Get().([]byte)
		n, err := h.master.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			readBufPool.Put(buf)
			// Blocking send: producers must never drop PTY bytes
			// (spec.md §4.1 backpressure requirement).
			h.out <- OutputEvent{Chunk: chunk}
			continue
		}
		readBufPool.Put(buf)
		if err != nil {
			h.out <- OutputEvent{Exited: true, Err: err}
			return
		}
	}
}

// Output returns the channel of output events for this handle.
func (h *Handle) Output() <-chan OutputEvent { return h.out }

// Write sends bytes to the child's stdin. Failures are logged by the caller
// and swallowed (spec.md §7 error kind 3).
func (h *Handle) Write(b []byte) error {
	if h.master == nil {
		return nil
	}
	_, err := h.master.Write(b)
	return err
}

// Resize applies a new terminal size via TIOCSWINSZ.
func (h *Handle) Resize(rows, cols int) error {
	return h.resizeFn(rows, cols)
}

// Kill terminates the child and releases the master fd.
func (h *Handle) Kill() error {
	if h.cmd != nil && h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
	if h.master == nil {
		return nil
	}
	return h.master.Close()
}

// IsAlive reports whether the child process has not yet exited.
func (h *Handle) IsAlive() bool {
	if h.cmd != nil && h.cmd.ProcessState != nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}
