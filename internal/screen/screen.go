// Package screen wraps a VT100 emulator instance per session, grounded on
// the teacher's use of charmbracelet/x/vt in pty.go (vt.NewSafeEmulator,
// Write, Resize, Render). It adds the query-response forwarding loop the
// teacher calls forwardResponses, generalized to any session kind.
package screen

import (
	"io"
	"sync"

	"github.com/charmbracelet/x/vt"
)

// Buffer owns one VT100 emulator and serializes access to it: the main
// loop (writes, renders) and the ForwardResponses goroutine both touch it
// concurrently.
type Buffer struct {
	mu  sync.Mutex
	vt  *vt.SafeEmulator
	out io.Writer // PTY master; query responses get written back here
}

// New creates a buffer sized rows x cols.
func New(rows, cols int, out io.Writer) *Buffer {
	return &Buffer{
		vt:  vt.NewSafeEmulator(cols, rows),
		out: out,
	}
}

// Write feeds PTY output into the emulator.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vt.Write(p)
}

// Resize changes the emulator's logical size, following a PTY TIOCSWINSZ
// resize (spec.md §4.2).
func (b *Buffer) Resize(rows, cols int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vt.Resize(cols, rows)
}

// Render returns the current screen contents as styled lines ready for
// display (spec.md §4.2 "Render").
func (b *Buffer) Render() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vt.Render()
}

// SetOutput wires (or rewires) the writer query responses are sent to,
// since the PTY handle is typically created after the buffer (engine.Create
// builds the buffer before it knows the handle succeeded).
func (b *Buffer) SetOutput(out io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = out
}

// Close releases the emulator's internal resources.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vt.Close()
}

// DrainQueryResponses reads one batch of pending terminal query responses
// (cursor position reports, device attribute queries) the emulator has
// queued for the application and writes them back to the PTY master.
// Returns io.EOF once the emulator is closed.
func (b *Buffer) DrainQueryResponses() error {
	buf := make([]byte, 256)
	n, err := b.vt.Read(buf)
	b.mu.Lock()
	out := b.out
	b.mu.Unlock()

	if n > 0 && out != nil {
		if _, werr := out.Write(buf[:n]); werr != nil {
			return werr
		}
	}
	return err
}

// ForwardResponses loops on DrainQueryResponses until the emulator closes,
// mirroring the teacher's forwardResponses goroutine in pty.go. The engine
// starts one of these per live session alongside its PTY output pump.
func (b *Buffer) ForwardResponses() {
	for {
		if err := b.DrainQueryResponses(); err != nil {
			return
		}
	}
}
