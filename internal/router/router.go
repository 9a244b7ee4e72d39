// Package router implements the strict-priority action drain described in
// spec.md §4.7: terminal events outrank PTY output, which outranks
// internally enqueued actions, so that key input is never starved by busy
// agent children. Bubbletea's runtime is a single FIFO tea.Msg channel and
// cannot express this ordering directly, so the priority drain lives here
// as a standalone, directly unit-testable component; internal/tui supplies
// it with terminal events and feeds its output back into the bubbletea
// Update loop.
package router

import (
	"context"

	"github.com/johnespinosa/workbench/internal/action"
)

// Router owns the three channels and drains them by priority.
type Router struct {
	terminal chan action.Action
	ptyOut   chan action.Action
	internal chan action.Action
}

// New constructs a router. ptyCapacity should be >= 256 per spec.md §4.1;
// terminal and internal channels are given headroom but are not expected
// to ever back up in practice.
func New(ptyCapacity int) *Router {
	return &Router{
		terminal: make(chan action.Action, 64),
		ptyOut:   make(chan action.Action, ptyCapacity),
		internal: make(chan action.Action, 1024),
	}
}

// Terminal returns the send side for terminal-event producers.
func (r *Router) Terminal() chan<- action.Action { return r.terminal }

// PTYOutput returns the send side for PTY reader threads.
func (r *Router) PTYOutput() chan<- action.Action { return r.ptyOut }

// Internal returns the send side for self-enqueued work.
func (r *Router) Internal() chan<- action.Action { return r.internal }

// Next returns the next action to process, trying terminal, then PTY
// output, then internal, non-blocking; if all three are empty it blocks on
// whichever becomes ready first (spec.md §4.7 "Priority").
func (r *Router) Next(ctx context.Context) (action.Action, bool) {
	if a, ok := tryRecv(r.terminal); ok {
		return a, true
	}
	if a, ok := tryRecv(r.ptyOut); ok {
		return a, true
	}
	if a, ok := tryRecv(r.internal); ok {
		return a, true
	}

	select {
	case <-ctx.Done():
		return nil, false
	case a := <-r.terminal:
		return a, true
	case a := <-r.ptyOut:
		return a, true
	case a := <-r.internal:
		return a, true
	}
}

func tryRecv(ch chan action.Action) (action.Action, bool) {
	select {
	case a := <-ch:
		return a, true
	default:
		return nil, false
	}
}
