// Package model holds the pure value types shared by the core: workspaces,
// sessions, todos, parallel tasks and attempts. Nothing in this package
// performs I/O; it is safe to construct, copy and compare from any goroutine
// as long as the caller owns the value.
package model

import "github.com/google/uuid"

// NewID returns a fresh random identifier for any entity in the system.
func NewID() uuid.UUID {
	return uuid.New()
}
