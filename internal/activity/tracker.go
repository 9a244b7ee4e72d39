// Package activity tracks per-session "last byte received" timestamps and
// derives the idle queue each tick (spec.md §4.4). There is no teacher
// equivalent for this concern; the queue recomputation algorithm follows
// the candidates/working/retain/append steps spelled out verbatim.
package activity

import (
	"time"

	"github.com/google/uuid"
)

// IdleThreshold is the "now - last_activity" cutoff past which a session
// counts as idle rather than working (spec.md §4.4).
const IdleThreshold = 2 * time.Second

// SessionView is the subset of session/workspace state the tracker needs
// to classify candidacy, supplied by the engine each tick.
type SessionView struct {
	ID               uuid.UUID
	Running          bool
	IsAgent          bool
	WorkspaceWorking bool
}

// Tracker owns last-activity timestamps and the FIFO idle queue.
type Tracker struct {
	lastActivity map[uuid.UUID]time.Time
	queue        []uuid.UUID
	inQueue      map[uuid.UUID]bool
}

// New constructs an empty tracker.
func New() *Tracker {
	return &Tracker{
		lastActivity: make(map[uuid.UUID]time.Time),
		inQueue:      make(map[uuid.UUID]bool),
	}
}

// Touch records output activity for a session, evicting it from the idle
// queue if present (spec.md §4.4 "last_activity[id] = now on every
// PtyOutput").
func (t *Tracker) Touch(id uuid.UUID, now time.Time) {
	t.lastActivity[id] = now
	if t.inQueue[id] {
		t.removeFromQueue(id)
	}
}

// Forget drops all tracked state for a session, called on session removal.
func (t *Tracker) Forget(id uuid.UUID) {
	delete(t.lastActivity, id)
	if t.inQueue[id] {
		t.removeFromQueue(id)
	}
}

func (t *Tracker) removeFromQueue(id uuid.UUID) {
	for i, q := range t.queue {
		if q == id {
			t.queue = append(t.queue[:i], t.queue[i+1:]...)
			break
		}
	}
	delete(t.inQueue, id)
}

func (t *Tracker) isWorking(id uuid.UUID, now time.Time) bool {
	last, ok := t.lastActivity[id]
	if !ok {
		// Never received output: treat as working until its first byte
		// arrives, so a freshly-spawned agent isn't immediately idle.
		return true
	}
	return now.Sub(last) < IdleThreshold
}

// Tick recomputes the idle queue against the given candidate set and
// returns the ids that went newly idle this tick (spec.md §4.4 steps 1-4).
func (t *Tracker) Tick(candidates []SessionView, now time.Time) (newlyIdle []uuid.UUID) {
	candidateSet := make(map[uuid.UUID]bool, len(candidates))
	for _, c := range candidates {
		if c.Running && c.IsAgent && c.WorkspaceWorking {
			candidateSet[c.ID] = true
		}
	}

	// Retain in queue only ids still in candidates.
	retained := t.queue[:0:0]
	for _, id := range t.queue {
		if candidateSet[id] {
			retained = append(retained, id)
		} else {
			delete(t.inQueue, id)
		}
	}
	t.queue = retained

	// Append any candidate not working and not already queued.
	for _, c := range candidates {
		if !candidateSet[c.ID] || t.inQueue[c.ID] {
			continue
		}
		if !t.isWorking(c.ID, now) {
			t.queue = append(t.queue, c.ID)
			t.inQueue[c.ID] = true
			newlyIdle = append(newlyIdle, c.ID)
		}
	}
	return newlyIdle
}

// Queue returns the current idle queue in FIFO-of-first-idle-time order.
func (t *Tracker) Queue() []uuid.UUID {
	out := make([]uuid.UUID, len(t.queue))
	copy(out, t.queue)
	return out
}

// IsIdle reports whether a session is currently in the idle queue.
func (t *Tracker) IsIdle(id uuid.UUID) bool {
	return t.inQueue[id]
}
