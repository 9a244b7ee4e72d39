package activity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTick_NewlyIdleAfterThreshold(t *testing.T) {
	tr := New()
	s := uuid.New()
	t0 := time.Now()

	tr.Touch(s, t0)
	candidates := []SessionView{{ID: s, Running: true, IsAgent: true, WorkspaceWorking: true}}

	// Still working: within threshold.
	newlyIdle := tr.Tick(candidates, t0.Add(1*time.Second))
	assert.Empty(t, newlyIdle)
	assert.False(t, tr.IsIdle(s))

	// Past threshold: goes idle.
	newlyIdle = tr.Tick(candidates, t0.Add(3*time.Second))
	assert.Equal(t, []uuid.UUID{s}, newlyIdle)
	assert.True(t, tr.IsIdle(s))

	// Subsequent ticks with no new output: not newly idle again.
	newlyIdle = tr.Tick(candidates, t0.Add(4*time.Second))
	assert.Empty(t, newlyIdle)
	assert.True(t, tr.IsIdle(s))
}

func TestTick_OutputEvictsFromQueue(t *testing.T) {
	tr := New()
	s := uuid.New()
	t0 := time.Now()
	tr.Touch(s, t0)
	candidates := []SessionView{{ID: s, Running: true, IsAgent: true, WorkspaceWorking: true}}

	tr.Tick(candidates, t0.Add(3*time.Second))
	assert.True(t, tr.IsIdle(s))

	tr.Touch(s, t0.Add(3100*time.Millisecond))
	assert.False(t, tr.IsIdle(s))
}

func TestTick_NonCandidatesNeverQueue(t *testing.T) {
	tr := New()
	s := uuid.New()
	t0 := time.Now()

	candidates := []SessionView{{ID: s, Running: true, IsAgent: false, WorkspaceWorking: true}}
	newlyIdle := tr.Tick(candidates, t0.Add(5*time.Second))
	assert.Empty(t, newlyIdle)
	assert.False(t, tr.IsIdle(s))
}

func TestTick_PausedWorkspaceRemovesFromQueue(t *testing.T) {
	tr := New()
	s := uuid.New()
	t0 := time.Now()
	tr.Touch(s, t0)

	working := []SessionView{{ID: s, Running: true, IsAgent: true, WorkspaceWorking: true}}
	tr.Tick(working, t0.Add(3*time.Second))
	assert.True(t, tr.IsIdle(s))

	paused := []SessionView{{ID: s, Running: true, IsAgent: true, WorkspaceWorking: false}}
	tr.Tick(paused, t0.Add(4*time.Second))
	assert.False(t, tr.IsIdle(s))
}
