package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/johnespinosa/workbench/internal/action"
)

func TestNext_TerminalBeatsPTYBeatsInternal(t *testing.T) {
	r := New(16)
	r.Internal() <- action.Tick{}
	r.PTYOutput() <- action.PtyOutput{}
	r.Terminal() <- action.KeyPress{Bytes: []byte("a")}

	ctx := context.Background()
	a, ok := r.Next(ctx)
	assert.True(t, ok)
	assert.IsType(t, action.KeyPress{}, a)

	a, ok = r.Next(ctx)
	assert.True(t, ok)
	assert.IsType(t, action.PtyOutput{}, a)

	a, ok = r.Next(ctx)
	assert.True(t, ok)
	assert.IsType(t, action.Tick{}, a)
}

func TestNext_BlocksUntilActionArrives(t *testing.T) {
	r := New(16)
	done := make(chan action.Action, 1)
	go func() {
		a, _ := r.Next(context.Background())
		done <- a
	}()

	time.Sleep(10 * time.Millisecond)
	r.Internal() <- action.Quit{}

	select {
	case a := <-done:
		assert.IsType(t, action.Quit{}, a)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after action arrived")
	}
}

func TestNext_ContextCancelUnblocks(t *testing.T) {
	r := New(16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() {
		_, ok := r.Next(ctx)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Next did not unblock on context cancellation")
	}
}
