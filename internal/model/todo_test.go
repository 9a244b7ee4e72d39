package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSuggestedLine_DifficultyAndImportance(t *testing.T) {
	desc, diff, imp := ParseSuggestedLine("Fix   the    [HARD] login bug [CRITICAL]")
	assert.Equal(t, "Fix the login bug", desc)
	assert.Equal(t, DifficultyHard, diff)
	assert.Equal(t, ImportanceCritical, imp)
}

func TestParseSuggestedLine_NoTags(t *testing.T) {
	desc, diff, imp := ParseSuggestedLine("Refactor the parser")
	assert.Equal(t, "Refactor the parser", desc)
	assert.Equal(t, DifficultyNone, diff)
	assert.Equal(t, ImportanceNone, imp)
}

func TestParseSuggestedLine_CaseInsensitive(t *testing.T) {
	desc, diff, imp := ParseSuggestedLine("[easy] tiny fix [low]")
	assert.Equal(t, "tiny fix", desc)
	assert.Equal(t, DifficultyEasy, diff)
	assert.Equal(t, ImportanceLow, imp)
}

func TestTodoLifecycle(t *testing.T) {
	todo := NewSuggestedTodo("Add tests")
	assert.Equal(t, TodoSuggested, todo.Status)

	todo.Approve()
	assert.Equal(t, TodoPending, todo.Status)

	todo.Queue()
	assert.Equal(t, TodoQueued, todo.Status)

	sid := NewID()
	todo.Dispatch(sid)
	assert.Equal(t, TodoInProgress, todo.Status)
	assert.Equal(t, sid, *todo.SessionID)

	todo.MarkReadyForReview()
	assert.Equal(t, TodoReadyForReview, todo.Status)

	todo.Complete()
	assert.Equal(t, TodoDone, todo.Status)
	assert.Nil(t, todo.SessionID)

	todo.Archive()
	assert.Equal(t, TodoArchived, todo.Status)
}
