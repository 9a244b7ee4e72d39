package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty is an optional operator-assigned tag parsed from suggested
// todo descriptions (spec.md §8 "Tag parsing").
type Difficulty int

const (
	DifficultyNone Difficulty = iota
	DifficultyEasy
	DifficultyMed
	DifficultyHard
)

// Importance is an optional operator-assigned tag, independent of Difficulty.
type Importance int

const (
	ImportanceNone Importance = iota
	ImportanceLow
	ImportanceMed
	ImportanceHigh
	ImportanceCritical
)

// TodoStatus models the lifecycle in spec.md §3.
type TodoStatus int

const (
	TodoSuggested TodoStatus = iota
	TodoPending
	TodoQueued
	TodoInProgress
	TodoReadyForReview
	TodoDone
	TodoArchived
)

// Todo is one work item inside a workspace.
type Todo struct {
	ID          uuid.UUID
	Description string
	Difficulty  Difficulty
	Importance  Importance
	Status      TodoStatus
	CreatedAt   time.Time

	// SessionID carries the agent working this todo while InProgress or
	// ReadyForReview; must reference a live session in the same workspace.
	SessionID *uuid.UUID
}

// NewTodo constructs a Pending todo (approved suggestions skip Suggested).
func NewTodo(description string) *Todo {
	return &Todo{
		ID:          NewID(),
		Description: description,
		Status:      TodoPending,
		CreatedAt:   time.Now(),
	}
}

// NewSuggestedTodo constructs a todo awaiting operator approval.
func NewSuggestedTodo(description string) *Todo {
	t := NewTodo(description)
	t.Status = TodoSuggested
	return t
}

// Approve transitions Suggested -> Pending.
func (t *Todo) Approve() {
	if t.Status == TodoSuggested {
		t.Status = TodoPending
	}
}

// Queue transitions Pending -> Queued (used when autorun has no idle agent
// available at dispatch time, spec.md §4.5 "Manual run").
func (t *Todo) Queue() {
	if t.Status == TodoPending {
		t.Status = TodoQueued
	}
}

// Dispatch transitions Pending|Queued -> InProgress(session).
func (t *Todo) Dispatch(sessionID uuid.UUID) {
	t.Status = TodoInProgress
	id := sessionID
	t.SessionID = &id
}

// MarkReadyForReview transitions InProgress(s) -> ReadyForReview(s), called
// when the carried session goes newly idle (spec.md §4.5).
func (t *Todo) MarkReadyForReview() {
	if t.Status == TodoInProgress {
		t.Status = TodoReadyForReview
	}
}

// Complete transitions ReadyForReview -> Done.
func (t *Todo) Complete() {
	t.Status = TodoDone
	t.SessionID = nil
}

// Archive transitions Done -> Archived (or Suggested -> deleted by caller).
func (t *Todo) Archive() {
	t.Status = TodoArchived
}

var (
	difficultyTag = regexp.MustCompile(`(?i)\[(easy|med|hard)\]`)
	importanceTag = regexp.MustCompile(`(?i)\[(low|med|high|critical)\]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// ParseSuggestedLine extracts an optional [EASY|MED|HARD] difficulty tag and
// an optional [LOW|MED|HIGH|CRITICAL] importance tag from a suggested-todo
// line, stripping both from the visible description and collapsing
// remaining whitespace to single spaces (spec.md §8 "Tag parsing").
func ParseSuggestedLine(line string) (description string, difficulty Difficulty, importance Importance) {
	description = line

	if m := difficultyTag.FindStringSubmatch(description); m != nil {
		switch strings.ToLower(m[1]) {
		case "easy":
			difficulty = DifficultyEasy
		case "med":
			difficulty = DifficultyMed
		case "hard":
			difficulty = DifficultyHard
		}
		// Strip only the matched tag so a later [MED] stays available as
		// the importance tag.
		description = strings.Replace(description, m[0], "", 1)
	}

	if m := importanceTag.FindStringSubmatch(description); m != nil {
		switch strings.ToLower(m[1]) {
		case "low":
			importance = ImportanceLow
		case "med":
			importance = ImportanceMed
		case "high":
			importance = ImportanceHigh
		case "critical":
			importance = ImportanceCritical
		}
		description = importanceTag.ReplaceAllString(description, "")
	}

	description = strings.TrimSpace(whitespaceRun.ReplaceAllString(description, " "))
	return description, difficulty, importance
}
