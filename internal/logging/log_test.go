package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitAndLog_WritesLines(t *testing.T) {
	resetForTest()
	path := filepath.Join(t.TempDir(), "debug.log")

	cleanup, err := Init(path, "workbench ")
	assert.NoError(t, err)
	defer cleanup()

	Info(CatEngine, "session created", "id", "abc-123")
	Error(CatGit, "worktree add failed")

	cleanup()
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "session created")
	assert.Contains(t, string(data), "id=abc-123")
	assert.Contains(t, string(data), "worktree add failed")
}

func TestSetMinLevel_FiltersBelowThreshold(t *testing.T) {
	resetForTest()
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path, "workbench ")
	assert.NoError(t, err)
	defer cleanup()

	SetMinLevel(LevelWarn)
	Debug(CatUI, "should not appear")
	Warn(CatUI, "should appear")
	cleanup()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "should not appear")
	assert.Contains(t, string(data), "should appear")
}
