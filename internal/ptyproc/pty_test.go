package ptyproc

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnespinosa/workbench/internal/model"
)

func TestCommandFor_ClaudeFresh(t *testing.T) {
	name, args := CommandFor(Spec{Agent: model.AgentClaude, DangerouslySkipPermissions: true})
	assert.Equal(t, "claude", name)
	assert.Equal(t, []string{"--dangerously-skip-permissions"}, args)
}

func TestCommandFor_ClaudeResume(t *testing.T) {
	name, args := CommandFor(Spec{Agent: model.AgentClaude, Resume: true})
	assert.Equal(t, "claude", name)
	assert.Equal(t, []string{"--continue"}, args)
}

func TestCommandFor_GeminiResume(t *testing.T) {
	name, args := CommandFor(Spec{Agent: model.AgentGemini, DangerouslySkipPermissions: true, Resume: true})
	assert.Equal(t, "gemini", name)
	assert.Equal(t, []string{"--yolo", "--resume"}, args)
}

func TestCommandFor_CodexResumeReplacesArgv(t *testing.T) {
	name, args := CommandFor(Spec{Agent: model.AgentCodex, DangerouslySkipPermissions: true, Resume: true})
	assert.Equal(t, "codex", name)
	assert.Equal(t, []string{"resume", "--last", "--dangerously-bypass-approvals-and-sandbox"}, args)
}

func TestCommandFor_GrokFresh(t *testing.T) {
	name, args := CommandFor(Spec{Agent: model.AgentGrok, DangerouslySkipPermissions: true})
	assert.Equal(t, "grok", name)
	assert.Equal(t, []string{"--permission-mode", "full"}, args)
}

func TestCommandFor_TerminalUsesShellEnv(t *testing.T) {
	old := os.Getenv("SHELL")
	defer os.Setenv("SHELL", old)

	os.Setenv("SHELL", "/usr/bin/zsh")
	name, args := CommandFor(Spec{Agent: model.AgentTerminal})
	assert.Equal(t, "/usr/bin/zsh", name)
	assert.Empty(t, args)

	os.Unsetenv("SHELL")
	name, _ = CommandFor(Spec{Agent: model.AgentTerminal})
	assert.Equal(t, "/bin/bash", name)
}
