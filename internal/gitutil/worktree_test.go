package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type call struct {
	dir  string
	args []string
}

type fakeRunner struct {
	calls   []call
	isRepo  bool
	failAdd bool
}

func (f *fakeRunner) Run(dir string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{dir, args})
	if len(args) > 0 && args[0] == "rev-parse" && args[len(args)-1] == "--is-inside-work-tree" {
		if f.isRepo {
			return []byte("true\n"), nil
		}
		return []byte("false\n"), assertErr
	}
	if len(args) >= 2 && args[0] == "worktree" && args[1] == "add" {
		if f.failAdd && !contains(args, "-b") {
			return nil, assertErr
		}
	}
	return []byte("ok"), nil
}

var assertErr = &fakeError{}

type fakeError struct{}

func (*fakeError) Error() string { return "fake git error" }

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func TestAddWorktree_CreatesBranchWhenMissing(t *testing.T) {
	r := &fakeRunner{failAdd: true}
	path, err := AddWorktree(r, "/proj", "/state/worktrees", "abcd1234", "Claude", "parallel-abcd1234/claude")
	assert.NoError(t, err)
	assert.Contains(t, path, "abcd1234")
	assert.Contains(t, path, "claude")
}

func TestResolve_Discard(t *testing.T) {
	r := &fakeRunner{}
	err := Resolve(r, "/proj", "/state/worktrees/abcd1234/claude", "parallel-abcd1234/claude", DispositionDiscard)
	assert.NoError(t, err)

	found := false
	for _, c := range r.calls {
		if len(c.args) > 0 && c.args[0] == "worktree" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestResolve_Keep_NoGitCalls(t *testing.T) {
	r := &fakeRunner{}
	err := Resolve(r, "/proj", "/state/worktrees/abcd1234/claude", "parallel-abcd1234/claude", DispositionKeep)
	assert.NoError(t, err)
	assert.Empty(t, r.calls)
}
