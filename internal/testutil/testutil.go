// Package testutil provides sandboxed files and configuration helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnv is a per-test scratch directory. Paths handed to it are relative
// to the root and may not climb out of it.
type TestEnv struct {
	t    testing.TB
	root string
}

// NewTestEnv creates a TestEnv rooted at t.TempDir().
func NewTestEnv(t testing.TB) *TestEnv {
	t.Helper()
	return &TestEnv{t: t, root: t.TempDir()}
}

// RootDir returns the sandbox root.
func (e *TestEnv) RootDir() string { return e.root }

// Path joins elem onto the root and fails the test if the result escapes it.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()
	p := filepath.Join(append([]string{e.root}, elem...)...)
	if !e.isWithinSandbox(p) {
		e.t.Fatalf("path %q escapes test sandbox %q", p, e.root)
	}
	return p
}

func (e *TestEnv) isWithinSandbox(p string) bool {
	rel, err := filepath.Rel(e.root, filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// WriteFileString writes content to name, creating parent directories.
func (e *TestEnv) WriteFileString(name, content string) {
	e.t.Helper()
	p := e.Path(name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(e.t, os.WriteFile(p, []byte(content), 0o644))
}

// ReadFile returns the contents of name.
func (e *TestEnv) ReadFile(name string) []byte {
	e.t.Helper()
	b, err := os.ReadFile(e.Path(name))
	require.NoError(e.t, err)
	return b
}

// ReadFileString returns the contents of name as a string.
func (e *TestEnv) ReadFileString(name string) string {
	e.t.Helper()
	return string(e.ReadFile(name))
}

// FileExists reports whether name exists in the sandbox.
func (e *TestEnv) FileExists(name string) bool {
	e.t.Helper()
	_, err := os.Stat(e.Path(name))
	return err == nil
}

func (e *TestEnv) RequireFileExists(name string) {
	e.t.Helper()
	require.FileExists(e.t, e.Path(name))
}

func (e *TestEnv) AssertFileContains(name, substr string) {
	e.t.Helper()
	assert.Contains(e.t, e.ReadFileString(name), substr, "file %s", name)
}

// SetEnv sets an environment variable for the rest of the test.
func (e *TestEnv) SetEnv(key, value string) {
	e.t.Helper()
	e.t.Setenv(key, value)
}
