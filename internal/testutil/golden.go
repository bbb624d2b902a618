package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv names the environment variable that switches golden
// assertions to rewriting their files.
const UpdateGoldenEnv = "UPDATE_GOLDEN"

// GoldenHelper compares output against files in a golden directory.
type GoldenHelper struct {
	t      testing.TB
	dir    string
	update bool
}

func NewGoldenHelper(t testing.TB, dir string) *GoldenHelper {
	t.Helper()
	return &GoldenHelper{t: t, dir: dir, update: os.Getenv(UpdateGoldenEnv) == "true"}
}

func (g *GoldenHelper) GoldenPath(name string) string { return filepath.Join(g.dir, name) }

func (g *GoldenHelper) IsUpdateMode() bool { return g.update }

// AssertGoldenJSON compares actual with the golden file as JSON, so key order
// and whitespace do not matter.
func (g *GoldenHelper) AssertGoldenJSON(name string, actual []byte) {
	g.t.Helper()
	p := g.GoldenPath(name)
	if g.update {
		require.NoError(g.t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(g.t, os.WriteFile(p, actual, 0o644))
		g.t.Logf("updated %s", p)
		return
	}
	want, err := os.ReadFile(p)
	require.NoError(g.t, err, "golden file %s", p)
	assert.JSONEq(g.t, string(want), string(actual), "golden file %s", name)
}
