package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestTestEnv_Path(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("subdir", "file.txt")
	assert.True(t, filepath.IsAbs(path))
	assert.Contains(t, path, "subdir")
	assert.Contains(t, path, "file.txt")
}

func TestTestEnv_isWithinSandbox(t *testing.T) {
	env := NewTestEnv(t)

	assert.True(t, env.isWithinSandbox(env.RootDir()))
	assert.True(t, env.isWithinSandbox(filepath.Join(env.RootDir(), "a", "b")))
	assert.False(t, env.isWithinSandbox(filepath.Dir(env.RootDir())))
	assert.False(t, env.isWithinSandbox(env.RootDir()+"-sibling"))
}

func TestTestEnv_WriteReadFileString(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/parts.csv", "mpn,manufacturer\n")

	assert.Equal(t, "mpn,manufacturer\n", env.ReadFileString("nested/parts.csv"))
	assert.True(t, env.FileExists("nested/parts.csv"))
	assert.False(t, env.FileExists("missing.csv"))
	env.RequireFileExists("nested/parts.csv")
	env.AssertFileContains("nested/parts.csv", "manufacturer")
}

func TestTestEnv_SetEnv_Cleanup(t *testing.T) {
	key := "PARTLY_TESTUTIL_ENV"
	_ = os.Unsetenv(key)

	t.Run("inner", func(t *testing.T) {
		env := NewTestEnv(t)
		env.SetEnv(key, "value")
		assert.Equal(t, "value", os.Getenv(key))
	})

	_, ok := os.LookupEnv(key)
	assert.False(t, ok)
}

func TestGoldenHelper_AssertGoldenJSON(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteFileString("golden/out.json", `{"count": 1, "results": []}`)

	g := NewGoldenHelper(t, env.Path("golden"))
	if g.IsUpdateMode() {
		t.Skip("golden update mode")
	}

	assert.Equal(t, env.Path("golden", "out.json"), g.GoldenPath("out.json"))
	g.AssertGoldenJSON("out.json", []byte(`{"results":[],"count":1}`))
}

func TestResetConfig_AppliesDefaults(t *testing.T) {
	t.Run("inner", func(t *testing.T) {
		ResetConfig(t)
		viper.Set("enrich.workers", 99)
		assert.Equal(t, 99, viper.GetInt("enrich.workers"))
	})

	assert.False(t, viper.IsSet("enrich.workers"))
}

func TestSetTestConfig(t *testing.T) {
	env := NewTestEnv(t)

	cfg := SetTestConfig(t, env, WithWorkers(3), WithCatalog("parts.csv"))

	assert.Equal(t, 3, cfg.Enrich.Workers)
	assert.Equal(t, "parts.csv", cfg.Datasheet.Catalog)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Enrich.LookupTimeout)
	assert.Equal(t, env.Path("cache.db"), cfg.Cache.DBFile)
}

func TestSetViperValue(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("test.key", "before")
	t.Run("inner", func(t *testing.T) {
		SetViperValue(t, "test.key", "test-value")
		assert.Equal(t, "test-value", viper.GetString("test.key"))
	})
	assert.Equal(t, "before", viper.GetString("test.key"))
}
