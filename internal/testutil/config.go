package testutil

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/partly/internal/config"
)

// ResetConfig resets viper to the registered defaults and resets it again
// when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()

	t.Cleanup(viper.Reset)
}

// SetTestConfigOption is a functional option for configuring test config.
type SetTestConfigOption func()

// WithValue sets an arbitrary viper key.
func WithValue(key string, value any) SetTestConfigOption {
	return func() {
		viper.Set(key, value)
	}
}

// WithWorkers sets the enrichment worker count.
func WithWorkers(n int) SetTestConfigOption {
	return WithValue("enrich.workers", n)
}

// WithCatalog points the datasheet lookup at a CSV catalog.
func WithCatalog(path string) SetTestConfigOption {
	return WithValue("datasheet.catalog", path)
}

// WithCache enables or disables the lookup cache.
func WithCache(enabled bool) SetTestConfigOption {
	return WithValue("cache.enabled", enabled)
}

// SetTestConfig resets viper, points every file-backed setting into env and
// returns the loaded configuration. The cache is disabled unless an option
// turns it back on.
func SetTestConfig(t *testing.T, env *TestEnv, opts ...SetTestConfigOption) config.Config {
	t.Helper()

	ResetConfig(t)

	viper.Set("cache.enabled", false)
	viper.Set("cache.dbfile", env.Path("cache.db"))
	viper.Set("history.dbfile", env.Path("history.db"))
	viper.Set("enrich.lookup_timeout", "2s")

	for _, opt := range opts {
		opt()
	}

	cfg, err := config.Load()
	require.NoError(t, err, "test configuration should be valid")
	return cfg
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset, so a previously unset key stays set
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}
