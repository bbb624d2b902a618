package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/lepinkainen/partly/internal/errors"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)
	SetDefaults()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 8, cfg.Enrich.Workers)
	assert.Equal(t, 500, cfg.Enrich.MaxBatch)
	assert.Equal(t, 15*time.Second, cfg.Enrich.LookupTimeout)
	assert.InDelta(t, 0.5, cfg.Ranking.ManufacturerWeight, 1e-9)
	assert.InDelta(t, 0.35, cfg.Ranking.ConfidenceWeight, 1e-9)
	assert.InDelta(t, 0.15, cfg.Ranking.CompletenessWeight, 1e-9)
	assert.InDelta(t, 0.1, cfg.Ranking.Margin, 1e-9)
	assert.Equal(t, 3, cfg.Ranking.TopN)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 720*time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.History.Enabled)
	assert.False(t, cfg.HasDatasheetSource())
}

func TestLoad_APIKeyFromEnvironment(t *testing.T) {
	resetViper(t)
	t.Setenv("DATASHEET_API_KEY", "secret")
	SetDefaults()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Datasheet.APIKey)
}

func TestLoad_Overrides(t *testing.T) {
	resetViper(t)
	SetDefaults()
	viper.Set("enrich.workers", 2)
	viper.Set("datasheet.catalog", "parts.csv")
	viper.Set("server.cors_origins", []string{"https://example.com"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Enrich.Workers)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.HasDatasheetSource())
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value any
		field string
	}{
		{name: "zero workers", key: "enrich.workers", value: 0, field: "enrich.workers"},
		{name: "zero max batch", key: "enrich.max_batch", value: 0, field: "enrich.max_batch"},
		{name: "zero timeout", key: "enrich.lookup_timeout", value: "0s", field: "enrich.lookup_timeout"},
		{name: "negative weight", key: "ranking.confidence_weight", value: -1.0, field: "ranking"},
		{name: "negative margin", key: "ranking.margin", value: -0.1, field: "ranking.margin"},
		{name: "top n below two", key: "ranking.top_n", value: 1, field: "ranking.top_n"},
		{name: "negative retries", key: "datasheet.retry_attempts", value: -1, field: "datasheet.retry_attempts"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resetViper(t)
			SetDefaults()
			viper.Set(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)

			var vErr *errs.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestValidate_History(t *testing.T) {
	resetViper(t)
	SetDefaults()

	cfg, err := Load()
	require.NoError(t, err)

	cfg.History.Enabled = true
	cfg.History.Mode = HistoryModeRemote
	assert.Error(t, cfg.Validate())

	cfg.History.RemoteURL = "http://localhost:8001"
	assert.NoError(t, cfg.Validate())

	cfg.History.Mode = "s3"
	assert.Error(t, cfg.Validate())

	cfg.History.Mode = HistoryModeLocal
	cfg.History.DBFile = ""
	assert.Error(t, cfg.Validate())
}
