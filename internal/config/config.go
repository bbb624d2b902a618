// Package config turns viper settings into the typed configuration used by
// the server and CLI.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	errs "github.com/lepinkainen/partly/internal/errors"
)

// History storage modes
const (
	HistoryModeLocal  = "local"
	HistoryModeRemote = "remote"
)

// Config is the fully resolved configuration.
type Config struct {
	Server        ServerConfig
	Enrich        EnrichConfig
	Ranking       RankingConfig
	Manufacturers ManufacturersConfig
	Datasheet     DatasheetConfig
	Cache         CacheConfig
	History       HistoryConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// EnrichConfig controls batch execution.
type EnrichConfig struct {
	Workers       int
	MaxBatch      int
	LookupTimeout time.Duration
}

// RankingConfig holds the merge/rank weights and thresholds.
type RankingConfig struct {
	ManufacturerWeight float64
	ConfidenceWeight   float64
	CompletenessWeight float64
	Margin             float64
	TopN               int
}

// ManufacturersConfig points at an optional alias file.
type ManufacturersConfig struct {
	File string
}

// DatasheetConfig configures the lookup sources.
type DatasheetConfig struct {
	BaseURL       string
	APIKey        string
	RatePerSecond float64
	RetryAttempts int
	Timeout       time.Duration
	Catalog       string
}

// CacheConfig configures the SQLite lookup cache.
type CacheConfig struct {
	Enabled bool
	DBFile  string
	TTL     time.Duration
}

// HistoryConfig configures where enrichment history rows go.
type HistoryConfig struct {
	Enabled   bool
	Mode      string
	DBFile    string
	RemoteURL string
	APIToken  string
}

// SetDefaults registers default values for every key
func SetDefaults() {
	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("server.cors_origins", []string{"*"})
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.SetDefault("enrich.workers", 8)
	viper.SetDefault("enrich.max_batch", 500)
	viper.SetDefault("enrich.lookup_timeout", "15s")

	viper.SetDefault("ranking.manufacturer_weight", 0.5)
	viper.SetDefault("ranking.confidence_weight", 0.35)
	viper.SetDefault("ranking.completeness_weight", 0.15)
	viper.SetDefault("ranking.margin", 0.1)
	viper.SetDefault("ranking.top_n", 3)

	viper.SetDefault("datasheet.rate_per_second", 5.0)
	viper.SetDefault("datasheet.retry_attempts", 3)
	viper.SetDefault("datasheet.timeout", "10s")

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h")

	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.mode", HistoryModeLocal)
	viper.SetDefault("history.dbfile", "./history.db")

	// Environment-only secret
	_ = viper.BindEnv("datasheet.api_key", "DATASHEET_API_KEY")
}

// Load reads the current viper state into a Config and validates it.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Addr:            viper.GetString("server.addr"),
			CORSOrigins:     viper.GetStringSlice("server.cors_origins"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		},
		Enrich: EnrichConfig{
			Workers:       viper.GetInt("enrich.workers"),
			MaxBatch:      viper.GetInt("enrich.max_batch"),
			LookupTimeout: viper.GetDuration("enrich.lookup_timeout"),
		},
		Ranking: RankingConfig{
			ManufacturerWeight: viper.GetFloat64("ranking.manufacturer_weight"),
			ConfidenceWeight:   viper.GetFloat64("ranking.confidence_weight"),
			CompletenessWeight: viper.GetFloat64("ranking.completeness_weight"),
			Margin:             viper.GetFloat64("ranking.margin"),
			TopN:               viper.GetInt("ranking.top_n"),
		},
		Manufacturers: ManufacturersConfig{
			File: viper.GetString("manufacturers.file"),
		},
		Datasheet: DatasheetConfig{
			BaseURL:       viper.GetString("datasheet.base_url"),
			APIKey:        viper.GetString("datasheet.api_key"),
			RatePerSecond: viper.GetFloat64("datasheet.rate_per_second"),
			RetryAttempts: viper.GetInt("datasheet.retry_attempts"),
			Timeout:       viper.GetDuration("datasheet.timeout"),
			Catalog:       viper.GetString("datasheet.catalog"),
		},
		Cache: CacheConfig{
			Enabled: viper.GetBool("cache.enabled"),
			DBFile:  viper.GetString("cache.dbfile"),
			TTL:     viper.GetDuration("cache.ttl"),
		},
		History: HistoryConfig{
			Enabled:   viper.GetBool("history.enabled"),
			Mode:      viper.GetString("history.mode"),
			DBFile:    viper.GetString("history.dbfile"),
			RemoteURL: viper.GetString("history.remote_url"),
			APIToken:  viper.GetString("history.api_token"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	switch {
	case c.Enrich.Workers < 1:
		return errs.NewValidationError("enrich.workers", "must be at least 1")
	case c.Enrich.MaxBatch < 1:
		return errs.NewValidationError("enrich.max_batch", "must be at least 1")
	case c.Enrich.LookupTimeout <= 0:
		return errs.NewValidationError("enrich.lookup_timeout", "must be positive")
	case c.Ranking.ManufacturerWeight < 0 || c.Ranking.ConfidenceWeight < 0 || c.Ranking.CompletenessWeight < 0:
		return errs.NewValidationError("ranking", "weights must not be negative")
	case c.Ranking.Margin < 0:
		return errs.NewValidationError("ranking.margin", "must not be negative")
	case c.Ranking.TopN < 2:
		return errs.NewValidationError("ranking.top_n", "must be at least 2")
	case c.Datasheet.RetryAttempts < 0:
		return errs.NewValidationError("datasheet.retry_attempts", "must not be negative")
	}

	if c.History.Enabled {
		switch c.History.Mode {
		case HistoryModeLocal:
			if c.History.DBFile == "" {
				return errs.NewValidationError("history.dbfile", "required for local history")
			}
		case HistoryModeRemote:
			if c.History.RemoteURL == "" {
				return errs.NewValidationError("history.remote_url", "required for remote history")
			}
		default:
			return errs.NewValidationError("history.mode", fmt.Sprintf("unknown mode %q", c.History.Mode))
		}
	}

	return nil
}

// HasDatasheetSource reports whether at least one lookup source is configured.
func (c Config) HasDatasheetSource() bool {
	return c.Datasheet.BaseURL != "" || c.Datasheet.Catalog != ""
}
