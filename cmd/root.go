package cmd

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/partly/internal/cache"
	"github.com/lepinkainen/partly/internal/config"
)

const (
	appName        = "partly"
	appDescription = "Enrich electronic component part numbers with manufacturer and datasheet data."
)

// CLI represents the complete command structure for the partly application
type CLI struct {
	// Global flags
	Config  string `help:"Path to YAML config file (defaults to ./config.yaml when present)" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	// Cache flags. Empty values leave the config file or defaults in place.
	CacheDBFile string `help:"Path to cache SQLite database file (default ./cache.db)"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)"`
	NoCache     bool   `help:"Disable the datasheet lookup cache"`

	Serve  ServeCmd       `cmd:"" help:"Run the HTTP enrichment service"`
	Enrich EnrichCmd      `cmd:"" help:"Enrich part numbers from the command line or a CSV file"`
	Cache  cache.CacheCmd `cmd:"" help:"Maintain the datasheet lookup cache"`
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
	}
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI
	ctx := kong.Parse(&cli, kongOptions()...)

	initLogging(cli.Verbose)

	if err := initConfig(cli.Config); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flags override config file and environment
	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// initConfig registers defaults, environment overrides and the optional
// config file. A missing ./config.yaml is fine, an explicit --config is not.
func initConfig(path string) error {
	config.SetDefaults()

	viper.SetEnvPrefix("PARTLY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		return viper.ReadInConfig()
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults")
			return nil
		}
		return err
	}

	slog.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	return nil
}

func updateGlobalConfig(cli *CLI) {
	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
	if cli.NoCache {
		viper.Set("cache.enabled", false)
	}
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
