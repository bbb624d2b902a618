package cache

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// CacheCmd groups the cache maintenance subcommands.
type CacheCmd struct {
	Invalidate InvalidateCacheCmd `cmd:"" help:"Delete every cached entry for a source"`
	Prune      PruneCacheCmd      `cmd:"" help:"Delete expired cache entries"`
}

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" optional:"" default:"datasheet" help:"Cache source to invalidate: datasheet"`
}

func (i *InvalidateCacheCmd) Run() error {
	tableName, err := tableForSource(i.Source)
	if err != nil {
		return err
	}

	slog.Info("Invalidating cache", "source", i.Source, "database", viper.GetString("cache.dbfile"))

	db, err := Default()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	rowsDeleted, err := db.Invalidate(tableName)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}

// PruneCacheCmd removes expired entries using the configured TTL.
type PruneCacheCmd struct {
	Source string `arg:"" optional:"" default:"datasheet" help:"Cache source to prune: datasheet"`
}

func (p *PruneCacheCmd) Run() error {
	tableName, err := tableForSource(p.Source)
	if err != nil {
		return err
	}

	db, err := Default()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	ttl := ConfiguredTTL()
	removed, err := db.Prune(tableName, ttl)
	if err != nil {
		return err
	}

	slog.Info("Cache pruned", "source", p.Source, "ttl", ttl, "rows_deleted", removed)
	return nil
}

func tableForSource(source string) (string, error) {
	if table, ok := SourceTables[source]; ok {
		return table, nil
	}

	valid := make([]string, 0, len(SourceTables))
	for name := range SourceTables {
		valid = append(valid, name)
	}
	sort.Strings(valid)
	return "", fmt.Errorf("invalid cache source '%s'; valid sources are: %s", source, strings.Join(valid, ", "))
}
