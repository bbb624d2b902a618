// Package cache stores datasheet lookups in a local SQLite database so that
// repeated part numbers do not hit the external source again.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/viper"
	_ "modernc.org/sqlite"
)

const (
	// DefaultTTL applies when cache.ttl is unset or invalid.
	DefaultTTL = 30 * 24 * time.Hour
	// NegativeTTL bounds how long a "not found" answer is trusted.
	NegativeTTL = 7 * 24 * time.Hour
)

// DB is a SQLite key/value cache. Values are opaque bytes; GetOrFetch layers
// JSON on top.
type DB struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the cache database at path and applies the
// cache schemas.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), sqlDB.Close())
	}
	for _, schema := range schemas {
		if _, err := sqlDB.Exec(schema); err != nil {
			return nil, errors.Join(fmt.Errorf("failed to create cache table: %w", err), sqlDB.Close())
		}
	}

	return &DB{db: sqlDB, path: path, now: time.Now}, nil
}

// Path returns the database file backing the cache.
func (c *DB) Path() string { return c.path }

func (c *DB) Close() error { return c.db.Close() }

// Get returns the value stored under key when it is younger than ttl and
// than the row's own TTL, if it has one.
func (c *DB) Get(table, key string, ttl time.Duration) ([]byte, bool, error) {
	if !knownTable(table) {
		return nil, false, fmt.Errorf("invalid cache table name: %s", table)
	}

	var (
		data       []byte
		cachedAt   int64
		ttlSeconds int64
	)
	err := c.db.QueryRow(
		fmt.Sprintf(`SELECT data, cached_at, ttl_seconds FROM %s WHERE cache_key = ?`, table), key,
	).Scan(&data, &cachedAt, &ttlSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	if row := time.Duration(ttlSeconds) * time.Second; row > 0 && row < ttl {
		ttl = row
	}
	if age := c.now().Sub(time.Unix(cachedAt, 0)); age > ttl {
		slog.Debug("Cache expired", "table", table, "key", key, "age", age.Round(time.Second))
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores data under key, replacing any previous value. A ttl of 0 means
// only the configured TTL applies to the row.
func (c *DB) Set(table, key string, data []byte, ttl time.Duration) error {
	if !knownTable(table) {
		return fmt.Errorf("invalid cache table name: %s", table)
	}
	_, err := c.db.Exec(
		fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, data, cached_at, ttl_seconds) VALUES (?, ?, ?, ?)`, table),
		key, data, c.now().Unix(), int64(ttl/time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Has reports whether any row, expired or not, exists for key.
func (c *DB) Has(table, key string) bool {
	if !knownTable(table) {
		return false
	}
	var one int
	err := c.db.QueryRow(fmt.Sprintf(`SELECT 1 FROM %s WHERE cache_key = ?`, table), key).Scan(&one)
	return err == nil
}

// Invalidate deletes every row of table and returns how many were removed.
func (c *DB) Invalidate(table string) (int64, error) {
	if !knownTable(table) {
		return 0, fmt.Errorf("invalid cache table name: %s", table)
	}
	res, err := c.db.Exec(fmt.Sprintf(`DELETE FROM %s`, table))
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Prune deletes rows older than ttl and rows past their own shorter TTL.
func (c *DB) Prune(table string, ttl time.Duration) (int64, error) {
	if !knownTable(table) {
		return 0, fmt.Errorf("invalid cache table name: %s", table)
	}
	now := c.now()
	res, err := c.db.Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE cached_at < ? OR (ttl_seconds > 0 AND cached_at + ttl_seconds < ?)`, table),
		now.Add(-ttl).Unix(), now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

var (
	defaultMu sync.Mutex
	defaultDB *DB
)

// Default returns the process-wide cache opened at cache.dbfile. A failed
// open is not remembered, so a later call retries.
func Default() (*DB, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultDB != nil {
		return defaultDB, nil
	}
	path := viper.GetString("cache.dbfile")
	if path == "" {
		path = "./cache.db"
	}
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defaultDB = db
	return db, nil
}

// ResetDefault closes the process-wide cache; the next Default reopens it.
func ResetDefault() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultDB == nil {
		return nil
	}
	err := defaultDB.Close()
	defaultDB = nil
	return err
}

// ConfiguredTTL returns cache.ttl, falling back to DefaultTTL.
func ConfiguredTTL() time.Duration {
	raw := viper.GetString("cache.ttl")
	if raw == "" {
		return DefaultTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		slog.Warn("Invalid cache TTL, using default", "ttl", raw, "error", err)
		return DefaultTTL
	}
	return ttl
}

// NegativeTTLFor returns a ttlFor function for GetOrFetch that stores results
// reported by isNotFound with NegativeTTL.
func NegativeTTLFor[T any](isNotFound func(T) bool) func(T) time.Duration {
	return func(v T) time.Duration {
		if isNotFound(v) {
			return NegativeTTL
		}
		return 0
	}
}

// GetOrFetch returns the JSON value cached under key in table, or calls fetch
// and caches its result. ttlFor may be nil; otherwise it picks the row TTL
// from the fetched value. Fetch errors are returned and never cached. Cache
// failures are logged and fall through to fetch.
func GetOrFetch[T any](table, key string, fetch func() (T, error), ttlFor func(T) time.Duration) (T, bool, error) {
	db, err := Default()
	if err != nil {
		slog.Warn("Failed to open cache, fetching directly", "error", err)
		v, err := fetch()
		return v, false, err
	}

	if raw, hit, err := db.Get(table, key, ConfiguredTTL()); err != nil {
		slog.Warn("Cache read failed, fetching directly", "table", table, "key", key, "error", err)
	} else if hit {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			slog.Debug("Cache hit", "table", table, "key", key)
			return v, true, nil
		}
		slog.Warn("Discarding undecodable cache entry", "table", table, "key", key)
	}

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, false, err
	}

	var rowTTL time.Duration
	if ttlFor != nil {
		rowTTL = ttlFor(v)
	}
	raw, err := json.Marshal(v)
	if err == nil {
		err = db.Set(table, key, raw, rowTTL)
	}
	if err != nil {
		slog.Warn("Failed to cache data", "table", table, "key", key, "error", err)
	}
	return v, false, nil
}
