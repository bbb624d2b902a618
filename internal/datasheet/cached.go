package datasheet

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/partly/internal/cache"
	"github.com/lepinkainen/partly/internal/enrichment/part"
	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/mpn"
)

// Cached stores lookups from one inner source in the SQLite cache.
// Empty results expire after cache.NegativeTTL; errors are not stored.
// Wrap individual sources, not a Multi, which hides per-source failures.
type Cached struct {
	inner Lookup
}

// NewCached wraps inner with the global lookup cache.
func NewCached(inner Lookup) *Cached {
	return &Cached{inner: inner}
}

// Name reports the wrapped source's name.
func (c *Cached) Name() string {
	return sourceName(c.inner)
}

// Lookup returns cached candidates for (key, manufacturer) or fetches them.
func (c *Cached) Lookup(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
	candidates, fromCache, err := cache.GetOrFetch(cache.DatasheetCacheTable, c.Name()+":"+CacheKey(key, m),
		func() ([]part.Candidate, error) {
			return c.inner.Lookup(ctx, key, m)
		},
		cache.NegativeTTLFor(func(found []part.Candidate) bool {
			return len(found) == 0
		}),
	)
	if err != nil {
		return nil, err
	}
	if fromCache {
		slog.Debug("Datasheet lookup served from cache", "key", key, "manufacturer", m, "candidates", len(candidates))
	}
	return candidates, nil
}

// CacheKey builds the cache key for a lookup. Unknown manufacturers share the
// empty suffix.
func CacheKey(key mpn.Key, m manufacturer.Resolved) string {
	return key.String() + "|" + m.Name()
}
