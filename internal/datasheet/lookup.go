// Package datasheet retrieves candidate part records for a normalized part
// number from external sources: an HTTP parts API, an offline CSV catalog,
// or several of them combined.
package datasheet

import (
	"context"
	"errors"

	"github.com/lepinkainen/partly/internal/enrichment/part"
	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/mpn"
)

// ErrNoSources is returned by a Multi with nothing configured.
var ErrNoSources = errors.New("no datasheet source configured")

// Lookup returns zero or more candidates for a normalized part number.
// An empty result is not an error.
type Lookup interface {
	Lookup(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error)

// Lookup calls f.
func (f LookupFunc) Lookup(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
	return f(ctx, key, m)
}

// sourceName returns the name a source reports for logging, if any.
func sourceName(l Lookup) string {
	if n, ok := l.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "datasheet"
}
