package datasheet

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lepinkainen/partly/internal/enrichment/part"
	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/mpn"
)

// Multi queries several sources in order and concatenates their candidates.
type Multi struct {
	sources []Lookup
}

// NewMulti combines sources; nil entries are ignored.
func NewMulti(sources ...Lookup) *Multi {
	m := &Multi{}
	for _, s := range sources {
		if s != nil {
			m.sources = append(m.sources, s)
		}
	}
	return m
}

// Len returns the number of combined sources.
func (m *Multi) Len() int {
	return len(m.sources)
}

// Lookup fails only when every source fails. A failing source is skipped
// while at least one other answers.
func (m *Multi) Lookup(ctx context.Context, key mpn.Key, hint manufacturer.Resolved) ([]part.Candidate, error) {
	if len(m.sources) == 0 {
		return nil, ErrNoSources
	}
	if len(m.sources) == 1 {
		return m.sources[0].Lookup(ctx, key, hint)
	}

	var all []part.Candidate
	var errs []error
	for _, src := range m.sources {
		found, err := src.Lookup(ctx, key, hint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("Datasheet source failed", "source", sourceName(src), "key", key, "error", err)
			errs = append(errs, err)
			continue
		}
		all = append(all, found...)
	}

	if len(errs) == len(m.sources) {
		return nil, errors.Join(errs...)
	}
	return all, nil
}
