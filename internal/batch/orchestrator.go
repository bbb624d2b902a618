// Package batch runs the enrichment pipeline over a list of part numbers on
// a bounded worker pool, keeping one result per input in input order.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lepinkainen/partly/internal/datasheet"
	"github.com/lepinkainen/partly/internal/enrichment/part"
	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/mpn"
)

const (
	defaultWorkers       = 8
	defaultLookupTimeout = 15 * time.Second
)

// Request is one batch of raw part numbers with an optional manufacturer hint.
// Duplicates and blanks are allowed.
type Request struct {
	MPNs         []string
	Manufacturer string
}

// ItemResult is the outcome for one input part number.
type ItemResult struct {
	// MPN is the input exactly as received.
	MPN          string
	Key          mpn.Key
	Manufacturer manufacturer.Resolved
	Result       part.Result
}

// Result holds one ItemResult per input, in input order.
type Result struct {
	Items []ItemResult
}

// Count returns the number of items.
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// Resolver maps a manufacturer hint to a canonical manufacturer.
type Resolver interface {
	Resolve(hint string) manufacturer.Resolved
}

// Ranker turns candidates into a per-item result.
type Ranker interface {
	Rank(hint manufacturer.Resolved, candidates []part.Candidate) part.Result
}

// Options configures an Orchestrator.
type Options struct {
	// Workers bounds the number of items processed at once.
	Workers int
	// LookupTimeout bounds a single datasheet lookup.
	LookupTimeout time.Duration
	// OnComplete runs after a batch finishes without cancellation.
	OnComplete func(ctx context.Context, result *Result)
}

// Orchestrator runs Normalize, Resolve, Lookup and Rank for every item.
type Orchestrator struct {
	resolver   Resolver
	lookup     datasheet.Lookup
	ranker     Ranker
	workers    int
	timeout    time.Duration
	onComplete func(context.Context, *Result)
}

// New creates an Orchestrator. Zero options fall back to defaults.
func New(resolver Resolver, lookup datasheet.Lookup, ranker Ranker, opts Options) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = defaultWorkers
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = defaultLookupTimeout
	}
	return &Orchestrator{
		resolver:   resolver,
		lookup:     lookup,
		ranker:     ranker,
		workers:    opts.Workers,
		timeout:    opts.LookupTimeout,
		onComplete: opts.OnComplete,
	}
}

// Run enriches every MPN in req. Per-item failures become error results and
// never fail the batch. If ctx ends first, Run returns ctx's error and no
// result.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hint := o.resolver.Resolve(req.Manufacturer)
	items := make([]ItemResult, len(req.MPNs))

	// Shared per request only, so a later batch never reuses a stale lookup.
	var flight singleflight.Group

	var g errgroup.Group
	g.SetLimit(o.workers)

	start := time.Now()
	for i, raw := range req.MPNs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			items[i] = o.enrichItem(ctx, &flight, raw, hint)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		slog.Debug("Batch cancelled", "items", len(req.MPNs), "error", err)
		return nil, err
	}

	result := &Result{Items: items}
	slog.Debug("Batch complete", "items", len(items), "manufacturer", hint, "elapsed", time.Since(start))

	if o.onComplete != nil {
		o.onComplete(ctx, result)
	}
	return result, nil
}

func (o *Orchestrator) enrichItem(ctx context.Context, flight *singleflight.Group, raw string, hint manufacturer.Resolved) (item ItemResult) {
	item = ItemResult{MPN: raw, Manufacturer: hint}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while enriching part", "mpn", raw, "panic", r, "stack", string(debug.Stack()))
			item.Result = part.Failed(fmt.Errorf("internal error: %v", r))
		}
	}()

	item.Key = mpn.Normalize(raw)
	if item.Key.IsEmpty() {
		item.Result = part.Failed(part.ErrBlankMPN)
		return item
	}

	candidates, err := o.sharedLookup(ctx, flight, item.Key, hint)
	if err != nil {
		slog.Debug("Lookup failed", "mpn", raw, "key", item.Key, "error", err)
		item.Result = part.Failed(err)
		return item
	}

	item.Result = o.ranker.Rank(hint, candidates)
	slog.Debug("Part enriched", "mpn", raw, "key", item.Key, "outcome", item.Result.Outcome(), "candidates", len(candidates))
	return item
}

// sharedLookup collapses identical in-flight lookups into one call.
func (o *Orchestrator) sharedLookup(ctx context.Context, flight *singleflight.Group, key mpn.Key, hint manufacturer.Resolved) ([]part.Candidate, error) {
	v, err, _ := flight.Do(datasheet.CacheKey(key, hint), func() (any, error) {
		return o.lookupWithTimeout(ctx, key, hint)
	})
	if err != nil {
		return nil, err
	}
	return v.([]part.Candidate), nil
}

func (o *Orchestrator) lookupWithTimeout(ctx context.Context, key mpn.Key, hint manufacturer.Resolved) (candidates []part.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in datasheet lookup", "key", key, "panic", r)
			candidates, err = nil, fmt.Errorf("datasheet lookup panicked: %v", r)
		}
	}()

	lctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	return o.lookup.Lookup(lctx, key, hint)
}
