package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lepinkainen/partly/internal/batch"
	"github.com/lepinkainen/partly/internal/config"
	"github.com/lepinkainen/partly/internal/datasheet"
	"github.com/lepinkainen/partly/internal/enrichment/part"
	"github.com/lepinkainen/partly/internal/history"
	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/ratelimit"
)

// pipeline is the wired enrichment stack shared by serve and enrich.
type pipeline struct {
	resolver     *manufacturer.Resolver
	orchestrator *batch.Orchestrator
	// client is nil when no parts API is configured.
	client *datasheet.Client
	// recorder is nil unless history.enabled is set.
	recorder *history.Recorder
}

// buildPipeline wires the enrichment stack. With hookHistory set, every
// finished batch is recorded by the orchestrator; otherwise the caller
// records results itself through p.recorder.
func buildPipeline(cfg config.Config, hookHistory bool) (*pipeline, error) {
	resolver, err := manufacturer.NewResolverFromFile(cfg.Manufacturers.File)
	if err != nil {
		return nil, err
	}

	p := &pipeline{resolver: resolver}

	var sources []datasheet.Lookup
	if cfg.Datasheet.BaseURL != "" {
		p.client = datasheet.NewClient(cfg.Datasheet.BaseURL, cfg.Datasheet.APIKey,
			datasheet.WithHTTPClient(&http.Client{Timeout: cfg.Datasheet.Timeout}),
			datasheet.WithRetryAttempts(max(cfg.Datasheet.RetryAttempts, 1)),
			datasheet.WithRateLimiter(ratelimit.New(datasheet.SourceName, cfg.Datasheet.RatePerSecond)),
		)
		var api datasheet.Lookup = p.client
		if cfg.Cache.Enabled {
			api = datasheet.NewCached(p.client)
		}
		sources = append(sources, api)
	}
	if cfg.Datasheet.Catalog != "" {
		catalog, err := datasheet.LoadCatalog(cfg.Datasheet.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		slog.Info("Loaded parts catalog", "file", cfg.Datasheet.Catalog, "parts", catalog.Len())
		sources = append(sources, catalog)
	}
	if !cfg.HasDatasheetSource() {
		slog.Warn("No datasheet source configured; set datasheet.base_url or datasheet.catalog")
	}

	// Only the API is cached: Multi swallows a failing source, so caching its
	// combined answer would store an outage as "not found".
	lookup := datasheet.NewMulti(sources...)

	ranker := part.NewRanker(resolver, part.Options{
		Weights: part.Weights{
			Manufacturer: cfg.Ranking.ManufacturerWeight,
			Confidence:   cfg.Ranking.ConfidenceWeight,
			Completeness: cfg.Ranking.CompletenessWeight,
		},
		Margin: cfg.Ranking.Margin,
		TopN:   cfg.Ranking.TopN,
	})

	opts := batch.Options{
		Workers:       cfg.Enrich.Workers,
		LookupTimeout: cfg.Enrich.LookupTimeout,
	}
	if cfg.History.Enabled {
		p.recorder = history.NewRecorder()
		if hookHistory {
			opts.OnComplete = p.recorder.Hook()
		}
	}

	p.orchestrator = batch.New(resolver, lookup, ranker, opts)
	return p, nil
}
