package part

import (
	"math"
	"sort"
	"strings"

	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/mpn"
)

// ManufacturerResolver canonicalizes manufacturer names reported by sources.
type ManufacturerResolver interface {
	Resolve(hint string) manufacturer.Resolved
}

// Weights are the coefficients of the composite candidate score.
type Weights struct {
	Manufacturer float64
	Confidence   float64
	Completeness float64
}

// Options configures ranking. Zero values are replaced by DefaultOptions.
type Options struct {
	Weights Weights

	// Margin is how far the best score must exceed the runner-up before the
	// best candidate is picked automatically.
	Margin float64

	// TopN is how many candidates an ambiguous result carries (minimum 2).
	TopN int
}

// DefaultOptions returns the ranking defaults used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Weights: Weights{
			Manufacturer: 0.5,
			Confidence:   0.35,
			Completeness: 0.15,
		},
		Margin: 0.1,
		TopN:   3,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Weights == (Weights{}) {
		o.Weights = def.Weights
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.TopN < 2 {
		o.TopN = def.TopN
	}
	return o
}

// Ranker scores candidates, picks a winner when it is clearly ahead and
// otherwise reports ambiguity. It holds only read-only configuration.
type Ranker struct {
	opts     Options
	resolver ManufacturerResolver
}

// NewRanker creates a Ranker. A nil resolver only matches manufacturers by
// exact (case-insensitive) name.
func NewRanker(resolver ManufacturerResolver, opts Options) *Ranker {
	return &Ranker{
		opts:     opts.withDefaults(),
		resolver: resolver,
	}
}

// Options returns the effective ranking options.
func (r *Ranker) Options() Options {
	return r.opts
}

// Rank turns the candidates for one part number into a Result. hint is the
// resolved manufacturer from the request.
func (r *Ranker) Rank(hint manufacturer.Resolved, candidates []Candidate) Result {
	switch len(candidates) {
	case 0:
		return NotFound()
	case 1:
		return Matched(candidates[0])
	}

	ranked := r.Score(hint, candidates)

	if ranked[0].Score-ranked[1].Score > r.opts.Margin {
		merged, sources := r.Merge(ranked)
		return Matched(merged, sources...)
	}

	n := r.opts.TopN
	if n > len(ranked) {
		n = len(ranked)
	}
	return Ambiguous(ranked[:n])
}

// Score computes the composite score of every candidate and returns them
// sorted by descending score. Ties keep retrieval order.
func (r *Ranker) Score(hint manufacturer.Resolved, candidates []Candidate) []Scored {
	maxFilled := 0
	for _, c := range candidates {
		if n := c.filledCount(); n > maxFilled {
			maxFilled = n
		}
	}

	w := r.opts.Weights
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		var match float64
		if hint.IsKnown() && r.resolve(c.Manufacturer).Same(hint) {
			match = 1
		}

		var completeness float64
		if maxFilled > 0 {
			completeness = float64(c.filledCount()) / float64(maxFilled)
		}

		scored[i] = Scored{
			Candidate: c,
			Score:     w.Manufacturer*match + w.Confidence*clamp01(c.Confidence) + w.Completeness*completeness,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// Merge combines the ranked candidates that describe the same part as the
// top candidate (same normalized MPN and manufacturer). Values are taken in
// rank order and lower-ranked candidates only fill empty attributes.
func (r *Ranker) Merge(ranked []Scored) (Candidate, []string) {
	if len(ranked) == 0 {
		return Candidate{}, nil
	}

	top := ranked[0].Candidate
	merged := top.clone()
	if merged.Key.IsEmpty() {
		merged.Key = keyOf(top)
	}
	if merged.Fields == nil {
		merged.Fields = make(map[string]string)
	}

	var sources []string
	seen := make(map[string]bool)
	addSource := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}
	addSource(top.Source)

	for _, s := range ranked[1:] {
		c := s.Candidate
		if keyOf(c) != merged.Key || !r.sameManufacturer(top.Manufacturer, c.Manufacturer) {
			continue
		}

		contributed := false
		if merged.DatasheetURL == "" && c.DatasheetURL != "" {
			merged.DatasheetURL = c.DatasheetURL
			contributed = true
		}
		for k, v := range c.Fields {
			if v == "" || merged.Fields[k] != "" {
				continue
			}
			merged.Fields[k] = v
			contributed = true
		}
		if contributed {
			addSource(c.Source)
		}
	}

	if len(merged.Fields) == 0 {
		merged.Fields = nil
	}

	return merged, sources
}

func (r *Ranker) resolve(name string) manufacturer.Resolved {
	if r.resolver == nil {
		return manufacturer.Unknown()
	}
	return r.resolver.Resolve(name)
}

// sameManufacturer compares by canonical name when both sides resolve and by
// the raw names otherwise.
func (r *Ranker) sameManufacturer(a, b string) bool {
	ra, rb := r.resolve(a), r.resolve(b)
	if ra.IsKnown() && rb.IsKnown() {
		return ra.Same(rb)
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func keyOf(c Candidate) mpn.Key {
	if !c.Key.IsEmpty() {
		return c.Key
	}
	return mpn.Normalize(c.MPN)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
