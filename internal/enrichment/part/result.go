package part

import (
	"fmt"
)

// Outcome tags which variant a Result holds.
type Outcome int

const (
	// OutcomeNotFound means no source returned a candidate.
	OutcomeNotFound Outcome = iota
	// OutcomeMatched means a single merged candidate was selected.
	OutcomeMatched
	// OutcomeAmbiguous means several candidates were too close to pick one.
	OutcomeAmbiguous
	// OutcomeError means the item failed; Err explains why.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the per-MPN enrichment outcome. Construct it with Matched,
// Ambiguous, NotFound or Failed; it is not modified afterwards.
type Result struct {
	outcome    Outcome
	part       *Candidate
	sources    []string
	candidates []Scored
	err        string
}

// Matched returns an Ok result carrying the merged part.
func Matched(c Candidate, sources ...string) Result {
	merged := c.clone()
	if len(sources) == 0 && c.Source != "" {
		sources = []string{c.Source}
	}
	return Result{
		outcome: OutcomeMatched,
		part:    &merged,
		sources: append([]string(nil), sources...),
	}
}

// Ambiguous returns a result carrying the top candidates for the caller to pick from.
func Ambiguous(candidates []Scored) Result {
	out := make([]Scored, len(candidates))
	for i, c := range candidates {
		out[i] = Scored{Candidate: c.Candidate.clone(), Score: c.Score}
	}
	return Result{outcome: OutcomeAmbiguous, candidates: out}
}

// NotFound returns the empty-result outcome.
func NotFound() Result {
	return Result{outcome: OutcomeNotFound}
}

// Failed returns an error result. A nil or empty error still yields a
// non-empty message.
func Failed(err error) Result {
	msg := "enrichment failed"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result{outcome: OutcomeError, err: msg}
}

// Outcome reports which variant r holds.
func (r Result) Outcome() Outcome { return r.outcome }

// OK reports whether r is not an error. Ambiguous and NotFound are OK.
func (r Result) OK() bool { return r.outcome != OutcomeError }

// Part returns the merged part of a matched result.
func (r Result) Part() (Candidate, bool) {
	if r.part == nil {
		return Candidate{}, false
	}
	return r.part.clone(), true
}

// Sources lists the sources that contributed to a matched result, in rank order.
func (r Result) Sources() []string {
	return append([]string(nil), r.sources...)
}

// Candidates returns copies of the ranked candidates of an ambiguous result.
func (r Result) Candidates() []Scored {
	if len(r.candidates) == 0 {
		return nil
	}
	out := make([]Scored, len(r.candidates))
	for i, c := range r.candidates {
		out[i] = Scored{Candidate: c.Candidate.clone(), Score: c.Score}
	}
	return out
}

// Error returns the failure message of an error result.
func (r Result) Error() string { return r.err }

// Choose resolves an ambiguous result to the candidate at index i.
func (r Result) Choose(i int) (Result, error) {
	if r.outcome != OutcomeAmbiguous || i < 0 || i >= len(r.candidates) {
		return r, ErrNoSelection
	}
	return Matched(r.candidates[i].Candidate), nil
}
