// Package part ranks and merges candidate part records returned by datasheet
// sources into a single per-MPN enrichment result.
package part

import (
	"github.com/lepinkainen/partly/internal/mpn"
)

// Candidate is one record returned by a datasheet source for a part number.
type Candidate struct {
	// Manufacturer is the vendor name as reported by the source.
	Manufacturer string `json:"manufacturer"`

	// MPN is the part number as reported by the source.
	MPN string `json:"mpn"`

	// Key is the normalized form of MPN.
	Key mpn.Key `json:"normalized_mpn"`

	// DatasheetURL links to the vendor datasheet, if known.
	DatasheetURL string `json:"datasheet_url,omitempty"`

	// Fields holds structured spec values keyed by field name
	// (e.g. "package" -> "SOT-23", "vout_max" -> "37V").
	Fields map[string]string `json:"fields,omitempty"`

	// Confidence is the source's own match confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Source names the data source that produced the record.
	Source string `json:"source,omitempty"`
}

// filledCount counts non-empty attributes used for completeness scoring.
func (c Candidate) filledCount() int {
	n := 0
	if c.DatasheetURL != "" {
		n++
	}
	for _, v := range c.Fields {
		if v != "" {
			n++
		}
	}
	return n
}

// clone returns a deep copy so callers can never mutate a result's fields
// through the candidate they passed in.
func (c Candidate) clone() Candidate {
	out := c
	if c.Fields != nil {
		out.Fields = make(map[string]string, len(c.Fields))
		for k, v := range c.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// Scored is a candidate together with its composite ranking score.
type Scored struct {
	Candidate
	Score float64 `json:"score"`
}
