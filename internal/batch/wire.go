package batch

import (
	"github.com/lepinkainen/partly/internal/enrichment/part"
)

// Item status values on the wire
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Response is the JSON form of a batch result.
type Response struct {
	Count   int            `json:"count"`
	Results []ItemResponse `json:"results"`
}

// ItemResponse is the JSON form of one item. Ambiguous and not-found items
// have status "ok" with the sub-state in Data.Outcome.
type ItemResponse struct {
	MPN    string    `json:"mpn"`
	Status string    `json:"status"`
	Data   *ItemData `json:"data,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// ItemData carries the enrichment outcome of a successful item.
type ItemData struct {
	Outcome       string        `json:"outcome"`
	NormalizedMPN string        `json:"normalized_mpn"`
	Manufacturer  string        `json:"manufacturer,omitempty"`
	Part          *MatchedPart  `json:"part,omitempty"`
	Candidates    []part.Scored `json:"candidates,omitempty"`
}

// MatchedPart is a merged part with the sources that contributed to it.
type MatchedPart struct {
	part.Candidate
	Sources []string `json:"sources,omitempty"`
}

// Response converts the result to its wire form.
func (r *Result) Response() Response {
	resp := Response{Results: make([]ItemResponse, 0, r.Count())}
	if r != nil {
		for _, item := range r.Items {
			resp.Results = append(resp.Results, item.Response())
		}
	}
	resp.Count = len(resp.Results)
	return resp
}

// Response converts one item to its wire form.
func (it ItemResult) Response() ItemResponse {
	if it.Result.Outcome() == part.OutcomeError {
		return ItemResponse{MPN: it.MPN, Status: StatusError, Error: it.Result.Error()}
	}

	data := &ItemData{
		Outcome:       it.Result.Outcome().String(),
		NormalizedMPN: it.Key.String(),
		Manufacturer:  it.Manufacturer.Name(),
	}
	if p, ok := it.Result.Part(); ok {
		data.Part = &MatchedPart{Candidate: p, Sources: it.Result.Sources()}
	}
	if cands := it.Result.Candidates(); len(cands) > 0 {
		data.Candidates = cands
	}

	return ItemResponse{MPN: it.MPN, Status: StatusOK, Data: data}
}
