package batch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/partly/internal/enrichment/part"
	"github.com/lepinkainen/partly/internal/manufacturer"
)

func TestResponse_Empty(t *testing.T) {
	body, err := json.Marshal((&Result{}).Response())
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0,"results":[]}`, string(body))

	var nilResult *Result
	assert.Equal(t, 0, nilResult.Response().Count)
	assert.NotNil(t, nilResult.Response().Results)
}

func TestResponse_Outcomes(t *testing.T) {
	matched := part.Matched(part.Candidate{
		Manufacturer: "Texas Instruments",
		MPN:          "LM358N",
		Key:          "LM358N",
		DatasheetURL: "https://ti.com/lm358.pdf",
		Fields:       map[string]string{"package": "PDIP-8"},
		Confidence:   0.9,
		Source:       "catalog",
	})
	ambiguous := part.Ambiguous([]part.Scored{
		{Candidate: part.Candidate{Manufacturer: "TI", MPN: "LM358", Key: "LM358", Confidence: 0.5}, Score: 0.25},
		{Candidate: part.Candidate{Manufacturer: "onsemi", MPN: "LM358", Key: "LM358", Confidence: 0.5}, Score: 0.25},
	})

	result := &Result{Items: []ItemResult{
		{MPN: "lm358n", Key: "LM358N", Manufacturer: manufacturer.Known("Texas Instruments"), Result: matched},
		{MPN: "LM358", Key: "LM358", Manufacturer: manufacturer.Unknown(), Result: ambiguous},
		{MPN: "NOPE", Key: "NOPE", Manufacturer: manufacturer.Unknown(), Result: part.NotFound()},
		{MPN: "", Manufacturer: manufacturer.Unknown(), Result: part.Failed(errors.New("blank part number"))},
	}}

	body, err := json.Marshal(result.Response())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"count": 4,
		"results": [
			{"mpn": "lm358n", "status": "ok", "data": {
				"outcome": "matched",
				"normalized_mpn": "LM358N",
				"manufacturer": "Texas Instruments",
				"part": {
					"manufacturer": "Texas Instruments",
					"mpn": "LM358N",
					"normalized_mpn": "LM358N",
					"datasheet_url": "https://ti.com/lm358.pdf",
					"fields": {"package": "PDIP-8"},
					"confidence": 0.9,
					"source": "catalog",
					"sources": ["catalog"]
				}
			}},
			{"mpn": "LM358", "status": "ok", "data": {
				"outcome": "ambiguous",
				"normalized_mpn": "LM358",
				"candidates": [
					{"manufacturer": "TI", "mpn": "LM358", "normalized_mpn": "LM358", "confidence": 0.5, "score": 0.25},
					{"manufacturer": "onsemi", "mpn": "LM358", "normalized_mpn": "LM358", "confidence": 0.5, "score": 0.25}
				]
			}},
			{"mpn": "NOPE", "status": "ok", "data": {"outcome": "not_found", "normalized_mpn": "NOPE"}},
			{"mpn": "", "status": "error", "error": "blank part number"}
		]
	}`, string(body))
}
