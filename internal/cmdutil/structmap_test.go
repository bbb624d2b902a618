package cmdutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type Meta struct {
	RequestID string
}

type sampleRow struct {
	Meta
	NormalizedMPN string
	DatasheetURL  string
	Sources       []string
	RecordedAt    time.Time
	Internal      string
	Confidence    *float64
	hidden        string
}

func TestStructToMap(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := sampleRow{
		Meta:          Meta{RequestID: "req-1"},
		NormalizedMPN: "LM358N",
		DatasheetURL:  "https://example.test/lm358.pdf",
		Sources:       []string{"catalog", "datasheet-api"},
		RecordedAt:    at,
		Internal:      "skip me",
		hidden:        "unexported",
	}

	got := StructToMap(row, StructToMapOptions{
		OmitFields:       map[string]bool{"Internal": true},
		KeyOverrides:     map[string]string{"DatasheetURL": "datasheet"},
		JoinStringSlices: true,
	})

	assert.Equal(t, map[string]any{
		"request_id":     "req-1",
		"normalized_mpn": "LM358N",
		"datasheet":      "https://example.test/lm358.pdf",
		"sources":        "catalog,datasheet-api",
		"recorded_at":    at.String(),
		"confidence":     nil,
	}, got)
}

func TestStructToMap_TimeFormatAndNamedStrings(t *testing.T) {
	type key string
	type row struct {
		Key        key
		RecordedAt time.Time
	}

	at := time.Date(2026, 3, 1, 14, 0, 0, 0, time.FixedZone("EET", 2*3600))
	got := StructToMap(row{Key: "NE555P", RecordedAt: at}, StructToMapOptions{TimeFormat: time.RFC3339})

	assert.Equal(t, map[string]any{
		"key":         "NE555P",
		"recorded_at": "2026-03-01T12:00:00Z",
	}, got)
}

func TestStructToMap_NilPointer(t *testing.T) {
	var row *sampleRow
	assert.Empty(t, StructToMap(row, StructToMapOptions{}))
}

func TestToSnakeCase(t *testing.T) {
	testCases := map[string]string{
		"MPN":            "mpn",
		"RequestID":      "request_id",
		"NormalizedMPN":  "normalized_mpn",
		"DatasheetURL":   "datasheet_url",
		"CandidateCount": "candidate_count",
		"Top3Score":      "top3_score",
		"HTTPStatus":     "http_status",
		"":               "",
	}
	for input, want := range testCases {
		assert.Equal(t, want, toSnakeCase(input), input)
	}
}
