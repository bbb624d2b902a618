// Package history records every enriched item of a batch, keyed by request
// ID, in the configured datastore.
package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lepinkainen/partly/internal/batch"
	"github.com/lepinkainen/partly/internal/cmdutil"
	"github.com/lepinkainen/partly/internal/requestid"
)

// Table is the history table name.
const Table = "enrichment_history"

// Schema is the SQLite schema for local history.
const Schema = `
CREATE TABLE IF NOT EXISTS enrichment_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	mpn TEXT NOT NULL,
	normalized_mpn TEXT,
	manufacturer TEXT,
	status TEXT NOT NULL,
	outcome TEXT,
	matched_mpn TEXT,
	matched_manufacturer TEXT,
	datasheet_url TEXT,
	sources TEXT,
	candidate_count INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_enrichment_history_request ON enrichment_history(request_id);
`

// Row is one history entry.
type Row struct {
	RequestID           string
	Position            int
	MPN                 string
	NormalizedMPN       string
	Manufacturer        string
	Status              string
	Outcome             string
	MatchedMPN          string
	MatchedManufacturer string
	DatasheetURL        string
	Sources             []string
	CandidateCount      int
	Error               string
	RecordedAt          time.Time
}

// Rows flattens a batch result into history rows.
func Rows(requestID string, result *batch.Result, at time.Time) []Row {
	if result == nil {
		return nil
	}
	rows := make([]Row, 0, len(result.Items))
	for i, item := range result.Items {
		resp := item.Response()
		row := Row{
			RequestID:     requestID,
			Position:      i,
			MPN:           item.MPN,
			NormalizedMPN: item.Key.String(),
			Manufacturer:  item.Manufacturer.Name(),
			Status:        resp.Status,
			Error:         resp.Error,
			RecordedAt:    at,
		}
		if resp.Data != nil {
			row.Outcome = resp.Data.Outcome
			row.CandidateCount = len(resp.Data.Candidates)
			if p := resp.Data.Part; p != nil {
				row.MatchedMPN = p.MPN
				row.MatchedManufacturer = p.Manufacturer
				row.DatasheetURL = p.DatasheetURL
				row.Sources = p.Sources
				row.CandidateCount = 1
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func rowToMap(r Row) map[string]any {
	return cmdutil.StructToMap(r, cmdutil.StructToMapOptions{
		JoinStringSlices: true,
		TimeFormat:       time.RFC3339,
	})
}

// Recorder writes batches to the datastore selected by the history.* settings.
type Recorder struct {
	mu      sync.Mutex
	pending sync.WaitGroup
	now     func() time.Time
}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record writes one row per item of result.
func (r *Recorder) Record(ctx context.Context, requestID string, result *batch.Result) error {
	return r.write(ctx, Rows(requestID, result, r.now()))
}

func (r *Recorder) write(ctx context.Context, rows []Row) error {
	// SQLite allows one writer at a time
	r.mu.Lock()
	defer r.mu.Unlock()

	return cmdutil.WriteToDatastore(ctx, rows, Schema, Table, "enrichment history", rowToMap)
}

// Hook returns a batch completion hook that records results under the
// request ID found in the context. Rows are captured when the hook runs and
// written in the background, so the batch is not held up by the datastore.
// The write outlives cancellation of the request. Failures are logged, never
// returned. Call Wait before exiting.
func (r *Recorder) Hook() func(context.Context, *batch.Result) {
	return func(ctx context.Context, result *batch.Result) {
		id := requestid.FromContext(ctx)
		if id == "" {
			id = requestid.New()
		}
		rows := Rows(id, result, r.now())
		ctx = context.WithoutCancel(ctx)

		r.pending.Add(1)
		go func() {
			defer r.pending.Done()
			if err := r.write(ctx, rows); err != nil {
				slog.Warn("Failed to record enrichment history", "request_id", id, "error", err)
			}
		}()
	}
}

// Wait blocks until every write started by Hook has finished.
func (r *Recorder) Wait() {
	r.pending.Wait()
}
