package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lepinkainen/partly/internal/batch"
	"github.com/lepinkainen/partly/internal/config"
	"github.com/lepinkainen/partly/internal/csvutil"
	"github.com/lepinkainen/partly/internal/enrichment/part"
	errs "github.com/lepinkainen/partly/internal/errors"
	"github.com/lepinkainen/partly/internal/fileutil"
	"github.com/lepinkainen/partly/internal/requestid"
	"github.com/lepinkainen/partly/internal/tui"
)

const defaultJSONOutput = "json/enrich.json"

var (
	selectCandidate           = tui.Select
	stdout          io.Writer = os.Stdout
)

// EnrichCmd represents the enrich command
type EnrichCmd struct {
	MPNs         []string `arg:"" optional:"" name:"mpn" help:"Part numbers to enrich"`
	Manufacturer string   `short:"m" help:"Manufacturer hint applied to every part number"`
	Input        string   `short:"f" help:"Path to CSV file with an mpn column"`
	JSON         bool     `help:"Write results to JSON format"`
	JSONOutput   string   `help:"Path to JSON output file (defaults to json/enrich.json)"`
	Overwrite    bool     `help:"Overwrite an existing JSON output file"`
	Interactive  bool     `short:"i" help:"Pick a candidate for ambiguous results in a terminal UI"`

	recorder resultRecorder
}

type resultRecorder interface {
	Record(ctx context.Context, requestID string, result *batch.Result) error
}

func (e *EnrichCmd) Run() error {
	mpns, err := e.collectMPNs()
	if err != nil {
		return err
	}
	if len(mpns) == 0 {
		return fmt.Errorf("no part numbers given (pass them as arguments or with -f)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg, false)
	if err != nil {
		return err
	}
	if p.recorder != nil {
		e.recorder = p.recorder
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return e.enrich(ctx, p.orchestrator, mpns)
}

type enricher interface {
	Run(ctx context.Context, req batch.Request) (*batch.Result, error)
}

func (e *EnrichCmd) enrich(ctx context.Context, enricher enricher, mpns []string) error {
	result, err := enricher.Run(ctx, batch.Request{MPNs: mpns, Manufacturer: e.Manufacturer})
	if err != nil {
		return err
	}

	if e.Interactive {
		if err := resolveAmbiguous(result); err != nil {
			if !errs.IsStopProcessingError(err) {
				return err
			}
			slog.Info("Interactive selection stopped, remaining items left ambiguous", "reason", err)
		}
	}

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, requestid.New(), result); err != nil {
			slog.Warn("Failed to record enrichment history", "error", err)
		}
	}

	for _, item := range result.Items {
		_, _ = fmt.Fprintln(stdout, formatItem(item))
	}

	if e.JSON || e.JSONOutput != "" {
		path := e.JSONOutput
		if path == "" {
			path = defaultJSONOutput
		}
		written, err := fileutil.WriteJSONFile(result.Response(), path, e.Overwrite)
		if err != nil {
			return err
		}
		if written {
			slog.Info("Wrote JSON output", "file", path, "items", result.Count())
		} else {
			slog.Warn("JSON output exists, use --overwrite to replace it", "file", path)
		}
	}

	return nil
}

func (e *EnrichCmd) collectMPNs() ([]string, error) {
	mpns := append([]string(nil), e.MPNs...)
	if e.Input == "" {
		return mpns, nil
	}

	fromFile, err := csvutil.ProcessCSV(e.Input, func(r csvutil.Record) (string, error) {
		return r.Get("mpn"), nil
	}, csvutil.ProcessorOptions{RequiredColumns: []string{"mpn"}})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e.Input, err)
	}
	slog.Debug("Read part numbers from CSV", "file", e.Input, "count", len(fromFile))

	return append(mpns, fromFile...), nil
}

// resolveAmbiguous asks the user to pick a candidate for each ambiguous item.
// A chosen candidate turns the item into a match; skipped items stay ambiguous.
func resolveAmbiguous(result *batch.Result) error {
	for i := range result.Items {
		item := &result.Items[i]
		if item.Result.Outcome() != part.OutcomeAmbiguous {
			continue
		}

		selection, err := selectCandidate(item.MPN, item.Result.Candidates())
		if err != nil {
			return fmt.Errorf("candidate selection for %s failed: %w", item.MPN, err)
		}

		switch selection.Action {
		case tui.ActionSelected:
			chosen, err := item.Result.Choose(selection.Index)
			if err != nil {
				return err
			}
			item.Result = chosen
		case tui.ActionStopped:
			return errs.NewStopProcessingError(item.MPN, countAmbiguous(result.Items[i:]))
		}
	}
	return nil
}

func countAmbiguous(items []batch.ItemResult) int {
	n := 0
	for _, item := range items {
		if item.Result.Outcome() == part.OutcomeAmbiguous {
			n++
		}
	}
	return n
}

func formatItem(item batch.ItemResult) string {
	r := item.Result
	switch r.Outcome() {
	case part.OutcomeMatched:
		p, _ := r.Part()
		line := fmt.Sprintf("%s: matched %s %s", item.MPN, p.Manufacturer, p.MPN)
		if p.DatasheetURL != "" {
			line += " " + p.DatasheetURL
		}
		return line
	case part.OutcomeAmbiguous:
		cands := r.Candidates()
		names := make([]string, len(cands))
		for i, c := range cands {
			names[i] = fmt.Sprintf("%s %s (%.2f)", c.Manufacturer, c.MPN, c.Score)
		}
		return fmt.Sprintf("%s: ambiguous: %s", item.MPN, strings.Join(names, ", "))
	case part.OutcomeNotFound:
		return fmt.Sprintf("%s: not found", item.MPN)
	default:
		return fmt.Sprintf("%s: error: %s", item.MPN, r.Error())
	}
}
