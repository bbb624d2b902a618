// Package csvutil reads header-addressed CSV files such as part catalogs and
// MPN input lists.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// FieldsPerRecord sets the expected number of fields per record.
	// If 0, it's set to the number of fields in the header.
	FieldsPerRecord int

	// RequiredColumns must be present in the header.
	RequiredColumns []string

	// SkipInvalid controls whether to skip invalid records or return an error.
	SkipInvalid bool
}

// Record is one data row, addressed by header name.
type Record struct {
	Line   int
	fields []string
	index  map[string]int
}

// Get returns the trimmed value for column, or "" when the column is absent.
func (r Record) Get(column string) string {
	i, ok := r.index[normalizeHeader(column)]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// Has reports whether the header contains column.
func (r Record) Has(column string) bool {
	_, ok := r.index[normalizeHeader(column)]
	return ok
}

// ProcessCSV reads a CSV file and parses each record into type T.
// The parser converts a Record into the target type.
func ProcessCSV[T any](filename string, parser func(Record) (T, error), opts ProcessorOptions) ([]T, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	if fi, err := csvFile.Stat(); err != nil || fi.Size() == 0 {
		return nil, fmt.Errorf("CSV file %s is empty or cannot be read", filename)
	}

	return ReadCSV(csvFile, parser, opts)
}

// ReadCSV is ProcessCSV over an arbitrary reader.
func ReadCSV[T any](r io.Reader, parser func(Record) (T, error), opts ProcessorOptions) ([]T, error) {
	reader := csv.NewReader(r)
	if opts.FieldsPerRecord > 0 {
		reader.FieldsPerRecord = opts.FieldsPerRecord
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}
	for _, col := range opts.RequiredColumns {
		if _, ok := index[normalizeHeader(col)]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var items []T
	line := 1

	for {
		fields, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Error reading record", "line", line, "error", err)
			continue
		}

		item, err := parser(Record{Line: line, fields: fields, index: index})
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid record", "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("invalid record on line %d: %w", line, err)
		}

		items = append(items, item)
	}

	return items, nil
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
}
