package datasheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lepinkainen/partly/internal/csvutil"
	"github.com/lepinkainen/partly/internal/enrichment/part"
	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/mpn"
)

// CatalogSourceName is the default source name for catalog records.
const CatalogSourceName = "catalog"

// Catalog is an in-memory source built from curated part records.
type Catalog struct {
	name  string
	byKey map[mpn.Key][]part.Candidate
	size  int
}

// NewCatalog indexes candidates by their normalized part number.
// Records keep their input order within a key.
func NewCatalog(name string, candidates []part.Candidate) *Catalog {
	c := &Catalog{name: name, byKey: make(map[mpn.Key][]part.Candidate)}
	for _, cand := range candidates {
		if cand.Key.IsEmpty() {
			cand.Key = mpn.Normalize(cand.MPN)
		}
		if cand.Key.IsEmpty() {
			continue
		}
		if cand.Source == "" {
			cand.Source = name
		}
		c.byKey[cand.Key] = append(c.byKey[cand.Key], cand)
		c.size++
	}
	return c
}

// LoadCatalog reads a CSV catalog with the columns
// mpn,manufacturer,datasheet_url,confidence,source,specs.
// Only mpn is required. specs is a list of key=value pairs separated by ';'.
func LoadCatalog(path string) (*Catalog, error) {
	candidates, err := csvutil.ProcessCSV(path, parseCatalogRecord, csvutil.ProcessorOptions{
		RequiredColumns: []string{"mpn"},
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return NewCatalog(CatalogSourceName, candidates), nil
}

func parseCatalogRecord(r csvutil.Record) (part.Candidate, error) {
	raw := r.Get("mpn")
	key := mpn.Normalize(raw)
	if key.IsEmpty() {
		return part.Candidate{}, fmt.Errorf("blank mpn")
	}

	confidence := 1.0
	if s := r.Get("confidence"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return part.Candidate{}, fmt.Errorf("confidence %q: %w", s, err)
		}
		confidence = v
	}

	fields, err := parseSpecs(r.Get("specs"))
	if err != nil {
		return part.Candidate{}, err
	}

	return part.Candidate{
		Manufacturer: r.Get("manufacturer"),
		MPN:          raw,
		Key:          key,
		DatasheetURL: r.Get("datasheet_url"),
		Fields:       fields,
		Confidence:   confidence,
		Source:       r.Get("source"),
	}, nil
}

func parseSpecs(s string) (map[string]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("spec %q is not key=value", pair)
		}
		if v = strings.TrimSpace(v); v != "" {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// Name identifies the source in logs.
func (c *Catalog) Name() string {
	return c.name
}

// Len returns the number of indexed records.
func (c *Catalog) Len() int {
	return c.size
}

// Lookup returns copies of every record for key. The manufacturer is left to
// the ranker, so records from other vendors are still returned.
func (c *Catalog) Lookup(ctx context.Context, key mpn.Key, _ manufacturer.Resolved) ([]part.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := c.byKey[key]
	if len(entries) == 0 {
		return nil, nil
	}
	out := make([]part.Candidate, len(entries))
	for i, e := range entries {
		out[i] = e
		if e.Fields != nil {
			out[i].Fields = make(map[string]string, len(e.Fields))
			for k, v := range e.Fields {
				out[i].Fields[k] = v
			}
		}
	}
	return out, nil
}
