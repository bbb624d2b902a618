package datasheet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/partly/internal/enrichment/part"
	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/mpn"
	"github.com/lepinkainen/partly/internal/testutil"
)

const catalogCSV = `mpn,manufacturer,datasheet_url,confidence,source,specs
LM358N,Texas Instruments,https://ti.com/lm358.pdf,0.9,ti-catalog,package=PDIP-8;channels=2
lm358-n,onsemi,,0.6,,package=DIP-8
NE555P,Texas Instruments,,,,
`

func TestLoadCatalog(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("parts.csv", catalogCSV)

	cat, err := LoadCatalog(env.Path("parts.csv"))
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, CatalogSourceName, cat.Name())

	got, err := cat.Lookup(context.Background(), mpn.Normalize("lm 358n"), manufacturer.Unknown())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Texas Instruments", got[0].Manufacturer)
	assert.Equal(t, "ti-catalog", got[0].Source)
	assert.InDelta(t, 0.9, got[0].Confidence, 1e-9)
	assert.Equal(t, map[string]string{"package": "PDIP-8", "channels": "2"}, got[0].Fields)

	assert.Equal(t, "onsemi", got[1].Manufacturer)
	assert.Equal(t, CatalogSourceName, got[1].Source)

	ne555, err := cat.Lookup(context.Background(), "NE555P", manufacturer.Unknown())
	require.NoError(t, err)
	require.Len(t, ne555, 1)
	assert.InDelta(t, 1.0, ne555[0].Confidence, 1e-9)
	assert.Nil(t, ne555[0].Fields)
}

func TestLoadCatalog_InvalidRows(t *testing.T) {
	env := testutil.NewTestEnv(t)

	env.WriteFileString("bad_conf.csv", "mpn,confidence\nLM358N,high\n")
	_, err := LoadCatalog(env.Path("bad_conf.csv"))
	assert.Error(t, err)

	env.WriteFileString("bad_specs.csv", "mpn,specs\nLM358N,package\n")
	_, err = LoadCatalog(env.Path("bad_specs.csv"))
	assert.Error(t, err)

	env.WriteFileString("no_mpn.csv", "part,manufacturer\nLM358N,TI\n")
	_, err = LoadCatalog(env.Path("no_mpn.csv"))
	assert.Error(t, err)
}

func TestCatalogLookup_ReturnsCopies(t *testing.T) {
	cat := NewCatalog("test", []part.Candidate{
		{Manufacturer: "TI", MPN: "LM358N", Fields: map[string]string{"package": "PDIP-8"}},
		{Manufacturer: "TI", MPN: "---"},
	})
	assert.Equal(t, 1, cat.Len())

	first, err := cat.Lookup(context.Background(), "LM358N", manufacturer.Unknown())
	require.NoError(t, err)
	first[0].Fields["package"] = "changed"

	second, err := cat.Lookup(context.Background(), "LM358N", manufacturer.Unknown())
	require.NoError(t, err)
	assert.Equal(t, "PDIP-8", second[0].Fields["package"])
	assert.Equal(t, "test", second[0].Source)

	none, err := cat.Lookup(context.Background(), "UNKNOWN1", manufacturer.Unknown())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParseSpecs(t *testing.T) {
	fields, err := parseSpecs(" package = SOT-23 ; ; vout= ;tol=1% ")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"package": "SOT-23", "tol": "1%"}, fields)

	fields, err = parseSpecs("")
	require.NoError(t, err)
	assert.Nil(t, fields)

	_, err = parseSpecs("=value")
	assert.Error(t, err)
}
