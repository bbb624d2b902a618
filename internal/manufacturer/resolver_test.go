package manufacturer

import (
	"testing"

	"github.com/lepinkainen/partly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_KnownAliases(t *testing.T) {
	r := NewDefaultResolver()

	tests := []struct {
		hint string
		want string
	}{
		{hint: "TI", want: "Texas Instruments"},
		{hint: "ti", want: "Texas Instruments"},
		{hint: " Texas Instruments, Inc. ", want: "Texas Instruments"},
		{hint: "texas-instruments", want: "Texas Instruments"},
		{hint: "Linear Technology", want: "Analog Devices"},
		{hint: "ST Micro", want: "STMicroelectronics"},
		{hint: "Murata Manufacturing Co., Ltd.", want: "Murata Manufacturing"},
		{hint: "ON Semiconductor", want: "onsemi"},
		{hint: "Würth Elektronik", want: "Wurth Elektronik"},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			got := r.Resolve(tt.hint)
			require.True(t, got.IsKnown(), "expected %q to resolve", tt.hint)
			assert.Equal(t, tt.want, got.Name())
		})
	}
}

func TestResolve_UnknownIsNotAnError(t *testing.T) {
	r := NewDefaultResolver()

	for _, hint := range []string{"", "   ", "Acme Widgets", "Inc."} {
		got := r.Resolve(hint)
		assert.False(t, got.IsKnown(), "hint %q", hint)
		assert.Equal(t, "", got.Name())
		assert.Equal(t, "unknown", got.String())
	}
}

func TestResolve_NilResolver(t *testing.T) {
	var r *Resolver
	assert.False(t, r.Resolve("TI").IsKnown())
	assert.Nil(t, r.Canonical())
}

func TestResolved_Same(t *testing.T) {
	assert.True(t, Known("TDK").Same(Known("TDK")))
	assert.False(t, Known("TDK").Same(Known("Murata Manufacturing")))
	assert.False(t, Unknown().Same(Unknown()))
	assert.False(t, Unknown().Same(Known("TDK")))
}

func TestCanonical_SortedAndCopied(t *testing.T) {
	r := NewResolver(map[string][]string{
		"Zeta":  {"Z"},
		"Alpha": {"A"},
		"  ":    {"blank"},
	})

	names := r.Canonical()
	assert.Equal(t, []string{"Alpha", "Zeta"}, names)

	names[0] = "mutated"
	assert.Equal(t, "Alpha", r.Canonical()[0])
	assert.False(t, r.Resolve("blank").IsKnown())
}

func TestNewResolverFromFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("aliases.yaml", `manufacturers:
  Espressif Systems: [Espressif, ESP]
  Texas Instruments: [Texas Inst.]
`)

	r, err := NewResolverFromFile(env.Path("aliases.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Espressif Systems", r.Resolve("espressif").Name())
	assert.Equal(t, "Texas Instruments", r.Resolve("Texas Inst").Name())
	// Defaults are kept.
	assert.Equal(t, "Texas Instruments", r.Resolve("TI").Name())
}

func TestNewResolverFromFile_EmptyPath(t *testing.T) {
	r, err := NewResolverFromFile("")
	require.NoError(t, err)
	assert.Equal(t, "NXP Semiconductors", r.Resolve("Freescale").Name())
}

func TestNewResolverFromFile_Errors(t *testing.T) {
	env := testutil.NewTestEnv(t)

	_, err := NewResolverFromFile(env.Path("missing.yaml"))
	require.Error(t, err)

	env.WriteFileString("broken.yaml", "manufacturers: [not, a, map")
	_, err = NewResolverFromFile(env.Path("broken.yaml"))
	require.Error(t, err)
}
