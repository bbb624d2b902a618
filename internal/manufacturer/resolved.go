// Package manufacturer resolves free-form manufacturer hints to canonical
// vendor names using a static, configurable alias table.
package manufacturer

// Resolved is the outcome of resolving a manufacturer hint: either a known
// canonical vendor or Unknown. The zero value is Unknown.
type Resolved struct {
	name string
}

// Known returns a Resolved for the given canonical manufacturer name.
func Known(name string) Resolved {
	return Resolved{name: name}
}

// Unknown returns the Resolved value used when no manufacturer could be determined.
func Unknown() Resolved {
	return Resolved{}
}

// IsKnown reports whether a canonical manufacturer was found.
func (r Resolved) IsKnown() bool {
	return r.name != ""
}

// Name returns the canonical manufacturer name, or "" when Unknown.
func (r Resolved) Name() string {
	return r.name
}

// Same reports whether both values name the same known manufacturer.
// Two Unknown values are not the same manufacturer.
func (r Resolved) Same(other Resolved) bool {
	return r.IsKnown() && r.name == other.name
}

func (r Resolved) String() string {
	if !r.IsKnown() {
		return "unknown"
	}
	return r.name
}
