package manufacturer

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// corporateSuffixes are dropped from the end of a folded alias so that
// "Texas Instruments Inc." and "Texas Instruments" resolve alike.
var corporateSuffixes = []string{
	"incorporated", "corporation", "company", "limited",
	"inc", "corp", "co", "ltd", "llc", "gmbh", "ag", "sa", "bv", "plc", "kk",
}

// Resolver looks up manufacturer hints in an alias table. It is read-only
// after construction and safe for concurrent use.
type Resolver struct {
	aliases   map[string]string
	canonical []string
}

// NewResolver builds a Resolver from a canonical name -> aliases table.
// Later entries for the same folded alias override earlier ones.
func NewResolver(table map[string][]string) *Resolver {
	r := &Resolver{
		aliases: make(map[string]string),
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		canonical := strings.TrimSpace(name)
		if canonical == "" {
			continue
		}
		r.canonical = append(r.canonical, canonical)
		r.add(canonical, canonical)
		for _, alias := range table[name] {
			r.add(alias, canonical)
		}
	}

	return r
}

// NewDefaultResolver returns a Resolver over DefaultAliases.
func NewDefaultResolver() *Resolver {
	return NewResolver(DefaultAliases)
}

func (r *Resolver) add(alias, canonical string) {
	key := foldAlias(alias)
	if key == "" {
		return
	}
	r.aliases[key] = canonical
}

// Resolve maps a hint to a canonical manufacturer. Blank or unrecognized
// hints yield Unknown; resolution never fails.
func (r *Resolver) Resolve(hint string) Resolved {
	if r == nil {
		return Unknown()
	}
	key := foldAlias(hint)
	if key == "" {
		return Unknown()
	}
	if name, ok := r.aliases[key]; ok {
		return Known(name)
	}
	return Unknown()
}

// Canonical returns the sorted list of canonical manufacturer names.
func (r *Resolver) Canonical() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.canonical))
	copy(out, r.canonical)
	return out
}

// foldAlias lower-cases, drops punctuation and whitespace, and trims trailing
// corporate suffixes: "Texas Instruments, Inc." -> "texasinstruments".
func foldAlias(alias string) string {
	words := strings.FieldsFunc(norm.NFKC.String(alias), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for len(words) > 1 && isCorporateSuffix(words[len(words)-1]) {
		words = words[:len(words)-1]
	}

	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(strings.ToLower(w))
	}
	return sb.String()
}

func isCorporateSuffix(word string) bool {
	lower := strings.ToLower(word)
	for _, suffix := range corporateSuffixes {
		if lower == suffix {
			return true
		}
	}
	return false
}
