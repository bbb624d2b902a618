// Package mpn canonicalizes manufacturer part numbers into comparable keys.
package mpn

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxFoldPasses bounds the fixed-point loop in Normalize. A second pass only
// changes anything for exotic compatibility characters.
const maxFoldPasses = 3

// Key is the canonical form of a manufacturer part number. The zero value is
// the sentinel for blank or punctuation-only input.
type Key string

// String returns the key as a plain string.
func (k Key) String() string {
	return string(k)
}

// IsEmpty reports whether the key is the blank sentinel.
func (k Key) IsEmpty() bool {
	return k == ""
}

// Normalize folds a raw part number into its Key. It never fails.
//
// Compatibility characters (full-width digits, ligatures) are folded with
// NFKC, letters are upper-cased and whitespace and separator punctuation are
// dropped, so " abc-123 ", "ABC 123" and "abc_123" share one key. '+' and '#'
// survive because vendors use them in ordering suffixes such as "#PBF".
func Normalize(raw string) Key {
	current := raw
	for i := 0; i < maxFoldPasses; i++ {
		next := fold(current)
		if next == current {
			break
		}
		current = next
	}
	return Key(current)
}

// Equal reports whether two raw part numbers normalize to the same key.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func fold(s string) string {
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(unicode.ToUpper(r))
		case r == '+' || r == '#':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
