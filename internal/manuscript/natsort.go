package manuscript

import (
	"sort"
	"strings"
	"unicode"
)

// NaturalLess compares two strings treating digit runs as integers, so
// "2.md" sorts before "10.md".
func NaturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		aChunk, aRest, aNumeric := nextChunk(a)
		bChunk, bRest, bNumeric := nextChunk(b)

		if aNumeric && bNumeric {
			// Compare digit runs as integers: strip leading zeros, then
			// shorter run is smaller, equal length compares lexically.
			at := strings.TrimLeft(aChunk, "0")
			bt := strings.TrimLeft(bChunk, "0")
			if len(at) != len(bt) {
				return len(at) < len(bt)
			}
			if at != bt {
				return at < bt
			}
		} else {
			al := strings.ToLower(aChunk)
			bl := strings.ToLower(bChunk)
			if al != bl {
				return al < bl
			}
		}

		a, b = aRest, bRest
	}
	return len(a) < len(b)
}

// nextChunk splits off the leading run of digits or non-digits.
func nextChunk(s string) (chunk, rest string, numeric bool) {
	if s == "" {
		return "", "", false
	}
	numeric = unicode.IsDigit(rune(s[0]))
	for i := 0; i < len(s); i++ {
		if unicode.IsDigit(rune(s[i])) != numeric {
			return s[:i], s[i:], numeric
		}
	}
	return s, "", numeric
}

// SortNatural sorts a slice of strings in natural order, in place.
func SortNatural(items []string) {
	sort.Slice(items, func(i, j int) bool {
		return NaturalLess(items[i], items[j])
	})
}
