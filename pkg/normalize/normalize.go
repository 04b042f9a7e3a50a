// Package normalize canonicalizes raw INCI name strings so that catalog
// lookups and subset matching compare like with like. Two strings that differ
// only in accents, casing, or whitespace runs normalize identically.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name is one query ingredient in both of its forms. Key is the canonical
// comparison form, Display the title-cased presentation form derived from it.
type Name struct {
	Key     string
	Display string
}

// Normalize returns the canonical form of a raw ingredient name:
// diacritics stripped, whitespace runs collapsed to a single space,
// trimmed, lowercased. Empty input normalizes to the empty string.
func Normalize(raw string) string {
	s, _, err := transform.String(stripMarks, raw)
	if err != nil {
		// Invalid UTF-8 passes through untransformed rather than failing.
		s = raw
	}
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// Title returns the presentation form of a normalized name: the first
// letter of every word upper-cased.
func Title(normalized string) string {
	words := strings.Fields(normalized)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// List normalizes a query's constituent strings in order, dropping empties
// and deduplicating by canonical key while keeping the first occurrence.
func List(raws []string) []Name {
	seen := make(map[string]struct{}, len(raws))
	names := make([]Name, 0, len(raws))

	for _, raw := range raws {
		key := Normalize(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, Name{Key: key, Display: Title(key)})
	}

	return names
}
