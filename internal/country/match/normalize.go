package match

import (
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combining diacritical marks block
func isCombiningMark(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

// Normalize lower-cases s, decomposes it (NFD), drops combining marks in
// U+0300..U+036F and trims surrounding whitespace. It is the only text
// form the ranker compares.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isCombiningMark)))
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}

// unit insert, delete and replace costs
var lev = metrics.NewLevenshtein()

// Distance is the Levenshtein edit distance between a and b counted in
// runes, with unit cost for insertion, deletion and substitution.
func Distance(a, b string) int {
	return lev.Distance(a, b)
}

// Similarity maps Distance into [0,1]: 1 for identical strings.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b), 1)
	return clamp(1 - float64(Distance(a, b))/float64(longest))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
