package query

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Similarity scores how close two strings are on a 0-1 scale: 1 minus the
// Levenshtein distance normalized by the longer rune length. Comparison is
// case-insensitive so that "alise" still finds "Alice".
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}
