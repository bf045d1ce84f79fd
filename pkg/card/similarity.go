package card

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two strings from 0 to 100 by normalized edit distance:
// (1 - distance/max(len(a), len(b))) * 100, lengths counted in runes.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return (1 - float64(d)/float64(longest)) * 100
}
