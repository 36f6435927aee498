package match

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Distance returns the Levenshtein edit distance between a and b: the minimum
// number of single-rune insertions, deletions and substitutions transforming
// one string into the other.
func Distance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}

// Similarity returns a length-normalized edit-distance score in [0,1].
//
// The score is (len(longer) - distance) / len(longer) with rune lengths; two
// empty strings score 1.0. The normalization is by length only, so this is a
// heuristic ranking score rather than a true similarity metric. It is
// symmetric in its arguments.
func Similarity(a, b string) float64 {
	longer, shorter := a, b
	if utf8.RuneCountInString(a) < utf8.RuneCountInString(b) {
		longer, shorter = b, a
	}

	longerLen := utf8.RuneCountInString(longer)
	if longerLen == 0 {
		return 1.0
	}

	return float64(longerLen-Distance(longer, shorter)) / float64(longerLen)
}
