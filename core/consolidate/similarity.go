package consolidate

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"

	"github.com/dfattal/david-gpt-sub005/model"
)

// minFuzzyLength is the minimum name length for edit-distance matching;
// short technical names differ meaningfully in single characters.
const minFuzzyLength = 8

// fuzzyRatioThreshold is the minimum similarity ratio for an
// edit-distance match.
const fuzzyRatioThreshold = 0.85

// Normalize folds a name to the form used for near-identity checks:
// unicode-normalized, lowercased, whitespace-collapsed, punctuation
// stripped.
func Normalize(name string) string {
	folded := strings.ToLower(norm.NFKC.String(name))
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SimilarityRatio is the levenshtein similarity of two strings in
// [0, 1], where 1 means equal.
func SimilarityRatio(a string, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// IsNearDuplicate reports whether two entity names of the same kind are
// close enough to be treated as one identity. The checks run in order:
// normalized equality, containment with a small length difference, and
// edit distance for long technology names.
func IsNearDuplicate(a string, b string, kind model.EntityKind) bool {
	normA := Normalize(a)
	normB := Normalize(b)
	if normA == "" || normB == "" {
		return false
	}

	if normA == normB {
		return true
	}

	lenDiff := len(normA) - len(normB)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff <= 2 && (strings.Contains(normA, normB) || strings.Contains(normB, normA)) {
		return true
	}

	if kind == model.KindTechnology && len(normA) >= minFuzzyLength && len(normB) >= minFuzzyLength {
		return SimilarityRatio(normA, normB) >= fuzzyRatioThreshold
	}

	return false
}
