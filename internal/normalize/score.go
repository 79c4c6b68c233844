package normalize

import "strings"

// Score strips all whitespace from a correct-score label. Two labels name
// the same market outcome iff their normalized forms are identical; this is
// the only equality key used when pairing scores across sources.
func Score(raw string) string {
	return strings.Join(strings.Fields(raw), "")
}

// ReverseScore flips the digits of an "X-Y" label ("2-1" -> "1-2"). Raw
// ingestion uses it to disambiguate duplicate labels produced by sources
// that list both orientations of the same scoreline.
func ReverseScore(score string) string {
	parts := strings.Split(score, "-")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "-")
}
