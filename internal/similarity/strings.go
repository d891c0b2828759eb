package similarity

import "strings"

// Text returns a string similarity in [0, 1] based on the Dice coefficient
// over character bigrams, after lowercasing and trimming. Equal strings
// score 1; strings shorter than two runes only match on equality.
func Text(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	bigramsA := bigrams(a)
	bigramsB := bigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}

	counts := make(map[string]int, len(bigramsA))
	for _, g := range bigramsA {
		counts[g]++
	}

	overlap := 0
	for _, g := range bigramsB {
		if counts[g] > 0 {
			counts[g]--
			overlap++
		}
	}

	return 2 * float64(overlap) / float64(len(bigramsA)+len(bigramsB))
}

// TitlesRelated reports whether two job titles should be treated as the
// same role family: one contains the other, or their string similarity is
// at least threshold.
func TitlesRelated(a, b string, threshold float64) bool {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return Text(a, b) >= threshold
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	grams := make([]string, 0, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		grams = append(grams, string(runes[i:i+2]))
	}
	return grams
}
