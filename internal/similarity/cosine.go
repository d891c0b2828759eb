// Package similarity provides the numeric and string similarity measures
// used by the filtering, scoring and clustering layers.
package similarity

import "math"

// Cosine returns the cosine similarity between two vectors. Mismatched or
// empty vectors score 0; a zero-magnitude vector also scores 0 rather than
// producing NaN.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance returns 1 - cosine similarity, the distance measure used
// by the clustering subsystem.
func CosineDistance(a, b []float32) float64 {
	return 1 - Cosine(a, b)
}

// Clamp01 bounds a score into [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
