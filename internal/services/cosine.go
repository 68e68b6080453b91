package services

import "math"

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either vector is empty, has zero norm, or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(cos) {
		return 0
	}
	return cos
}

// similarityToScore maps a cosine value onto the 0..100 scale. Negative
// similarity counts as no similarity.
func similarityToScore(cos float64) int {
	return toScore(math.Max(0, math.Min(1, cos)) * 100)
}
