package similarity

import (
	"math"

	"facevote.io/entities"
)

// Similarity scores two embeddings produced by backend. It is symmetric and
// never fails: malformed input yields 0.0.
func Similarity(backend entities.Backend, a, b []float32) float64 {
	p, ok := ProfileFor(backend)
	if !ok {
		return 0.0
	}
	return p.Similarity(a, b)
}

// Compute applies metric to a and b after re-normalizing both. It returns 0.0
// when either vector is empty, lengths differ, any value is non-finite, or a
// norm is zero.
func Compute(metric Metric, a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		if !isFinite(x) || !isFinite(y) {
			return 0.0
		}
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	normA, normB = math.Sqrt(normA), math.Sqrt(normB)

	var sim float64
	switch metric {
	case MetricCosine:
		sim = clamp(dot/(normA*normB), -1, 1)
	case MetricCosineRescaled:
		sim = (clamp(dot/(normA*normB), -1, 1) + 1) / 2
	case MetricEuclidean:
		sim = 1.0 / (1.0 + euclidean(a, b, normA, normB))
	default:
		return 0.0
	}
	if !isFinite(sim) {
		return 0.0
	}
	return sim
}

// euclidean is the L2 distance between a/|a| and b/|b|.
func euclidean(a, b []float32, normA, normB float64) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i])/normA - float64(b[i])/normB
		sum += d * d
	}
	return math.Sqrt(sum)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
