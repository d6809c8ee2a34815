package similarity

import "math"

// QualityVariant selects one of the two embedding-health heuristics. They
// differ only in the scores returned when a structural check fails.
type QualityVariant string

const (
	// QualityStrict scores a non-unit vector 0.0, an odd distribution 0.5 and
	// an over-sparse vector 0.7.
	QualityStrict QualityVariant = "strict"
	// QualityLenient scores the same failures 0.5, 0.7 and 0.8.
	QualityLenient QualityVariant = "lenient"
)

const (
	normLowerBound     = 0.99
	normUpperBound     = 1.01
	maxAbsMean         = 0.1
	minStdDev          = 0.1
	nearZeroComponent  = 0.01
	maxSparsity        = 0.9
	normQualityWeight  = 0.4
	meanQualityWeight  = 0.3
	sparsityQualWeight = 0.3
)

type qualityFallbacks struct {
	invalid, badNorm, badDistribution, tooSparse float64
}

var fallbacks = map[QualityVariant]qualityFallbacks{
	QualityStrict:  {invalid: 0.0, badNorm: 0.0, badDistribution: 0.5, tooSparse: 0.7},
	QualityLenient: {invalid: 0.5, badNorm: 0.5, badDistribution: 0.7, tooSparse: 0.8},
}

// FeatureQuality scores the structural health of one embedding in [0,1]. It
// only informs thresholds and reporting and never rejects an embedding.
func FeatureQuality(variant QualityVariant, embedding []float32) float64 {
	fb, ok := fallbacks[variant]
	if !ok {
		fb = fallbacks[QualityStrict]
	}
	n := len(embedding)
	if n == 0 {
		return fb.invalid
	}

	sum, sumSq := 0.0, 0.0
	nearZero := 0
	for _, v := range embedding {
		f := float64(v)
		if !isFinite(f) {
			return fb.invalid
		}
		sum += f
		sumSq += f * f
		if math.Abs(f) < nearZeroComponent {
			nearZero++
		}
	}

	norm := math.Sqrt(sumSq)
	if !(norm > normLowerBound && norm < normUpperBound) {
		return fb.badNorm
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	std := math.Sqrt(variance)
	if math.Abs(mean) > maxAbsMean || std < minStdDev {
		return fb.badDistribution
	}

	sparsity := float64(nearZero) / float64(n)
	if sparsity > maxSparsity {
		return fb.tooSparse
	}

	score := normQualityWeight*(1.0-math.Abs(1.0-norm)) +
		meanQualityWeight*(1.0-math.Abs(mean)) +
		sparsityQualWeight*(1.0-sparsity)
	return clamp(score, 0, 1)
}
