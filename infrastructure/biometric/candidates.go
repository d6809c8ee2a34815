package biometric

import (
	"image"
	"math"
)

// Candidate ranking weights used by the dlib backend.
const (
	candidateQualityWeight  = 0.4
	candidateSizeWeight     = 0.3
	candidatePositionWeight = 0.3
	candidateReferenceSide  = 150.0
	// MinCandidateScore rejects every candidate of an image when the best
	// ranking score falls below it.
	MinCandidateScore = 0.5
)

// candidateScore combines face quality, face size and how centred the box is.
func candidateScore(quality float64, box image.Rectangle, imgWidth, imgHeight int) float64 {
	if imgWidth <= 0 || imgHeight <= 0 || box.Empty() {
		return 0
	}
	area := float64(box.Dx() * box.Dy())
	sizeScore := math.Min(area/(candidateReferenceSide*candidateReferenceSide), 1.0)

	cx := float64(box.Min.X+box.Max.X) / 2 / float64(imgWidth)
	cy := float64(box.Min.Y+box.Max.Y) / 2 / float64(imgHeight)
	positionScore := 1.0 - (math.Abs(0.5-cx) + math.Abs(0.5-cy))

	return candidateQualityWeight*quality + candidateSizeWeight*sizeScore + candidatePositionWeight*positionScore
}

// selectCandidate returns the index of the first strictly highest score and
// that score, or -1 when nothing reaches MinCandidateScore.
func selectCandidate(scores []float64) (int, float64) {
	best, bestScore := -1, 0.0
	for i, s := range scores {
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 || bestScore < MinCandidateScore {
		return -1, bestScore
	}
	return best, bestScore
}

// selectMostConfident returns the index of the first highest confidence, or
// -1 for an empty slice.
func selectMostConfident(confidences []float32) int {
	best := -1
	for i, c := range confidences {
		if best < 0 || c > confidences[best] {
			best = i
		}
	}
	return best
}

// expandBox grows box by margin times its shorter side on every edge and
// clips it to bounds.
func expandBox(box image.Rectangle, margin float64, bounds image.Rectangle) image.Rectangle {
	side := box.Dx()
	if box.Dy() < side {
		side = box.Dy()
	}
	m := int(float64(side) * margin)
	return image.Rect(box.Min.X-m, box.Min.Y-m, box.Max.X+m, box.Max.Y+m).Intersect(bounds)
}
