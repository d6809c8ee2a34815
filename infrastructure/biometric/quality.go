package biometric

import (
	"image"
	"math"

	"facevote.io/infrastructure/logger"
	"gocv.io/x/gocv"
)

// Face quality weights. Each component is normalised to [0, 1].
const (
	sharpnessWeight   = 0.4
	contrastWeight    = 0.2
	brightnessWeight  = 0.2
	faceSizeWeight    = 0.2
	sharpnessScale    = 500.0
	contrastScale     = 128.0
	faceReferenceSide = 224.0
)

// FaceQualityScore rates a face crop in [0, 1] from sharpness, contrast,
// brightness balance and size. Any failure scores 0.
func FaceQualityScore(face gocv.Mat) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warning("face quality scoring failed", logger.LoggerOptions{
				Key:  "error",
				Data: r,
			})
			score = 0
		}
	}()

	if face.Empty() || face.Rows() == 0 || face.Cols() == 0 {
		return 0
	}

	gray := face
	if face.Channels() > 1 {
		gray = gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(face, &gray, gocv.ColorBGRToGray)
	}

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	lapMean, lapStd := gocv.NewMat(), gocv.NewMat()
	defer lapMean.Close()
	defer lapStd.Close()
	gocv.MeanStdDev(laplacian, &lapMean, &lapStd)
	lapVar := math.Pow(lapStd.GetDoubleAt(0, 0), 2)

	grayMean, grayStd := gocv.NewMat(), gocv.NewMat()
	defer grayMean.Close()
	defer grayStd.Close()
	gocv.MeanStdDev(gray, &grayMean, &grayStd)

	return combineQuality(lapVar, grayStd.GetDoubleAt(0, 0), grayMean.GetDoubleAt(0, 0), face.Cols(), face.Rows())
}

// combineQuality weights the raw measurements into a [0, 1] score.
func combineQuality(laplacianVariance, contrast, brightness float64, width, height int) float64 {
	sharpness := math.Min(laplacianVariance/sharpnessScale, 1.0)
	contrastScore := math.Min(contrast/contrastScale, 1.0)
	brightnessScore := 1.0 - math.Abs(brightness/255.0-0.5)*2
	sizeScore := math.Min(float64(width*height)/(faceReferenceSide*faceReferenceSide), 1.0)

	score := sharpnessWeight*sharpness + contrastWeight*contrastScore + brightnessWeight*brightnessScore + faceSizeWeight*sizeScore
	return clampUnit(score)
}

// RankCandidates scores each box within img and returns the selected index
// and its score. The index is -1 when no candidate is good enough.
func RankCandidates(img gocv.Mat, boxes []image.Rectangle) (int, float64) {
	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	scores := make([]float64, len(boxes))
	for i, box := range boxes {
		box = box.Intersect(bounds)
		if box.Empty() {
			continue
		}
		region := img.Region(box)
		quality := FaceQualityScore(region)
		region.Close()
		scores[i] = candidateScore(quality, box, img.Cols(), img.Rows())
	}
	return selectCandidate(scores)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
