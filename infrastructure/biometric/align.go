package biometric

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// arcFaceTemplate is where the five landmarks sit in a 112x112 ArcFace input,
// in YuNet order: right eye, left eye, nose tip, right and left mouth corner.
var arcFaceTemplate = [5]gocv.Point2f{
	{X: 38.2946, Y: 51.6963},
	{X: 73.5318, Y: 51.5014},
	{X: 56.0252, Y: 71.7366},
	{X: 41.5493, Y: 92.3655},
	{X: 70.7299, Y: 92.2041},
}

// minEyeDistance is the smallest eye spacing, in pixels, worth aligning on.
const minEyeDistance = 2.0

// templateFor scales the ArcFace template to an output of the given size.
func templateFor(size image.Point) []gocv.Point2f {
	sx := float32(size.X) / 112
	sy := float32(size.Y) / 112
	points := make([]gocv.Point2f, len(arcFaceTemplate))
	for i, p := range arcFaceTemplate {
		points[i] = gocv.Point2f{X: p.X * sx, Y: p.Y * sy}
	}
	return points
}

// usableLandmarks reports whether landmarks hold five finite points inside
// bounds with distinguishable eyes.
func usableLandmarks(landmarks []gocv.Point2f, bounds image.Rectangle) bool {
	if len(landmarks) != len(arcFaceTemplate) {
		return false
	}
	for _, p := range landmarks {
		x, y := float64(p.X), float64(p.Y)
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return false
		}
		if x < float64(bounds.Min.X) || y < float64(bounds.Min.Y) || x >= float64(bounds.Max.X) || y >= float64(bounds.Max.Y) {
			return false
		}
	}
	dx := float64(landmarks[1].X - landmarks[0].X)
	dy := float64(landmarks[1].Y - landmarks[0].Y)
	return math.Hypot(dx, dy) >= minEyeDistance
}

// alignmentTransform estimates the similarity transform taking landmarks onto
// the template for size. The caller owns the returned 2x3 matrix.
func alignmentTransform(landmarks []gocv.Point2f, size image.Point) (gocv.Mat, bool) {
	from := gocv.NewPoint2fVectorFromPoints(landmarks)
	defer from.Close()
	to := gocv.NewPoint2fVectorFromPoints(templateFor(size))
	defer to.Close()

	transform := gocv.EstimateAffinePartial2D(from, to)
	if transform.Empty() {
		transform.Close()
		return gocv.Mat{}, false
	}
	return transform, true
}

// alignFace warps img so the landmarks land on the ArcFace template. It
// reports false when the landmarks cannot be used, leaving the caller to crop
// the detection box instead.
func alignFace(img gocv.Mat, landmarks []gocv.Point2f, size image.Point) (gocv.Mat, bool) {
	if !usableLandmarks(landmarks, image.Rect(0, 0, img.Cols(), img.Rows())) {
		return gocv.Mat{}, false
	}
	transform, ok := alignmentTransform(landmarks, size)
	if !ok {
		return gocv.Mat{}, false
	}
	defer transform.Close()

	aligned := gocv.NewMat()
	gocv.WarpAffine(img, &aligned, transform, size)
	if aligned.Empty() {
		aligned.Close()
		return gocv.Mat{}, false
	}
	return aligned, true
}
