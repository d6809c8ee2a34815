package biometric

import (
	"image"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

func shiftedTemplate(dx, dy float32) []gocv.Point2f {
	points := make([]gocv.Point2f, len(arcFaceTemplate))
	for i, p := range arcFaceTemplate {
		points[i] = gocv.Point2f{X: p.X + dx, Y: p.Y + dy}
	}
	return points
}

func TestUsableLandmarks(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 200)
	tests := []struct {
		name      string
		landmarks []gocv.Point2f
		want      bool
	}{
		{"template inside image", shiftedTemplate(40, 30), true},
		{"missing points", shiftedTemplate(40, 30)[:4], false},
		{"none", nil, false},
		{"outside image", shiftedTemplate(150, 30), false},
		{"not finite", append(shiftedTemplate(40, 30)[:4], gocv.Point2f{X: float32(math.NaN()), Y: 10}), false},
		{"collapsed eyes", []gocv.Point2f{{X: 50, Y: 50}, {X: 50.5, Y: 50}, {X: 55, Y: 70}, {X: 45, Y: 90}, {X: 65, Y: 90}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := usableLandmarks(tt.landmarks, bounds); got != tt.want {
				t.Errorf("usableLandmarks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTemplateFor(t *testing.T) {
	scaled := templateFor(image.Pt(224, 224))
	for i, p := range arcFaceTemplate {
		if math.Abs(float64(scaled[i].X-2*p.X)) > 1e-4 || math.Abs(float64(scaled[i].Y-2*p.Y)) > 1e-4 {
			t.Errorf("templateFor(224)[%d] = %v, want twice %v", i, scaled[i], p)
		}
	}
}

func TestAlignmentTransformRecoversTranslation(t *testing.T) {
	transform, ok := alignmentTransform(shiftedTemplate(40, 30), image.Pt(112, 112))
	if !ok {
		t.Fatal("alignmentTransform() found no transform")
	}
	defer transform.Close()

	want := [2][3]float64{{1, 0, -40}, {0, 1, -30}}
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			if got := transform.GetDoubleAt(r, c); math.Abs(got-want[r][c]) > 1e-2 {
				t.Errorf("transform[%d][%d] = %v, want %v", r, c, got, want[r][c])
			}
		}
	}
}

func TestAlignFace(t *testing.T) {
	img := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8UC3)
	defer img.Close()

	aligned, ok := alignFace(img, shiftedTemplate(40, 30), image.Pt(112, 112))
	if !ok {
		t.Fatal("alignFace() rejected usable landmarks")
	}
	defer aligned.Close()
	if aligned.Cols() != 112 || aligned.Rows() != 112 {
		t.Errorf("aligned size = %dx%d, want 112x112", aligned.Cols(), aligned.Rows())
	}

	if _, ok := alignFace(img, nil, image.Pt(112, 112)); ok {
		t.Error("alignFace() accepted missing landmarks")
	}
}
