package biometric

import (
	"errors"
	"fmt"
	"image"

	"facevote.io/infrastructure/biometric/types"
	"gocv.io/x/gocv"
)

// MaxImageDimension bounds the longer side of every image handed to detectors.
const MaxImageDimension = 1024

var (
	ErrEmptyImage       = errors.New("image data is empty")
	ErrUndecodableImage = errors.New("image data could not be decoded")
	ErrForeignFrame     = errors.New("frame was not produced by the gocv normalizer")
)

// MatFrame is the gocv-backed types.Frame produced by Normalizer.
type MatFrame struct {
	mat gocv.Mat
}

func NewMatFrame(mat gocv.Mat) *MatFrame {
	return &MatFrame{mat: mat}
}

func (f *MatFrame) Mat() gocv.Mat { return f.mat }
func (f *MatFrame) Width() int    { return f.mat.Cols() }
func (f *MatFrame) Height() int   { return f.mat.Rows() }

func (f *MatFrame) Close() error {
	return f.mat.Close()
}

// matOf unwraps a frame for gocv-based encoders.
func matOf(frame types.Frame) (gocv.Mat, error) {
	mf, ok := frame.(*MatFrame)
	if !ok || mf == nil || mf.mat.Empty() {
		return gocv.Mat{}, ErrForeignFrame
	}
	return mf.mat, nil
}

// Normalizer decodes raw bytes and bounds the image size.
type Normalizer struct {
	MaxDimension int
}

func (n Normalizer) Decode(data []byte) (types.Frame, error) {
	mat, err := normalizeImage(data, n.MaxDimension)
	if err != nil {
		return nil, err
	}
	return NewMatFrame(mat), nil
}

// NormalizeImage decodes data into a BGR Mat whose longer side is at most
// MaxImageDimension. The caller owns the returned Mat.
func NormalizeImage(data []byte) (gocv.Mat, error) {
	return normalizeImage(data, MaxImageDimension)
}

func normalizeImage(data []byte, maxDim int) (gocv.Mat, error) {
	if maxDim <= 0 {
		maxDim = MaxImageDimension
	}
	if len(data) == 0 {
		return gocv.Mat{}, ErrEmptyImage
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, ErrUndecodableImage
	}

	size, resize := boundedSize(img.Cols(), img.Rows(), maxDim)
	if !resize {
		return img, nil
	}

	// INTER_AREA averages source pixels when shrinking.
	resized := gocv.NewMat()
	gocv.Resize(img, &resized, size, 0, 0, gocv.InterpolationArea)
	img.Close()
	return resized, nil
}

// boundedSize scales (w, h) so the longer side equals maxDim, truncating like
// an int cast. resize is false when the image already fits.
func boundedSize(w, h, maxDim int) (image.Point, bool) {
	longer := w
	if h > longer {
		longer = h
	}
	if longer <= maxDim {
		return image.Pt(w, h), false
	}
	scale := float64(maxDim) / float64(longer)
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return image.Pt(nw, nh), true
}
