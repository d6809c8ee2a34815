package biometric

import (
	"errors"
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func encodedImage(t *testing.T, w, h int) []byte {
	t.Helper()
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	defer mat.Close()
	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...)
}

func TestBoundedSize(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		want       image.Point
		wantResize bool
	}{
		{"fits", 800, 600, image.Pt(800, 600), false},
		{"exact", 1024, 1024, image.Pt(1024, 1024), false},
		{"landscape", 2048, 1000, image.Pt(1024, 500), true},
		{"portrait", 1000, 3000, image.Pt(341, 1024), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, resize := boundedSize(tt.w, tt.h, MaxImageDimension)
			if got != tt.want || resize != tt.wantResize {
				t.Errorf("boundedSize() = %v, %v, want %v, %v", got, resize, tt.want, tt.wantResize)
			}
		})
	}
}

func TestNormalizeImage(t *testing.T) {
	t.Run("downscales large images", func(t *testing.T) {
		mat, err := NormalizeImage(encodedImage(t, 2000, 500))
		if err != nil {
			t.Fatalf("NormalizeImage() error = %v", err)
		}
		defer mat.Close()
		if mat.Cols() != 1024 || mat.Rows() != 256 {
			t.Errorf("size = %dx%d, want 1024x256", mat.Cols(), mat.Rows())
		}
	})

	t.Run("keeps small images", func(t *testing.T) {
		mat, err := NormalizeImage(encodedImage(t, 320, 240))
		if err != nil {
			t.Fatalf("NormalizeImage() error = %v", err)
		}
		defer mat.Close()
		if mat.Cols() != 320 || mat.Rows() != 240 {
			t.Errorf("size = %dx%d, want 320x240", mat.Cols(), mat.Rows())
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		if _, err := NormalizeImage(nil); !errors.Is(err, ErrEmptyImage) {
			t.Errorf("error = %v, want ErrEmptyImage", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := NormalizeImage([]byte("not an image")); !errors.Is(err, ErrUndecodableImage) {
			t.Errorf("error = %v, want ErrUndecodableImage", err)
		}
	})
}

func TestNormalizerDecodeProducesMatFrame(t *testing.T) {
	frame, err := Normalizer{}.Decode(encodedImage(t, 64, 48))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer frame.Close()

	if frame.Width() != 64 || frame.Height() != 48 {
		t.Errorf("frame = %dx%d, want 64x48", frame.Width(), frame.Height())
	}
	if _, err := matOf(frame); err != nil {
		t.Errorf("matOf() error = %v", err)
	}
}
