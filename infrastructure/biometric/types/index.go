package types

import (
	"context"
	"image"

	"facevote.io/entities"
)

// Frame is a decoded, size-bounded image shared read-only by every encoder
// for the duration of one request.
type Frame interface {
	Width() int
	Height() int
	Close() error
}

// ImageDecoder turns raw encoded bytes into a Frame.
type ImageDecoder interface {
	Decode(data []byte) (Frame, error)
}

// Detection is one backend's result for one image. It is never persisted.
type Detection struct {
	Embedding entities.Embedding
	// Confidence is backend-defined: a detector score or a candidate ranking
	// score. It only serves to pick among faces in the same image.
	Confidence float64
	Box        image.Rectangle
}

// FaceEncoder detects the best face in a frame and embeds it.
//
// A nil Detection with a nil error means the backend abstained: no face, a
// face below its confidence floor, or a degenerate embedding. Returned
// embeddings are always unit-norm and finite.
type FaceEncoder interface {
	Backend() entities.Backend
	Dimension() int
	DetectAndEncode(ctx context.Context, frame Frame) (*Detection, error)
}

// ProcessingStats tracks processing statistics
type ProcessingStats struct {
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	AverageTime        float64 `json:"average_time_ms"`
	TotalTime          int64   `json:"total_time_ms"`
}

// EncoderStatus describes a loaded backend for health reporting.
type EncoderStatus struct {
	Backend      entities.Backend `json:"backend"`
	ModelsLoaded bool             `json:"models_loaded"`
	Dimension    int              `json:"dimension"`
	Stats        ProcessingStats  `json:"stats"`
}

// StatusReporter is implemented by encoders that expose health and stats.
type StatusReporter interface {
	IsHealthy() bool
	GetStats() ProcessingStats
}
