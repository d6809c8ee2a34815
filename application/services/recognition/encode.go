package recognition

import (
	"context"
	"fmt"
	"sync"
	"time"

	"facevote.io/entities"
	"facevote.io/infrastructure/biometric/types"
	"facevote.io/infrastructure/logger"
)

// encoding is one backend's outcome for one image. Embedding is nil when the
// backend abstained, failed or timed out.
type encoding struct {
	Backend   entities.Backend
	Embedding entities.Embedding
	Reason    string
}

func (enc encoding) ok() bool {
	return enc.Embedding != nil
}

// encode decodes data and runs every encoder on it concurrently. Results are
// in encoder order. The frame is released only after every encoder call has
// returned, including calls abandoned on timeout. A cancelled ctx fails the
// whole call with ErrCancelled.
func (e *Engine) encode(ctx context.Context, data []byte) ([]encoding, error) {
	frame, err := e.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	results := make([]encoding, len(e.encoders))
	var collected, running sync.WaitGroup
	for i, enc := range e.encoders {
		collected.Add(1)
		running.Add(1)
		go func(i int, enc types.FaceEncoder) {
			defer collected.Done()
			results[i] = e.encodeOne(ctx, enc, frame, &running)
		}(i, enc)
	}
	collected.Wait()

	go func() {
		running.Wait()
		frame.Close()
	}()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return results, nil
}

type encoderResult struct {
	detection *types.Detection
	err       error
}

func (e *Engine) encodeOne(ctx context.Context, enc types.FaceEncoder, frame types.Frame, running *sync.WaitGroup) encoding {
	backend := enc.Backend()
	startTime := time.Now()

	bctx, cancel := context.WithTimeout(ctx, e.backendTimeout)
	defer cancel()

	done := make(chan encoderResult, 1)
	go func() {
		defer running.Done()
		defer func() {
			if r := recover(); r != nil {
				done <- encoderResult{err: fmt.Errorf("encoder panicked: %v", r)}
			}
		}()
		detection, err := enc.DetectAndEncode(bctx, frame)
		done <- encoderResult{detection: detection, err: err}
	}()

	var result encoderResult
	select {
	case result = <-done:
	case <-bctx.Done():
		if ctx.Err() != nil {
			result = encoderResult{err: ctx.Err()}
		} else {
			result = encoderResult{err: fmt.Errorf("timed out after %s", e.backendTimeout)}
		}
	}

	out := encoding{Backend: backend}
	switch {
	case ctx.Err() != nil:
		out.Reason = "request cancelled"
	case result.err != nil:
		out.Reason = "backend failed"
		logger.Warning("face encoder failed", logger.LoggerOptions{
			Key: "encoder",
			Data: map[string]interface{}{
				"backend": backend,
				"error":   result.err.Error(),
			},
		})
	case result.detection == nil:
		out.Reason = "no face detected"
	case len(result.detection.Embedding) != enc.Dimension():
		out.Reason = "unexpected embedding size"
		logger.Warning("face encoder returned an embedding of the wrong size", logger.LoggerOptions{
			Key: "encoder",
			Data: map[string]interface{}{
				"backend": backend,
				"got":     len(result.detection.Embedding),
				"want":    enc.Dimension(),
			},
		})
	case entities.ValidateEmbedding(result.detection.Embedding) != nil:
		out.Reason = "degenerate embedding"
	default:
		out.Embedding = result.detection.Embedding.Clone()
	}

	logger.Debug("face encoder finished", logger.LoggerOptions{
		Key: "encoder",
		Data: map[string]interface{}{
			"backend":     backend,
			"encoded":     out.ok(),
			"duration_ms": time.Since(startTime).Milliseconds(),
		},
	})
	return out
}

func succeeded(encodings []encoding) []entities.Backend {
	backends := []entities.Backend{}
	for _, enc := range encodings {
		if enc.ok() {
			backends = append(backends, enc.Backend)
		}
	}
	return backends
}

func failed(encodings []encoding) []entities.Backend {
	backends := []entities.Backend{}
	for _, enc := range encodings {
		if !enc.ok() {
			backends = append(backends, enc.Backend)
		}
	}
	return backends
}
