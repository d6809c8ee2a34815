package recognition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"facevote.io/entities"
	"facevote.io/infrastructure/logger"
)

type EnrollResult struct {
	IdentityID string             `json:"id"`
	Succeeded  []entities.Backend `json:"succeeded"`
	Failed     []entities.Backend `json:"failed"`
	Message    string             `json:"message"`
}

// Enroll encodes image with every backend and stores the successful
// embeddings under id. Backends that fail keep whatever embedding id already
// had for them. Nothing is written when every backend fails.
func (e *Engine) Enroll(ctx context.Context, image []byte, id, name string) (result *EnrollResult, err error) {
	startTime := time.Now()
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)

	var encodings []encoding
	defer func() {
		e.audit(ctx, enrollAudit(id, encodings, err, time.Since(startTime)))
	}()

	if len(image) == 0 || id == "" || name == "" {
		return nil, ErrInvalidInput
	}

	unlock := e.locks.Lock(id)
	defer unlock()

	encodings, err = e.encode(ctx, image)
	if err != nil {
		return nil, err
	}

	embeddings := map[entities.Backend]entities.Embedding{}
	for _, enc := range encodings {
		if enc.ok() {
			embeddings[enc.Backend] = enc.Embedding
		}
	}
	if len(embeddings) == 0 {
		logger.Info("enrollment rejected, no backend produced an embedding", logger.LoggerOptions{
			Key:  "id",
			Data: id,
		})
		return nil, ErrNoFaceDetected
	}

	if err := e.store.Put(ctx, &entities.Identity{ID: id, Name: name, Embeddings: embeddings}); err != nil {
		logger.Error("failed to store identity", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "id",
			Data: id,
		})
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	result = &EnrollResult{
		IdentityID: id,
		Succeeded:  succeeded(encodings),
		Failed:     failed(encodings),
	}
	result.Message = enrollMessage(result, len(encodings))

	logger.Info("identity enrolled", logger.LoggerOptions{
		Key: "enrollment",
		Data: map[string]interface{}{
			"id":        id,
			"succeeded": entities.BackendNames(result.Succeeded),
			"failed":    entities.BackendNames(result.Failed),
		},
	})
	return result, nil
}

func enrollMessage(result *EnrollResult, total int) string {
	lines := []string{
		fmt.Sprintf("enrolled (%d/%d backends succeeded)", len(result.Succeeded), total),
		"succeeded: " + strings.Join(entities.BackendNames(result.Succeeded), ", "),
	}
	if len(result.Failed) > 0 {
		lines = append(lines, "failed: "+strings.Join(entities.BackendNames(result.Failed), ", "))
	}
	return strings.Join(lines, "\n")
}

func enrollAudit(id string, encodings []encoding, err error, took time.Duration) entities.RecognitionAudit {
	audit := entities.RecognitionAudit{
		Operation:  entities.AuditEnroll,
		Outcome:    Outcome(err),
		IdentityID: id,
		DurationMs: took.Milliseconds(),
		Backends:   []entities.BackendAudit{},
	}
	for _, enc := range encodings {
		audit.Backends = append(audit.Backends, entities.BackendAudit{Backend: enc.Backend, Encoded: enc.ok()})
		if enc.ok() {
			audit.VoteCount++
		}
	}
	audit.Total = len(encodings)
	return audit
}
