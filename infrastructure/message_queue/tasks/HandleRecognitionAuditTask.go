package queue_tasks

import (
	"context"
	"encoding/json"

	"facevote.io/entities"
	"facevote.io/infrastructure/logger"
	mq_types "facevote.io/infrastructure/message_queue/types"
	"github.com/hibiken/asynq"
)

var HandleRecognitionAuditTaskName mq_types.Queues = "recognition_audit"

// AuditWriter persists audit records.
type AuditWriter interface {
	CreateOne(ctx context.Context, payload entities.RecognitionAudit) (*entities.RecognitionAudit, error)
}

// NewRecognitionAuditHandler returns the task handler writing audits to writer.
func NewRecognitionAuditHandler(writer AuditWriter) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload entities.RecognitionAudit
		err := json.Unmarshal(t.Payload(), &payload)
		if err != nil {
			logger.Error("an error occured while unmarshalling recognition audit queue payload", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return asynq.SkipRetry
		}

		if _, err := writer.CreateOne(ctx, payload); err != nil {
			logger.Error("failed to persist recognition audit", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			}, logger.LoggerOptions{
				Key:  "requestID",
				Data: payload.RequestID,
			})
			return err
		}
		return nil
	}
}
