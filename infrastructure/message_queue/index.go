package messagequeue

import (
	"context"
	"encoding/json"

	"facevote.io/entities"
	"facevote.io/infrastructure/logger"
	queue_tasks "facevote.io/infrastructure/message_queue/tasks"
	mq_types "facevote.io/infrastructure/message_queue/types"
)

var TaskQueue mq_types.TaskQueueBroker

func StartQueue(broker mq_types.TaskQueueBroker) error {
	TaskQueue = broker
	return TaskQueue.Start()
}

// QueueAuditor hands audit records to the task queue so requests never wait
// on the audit write.
type QueueAuditor struct {
	Broker mq_types.TaskQueueBroker
}

func (qa *QueueAuditor) Record(_ context.Context, audit entities.RecognitionAudit) {
	payload, err := json.Marshal(audit)
	if err != nil {
		logger.Error("failed to encode recognition audit", logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	err = qa.Broker.Enqueue(mq_types.QueueTask{
		Name:     queue_tasks.HandleRecognitionAuditTaskName,
		Payload:  payload,
		Priority: mq_types.Low,
		MaxRetry: 3,
	})
	if err != nil {
		logger.Warning("failed to enqueue recognition audit", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "audit",
			Data: audit,
		})
	}
}

// LogAuditor writes audit records to the log only.
type LogAuditor struct{}

func (LogAuditor) Record(_ context.Context, audit entities.RecognitionAudit) {
	logger.Info("recognition audit", logger.LoggerOptions{
		Key:  "audit",
		Data: audit,
	})
}
