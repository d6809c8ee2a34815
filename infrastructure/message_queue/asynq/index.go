package asynq

import (
	"errors"
	"time"

	"facevote.io/infrastructure/config"
	"facevote.io/infrastructure/logger"
	queue_tasks "facevote.io/infrastructure/message_queue/tasks"
	mq_types "facevote.io/infrastructure/message_queue/types"
	"github.com/hibiken/asynq"
)

type AsynqBroker struct {
	Redis       config.RedisConfig
	AuditWriter queue_tasks.AuditWriter

	Client *asynq.Client
	server *asynq.Server
}

func (aq *AsynqBroker) Start() error {
	if !aq.Redis.Enabled() {
		return errors.New("task queue requires REDIS_ADDR")
	}
	redisConnOpt := asynq.RedisClientOpt{
		Addr:     aq.Redis.Addr,
		Password: aq.Redis.Password,
	}

	aq.Client = asynq.NewClient(redisConnOpt)
	aq.server = asynq.NewServer(redisConnOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			string(mq_types.High):   7,
			string(mq_types.Medium): 2,
			string(mq_types.Low):    1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(string(queue_tasks.HandleRecognitionAuditTaskName), queue_tasks.NewRecognitionAuditHandler(aq.AuditWriter))

	if err := aq.server.Start(mux); err != nil {
		return err
	}
	logger.Info("task queue started")
	return nil
}

func (aq *AsynqBroker) Enqueue(task mq_types.QueueTask) error {
	if aq.Client == nil {
		return errors.New("task queue not started")
	}
	if task.TimeOut == 0 {
		task.TimeOut = 60 * time.Second
	}
	if task.MaxRetry == 0 {
		task.MaxRetry = 10
	}
	if task.Priority == "" {
		task.Priority = mq_types.Medium
	}
	_, err := aq.Client.Enqueue(asynq.NewTask(string(task.Name), task.Payload),
		asynq.ProcessIn(task.ProcessIn),
		asynq.MaxRetry(task.MaxRetry),
		asynq.Timeout(task.TimeOut),
		asynq.Queue(string(task.Priority)))
	return err
}

func (aq *AsynqBroker) Shutdown() {
	if aq.server != nil {
		aq.server.Shutdown()
	}
	if aq.Client != nil {
		aq.Client.Close()
	}
}
