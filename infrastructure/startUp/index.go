package startup

import (
	"context"
	"time"

	"facevote.io/application/controller"
	"facevote.io/application/repository"
	"facevote.io/application/services/recognition"
	"facevote.io/entities"
	"facevote.io/infrastructure/biometric"
	"facevote.io/infrastructure/config"
	"facevote.io/infrastructure/database"
	"facevote.io/infrastructure/database/connection/cache"
	"facevote.io/infrastructure/database/connection/datastore"
	"facevote.io/infrastructure/logger"
	messagequeue "facevote.io/infrastructure/message_queue"
	asynqbroker "facevote.io/infrastructure/message_queue/asynq"
)

// Services holds what the transport layer needs once start-up succeeds.
type Services struct {
	Config                *config.Config
	RecognitionController *controller.RecognitionController
}

// Used to start services such as loggers, databases, queues, etc.
func StartServices() (*Services, error) {
	logger.InitializeLogger()
	cfg := config.Load()

	if err := database.SetUpDatabase(cfg); err != nil {
		return nil, err
	}
	logger.RequestMetricMonitor.Init()

	biometricService := biometric.InitialiseBiometricService(cfg.Biometric)
	engine := recognition.NewEngine(
		biometricService.Decoder(),
		biometricService.Encoders(),
		repository.NewIdentityStore(cfg),
		recognition.Options{
			BackendTimeout: cfg.Biometric.BackendTimeout,
			Auditor:        startAuditor(cfg),
		},
	)

	logger.Info("recognition engine ready", logger.LoggerOptions{
		Key:  "backends",
		Data: entities.BackendNames(engine.Backends()),
	})

	return &Services{
		Config: cfg,
		RecognitionController: &controller.RecognitionController{
			Engine:   engine,
			Statuses: biometricService,
		},
	}, nil
}

// startAuditor falls back to log-only auditing when the queue cannot start.
func startAuditor(cfg *config.Config) recognition.Auditor {
	if !cfg.AuditQueue {
		return messagequeue.LogAuditor{}
	}
	broker := &asynqbroker.AsynqBroker{
		Redis:       cfg.Redis,
		AuditWriter: repository.RecognitionAuditRepo(),
	}
	if err := messagequeue.StartQueue(broker); err != nil {
		logger.Warning("audit queue unavailable, auditing to the log only", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return messagequeue.LogAuditor{}
	}
	return &messagequeue.QueueAuditor{Broker: broker}
}

// Used to clean up after services that have been shutdown.
func CleanUpServices() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if messagequeue.TaskQueue != nil {
		messagequeue.TaskQueue.Shutdown()
	}
	if biometric.BiometricService != nil {
		biometric.BiometricService.Close()
	}
	if err := cache.Close(); err != nil {
		logger.Warning("failed to close redis connection", logger.LoggerOptions{Key: "error", Data: err})
	}
	if err := datastore.Disconnect(ctx); err != nil {
		logger.Warning("failed to disconnect from mongo", logger.LoggerOptions{Key: "error", Data: err})
	}
	logger.Sync()
}
