package infrastructure

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facevote.io/infrastructure/logger"
	startup "facevote.io/infrastructure/startUp"
)

// StartServer boots every service, serves HTTP until SIGINT or SIGTERM, then
// drains in-flight requests and releases resources.
func StartServer() {
	services, err := startup.StartServices()
	if err != nil {
		logger.Error("failed to start services", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		startup.CleanUpServices()
		os.Exit(1)
	}
	defer startup.CleanUpServices()

	var server serverInterface = &ginServer{
		cfg:                   services.Config.Server,
		recognitionController: services.RecognitionController,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server stopped", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
		return
	case sig := <-quit:
		logger.Info("shutting down", logger.LoggerOptions{
			Key:  "signal",
			Data: sig.String(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
}
