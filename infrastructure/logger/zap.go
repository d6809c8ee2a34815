package logger

import (
	"os"

	"go.uber.org/zap"
)

// Logger is a no-op until InitializeLogger runs so packages can log from tests
// without any setup.
var Logger = zap.NewNop()

func InitializeLogger() {
	var cfg zap.Config
	if os.Getenv("ENV") == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	Logger = l
	Logger.Info("logger initialised")
}

func Sync() {
	_ = Logger.Sync()
}
