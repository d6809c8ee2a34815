package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerOptions struct {
	Key  string
	Data interface{}
}

var RequestMetricMonitor = (&RequestMonitor{})

// This logs info level messages.
func Info(msg string, payload ...LoggerOptions) {
	Logger.Info(msg, toFields(payload)...)
}

// This logs error messages.
// describe the incident in msg and pass the error through logger options
// with key error
func Error(msg string, payload ...LoggerOptions) {
	Logger.Error(msg, toFields(payload)...)
}

// This logs warning messages.
func Warning(msg string, payload ...LoggerOptions) {
	Logger.Warn(msg, toFields(payload)...)
}

// This logs debug messages. Disabled in production.
func Debug(msg string, payload ...LoggerOptions) {
	Logger.Debug(msg, toFields(payload)...)
}

func toFields(payload []LoggerOptions) []zapcore.Field {
	zapFields := make([]zapcore.Field, 0, len(payload))
	for _, data := range payload {
		zapFields = append(zapFields, zap.Any(data.Key, data.Data))
	}
	return zapFields
}
