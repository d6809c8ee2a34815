package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestMonitor logs one structured line per HTTP request.
type RequestMonitor struct {
	enabled bool
}

func (m *RequestMonitor) Init() {
	m.enabled = true
}

func (m *RequestMonitor) RequestMetricMiddleware() interface{} {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		if !m.enabled {
			return
		}
		Info("request completed", LoggerOptions{
			Key: "request",
			Data: map[string]interface{}{
				"method":      ctx.Request.Method,
				"path":        ctx.FullPath(),
				"status":      ctx.Writer.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"client_ip":   ctx.ClientIP(),
				"request_id":  ctx.GetString("RequestID"),
			},
		})
	}
}
