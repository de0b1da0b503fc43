package middleware

import (
	"Snapfeed/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TraceHeader     = "X-Trace-ID"
	maxTraceIDBytes = 64
)

// TraceMiddleware 沿用上游传入的 X-Trace-ID，缺失或格式不合法时重新生成
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if !validTraceID(traceID) {
			traceID = uuid.NewString()
		}

		c.Set(logger.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(logger.WithTrace(c.Request.Context(), traceID))

		c.Header(TraceHeader, traceID)
		c.Next()
	}
}

// validTraceID 只接受字母、数字、- 与 _，避免把任意内容写进日志
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDBytes {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return false
		}
	}
	return true
}
