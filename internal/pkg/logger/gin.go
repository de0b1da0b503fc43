package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// accessSkipPaths 探活请求不写访问日志
var accessSkipPaths = []string{"/api/ping"}

type accessEntry struct {
	Time        string `json:"time"`
	Level       string `json:"level"`
	Msg         string `json:"msg"`
	TraceID     string `json:"trace_id,omitempty"`
	UserID      uint64 `json:"user_id,omitempty"`
	LogToken    string `json:"log_token,omitempty"`
	TargetIndex string `json:"target_index,omitempty"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Status      int    `json:"status"`
	Latency     string `json:"latency"`
	ClientIP    string `json:"client_ip"`
	BodySize    int    `json:"body_size"`
}

// SetupGin 注册访问日志与 panic 恢复，访问日志与 slog 输出同一路 JSON
func SetupGin(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    LogWriter,
		SkipPaths: accessSkipPaths,
		Formatter: formatAccess,
	}))

	r.Use(gin.Recovery())
}

func formatAccess(p gin.LogFormatterParams) string {
	entry := accessEntry{
		Time:        p.TimeStamp.Format(time.RFC3339),
		Level:       "INFO",
		Msg:         "GIN_ACCESS",
		LogToken:    logstashToken,
		TargetIndex: logstashIndex,
		Method:      p.Method,
		Path:        p.Path,
		Status:      p.StatusCode,
		Latency:     p.Latency.String(),
		ClientIP:    p.ClientIP,
		BodySize:    p.BodySize,
	}
	if p.StatusCode >= 500 {
		entry.Level = "ERROR"
	}
	if id, ok := p.Keys[TraceIDKey].(string); ok {
		entry.TraceID = id
	}
	if entry.TraceID == "" && p.Request != nil {
		entry.TraceID, _ = p.Request.Context().Value(TraceIDKey).(string)
	}
	entry.UserID, _ = p.Keys[UserIDKey].(uint64)

	data, err := json.Marshal(entry)
	if err != nil {
		return ""
	}
	return string(data) + "\n"
}
