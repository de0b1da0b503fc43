package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey Context 中 trace_id 的 Key
const TraceIDKey = "trace_id"

// ContextHandler 从 ctx 中提取 trace_id 与 user_id 写入日志
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
		if userID, ok := ctx.Value(UserIDKey).(uint64); ok && userID > 0 {
			r.AddAttrs(log.Uint64(UserIDKey, userID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// WithTrace 为后台任务生成带 trace_id 的 ctx
func WithTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}
