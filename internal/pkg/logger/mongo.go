package logger

import (
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

const mongoSlowThreshold = 200 * time.Millisecond

// NewMongoMonitor 命令开始按 Debug 记录，慢命令与失败按 Warn/Error 记录；握手与心跳类命令忽略
func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			if isMongoHandshake(evt.CommandName) {
				return
			}
			cmd := evt.Command.String()
			if len(cmd) > 1000 {
				cmd = cmd[:1000] + "...[truncated]"
			}
			log.DebugContext(ctx, "MongoDB Started",
				log.String("command", evt.CommandName),
				log.String("database", evt.DatabaseName),
				log.Int64("request_id", evt.RequestID),
				log.String("cmd_detail", cmd),
			)
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			if isMongoHandshake(evt.CommandName) || evt.Duration <= mongoSlowThreshold {
				return
			}
			log.WarnContext(ctx, "MongoDB Slow",
				log.String("command", evt.CommandName),
				log.Duration("latency", evt.Duration),
				log.Int64("request_id", evt.RequestID),
			)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			log.ErrorContext(ctx, "MongoDB Error",
				log.String("command", evt.CommandName),
				log.Duration("latency", evt.Duration),
				log.Int64("request_id", evt.RequestID),
				log.Any("err", evt.Failure),
			)
		},
	}
}

func isMongoHandshake(name string) bool {
	switch name {
	case "hello", "isMaster", "ismaster", "ping", "saslStart", "saslContinue", "endSessions":
		return true
	}
	return false
}
