package logger

import (
	"Snapfeed/internal/api/config"
	"io"
	log "log/slog"
	"net"
	"os"
	"time"
)

var LogWriter io.Writer = os.Stdout

// Logstash 按 token 与索引名路由，访问日志同样需要携带
var logstashToken, logstashIndex string

// InitLogger 初始化全局 slog，Logstash 可用时同时上报远端
func InitLogger(cfg config.LogstashConfig) {
	hStdout := log.NewJSONHandler(os.Stdout, &log.HandlerOptions{Level: log.LevelInfo})

	var finalHandler log.Handler = hStdout

	if cfg.Address != "" {
		conn, err := net.DialTimeout("tcp", cfg.Address, 3*time.Second)
		if err == nil {
			hRemote := log.NewJSONHandler(conn, &log.HandlerOptions{Level: log.LevelInfo}).
				WithAttrs([]log.Attr{
					log.String("target_index", cfg.Index),
					log.String("log_token", cfg.Token),
				})

			finalHandler = NewTeeHandler(hStdout, NewRemoteFilterHandler(hRemote))
			LogWriter = io.MultiWriter(os.Stdout, conn)
			logstashToken, logstashIndex = cfg.Token, cfg.Index
		} else {
			log.Warn("Failed to connect to Logstash, logging to stdout only", "err", err)
		}
	}

	log.SetDefault(log.New(&ContextHandler{finalHandler}))
}
