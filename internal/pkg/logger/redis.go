package logger

import (
	"Snapfeed/internal/pkg/consts"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlowThreshold = 100 * time.Millisecond

type RedisLoggerHook struct{}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{}
}

// DialHook 记录建立连接失败
func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis Dial Error",
				log.String("addr", addr),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err),
			)
		}
		return conn, err
	}
}

// ProcessHook 单条命令出错或慢查询时记录，redis.Nil 属于正常的缓存未命中
func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		if err == nil && elapsed < redisSlowThreshold {
			return nil
		}
		if err != nil && (errors.Is(err, redis.Nil) || isHandshakeNoise(cmd, err)) {
			return err
		}

		fields := []any{
			log.String("command", cmd.Name()),
			log.String("args", redisArgs(cmd)),
			log.Duration("latency", elapsed),
		}
		if err != nil {
			log.ErrorContext(ctx, "Redis Error", append(fields, log.Any("err", err))...)
		} else {
			log.WarnContext(ctx, "Redis Slow", fields...)
		}
		return err
	}
}

// ProcessPipelineHook 管道与事务出错或过慢时记录命令名
func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)

		if err == nil && elapsed < redisSlowThreshold {
			return nil
		}
		if errors.Is(err, redis.Nil) {
			return err
		}

		names := make([]string, 0, len(cmds))
		for _, cmd := range cmds {
			names = append(names, cmd.Name())
		}
		fields := []any{
			log.String("commands", strings.Join(names, ",")),
			log.Duration("latency", elapsed),
		}
		if err != nil {
			log.ErrorContext(ctx, "Redis Pipeline Error", append(fields, log.Any("err", err))...)
		} else {
			log.WarnContext(ctx, "Redis Pipeline Slow", fields...)
		}
		return err
	}
}

// redisArgs 认证命令整体隐藏，令牌黑名单的键只保留前缀
func redisArgs(cmd redis.Cmder) string {
	switch cmd.Name() {
	case "auth", "hello":
		return "[PROTECTED]"
	}
	args := cmd.Args()
	parts := make([]string, len(args))
	for i, arg := range args {
		str := fmt.Sprint(arg)
		if strings.HasPrefix(str, consts.TokenBlacklistKey) {
			str = consts.TokenBlacklistKey + "[PROTECTED]"
		}
		parts[i] = str
	}
	return strings.Join(parts, " ")
}

// isHandshakeNoise 旧版本 Redis 不支持 CLIENT SETINFO
func isHandshakeNoise(cmd redis.Cmder, err error) bool {
	return cmd.Name() == "client" && strings.Contains(err.Error(), "setinfo")
}
