package redis

import (
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/pkg/logger"
	"context"
	log "log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

const pingTimeout = 3 * time.Second

// Rdb 计数、关注缓存、令牌黑名单与分布式锁共用的客户端
var Rdb *redis.Client

// InitRedis 连接 Redis 并挂上日志 Hook，Ping 失败时不替换全局客户端
func InitRedis(cfg config.RedisConfig) error {
	rdb := redis.NewClient(newOptions(cfg))
	rdb.AddHook(logger.NewRedisLogger())

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return errors.Wrapf(err, "redis ping %s", cfg.Addr)
	}

	Rdb = rdb
	log.Info("Redis initialized successfully", "addr", cfg.Addr, "db", cfg.DB)
	return nil
}

func newOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,

		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	}
}

// SetClient 替换全局客户端
func SetClient(client *redis.Client) {
	Rdb = client
}
