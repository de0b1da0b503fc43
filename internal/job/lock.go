package job

import (
	"Snapfeed/internal/pkg/consts"
	"Snapfeed/internal/pkg/logger"
	"Snapfeed/internal/pkg/redis"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// runExclusive 多实例部署时同一任务只允许一个实例执行
func runExclusive(name string, ttl time.Duration, fn func(ctx context.Context)) {
	traceID := "job-" + name + "-" + uuid.NewString()
	ctx := logger.WithTrace(context.Background(), traceID)

	lockKey := consts.CronJobLock + name
	ok, err := redis.TryLock(ctx, lockKey, traceID, ttl, 1)
	if err != nil {
		log.ErrorContext(ctx, "acquire job lock error", "job", name, "err", err)
		return
	}
	if !ok {
		log.InfoContext(ctx, "job is running on another instance", "job", name)
		return
	}
	defer redis.UnLock(ctx, lockKey, traceID)

	start := time.Now()
	fn(ctx)
	log.InfoContext(ctx, "job finished", "job", name, "cost", time.Since(start))
}
