package job

import (
	"Snapfeed/internal/repository"
	"context"
	log "log/slog"
	"time"
)

// CounterRepairJob 以源数据为准修正点赞、评论、回复、发帖计数
type CounterRepairJob struct {
	counterRepo repository.CounterRepo
}

func NewCounterRepairJob(counterRepo repository.CounterRepo) *CounterRepairJob {
	return &CounterRepairJob{
		counterRepo: counterRepo,
	}
}

func (s *CounterRepairJob) Run() {
	runExclusive("counter-repair", 10*time.Minute, s.repair)
}

func (s *CounterRepairJob) repair(ctx context.Context) {
	steps := []struct {
		name string
		fn   func(context.Context) (int64, error)
	}{
		{"feed.like_count", s.counterRepo.RepairLikeCounts},
		{"feed.comment_count", s.counterRepo.RepairCommentCounts},
		{"comment.reply_count", s.counterRepo.RepairReplyCounts},
		{"user.feed_count", s.counterRepo.RepairFeedCounts},
	}
	for _, step := range steps {
		fixed, err := step.fn(ctx)
		if err != nil {
			log.ErrorContext(ctx, "repair counter error", "counter", step.name, "err", err)
			continue
		}
		if fixed > 0 {
			log.WarnContext(ctx, "counter drift repaired", "counter", step.name, "rows", fixed)
		}
	}
}
