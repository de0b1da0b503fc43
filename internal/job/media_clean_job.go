package job

import (
	"Snapfeed/internal/service"
	"context"
	log "log/slog"
	"time"
)

type MediaCleanupJob struct {
	mediaService service.MediaService
}

func NewMediaCleanupJob(mediaService service.MediaService) *MediaCleanupJob {
	return &MediaCleanupJob{
		mediaService: mediaService,
	}
}

func (s *MediaCleanupJob) Run() {
	runExclusive("media-cleanup", 30*time.Minute, func(ctx context.Context) {
		count, err := s.mediaService.CleanupExpired(ctx)
		if err != nil {
			log.ErrorContext(ctx, "media cleanup job error", "err", err)
			return
		}
		if count > 0 {
			log.InfoContext(ctx, "media cleanup job finished", "cleaned_count", count)
		}
	})
}
