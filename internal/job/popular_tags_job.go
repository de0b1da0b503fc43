package job

import (
	"Snapfeed/internal/service"
	"context"
	log "log/slog"
	"time"
)

// PopularTagsJob 定时重建热门标签缓存
type PopularTagsJob struct {
	tagService service.TagService
}

func NewPopularTagsJob(tagService service.TagService) *PopularTagsJob {
	return &PopularTagsJob{
		tagService: tagService,
	}
}

func (s *PopularTagsJob) Run() {
	runExclusive("popular-tags", 5*time.Minute, func(ctx context.Context) {
		if err := s.tagService.RefreshPopularTags(ctx); err != nil {
			log.ErrorContext(ctx, "refresh popular tags error", "err", err)
		}
	})
}
