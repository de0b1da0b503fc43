package service

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/pkg/consts"
	"Snapfeed/internal/pkg/redis"
	"Snapfeed/internal/repository"
	"context"
	log "log/slog"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

const popularTagsTTL = time.Hour

type TagService interface {
	GetPopularTags(ctx context.Context, limit int) ([]*dto.PopularTagDTO, error)
	RefreshPopularTags(ctx context.Context) error
}

type TagServiceImpl struct {
	tagRepo repository.TagRepo
	size    int
}

// NewTagService size 为缓存的热门标签数量
func NewTagService(tagRepo repository.TagRepo, size int) TagService {
	if size <= 0 {
		size = 20
	}
	return &TagServiceImpl{
		tagRepo: tagRepo,
		size:    size,
	}
}

// GetPopularTags 优先读取定时任务维护的有序集合，未命中时回源数据库并回填
func (s *TagServiceImpl) GetPopularTags(ctx context.Context, limit int) ([]*dto.PopularTagDTO, error) {
	if limit <= 0 || limit > s.size {
		limit = s.size
	}

	res, err := redis.ZRevRangeWithScores(ctx, consts.PopularTagsKey, 0, int64(limit-1))
	if err == nil && len(res) > 0 {
		tags := make([]*dto.PopularTagDTO, 0, len(res))
		for _, z := range res {
			name, ok := z.Member.(string)
			if !ok {
				continue
			}
			tags = append(tags, &dto.PopularTagDTO{TagName: name, UseCount: int64(z.Score)})
		}
		return tags, nil
	}
	if err != nil {
		log.WarnContext(ctx, "popular tags cache read failed", "err", err)
	}

	tags, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// RefreshPopularTags 重新统计并整体替换缓存
func (s *TagServiceImpl) RefreshPopularTags(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

func (s *TagServiceImpl) load(ctx context.Context) ([]*dto.PopularTagDTO, error) {
	counts, err := s.tagRepo.GetPopularTags(ctx, s.size)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}

	tags := make([]*dto.PopularTagDTO, 0, len(counts))
	members := make([]redisv9.Z, 0, len(counts))
	for _, c := range counts {
		tags = append(tags, &dto.PopularTagDTO{TagName: c.TagName, UseCount: c.UseCount})
		members = append(members, redisv9.Z{Score: float64(c.UseCount), Member: c.TagName})
	}
	if err = redis.ReplaceZSet(ctx, consts.PopularTagsKey, members, popularTagsTTL); err != nil {
		log.WarnContext(ctx, "popular tags cache write failed", "err", err)
	}
	return tags, nil
}
