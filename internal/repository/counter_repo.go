package repository

import (
	"Snapfeed/internal/model"
	"context"

	"gorm.io/gorm"
)

// CounterRepo 依据源数据重算冗余计数
type CounterRepo interface {
	RepairLikeCounts(ctx context.Context) (int64, error)
	RepairCommentCounts(ctx context.Context) (int64, error)
	RepairReplyCounts(ctx context.Context) (int64, error)
	RepairFeedCounts(ctx context.Context) (int64, error)
}

type CounterRepoImpl struct {
	db *gorm.DB
}

func NewCounterRepo(db *gorm.DB) CounterRepo {
	return &CounterRepoImpl{db: db}
}

func (s *CounterRepoImpl) RepairLikeCounts(ctx context.Context) (int64, error) {
	actual := s.db.Model(&model.FeedLike{}).
		Select("COUNT(*)").
		Where("feed_likes.feed_id = feeds.id")
	return s.repair(ctx, &model.Feed{}, "like_count", actual)
}

func (s *CounterRepoImpl) RepairCommentCounts(ctx context.Context) (int64, error) {
	actual := s.db.Model(&model.Comment{}).
		Select("COUNT(*)").
		Where("comments.feed_id = feeds.id AND comments.status = ?", model.CommentStatusActive)
	return s.repair(ctx, &model.Feed{}, "comment_count", actual)
}

func (s *CounterRepoImpl) RepairReplyCounts(ctx context.Context) (int64, error) {
	actual := s.db.Model(&model.CommentReply{}).
		Select("COUNT(*)").
		Where("comment_replies.comment_id = comments.id AND comment_replies.status = ?", model.CommentStatusActive)
	return s.repair(ctx, &model.Comment{}, "reply_count", actual)
}

func (s *CounterRepoImpl) RepairFeedCounts(ctx context.Context) (int64, error) {
	actual := s.db.Model(&model.Feed{}).
		Select("COUNT(*)").
		Where("feeds.user_id = users.id AND feeds.status = ?", model.FeedStatusActive)
	return s.repair(ctx, &model.User{}, "feed_count", actual)
}

// repair 只更新与实际值不一致的行，返回修正的行数
func (s *CounterRepoImpl) repair(ctx context.Context, target any, column string, actual *gorm.DB) (int64, error) {
	result := s.db.WithContext(ctx).Model(target).
		Where(column+" <> (?)", actual).
		UpdateColumn(column, actual)
	return result.RowsAffected, result.Error
}
