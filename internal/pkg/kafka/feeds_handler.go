package kafka

import (
	"Snapfeed/internal/pkg/es"
	"Snapfeed/internal/repository"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// FeedsHandler 同步 feeds 表变更到搜索索引
type FeedsHandler struct {
	feedDBRepo repository.FeedRepo
	userDBRepo repository.UserRepo
	feedESRepo es.FeedRepo
}

func NewFeedsHandler(feedDBRepo repository.FeedRepo, userDBRepo repository.UserRepo, feedESRepo es.FeedRepo) *FeedsHandler {
	return &FeedsHandler{
		feedDBRepo: feedDBRepo,
		userDBRepo: userDBRepo,
		feedESRepo: feedESRepo,
	}
}

func (s *FeedsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("feed consumer setup")
	return nil
}

func (s *FeedsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("feed consumer cleanup")
	return nil
}

func (s *FeedsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-feed consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-feed process batch error", "err", err)
		return err
	}
	return nil
}

func (s *FeedsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "feeds")
	if err != nil || canalMsg == nil {
		return err
	}

	for _, feedID := range canalMsg.IDs() {
		if canalMsg.Type == DELETE {
			err = s.feedESRepo.DeleteFeed(ctx, feedID)
		} else {
			err = s.sync(ctx, feedID)
		}
		if err != nil {
			return wrapf(err, "feeds", feedID)
		}
	}
	return nil
}

// sync 以数据库当前状态为准回写索引，消息本身只作为触发信号
func (s *FeedsHandler) sync(ctx context.Context, feedID uint64) error {
	feed, err := s.feedDBRepo.GetFeed(ctx, feedID, 0)
	if errors.Is(err, repository.ErrFeedNotFound) {
		return s.feedESRepo.DeleteFeed(ctx, feedID)
	}
	if err != nil {
		return err
	}

	if !feed.VisibleTo(0) {
		log.InfoContext(ctx, "feed invisible, remove from index", "feed_id", feedID, "status", feed.Status)
		return s.feedESRepo.DeleteFeed(ctx, feedID)
	}

	doc := &es.FeedES{
		ID:           feed.ID,
		UserID:       feed.UserID,
		Description:  feed.Description,
		Tags:         feed.TagNames(),
		Status:       string(feed.Status),
		DisplayYn:    string(feed.DisplayYn),
		LikeCount:    feed.LikeCount,
		CommentCount: feed.CommentCount,
		CreatedAt:    feed.CreatedAt,
		UpdatedAt:    feed.UpdatedAt,
	}
	user, err := s.userDBRepo.GetUserById(ctx, feed.UserID)
	if err != nil {
		return err
	}
	if user != nil {
		doc.Username = user.Username
	}

	return s.feedESRepo.IndexFeed(ctx, doc, feed.UpdatedAt.UnixMilli())
}
