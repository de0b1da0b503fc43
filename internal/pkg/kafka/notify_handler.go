package kafka

import (
	"Snapfeed/internal/pkg/mongo"
	"Snapfeed/internal/repository"
	"Snapfeed/internal/service"
	"context"
	"fmt"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// NotifyHandler 将点赞、评论、关注的新增记录转换为站内通知
// 同一条 CDC 记录重复投递时依靠 DedupKey 去重
type NotifyHandler struct {
	name          string
	tables        []string
	feedDBRepo    repository.FeedRepo
	commentDBRepo repository.CommentRepo
	sysBoxService service.SysBoxService
}

func NewFeedLikesHandler(feedDBRepo repository.FeedRepo, sysBoxService service.SysBoxService) *NotifyHandler {
	return &NotifyHandler{
		name:          "feed-like",
		tables:        []string{"feed_likes"},
		feedDBRepo:    feedDBRepo,
		sysBoxService: sysBoxService,
	}
}

func NewCommentsHandler(feedDBRepo repository.FeedRepo, commentDBRepo repository.CommentRepo, sysBoxService service.SysBoxService) *NotifyHandler {
	return &NotifyHandler{
		name:          "comment",
		tables:        []string{"comments", "comment_replies"},
		feedDBRepo:    feedDBRepo,
		commentDBRepo: commentDBRepo,
		sysBoxService: sysBoxService,
	}
}

func NewUserFollowsHandler(sysBoxService service.SysBoxService) *NotifyHandler {
	return &NotifyHandler{
		name:          "user-follow",
		tables:        []string{"mapper_user_follows"},
		sysBoxService: sysBoxService,
	}
}

func (s *NotifyHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("notify consumer setup", "name", s.name)
	return nil
}

func (s *NotifyHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("notify consumer cleanup", "name", s.name)
	return nil
}

func (s *NotifyHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic consume claim", "name", s.name)
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic process batch error", "name", s.name, "err", err)
		return err
	}
	return nil
}

func (s *NotifyHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, s.tables...)
	if err != nil || canalMsg == nil {
		return err
	}
	// 取消点赞、取消关注等删除事件不产生通知
	if canalMsg.Type != INSERT {
		return nil
	}

	for _, row := range canalMsg.Data {
		notification, err := s.build(ctx, canalMsg.Table, row)
		if err != nil {
			return wrapf(err, canalMsg.Table, StrToUint64(row["id"]))
		}
		if notification == nil {
			continue
		}
		if err = s.sysBoxService.Notify(ctx, notification); err != nil {
			return wrapf(err, canalMsg.Table, notification.TargetID)
		}
	}
	return nil
}

// build 按表组装通知，目标已不存在时返回 nil
func (s *NotifyHandler) build(ctx context.Context, table string, row map[string]any) (*mongo.SysBoxModel, error) {
	switch table {
	case "feed_likes":
		userID, feedID := StrToUint64(row["user_id"]), StrToUint64(row["feed_id"])
		feed, err := s.feedDBRepo.GetFeedByID(ctx, feedID)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &mongo.SysBoxModel{
			ReceiverID: feed.UserID,
			SenderID:   userID,
			Type:       mongo.SysBoxTypeLike,
			TargetID:   feedID,
			Content:    "点赞了你的动态",
			DedupKey:   fmt.Sprintf("like:%d:%d", userID, feedID),
		}, nil

	case "comments":
		commentID, userID, feedID := StrToUint64(row["id"]), StrToUint64(row["user_id"]), StrToUint64(row["feed_id"])
		feed, err := s.feedDBRepo.GetFeedByID(ctx, feedID)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &mongo.SysBoxModel{
			ReceiverID: feed.UserID,
			SenderID:   userID,
			Type:       mongo.SysBoxTypeComment,
			TargetID:   feedID,
			Content:    "评论了你的动态",
			Payload: map[string]any{
				"comment_id": commentID,
				"content":    StrToString(row["content"]),
			},
			DedupKey: fmt.Sprintf("comment:%d", commentID),
		}, nil

	case "comment_replies":
		replyID, userID, commentID := StrToUint64(row["id"]), StrToUint64(row["user_id"]), StrToUint64(row["comment_id"])
		comment, err := s.commentDBRepo.GetComment(ctx, commentID)
		if err != nil {
			return nil, ignoreNotFound(err)
		}
		return &mongo.SysBoxModel{
			ReceiverID: comment.UserID,
			SenderID:   userID,
			Type:       mongo.SysBoxTypeComment,
			TargetID:   comment.FeedID,
			Content:    "回复了你的评论",
			Payload: map[string]any{
				"comment_id": commentID,
				"reply_id":   replyID,
				"content":    StrToString(row["content"]),
			},
			DedupKey: fmt.Sprintf("reply:%d", replyID),
		}, nil

	case "mapper_user_follows":
		followerID, followeeID := StrToUint64(row["follower_id"]), StrToUint64(row["followee_id"])
		return &mongo.SysBoxModel{
			ReceiverID: followeeID,
			SenderID:   followerID,
			Type:       mongo.SysBoxTypeFollow,
			TargetID:   followerID,
			Content:    "关注了你",
			DedupKey:   fmt.Sprintf("follow:%d:%d", followerID, followeeID),
		}, nil
	}
	return nil, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, repository.ErrFeedNotFound) || errors.Is(err, repository.ErrCommentNotFound) {
		return nil
	}
	return err
}
