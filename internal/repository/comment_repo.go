package repository

import (
	"Snapfeed/internal/model"
	"Snapfeed/internal/pkg/pagination"
	"context"

	"gorm.io/gorm"
)

type CommentRepo interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, commentID uint64) error
	GetComment(ctx context.Context, commentID uint64) (*model.Comment, error)
	ListComments(ctx context.Context, feedID uint64, page, limit int) (*pagination.Result[*model.Comment], error)

	CreateReply(ctx context.Context, reply *model.CommentReply) error
	ListReplies(ctx context.Context, commentID uint64, page, limit int) (*pagination.Result[*model.CommentReply], error)
}

type CommentRepoImpl struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepo {
	return &CommentRepoImpl{db: db}
}

// CreateComment 写入评论并累加信息流评论数
func (s *CommentRepoImpl) CreateComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireLiveFeed(tx, comment.FeedID); err != nil {
			return err
		}
		comment.Status = model.CommentStatusActive
		comment.ReplyCount = 0
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Feed{}).Where("id = ?", comment.FeedID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
}

// DeleteComment 软删除评论，信息流评论数不低于 0
func (s *CommentRepoImpl) DeleteComment(ctx context.Context, commentID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comment, err := findComment(tx, commentID)
		if err != nil {
			return err
		}
		err = tx.Model(&model.Comment{}).Where("id = ?", commentID).
			Update("status", model.CommentStatusDeleted).Error
		if err != nil {
			return err
		}
		err = tx.Model(&model.CommentReply{}).Where("comment_id = ?", commentID).
			Update("status", model.CommentStatusDeleted).Error
		if err != nil {
			return err
		}
		return tx.Model(&model.Feed{}).Where("id = ? AND comment_count > 0", comment.FeedID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
}

func (s *CommentRepoImpl) GetComment(ctx context.Context, commentID uint64) (*model.Comment, error) {
	return findComment(s.db.WithContext(ctx), commentID)
}

// ListComments 信息流下的有效评论，最新在前
func (s *CommentRepoImpl) ListComments(ctx context.Context, feedID uint64, page, limit int) (*pagination.Result[*model.Comment], error) {
	page, limit = pagination.Normalize(page, limit)
	db := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("feed_id = ? AND status = ?", feedID, model.CommentStatusActive)

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 || int64(pagination.Offset(page, limit)) >= total {
		return pagination.New[*model.Comment](nil, total, page, limit), nil
	}
	var comments []*model.Comment
	err := db.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Scopes(pagination.Scope(page, limit)).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return pagination.New(comments, total, page, limit), nil
}

// CreateReply 写入回复并累加评论回复数
func (s *CommentRepoImpl) CreateReply(ctx context.Context, reply *model.CommentReply) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findComment(tx, reply.CommentID); err != nil {
			return err
		}
		reply.Status = model.CommentStatusActive
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&model.Comment{}).Where("id = ?", reply.CommentID).
			UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
	})
}

// ListReplies 评论下的有效回复，按时间正序
func (s *CommentRepoImpl) ListReplies(ctx context.Context, commentID uint64, page, limit int) (*pagination.Result[*model.CommentReply], error) {
	page, limit = pagination.Normalize(page, limit)
	db := s.db.WithContext(ctx).Model(&model.CommentReply{}).
		Where("comment_id = ? AND status = ?", commentID, model.CommentStatusActive)

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 || int64(pagination.Offset(page, limit)) >= total {
		return pagination.New[*model.CommentReply](nil, total, page, limit), nil
	}
	var replies []*model.CommentReply
	err := db.Session(&gorm.Session{}).
		Order("created_at ASC, id ASC").
		Scopes(pagination.Scope(page, limit)).
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return pagination.New(replies, total, page, limit), nil
}

// findComment 已删除的评论视为不存在
func findComment(db *gorm.DB, commentID uint64) (*model.Comment, error) {
	var comment model.Comment
	err := db.Where("id = ? AND status = ?", commentID, model.CommentStatusActive).First(&comment).Error
	if err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	return &comment, nil
}
