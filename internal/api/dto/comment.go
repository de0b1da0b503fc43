package dto

import "time"

// CommentCreateDTO 创建评论或回复
type CommentCreateDTO struct {
	Content string `json:"content" binding:"required" validate:"min=1,max=1000"`
}

// CommentDTO 评论返回详情
type CommentDTO struct {
	ID         uint64    `json:"id"`
	FeedID     uint64    `json:"feed_id"`
	UserID     uint64    `json:"user_id"`
	Username   string    `json:"username"`
	Content    string    `json:"content"`
	ReplyCount int       `json:"reply_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentReplyDTO 回复返回详情
type CommentReplyDTO struct {
	ID        uint64    `json:"id"`
	CommentID uint64    `json:"comment_id"`
	UserID    uint64    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
