package model

import (
	"time"
)

type CommentStatus string

const (
	CommentStatusActive  CommentStatus = "ACTIVE"
	CommentStatusDeleted CommentStatus = "DELETED"
)

type Comment struct {
	ID         uint64        `gorm:"primaryKey" json:"id"`
	FeedID     uint64        `gorm:"not null;index:idx_comment_feed" json:"feed_id"`
	UserID     uint64        `gorm:"not null" json:"user_id"`
	Content    string        `gorm:"type:varchar(1000);not null" json:"content"`
	Status     CommentStatus `gorm:"type:varchar(16);not null;default:ACTIVE" json:"status"`
	ReplyCount int           `gorm:"not null;default:0" json:"reply_count"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

type CommentReply struct {
	ID        uint64        `gorm:"primaryKey" json:"id"`
	CommentID uint64        `gorm:"not null;index:idx_comment_reply_comment" json:"comment_id"`
	UserID    uint64        `gorm:"not null" json:"user_id"`
	Content   string        `gorm:"type:varchar(1000);not null" json:"content"`
	Status    CommentStatus `gorm:"type:varchar(16);not null;default:ACTIVE" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (CommentReply) TableName() string {
	return "comment_replies"
}
