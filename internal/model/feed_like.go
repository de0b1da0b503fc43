package model

import (
	"time"
)

type FeedLike struct {
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FeedID    uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_feed_like_feed" json:"feed_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (FeedLike) TableName() string {
	return "feed_likes"
}
