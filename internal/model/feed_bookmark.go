package model

import (
	"time"
)

type FeedBookmark struct {
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FeedID    uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_feed_bookmark_feed" json:"feed_id"`
	CreatedAt time.Time `gorm:"index:idx_feed_bookmark_created" json:"created_at"`
}

func (FeedBookmark) TableName() string {
	return "feed_bookmarks"
}
