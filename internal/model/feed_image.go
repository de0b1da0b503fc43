package model

import (
	"time"
)

type FeedImage struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	FeedID    uint64    `gorm:"not null;index:idx_feed_image_sort,priority:1" json:"feed_id"`
	ImageURL  string    `gorm:"type:varchar(512);not null" json:"image_url"`
	SortOrder int       `gorm:"not null;default:0;index:idx_feed_image_sort,priority:2" json:"sort_order"`
	Width     int       `gorm:"not null;default:0" json:"width"`
	Height    int       `gorm:"not null;default:0" json:"height"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FeedImage) TableName() string {
	return "feed_images"
}
