package model

import "time"

type MapperFeedTag struct {
	FeedID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"feed_id"`
	TagID     uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_mapper_feed_tag_tag" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (MapperFeedTag) TableName() string {
	return "mapper_feed_tags"
}
