package model

import "time"

type Tag struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	TagName   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_tag_name" json:"tag_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}
