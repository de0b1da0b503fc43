package model

import "time"

// MapperUserFollow 关注关系 follower -> followee
type MapperUserFollow struct {
	FollowerID uint64    `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FolloweeID uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_user_follow_followee" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MapperUserFollow) TableName() string {
	return "mapper_user_follows"
}
