package model

import (
	"time"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusDeleted UserStatus = "DELETED"
	UserStatusBanned  UserStatus = "BANNED"
)

type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderUnknown Gender = "U"
)

type User struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_email" json:"email"`
	Username     string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_user_username" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Status       UserStatus `gorm:"type:varchar(16);not null;default:ACTIVE" json:"status"`
	Gender       Gender     `gorm:"type:char(1);not null;default:U" json:"gender"`
	FeedCount    int        `gorm:"not null;default:0" json:"feed_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// 查询时填充，来自 mapper_user_follows
	FollowingIDs []uint64 `gorm:"-" json:"following_ids,omitempty"`
}

func (User) TableName() string {
	return "users"
}
