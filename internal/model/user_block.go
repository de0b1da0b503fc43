package model

import "time"

type UserBlock struct {
	UserID        uint64    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	BlockedUserID uint64    `gorm:"primaryKey;autoIncrement:false" json:"blocked_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func (UserBlock) TableName() string {
	return "user_blocks"
}
