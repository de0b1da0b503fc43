package dto

import (
	"Snapfeed/internal/model"
	"time"
)

// RegisterDTO 注册
type RegisterDTO struct {
	Email    string       `json:"email" binding:"required" validate:"email,max=255"`
	Username string       `json:"username" binding:"required" validate:"min=3,max=50,alphanum"`
	Password string       `json:"password" binding:"required" validate:"min=6,max=64"`
	Gender   model.Gender `json:"gender" validate:"omitempty,oneof=M F U"`
}

// CredentialDTO 登录凭证，account 可为用户名或邮箱
type CredentialDTO struct {
	Account  string `json:"account" binding:"required" validate:"min=3,max=255"`
	Password string `json:"password" binding:"required" validate:"min=6,max=64"`
}

// TokenDTO 登录成功返回
type TokenDTO struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// UserDTO 用户
type UserDTO struct {
	ID             uint64           `json:"id"`
	Email          string           `json:"email,omitempty"`
	Username       string           `json:"username"`
	Status         model.UserStatus `json:"status"`
	Gender         model.Gender     `json:"gender"`
	FeedCount      int              `json:"feed_count"`
	FollowingCount int64            `json:"following_count"`
	FollowerCount  int64            `json:"follower_count"`
	CreatedAt      time.Time        `json:"created_at"`
}

// FollowUserDTO 关注/粉丝列表项
type FollowUserDTO struct {
	UserID     uint64    `json:"user_id"`
	Username   string    `json:"username"`
	FollowedAt time.Time `json:"followed_at"`
}
