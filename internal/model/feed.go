package model

import (
	"time"
)

type FeedStatus string

const (
	FeedStatusActive  FeedStatus = "ACTIVE"
	FeedStatusHidden  FeedStatus = "HIDDEN"
	FeedStatusDeleted FeedStatus = "DELETED"
)

// Valid 是否为合法状态
func (s FeedStatus) Valid() bool {
	switch s {
	case FeedStatusActive, FeedStatusHidden, FeedStatusDeleted:
		return true
	}
	return false
}

type Feed struct {
	ID              uint64     `gorm:"primaryKey" json:"id"`
	UserID          uint64     `gorm:"not null;index:idx_feed_user_status,priority:1" json:"user_id"`
	Description     string     `gorm:"type:varchar(2200);not null" json:"description"`
	LikeCount       int        `gorm:"not null;default:0" json:"like_count"`
	CommentCount    int        `gorm:"not null;default:0" json:"comment_count"`
	DisplayYn       YN         `gorm:"type:char(1);not null;default:Y" json:"display_yn"`
	Status          FeedStatus `gorm:"type:varchar(16);not null;default:ACTIVE;index:idx_feed_user_status,priority:2" json:"status"`
	ShowLikeCountYn YN         `gorm:"type:char(1);not null;default:Y" json:"show_like_count_yn"`
	CreatedAt       time.Time  `gorm:"index:idx_feed_created_at" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// 以下字段不落库，每次查询后按请求批量挂载
	FeedImages   []*FeedImage `gorm:"-" json:"feed_images"`
	Tags         []*Tag       `gorm:"-" json:"tags"`
	LikedYn      YN           `gorm:"-" json:"liked_yn"`
	BookmarkedYn YN           `gorm:"-" json:"bookmarked_yn"`
}

func (Feed) TableName() string {
	return "feeds"
}

// TagNames 已挂载标签的名称列表
func (s *Feed) TagNames() []string {
	names := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		names = append(names, t.TagName)
	}
	return names
}

// VisibleTo 已删除对所有人不可见；隐藏或不展示的仅作者本人可见
func (s *Feed) VisibleTo(viewerID uint64) bool {
	if s.Status == FeedStatusDeleted {
		return false
	}
	if viewerID > 0 && s.UserID == viewerID {
		return true
	}
	return s.Status == FeedStatusActive && s.DisplayYn == YnY
}
