package dto

import (
	"Snapfeed/internal/model"
	"time"
)

// FeedImageReq 发布时提交的图片，ImageURL 为上传接口返回的对象名
type FeedImageReq struct {
	ImageURL  string `json:"image_url" validate:"required,max=512"`
	SortOrder int    `json:"sort_order" validate:"min=0,max=100"`
}

// CreateFeedDTO 发布信息流
type CreateFeedDTO struct {
	Description     string          `json:"description" validate:"max=2200"`
	Images          []*FeedImageReq `json:"images" validate:"required,min=1,max=10,dive,required"`
	TagNames        []string        `json:"tag_names" validate:"max=30,dive,min=1,max=100"`
	DisplayYn       model.YN        `json:"display_yn" validate:"omitempty,oneof=Y N"`
	ShowLikeCountYn model.YN        `json:"show_like_count_yn" validate:"omitempty,oneof=Y N"`
}

// UpdateFeedDTO 修改描述与标签，标签为全量覆盖
type UpdateFeedDTO struct {
	Description string   `json:"description" validate:"max=2200"`
	TagNames    []string `json:"tag_names" validate:"max=30,dive,min=1,max=100"`
}

// FeedStatusDTO 修改状态
type FeedStatusDTO struct {
	Status model.FeedStatus `json:"status" binding:"required" validate:"oneof=ACTIVE HIDDEN DELETED"`
}

// FeedFlagDTO 修改 Y/N 标记
type FeedFlagDTO struct {
	Yn model.YN `json:"yn" binding:"required" validate:"oneof=Y N"`
}

// FeedListQuery 全量信息流查询
type FeedListQuery struct {
	PageQuery
	Tag string `form:"tag" binding:"omitempty,max=100"`
}

// FeedUserQuery 用户主页信息流查询，status 仅对本人生效
type FeedUserQuery struct {
	PageQuery
	Status model.FeedStatus `form:"status" binding:"omitempty,oneof=ACTIVE HIDDEN DELETED"`
}

// FeedSearchQuery 关键字搜索
type FeedSearchQuery struct {
	PageQuery
	Keyword string `form:"keyword" binding:"required,min=1,max=100"`
}

// FeedImageDTO 信息流图片
type FeedImageDTO struct {
	ImageURL  string `json:"image_url"`
	SortOrder int    `json:"sort_order"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// FeedDTO 信息流返回对象
type FeedDTO struct {
	ID              uint64           `json:"id"`
	UserID          uint64           `json:"user_id"`
	Description     string           `json:"description"`
	LikeCount       *int             `json:"like_count,omitempty" copier:"-"`
	CommentCount    int              `json:"comment_count"`
	DisplayYn       model.YN         `json:"display_yn"`
	Status          model.FeedStatus `json:"status"`
	ShowLikeCountYn model.YN         `json:"show_like_count_yn"`
	Images          []*FeedImageDTO  `json:"images"`
	Tags            []string         `json:"tags" copier:"-"`
	LikedYn         model.YN         `json:"liked_yn,omitempty"`
	BookmarkedYn    model.YN         `json:"bookmarked_yn,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
