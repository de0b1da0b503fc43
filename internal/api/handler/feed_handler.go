package handler

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/model"
	"Snapfeed/internal/pkg/response"
	"Snapfeed/internal/service"
	"context"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedSvc service.FeedService
}

func NewFeedHandler(feedSvc service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedSvc: feedSvc,
	}
}

// GetAllFeeds 全站信息流，可按标签过滤
func (s *FeedHandler) GetAllFeeds(c *gin.Context) {
	var q dto.FeedListQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.feedSvc.GetAllFeeds(c.Request.Context(), currentUserID(c), q.Tag, q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *FeedHandler) GetFollowingFeeds(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.feedSvc.GetFollowingFeeds(c.Request.Context(), currentUserID(c), q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *FeedHandler) GetFeedsByUser(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	var q dto.FeedUserQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.feedSvc.GetFeedsByUser(c.Request.Context(), currentUserID(c), userID, q.Status, q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *FeedHandler) GetBookmarkedFeeds(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.feedSvc.GetBookmarkedFeeds(c.Request.Context(), currentUserID(c), q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *FeedHandler) SearchFeeds(c *gin.Context) {
	var q dto.FeedSearchQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.feedSvc.SearchFeeds(c.Request.Context(), currentUserID(c), q.Keyword, q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *FeedHandler) GetFeed(c *gin.Context) {
	feedID, ok := paramID(c, "feed_id")
	if !ok {
		return
	}
	feed, err := s.feedSvc.GetFeed(c.Request.Context(), currentUserID(c), feedID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feed)
}

func (s *FeedHandler) CreateFeed(c *gin.Context) {
	var req dto.CreateFeedDTO
	if !bindJSON(c, &req) {
		return
	}
	feed, err := s.feedSvc.CreateFeed(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feed)
}

func (s *FeedHandler) UpdateFeed(c *gin.Context) {
	feedID, ok := paramID(c, "feed_id")
	if !ok {
		return
	}
	var req dto.UpdateFeedDTO
	if !bindJSON(c, &req) {
		return
	}
	feed, err := s.feedSvc.UpdateFeed(c.Request.Context(), currentUserID(c), feedID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feed)
}

func (s *FeedHandler) UpdateStatus(c *gin.Context) {
	feedID, ok := paramID(c, "feed_id")
	if !ok {
		return
	}
	var req dto.FeedStatusDTO
	if !bindJSON(c, &req) {
		return
	}
	if err := s.feedSvc.UpdateStatus(c.Request.Context(), currentUserID(c), feedID, req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *FeedHandler) UpdateShowLikeCount(c *gin.Context) {
	s.updateFlag(c, s.feedSvc.UpdateShowLikeCount)
}

func (s *FeedHandler) UpdateDisplay(c *gin.Context) {
	s.updateFlag(c, s.feedSvc.UpdateDisplay)
}

func (s *FeedHandler) updateFlag(c *gin.Context, update func(ctx context.Context, userID, feedID uint64, yn model.YN) error) {
	feedID, ok := paramID(c, "feed_id")
	if !ok {
		return
	}
	var req dto.FeedFlagDTO
	if !bindJSON(c, &req) {
		return
	}
	if err := update(c.Request.Context(), currentUserID(c), feedID, req.Yn); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *FeedHandler) DeleteFeed(c *gin.Context) {
	s.feedAction(c, s.feedSvc.DeleteFeed)
}

func (s *FeedHandler) HardDeleteFeed(c *gin.Context) {
	s.feedAction(c, s.feedSvc.HardDeleteFeed)
}

func (s *FeedHandler) Like(c *gin.Context) {
	s.feedAction(c, s.feedSvc.Like)
}

func (s *FeedHandler) Unlike(c *gin.Context) {
	s.feedAction(c, s.feedSvc.Unlike)
}

func (s *FeedHandler) Bookmark(c *gin.Context) {
	s.feedAction(c, s.feedSvc.Bookmark)
}

func (s *FeedHandler) Unbookmark(c *gin.Context) {
	s.feedAction(c, s.feedSvc.Unbookmark)
}

// feedAction 只依赖当前用户与路径 feed_id 的操作
func (s *FeedHandler) feedAction(c *gin.Context, action func(ctx context.Context, userID, feedID uint64) error) {
	feedID, ok := paramID(c, "feed_id")
	if !ok {
		return
	}
	if err := action(c.Request.Context(), currentUserID(c), feedID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
