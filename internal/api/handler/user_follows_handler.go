package handler

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/pkg/response"
	"Snapfeed/internal/service"

	"github.com/gin-gonic/gin"
)

type UserFollowHandler struct {
	userFollowSvc service.UserFollowService
}

func NewUserFollowHandler(userFollowSvc service.UserFollowService) *UserFollowHandler {
	return &UserFollowHandler{
		userFollowSvc: userFollowSvc,
	}
}

func (s *UserFollowHandler) Follow(c *gin.Context) {
	targetID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := s.userFollowSvc.Follow(c.Request.Context(), currentUserID(c), targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserFollowHandler) Unfollow(c *gin.Context) {
	targetID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := s.userFollowSvc.Unfollow(c.Request.Context(), currentUserID(c), targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserFollowHandler) GetFollowings(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.userFollowSvc.GetFollowing(c.Request.Context(), currentUserID(c), q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *UserFollowHandler) GetFollowers(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.userFollowSvc.GetFollowers(c.Request.Context(), currentUserID(c), q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Block 拉黑会同时解除双方关注
func (s *UserFollowHandler) Block(c *gin.Context) {
	targetID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := s.userFollowSvc.Block(c.Request.Context(), currentUserID(c), targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserFollowHandler) Unblock(c *gin.Context) {
	targetID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := s.userFollowSvc.Unblock(c.Request.Context(), currentUserID(c), targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
