package handler

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/pkg/response"
	"Snapfeed/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentSvc service.CommentService
}

func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentSvc: commentSvc,
	}
}

func (s *CommentHandler) ListComments(c *gin.Context) {
	feedID, ok := paramID(c, "feed_id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.commentSvc.ListComments(c.Request.Context(), currentUserID(c), feedID, q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *CommentHandler) CreateComment(c *gin.Context) {
	feedID, ok := paramID(c, "feed_id")
	if !ok {
		return
	}
	var req dto.CommentCreateDTO
	if !bindJSON(c, &req) {
		return
	}
	comment, err := s.commentSvc.CreateComment(c.Request.Context(), currentUserID(c), feedID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := paramID(c, "comment_id")
	if !ok {
		return
	}
	if err := s.commentSvc.DeleteComment(c.Request.Context(), currentUserID(c), commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CommentHandler) ListReplies(c *gin.Context) {
	commentID, ok := paramID(c, "comment_id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	res, err := s.commentSvc.ListReplies(c.Request.Context(), currentUserID(c), commentID, q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *CommentHandler) CreateReply(c *gin.Context) {
	commentID, ok := paramID(c, "comment_id")
	if !ok {
		return
	}
	var req dto.CommentCreateDTO
	if !bindJSON(c, &req) {
		return
	}
	reply, err := s.commentSvc.CreateReply(c.Request.Context(), currentUserID(c), commentID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reply)
}
