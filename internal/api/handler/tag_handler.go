package handler

import (
	"Snapfeed/internal/pkg/response"
	"Snapfeed/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tagSvc service.TagService
}

func NewTagHandler(tagSvc service.TagService) *TagHandler {
	return &TagHandler{
		tagSvc: tagSvc,
	}
}

// GetPopularTags 热门标签，limit 缺省时返回全部缓存
func (s *TagHandler) GetPopularTags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	tags, err := s.tagSvc.GetPopularTags(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tags)
}
