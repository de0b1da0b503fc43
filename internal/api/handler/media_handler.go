package handler

import (
	"Snapfeed/internal/pkg/response"
	"Snapfeed/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	mediaSvc service.MediaService
}

func NewMediaHandler(mediaSvc service.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaSvc: mediaSvc,
	}
}

// Upload 上传图片到临时区，发布信息流时再转正
func (s *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrFileNotExist)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	res, err := s.mediaSvc.Upload(c.Request.Context(), currentUserID(c), reader, file.Size)
	if err != nil {
		response.Error(c, err)
		return
	}

	log.InfoContext(c.Request.Context(), "media upload success", "object", res.ObjectName, "original", file.Filename)
	response.Success(c, res)
}
