package handler

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/pkg/response"
	"Snapfeed/internal/service"

	"github.com/gin-gonic/gin"
)

// SysBoxHandler 当前用户的系统通知箱
type SysBoxHandler struct {
	sysBoxService service.SysBoxService
}

func NewSysBoxHandler(s service.SysBoxService) *SysBoxHandler {
	return &SysBoxHandler{sysBoxService: s}
}

// GetNotificationList 按时间倒序分页，page/limit 缺省时取默认值
func (h *SysBoxHandler) GetNotificationList(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}

	list, err := h.sysBoxService.GetNotificationList(c.Request.Context(), currentUserID(c), q.Page, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (h *SysBoxHandler) GetUnreadCount(c *gin.Context) {
	unread, err := h.sysBoxService.GetUnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, unread)
}

// MarkRead 只能标记发给自己的通知
func (h *SysBoxHandler) MarkRead(c *gin.Context) {
	var req dto.SysBoxReadDTO
	if !bindJSON(c, &req) {
		return
	}

	if err := h.sysBoxService.MarkRead(c.Request.Context(), currentUserID(c), req.MsgID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *SysBoxHandler) MarkAllRead(c *gin.Context) {
	res, err := h.sysBoxService.MarkAllRead(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
