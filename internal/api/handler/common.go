package handler

import (
	"Snapfeed/internal/pkg/response"
	"Snapfeed/internal/pkg/util"
	"Snapfeed/internal/service"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON 绑定请求体并执行 validate 规则，失败时已写出响应
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			response.Error(c, err)
		} else {
			response.Error(c, service.ErrParamInvalid)
		}
		return false
	}
	if err := util.ValidateDTO(obj); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

// bindQuery 绑定查询参数
func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			response.Error(c, err)
		} else {
			response.Error(c, service.ErrParamInvalid)
		}
		return false
	}
	return true
}

// paramID 解析路径中的数字 ID
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, service.ErrParamInvalid)
		return 0, false
	}
	return id, true
}

func currentUserID(c *gin.Context) uint64 {
	return c.GetUint64("user_id")
}
