package service

import (
	"Snapfeed/internal/repository"
	"context"
	"errors"
	log "log/slog"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
	GatewayTimeout      = 504
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrUserNotFound      = errors.New("用户不存在")
	ErrUserExist         = errors.New("用户已存在")
	ErrUserBanned        = errors.New("用户已被封禁")
	ErrPasswordIncorrect = errors.New("密码错误")
	ErrFileNotSupported  = errors.New("不支持的文件类型")
	ErrFileTooLarge      = errors.New("文件过大")
	ErrFileNotExist      = errors.New("文件不存在")
	ErrUserFollowExist   = errors.New("用户已关注")
	ErrUserFollowSelf    = errors.New("用户不能关注自己")
	ErrUserFollowBlocked = errors.New("无法关注该用户")
	ErrUserBlockSelf     = errors.New("不能拉黑自己")
	ErrFeedNotFound      = errors.New("信息流不存在")
	ErrCommentNotFound   = errors.New("评论不存在")
	ErrTagNotFound       = errors.New("标签不存在")
	ErrActionDuplicate   = errors.New("重复操作")
	ErrActionNotFound    = errors.New("操作记录不存在")
	ErrSysBoxNotFound    = errors.New("系统通知不存在")
	ErrSearchUnavailable = errors.New("搜索服务不可用")
	ErrRequestTimeout    = errors.New("请求超时")
	UnauthorizedError    = errors.New("权限不足")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrUserNotFound:      NotFound,
	ErrUserExist:         BadRequest,
	ErrUserBanned:        Forbidden,
	ErrPasswordIncorrect: Unauthorized,
	ErrFileNotSupported:  BadRequest,
	ErrFileTooLarge:      BadRequest,
	ErrFileNotExist:      NotFound,
	ErrUserFollowExist:   BadRequest,
	ErrUserFollowSelf:    BadRequest,
	ErrUserFollowBlocked: BadRequest,
	ErrUserBlockSelf:     BadRequest,
	ErrFeedNotFound:      NotFound,
	ErrCommentNotFound:   NotFound,
	ErrTagNotFound:       NotFound,
	ErrActionDuplicate:   BadRequest,
	ErrActionNotFound:    BadRequest,
	ErrSysBoxNotFound:    NotFound,
	ErrSearchUnavailable: InternalServerError,
	ErrRequestTimeout:    GatewayTimeout,
	UnauthorizedError:    Forbidden,
	UnExpectedError:      InternalServerError,
}

// repoErrors 仓储层错误到业务错误的映射
var repoErrors = map[error]error{
	repository.ErrFeedNotFound:     ErrFeedNotFound,
	repository.ErrUserNotFound:     ErrUserNotFound,
	repository.ErrCommentNotFound:  ErrCommentNotFound,
	repository.ErrTagNotFound:      ErrTagNotFound,
	repository.ErrActionDuplicate:  ErrActionDuplicate,
	repository.ErrActionNotFound:   ErrActionNotFound,
	repository.ErrDuplicate:        ErrActionDuplicate,
	repository.ErrInvalidFeedState: ErrParamInvalid,
}

// mapRepoErr 将仓储层错误转换为业务错误，未知错误记录日志后统一为 UnExpectedError
func mapRepoErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := ErrorMap[err]; ok {
		return err
	}
	for src, dst := range repoErrors {
		if errors.Is(err, src) {
			return dst
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrRequestTimeout
	}
	log.ErrorContext(ctx, "repository failure", "err", err)
	return UnExpectedError
}
