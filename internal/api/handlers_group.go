package api

import "Snapfeed/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler       *handler.UserHandler
	UserFollowHandler *handler.UserFollowHandler
	FeedHandler       *handler.FeedHandler
	CommentHandler    *handler.CommentHandler
	TagHandler        *handler.TagHandler
	MediaHandler      *handler.MediaHandler
	SysBoxHandler     *handler.SysBoxHandler
}
