package logger

import "context"

// UserIDKey 鉴权中间件写入 ctx 的用户 ID
const UserIDKey = "user_id"

// WithUser 把当前用户写入 ctx，游客不写
func WithUser(ctx context.Context, userID uint64) context.Context {
	if userID == 0 {
		return ctx
	}
	return context.WithValue(ctx, UserIDKey, userID)
}
