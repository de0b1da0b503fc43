package middleware

import (
	"Snapfeed/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：Token 缺失、无效或已注销时按游客(UID 0)处理
func AuthOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(logger.UserIDKey, uint64(0))

		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := verifyToken(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		bindUser(c, claims.UserID)
		c.Next()
	}
}
