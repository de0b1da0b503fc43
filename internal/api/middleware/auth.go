package middleware

import (
	"Snapfeed/internal/pkg/consts"
	"Snapfeed/internal/pkg/logger"
	"Snapfeed/internal/pkg/redis"
	"Snapfeed/internal/pkg/response"
	"Snapfeed/internal/pkg/security"
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenKey 鉴权通过后原始 Token 在 gin.Context 中的 Key
const TokenKey = "token"

var errTokenRevoked = errors.New("token revoked")

// AuthMiddleware 要求有效且未注销的 Bearer Token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		claims, err := verifyToken(c.Request.Context(), token)
		switch {
		case errors.Is(err, security.ErrMalformedToken):
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		case errors.Is(err, errTokenRevoked), errors.Is(err, security.ErrInvalidToken):
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		case err != nil:
			response.Fail(c, response.InternalServerError, "未知错误")
			c.Abort()
			return
		}

		c.Set(TokenKey, token)
		bindUser(c, claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	return token, ok && token != ""
}

// verifyToken 先查黑名单再验签，黑名单查询失败原样返回
func verifyToken(ctx context.Context, token string) (*security.UserClaims, error) {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return nil, security.ErrMalformedToken
	}
	revoked, err := redis.Exists(ctx, consts.TokenBlacklistKey+signature)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errTokenRevoked
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		return nil, security.ErrInvalidToken
	}
	return claims, nil
}

func bindUser(c *gin.Context, userID uint64) {
	c.Set(logger.UserIDKey, userID)
	c.Request = c.Request.WithContext(logger.WithUser(c.Request.Context(), userID))
}
