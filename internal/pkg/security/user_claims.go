package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	JWTSecret         = "Snapfeed"
	JWTIssuer         = "Snapfeed"
	JWTExpirationTime = time.Hour * 24
)

var (
	ErrMalformedToken = errors.New("token 格式不正确")
	ErrInvalidToken   = errors.New("token 无效或已过期")
)

// UserClaims Token 中携带的用户 ID，Subject 为其十进制形式
type UserClaims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

// RemainingTTL 距离过期的剩余时间，也是注销后黑名单键的存活时间
func (c *UserClaims) RemainingTTL() time.Duration {
	if c == nil || c.ExpiresAt == nil {
		return JWTExpirationTime
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}
