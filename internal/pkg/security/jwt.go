package security

import (
	"Snapfeed/internal/api/config"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InitJWT 使用配置覆盖默认的签名密钥、签发者与有效期
func InitJWT(cfg config.JWTConfig) {
	if cfg.Secret != "" {
		JWTSecret = cfg.Secret
	}
	if cfg.Issuer != "" {
		JWTIssuer = cfg.Issuer
	}
	if cfg.ExpireHour > 0 {
		JWTExpirationTime = time.Duration(cfg.ExpireHour) * time.Hour
	}
}

// GenerateToken 生成一个新的 JWT Token
func GenerateToken(userID uint64) (string, error) {
	now := time.Now()

	claims := &UserClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(JWTExpirationTime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    JWTIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(JWTSecret))
	if err != nil {
		return "", fmt.Errorf("签名 Token 失败: %w", err)
	}

	return tokenString, nil
}

// ValidateToken 验证 Token 字符串并解析出 Claims
func ValidateToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非预期的签名方法: %v", token.Header["alg"])
		}
		return []byte(JWTSecret), nil
	}, jwt.WithIssuer(JWTIssuer))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ExtractSignature 从 Token 字符串中提取签名，作为黑名单键
func ExtractSignature(tokenString string) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return "", ErrMalformedToken
	}
	return parts[2], nil
}
