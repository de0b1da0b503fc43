package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PasswordCost bcrypt 计算成本，测试中可调低
var PasswordCost = bcrypt.DefaultCost

// HashPassword 生成 bcrypt 哈希；超过 72 字节的部分 bcrypt 会截断，这里直接拒绝
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash 校验密码，不匹配时返回 ErrInvalidCredentials
func CheckPasswordHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return err
}

// NeedsRehash 已存哈希的成本与当前配置不一致时需要在登录成功后重新生成
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != PasswordCost
}
