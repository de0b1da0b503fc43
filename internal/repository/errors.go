package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

var (
	ErrFeedNotFound     = errors.New("feed not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrActionDuplicate  = errors.New("action already exists")
	ErrActionNotFound   = errors.New("action not found")
	ErrDuplicate        = errors.New("duplicate key")
	ErrInvalidFeedState = errors.New("invalid feed status")
)

// IsDuplicate 判断是否为唯一键冲突
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// translate 将驱动层错误归一为仓储层错误
func translate(err error) error {
	if IsDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// notFound 将 gorm.ErrRecordNotFound 替换为具体的业务错误
func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
