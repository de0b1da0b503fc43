package repository

import (
	"Snapfeed/internal/model"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// 内存库每个连接各自独立
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		Username:     name,
		PasswordHash: "x",
		Status:       model.UserStatusActive,
		Gender:       model.GenderUnknown,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func reloadUser(t *testing.T, db *gorm.DB, id uint64) *model.User {
	t.Helper()
	var u model.User
	require.NoError(t, db.First(&u, id).Error)
	return &u
}

func reloadFeed(t *testing.T, db *gorm.DB, id uint64) *model.Feed {
	t.Helper()
	var f model.Feed
	require.NoError(t, db.First(&f, id).Error)
	return &f
}
