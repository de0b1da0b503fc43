package repository

import (
	"Snapfeed/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetUserById(ctx context.Context, id uint64) (*model.User, error)
	GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserWithFollowing(ctx context.Context, id uint64) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdatePasswordHash(ctx context.Context, id uint64, hash string) error
	DeleteUser(ctx context.Context, id uint64) error
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

// GetUserById 不存在时返回 nil, nil
func (s *UserRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *UserRepoImpl) GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error) {
	users := make([]*model.User, 0)
	if len(ids) == 0 {
		return users, nil
	}
	result := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *UserRepoImpl) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *UserRepoImpl) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.first(ctx, "email = ?", email)
}

// GetUserWithFollowing 用户信息并填充关注列表
func (s *UserRepoImpl) GetUserWithFollowing(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.first(ctx, "id = ?", id)
	if err != nil || user == nil {
		return user, err
	}
	ids := make([]uint64, 0)
	err = s.db.WithContext(ctx).Model(&model.MapperUserFollow{}).
		Where("follower_id = ?", id).
		Order("created_at DESC").
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	user.FollowingIDs = ids
	return user, nil
}

func (s *UserRepoImpl) CreateUser(ctx context.Context, user *model.User) error {
	if user.Status == "" {
		user.Status = model.UserStatusActive
	}
	if user.Gender == "" {
		user.Gender = model.GenderUnknown
	}
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *UserRepoImpl) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	return s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password_hash", hash).Error
}

// DeleteUser 注销：状态置为 DELETED，释放用户名与邮箱，并清理关注关系
func (s *UserRepoImpl) DeleteUser(ctx context.Context, id uint64) error {
	placeholder := fmt.Sprintf("deleted_%d_%d", id, time.Now().Unix())

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).Where("id = ?", id).Updates(map[string]any{
			"status":   model.UserStatusDeleted,
			"username": placeholder,
			"email":    placeholder + "@deleted.local",
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).
			Delete(&model.MapperUserFollow{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", id).Delete(&model.UserBlock{}).Error
	})
}

func (s *UserRepoImpl) first(ctx context.Context, query string, args ...any) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).Where(query, args...).First(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user, nil
}
