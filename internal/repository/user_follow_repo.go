package repository

import (
	"Snapfeed/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserFollowRepo interface {
	GetUserFollowers(ctx context.Context, userID uint64, limit, offset int) ([]*model.MapperUserFollow, error)
	GetUserFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.MapperUserFollow, error)
	GetFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
	GetUserFollowerCount(ctx context.Context, userID uint64) (int64, error)
	GetUserFollowingCount(ctx context.Context, userID uint64) (int64, error)
	GetUserFollow(ctx context.Context, userID uint64, followeeID uint64) (*model.MapperUserFollow, error)
	CreateUserFollow(ctx context.Context, userFollow *model.MapperUserFollow) error
	DeleteUserFollow(ctx context.Context, userID uint64, followeeID uint64) (int64, error)
}

type UserFollowRepoImpl struct {
	db *gorm.DB
}

func NewUserFollowRepo(db *gorm.DB) UserFollowRepo {
	return &UserFollowRepoImpl{db: db}
}

// GetUserFollowers 获取用户的粉丝列表
func (s *UserFollowRepoImpl) GetUserFollowers(ctx context.Context, userID uint64, limit, offset int) ([]*model.MapperUserFollow, error) {
	var userFollows []*model.MapperUserFollow
	result := s.db.WithContext(ctx).
		Where("followee_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&userFollows)

	if result.Error != nil {
		return nil, result.Error
	}
	return userFollows, nil
}

// GetUserFollowing 获取用户的关注列表
func (s *UserFollowRepoImpl) GetUserFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.MapperUserFollow, error) {
	var userFollows []*model.MapperUserFollow
	result := s.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&userFollows)

	if result.Error != nil {
		return nil, result.Error
	}
	return userFollows, nil
}

// GetFollowingIDs 获取用户关注的全部用户 id
func (s *UserFollowRepoImpl) GetFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).
		Model(&model.MapperUserFollow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetUserFollowerCount 获取用户的粉丝数量
func (s *UserFollowRepoImpl) GetUserFollowerCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.MapperUserFollow{}).
		Where("followee_id = ?", userID).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetUserFollowingCount 获取用户的关注数量
func (s *UserFollowRepoImpl) GetUserFollowingCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.MapperUserFollow{}).
		Where("follower_id = ?", userID).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetUserFollow 获取关注关系，不存在时返回 nil, nil
func (s *UserFollowRepoImpl) GetUserFollow(ctx context.Context, userID uint64, followeeID uint64) (*model.MapperUserFollow, error) {
	var userFollow model.MapperUserFollow
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", userID, followeeID).
		First(&userFollow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &userFollow, nil
}

// CreateUserFollow 创建关注关系
func (s *UserFollowRepoImpl) CreateUserFollow(ctx context.Context, userFollow *model.MapperUserFollow) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			DoNothing: true,
		}).
		Create(userFollow).Error
}

// DeleteUserFollow 删除关注关系，返回受影响行数
func (s *UserFollowRepoImpl) DeleteUserFollow(ctx context.Context, userID uint64, followeeID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", userID, followeeID).
		Delete(&model.MapperUserFollow{})
	return result.RowsAffected, result.Error
}
