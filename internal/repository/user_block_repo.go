package repository

import (
	"Snapfeed/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserBlockRepo interface {
	Block(ctx context.Context, userID, blockedUserID uint64) error
	Unblock(ctx context.Context, userID, blockedUserID uint64) (int64, error)
	GetBlockedUserIDs(ctx context.Context, userID uint64) ([]uint64, error)
	IsBlocked(ctx context.Context, userID, blockedUserID uint64) (bool, error)
}

type UserBlockRepoImpl struct {
	db *gorm.DB
}

func NewUserBlockRepo(db *gorm.DB) UserBlockRepo {
	return &UserBlockRepoImpl{db: db}
}

// Block 屏蔽用户，屏蔽时同时解除双向关注
func (s *UserBlockRepoImpl) Block(ctx context.Context, userID, blockedUserID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.UserBlock{UserID: userID, BlockedUserID: blockedUserID}).Error
		if err != nil {
			return err
		}
		return tx.Where("(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
			userID, blockedUserID, blockedUserID, userID).
			Delete(&model.MapperUserFollow{}).Error
	})
}

func (s *UserBlockRepoImpl) Unblock(ctx context.Context, userID, blockedUserID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Delete(&model.UserBlock{})
	return result.RowsAffected, result.Error
}

func (s *UserBlockRepoImpl) GetBlockedUserIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).Model(&model.UserBlock{}).
		Where("user_id = ?", userID).
		Pluck("blocked_user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *UserBlockRepoImpl) IsBlocked(ctx context.Context, userID, blockedUserID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserBlock{}).
		Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Count(&count).Error
	return count > 0, err
}
