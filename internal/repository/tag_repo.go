package repository

import (
	"Snapfeed/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagCount 标签及其在有效信息流中的引用次数
type TagCount struct {
	TagID    uint64 `json:"tag_id"`
	TagName  string `json:"tag_name"`
	UseCount int64  `json:"use_count"`
}

type TagRepo interface {
	GetTagByName(ctx context.Context, tagName string) (*model.Tag, error)
	GetOrCreateTags(ctx context.Context, tagNames []string) ([]*model.Tag, error)
	GetPopularTags(ctx context.Context, limit int) ([]*TagCount, error)
}

type tagRepoImpl struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepo {
	return &tagRepoImpl{
		db: db,
	}
}

func (s *tagRepoImpl) GetTagByName(ctx context.Context, tagName string) (*model.Tag, error) {
	var tag model.Tag
	err := s.db.WithContext(ctx).Where("tag_name = ?", tagName).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (s *tagRepoImpl) GetOrCreateTags(ctx context.Context, tagNames []string) ([]*model.Tag, error) {
	names := NormalizeTagNames(tagNames)
	if len(names) == 0 {
		return []*model.Tag{}, nil
	}
	var tags []*model.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 使用 OnConflict DoNothing 避免重复创建
		for _, name := range names {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.Tag{TagName: name}).Error
			if err != nil {
				return err
			}
		}
		return tx.Where("tag_name IN ?", names).Order("id").Find(&tags).Error
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// GetPopularTags 统计有效且可见信息流中被引用最多的标签
func (s *tagRepoImpl) GetPopularTags(ctx context.Context, limit int) ([]*TagCount, error) {
	var rows []*TagCount
	err := s.db.WithContext(ctx).Table("mapper_feed_tags").
		Select("tags.id AS tag_id, tags.tag_name, COUNT(*) AS use_count").
		Joins("JOIN tags ON tags.id = mapper_feed_tags.tag_id").
		Joins("JOIN feeds ON feeds.id = mapper_feed_tags.feed_id").
		Where("feeds.status = ? AND feeds.display_yn = ?", model.FeedStatusActive, model.YnY).
		Group("tags.id, tags.tag_name").
		Order("use_count DESC, tags.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
