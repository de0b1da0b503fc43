package repository

import (
	"Snapfeed/internal/model"
	"Snapfeed/internal/pkg/pagination"
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const feedOrder = "feeds.created_at DESC, feeds.id DESC"

// FeedQuery 全量信息流查询条件
type FeedQuery struct {
	ExcludeUserIDs []uint64
	TagName        string
	Page           int
	Limit          int
	ViewerID       uint64
}

type FeedRepo interface {
	GetAllFeeds(ctx context.Context, q FeedQuery) (*pagination.Result[*model.Feed], error)
	GetFollowingFeeds(ctx context.Context, viewerID uint64, followingIDs []uint64, page, limit int) (*pagination.Result[*model.Feed], error)
	GetFeedsByUser(ctx context.Context, userID uint64, status model.FeedStatus, page, limit int, viewerID uint64) (*pagination.Result[*model.Feed], error)
	GetBookmarkedFeeds(ctx context.Context, userID uint64, page, limit int) (*pagination.Result[*model.Feed], error)
	GetFeed(ctx context.Context, feedID, viewerID uint64) (*model.Feed, error)
	GetFeedByID(ctx context.Context, feedID uint64) (*model.Feed, error)
	GetFeedsByIDs(ctx context.Context, feedIDs []uint64, viewerID uint64) ([]*model.Feed, error)

	CreateFeed(ctx context.Context, feed *model.Feed, images []*model.FeedImage, tagNames []string) error
	UpdateFeed(ctx context.Context, feedID uint64, description string, tagNames []string) error
	UpdateStatus(ctx context.Context, feedID uint64, status model.FeedStatus) error
	UpdateShowLikeCount(ctx context.Context, feedID uint64, yn model.YN) error
	UpdateDisplay(ctx context.Context, feedID uint64, yn model.YN) error
	SoftDelete(ctx context.Context, feedID uint64) error
	HardDelete(ctx context.Context, feedID uint64) error

	Like(ctx context.Context, userID, feedID uint64) error
	Unlike(ctx context.Context, userID, feedID uint64) error
	Bookmark(ctx context.Context, userID, feedID uint64) error
	Unbookmark(ctx context.Context, userID, feedID uint64) error
}

type FeedRepoImpl struct {
	db *gorm.DB
}

func NewFeedRepo(db *gorm.DB) FeedRepo {
	return &FeedRepoImpl{db: db}
}

// GetAllFeeds 可见且有效的信息流，可排除用户、按单个标签过滤
func (s *FeedRepoImpl) GetAllFeeds(ctx context.Context, q FeedQuery) (*pagination.Result[*model.Feed], error) {
	page, limit := pagination.Normalize(q.Page, q.Limit)
	db := s.db.WithContext(ctx).Model(&model.Feed{}).
		Where("feeds.display_yn = ? AND feeds.status = ?", model.YnY, model.FeedStatusActive)
	if len(q.ExcludeUserIDs) > 0 {
		db = db.Where("feeds.user_id NOT IN ?", q.ExcludeUserIDs)
	}
	if tag := strings.TrimSpace(q.TagName); tag != "" {
		db = db.Joins("JOIN mapper_feed_tags ON mapper_feed_tags.feed_id = feeds.id").
			Joins("JOIN tags ON tags.id = mapper_feed_tags.tag_id").
			Where("tags.tag_name = ?", tag)
	}
	return s.paginate(ctx, db, feedOrder, page, limit, q.ViewerID)
}

// GetFollowingFeeds 本人及关注用户的信息流，作者需未注销
func (s *FeedRepoImpl) GetFollowingFeeds(ctx context.Context, viewerID uint64, followingIDs []uint64, page, limit int) (*pagination.Result[*model.Feed], error) {
	page, limit = pagination.Normalize(page, limit)
	authorIDs := make([]uint64, 0, len(followingIDs)+1)
	authorIDs = append(authorIDs, viewerID)
	authorIDs = append(authorIDs, followingIDs...)

	db := s.db.WithContext(ctx).Model(&model.Feed{}).
		Joins("JOIN users ON users.id = feeds.user_id").
		Where("feeds.user_id IN ?", authorIDs).
		Where("users.status <> ?", model.UserStatusDeleted).
		Where("feeds.display_yn = ? AND feeds.status = ?", model.YnY, model.FeedStatusActive)
	return s.paginate(ctx, db, feedOrder, page, limit, viewerID)
}

// GetFeedsByUser 指定作者、指定状态的信息流
func (s *FeedRepoImpl) GetFeedsByUser(ctx context.Context, userID uint64, status model.FeedStatus, page, limit int, viewerID uint64) (*pagination.Result[*model.Feed], error) {
	page, limit = pagination.Normalize(page, limit)
	db := s.db.WithContext(ctx).Model(&model.Feed{}).
		Where("feeds.user_id = ? AND feeds.status = ?", userID, status)
	if viewerID != userID {
		db = db.Where("feeds.display_yn = ?", model.YnY)
	}
	return s.paginate(ctx, db, feedOrder, page, limit, viewerID)
}

// GetBookmarkedFeeds 用户收藏的信息流，按收藏时间倒序
func (s *FeedRepoImpl) GetBookmarkedFeeds(ctx context.Context, userID uint64, page, limit int) (*pagination.Result[*model.Feed], error) {
	page, limit = pagination.Normalize(page, limit)
	db := s.db.WithContext(ctx).Model(&model.Feed{}).
		Joins("JOIN feed_bookmarks ON feed_bookmarks.feed_id = feeds.id").
		Where("feed_bookmarks.user_id = ?", userID).
		Scopes(visibleScope(userID))
	return s.paginate(ctx, db, "feed_bookmarks.created_at DESC, feeds.id DESC", page, limit, userID)
}

// GetFeed 单条信息流（含图片、标签与当前用户的点赞收藏标记）
func (s *FeedRepoImpl) GetFeed(ctx context.Context, feedID, viewerID uint64) (*model.Feed, error) {
	db := s.db.WithContext(ctx)
	feed, err := findFeed(db, feedID)
	if err != nil {
		return nil, err
	}
	if err = hydrate(db, []*model.Feed{feed}, viewerID); err != nil {
		return nil, err
	}
	return feed, nil
}

// visibleScope 与 model.Feed.VisibleTo 一致的查询条件，保证计数与分页同口径
func visibleScope(viewerID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("feeds.status <> ? AND ((feeds.status = ? AND feeds.display_yn = ?) OR feeds.user_id = ?)",
			model.FeedStatusDeleted, model.FeedStatusActive, model.YnY, viewerID)
	}
}

// GetFeedByID 不挂载关联数据，用于归属校验
func (s *FeedRepoImpl) GetFeedByID(ctx context.Context, feedID uint64) (*model.Feed, error) {
	return findFeed(s.db.WithContext(ctx), feedID)
}

// GetFeedsByIDs 按给定顺序返回可见的信息流，缺失的 id 直接跳过
func (s *FeedRepoImpl) GetFeedsByIDs(ctx context.Context, feedIDs []uint64, viewerID uint64) ([]*model.Feed, error) {
	if len(feedIDs) == 0 {
		return []*model.Feed{}, nil
	}
	db := s.db.WithContext(ctx)
	var feeds []*model.Feed
	err := db.Where("id IN ? AND display_yn = ? AND status = ?", feedIDs, model.YnY, model.FeedStatusActive).
		Find(&feeds).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]*model.Feed, len(feeds))
	for _, f := range feeds {
		byID[f.ID] = f
	}
	ordered := make([]*model.Feed, 0, len(feeds))
	for _, id := range feedIDs {
		if f, ok := byID[id]; ok {
			ordered = append(ordered, f)
			delete(byID, id)
		}
	}
	if err = hydrate(db, ordered, viewerID); err != nil {
		return nil, err
	}
	return ordered, nil
}

// CreateFeed 单事务内写入信息流、图片、作者计数与标签映射
func (s *FeedRepoImpl) CreateFeed(ctx context.Context, feed *model.Feed, images []*model.FeedImage, tagNames []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author int64
		if err := tx.Model(&model.User{}).Where("id = ?", feed.UserID).Count(&author).Error; err != nil {
			return err
		}
		if author == 0 {
			return ErrUserNotFound
		}

		feed.Status = model.FeedStatusActive
		feed.LikeCount = 0
		feed.CommentCount = 0
		if !feed.DisplayYn.Valid() {
			feed.DisplayYn = model.YnY
		}
		if !feed.ShowLikeCountYn.Valid() {
			feed.ShowLikeCountYn = model.YnY
		}
		if err := tx.Create(feed).Error; err != nil {
			return translate(err)
		}

		if len(images) > 0 {
			for _, img := range images {
				img.FeedID = feed.ID
			}
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}

		if err := adjustFeedCount(tx, feed.UserID, 1); err != nil {
			return err
		}

		_, err := attachTags(tx, feed.ID, tagNames)
		return err
	})
}

// UpdateFeed 更新描述并将标签集合调整为与传入集合完全一致
func (s *FeedRepoImpl) UpdateFeed(ctx context.Context, feedID uint64, description string, tagNames []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockFeed(tx, feedID); err != nil {
			return err
		}

		// 先取出变更前的标签，再做新增
		previous, err := feedTagIDs(tx, feedID)
		if err != nil {
			return err
		}

		supplied, err := attachTags(tx, feedID, tagNames)
		if err != nil {
			return err
		}

		stale := make([]uint64, 0, len(previous))
		for name, tagID := range previous {
			if _, ok := supplied[name]; !ok {
				stale = append(stale, tagID)
			}
		}
		if len(stale) > 0 {
			err = tx.Where("feed_id = ? AND tag_id IN ?", feedID, stale).
				Delete(&model.MapperFeedTag{}).Error
			if err != nil {
				return err
			}
		}

		return tx.Model(&model.Feed{}).Where("id = ?", feedID).Updates(map[string]any{
			"description": description,
			"updated_at":  time.Now(),
		}).Error
	})
}

// UpdateStatus 状态发生变化时才调整作者的有效信息流计数
func (s *FeedRepoImpl) UpdateStatus(ctx context.Context, feedID uint64, status model.FeedStatus) error {
	if !status.Valid() {
		return ErrInvalidFeedState
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return changeStatus(tx, feedID, status)
	})
}

func (s *FeedRepoImpl) UpdateShowLikeCount(ctx context.Context, feedID uint64, yn model.YN) error {
	return s.updateFlag(ctx, feedID, "show_like_count_yn", yn)
}

func (s *FeedRepoImpl) UpdateDisplay(ctx context.Context, feedID uint64, yn model.YN) error {
	return s.updateFlag(ctx, feedID, "display_yn", yn)
}

// SoftDelete 标记为已删除
func (s *FeedRepoImpl) SoftDelete(ctx context.Context, feedID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return changeStatus(tx, feedID, model.FeedStatusDeleted)
	})
}

// HardDelete 先删除全部从属数据，再删除信息流本身
func (s *FeedRepoImpl) HardDelete(ctx context.Context, feedID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		feed, err := lockFeed(tx, feedID)
		if err != nil {
			return err
		}

		dependents := []any{
			&model.FeedImage{},
			&model.FeedLike{},
			&model.FeedBookmark{},
			&model.MapperFeedTag{},
		}
		for _, dep := range dependents {
			if err = tx.Where("feed_id = ?", feedID).Delete(dep).Error; err != nil {
				return err
			}
		}

		commentIDs := tx.Model(&model.Comment{}).Select("id").Where("feed_id = ?", feedID)
		if err = tx.Where("comment_id IN (?)", commentIDs).Delete(&model.CommentReply{}).Error; err != nil {
			return err
		}
		if err = tx.Where("feed_id = ?", feedID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}

		if err = tx.Delete(&model.Feed{}, feedID).Error; err != nil {
			return err
		}

		if feed.Status == model.FeedStatusActive {
			return adjustFeedCount(tx, feed.UserID, -1)
		}
		return nil
	})
}

// Like 点赞，重复点赞返回 ErrActionDuplicate
func (s *FeedRepoImpl) Like(ctx context.Context, userID, feedID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireLiveFeed(tx, feedID); err != nil {
			return err
		}
		exists, err := rowExists(tx, &model.FeedLike{}, userID, feedID)
		if err != nil {
			return err
		}
		if exists {
			return ErrActionDuplicate
		}
		if err = tx.Create(&model.FeedLike{UserID: userID, FeedID: feedID}).Error; err != nil {
			if IsDuplicate(err) {
				return ErrActionDuplicate
			}
			return err
		}
		return tx.Model(&model.Feed{}).Where("id = ?", feedID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
}

// Unlike 取消点赞，计数不会小于 0
func (s *FeedRepoImpl) Unlike(ctx context.Context, userID, feedID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockFeed(tx, feedID); err != nil {
			return err
		}
		result := tx.Where("user_id = ? AND feed_id = ?", userID, feedID).Delete(&model.FeedLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrActionNotFound
		}
		return tx.Model(&model.Feed{}).Where("id = ? AND like_count > 0", feedID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
}

func (s *FeedRepoImpl) Bookmark(ctx context.Context, userID, feedID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireLiveFeed(tx, feedID); err != nil {
			return err
		}
		exists, err := rowExists(tx, &model.FeedBookmark{}, userID, feedID)
		if err != nil {
			return err
		}
		if exists {
			return ErrActionDuplicate
		}
		err = tx.Create(&model.FeedBookmark{UserID: userID, FeedID: feedID}).Error
		if IsDuplicate(err) {
			return ErrActionDuplicate
		}
		return err
	})
}

func (s *FeedRepoImpl) Unbookmark(ctx context.Context, userID, feedID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockFeed(tx, feedID); err != nil {
			return err
		}
		result := tx.Where("user_id = ? AND feed_id = ?", userID, feedID).Delete(&model.FeedBookmark{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrActionNotFound
		}
		return nil
	})
}

func (s *FeedRepoImpl) updateFlag(ctx context.Context, feedID uint64, column string, yn model.YN) error {
	if !yn.Valid() {
		return ErrInvalidFeedState
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockFeed(tx, feedID); err != nil {
			return err
		}
		return tx.Model(&model.Feed{}).Where("id = ?", feedID).Updates(map[string]any{
			column:       yn,
			"updated_at": time.Now(),
		}).Error
	})
}

// paginate 先计数再按偏移取数，最后批量挂载
func (s *FeedRepoImpl) paginate(ctx context.Context, db *gorm.DB, order string, page, limit int, viewerID uint64) (*pagination.Result[*model.Feed], error) {
	base := db.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 || int64(pagination.Offset(page, limit)) >= total {
		return pagination.New[*model.Feed](nil, total, page, limit), nil
	}

	var feeds []*model.Feed
	err := base.Select("feeds.*").
		Order(order).
		Scopes(pagination.Scope(page, limit)).
		Find(&feeds).Error
	if err != nil {
		return nil, err
	}
	if err = hydrate(s.db.WithContext(ctx), feeds, viewerID); err != nil {
		return nil, err
	}
	return pagination.New(feeds, total, page, limit), nil
}

func findFeed(db *gorm.DB, feedID uint64) (*model.Feed, error) {
	var feed model.Feed
	if err := db.Where("id = ?", feedID).First(&feed).Error; err != nil {
		return nil, notFound(err, ErrFeedNotFound)
	}
	return &feed, nil
}

// lockFeed 事务内加行锁读取
func lockFeed(tx *gorm.DB, feedID uint64) (*model.Feed, error) {
	return findFeed(tx.Clauses(clause.Locking{Strength: "UPDATE"}), feedID)
}

// requireLiveFeed 已删除的信息流视为不存在
func requireLiveFeed(tx *gorm.DB, feedID uint64) error {
	feed, err := lockFeed(tx, feedID)
	if err != nil {
		return err
	}
	if feed.Status == model.FeedStatusDeleted {
		return ErrFeedNotFound
	}
	return nil
}

func rowExists(db *gorm.DB, m any, userID, feedID uint64) (bool, error) {
	var count int64
	err := db.Model(m).Where("user_id = ? AND feed_id = ?", userID, feedID).Count(&count).Error
	return count > 0, err
}

func changeStatus(tx *gorm.DB, feedID uint64, status model.FeedStatus) error {
	feed, err := lockFeed(tx, feedID)
	if err != nil {
		return err
	}
	if feed.Status == status {
		return nil
	}

	err = tx.Model(&model.Feed{}).Where("id = ?", feedID).Updates(map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return err
	}

	switch {
	case status == model.FeedStatusActive:
		return adjustFeedCount(tx, feed.UserID, 1)
	case feed.Status == model.FeedStatusActive:
		return adjustFeedCount(tx, feed.UserID, -1)
	}
	return nil
}

// adjustFeedCount 调整作者的有效信息流计数，递减时不低于 0
func adjustFeedCount(tx *gorm.DB, userID uint64, delta int) error {
	db := tx.Model(&model.User{}).Where("id = ?", userID)
	if delta < 0 {
		return db.Where("feed_count >= ?", -delta).
			UpdateColumn("feed_count", gorm.Expr("feed_count - ?", -delta)).Error
	}
	return db.UpdateColumn("feed_count", gorm.Expr("feed_count + ?", delta)).Error
}

// NormalizeTagNames 去除空白与前导 #，去重并保持原有顺序
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(name), "#"))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// findOrCreateTags 不存在的标签按需创建，已存在的直接复用
func findOrCreateTags(tx *gorm.DB, names []string) ([]*model.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	for _, name := range names {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Tag{TagName: name}).Error
		if err != nil {
			return nil, err
		}
	}
	var tags []*model.Tag
	if err := tx.Where("tag_name IN ?", names).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// attachTags 为信息流建立标签映射（幂等），返回 标签名 -> 标签 id
func attachTags(tx *gorm.DB, feedID uint64, tagNames []string) (map[string]uint64, error) {
	tags, err := findOrCreateTags(tx, NormalizeTagNames(tagNames))
	if err != nil {
		return nil, err
	}
	attached := make(map[string]uint64, len(tags))
	if len(tags) == 0 {
		return attached, nil
	}

	mappers := make([]*model.MapperFeedTag, 0, len(tags))
	for _, t := range tags {
		attached[t.TagName] = t.ID
		mappers = append(mappers, &model.MapperFeedTag{FeedID: feedID, TagID: t.ID})
	}
	err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mappers).Error
	if err != nil {
		return nil, err
	}
	return attached, nil
}

type feedTagRow struct {
	FeedID  uint64
	TagID   uint64
	TagName string
}

func feedTagRows(db *gorm.DB, feedIDs []uint64) ([]feedTagRow, error) {
	var rows []feedTagRow
	err := db.Table("mapper_feed_tags").
		Select("mapper_feed_tags.feed_id, tags.id AS tag_id, tags.tag_name").
		Joins("JOIN tags ON tags.id = mapper_feed_tags.tag_id").
		Where("mapper_feed_tags.feed_id IN ?", feedIDs).
		Order("mapper_feed_tags.feed_id, tags.id").
		Scan(&rows).Error
	return rows, err
}

// feedTagIDs 当前信息流的 标签名 -> 标签 id
func feedTagIDs(tx *gorm.DB, feedID uint64) (map[string]uint64, error) {
	rows, err := feedTagRows(tx, []uint64{feedID})
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(rows))
	for _, r := range rows {
		out[r.TagName] = r.TagID
	}
	return out, nil
}

// hydrate 以整页的 feed id 集合批量挂载图片、标签以及点赞收藏标记
func hydrate(db *gorm.DB, feeds []*model.Feed, viewerID uint64) error {
	if len(feeds) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(feeds))
	byID := make(map[uint64]*model.Feed, len(feeds))
	for _, f := range feeds {
		ids = append(ids, f.ID)
		byID[f.ID] = f
		f.FeedImages = make([]*model.FeedImage, 0)
		f.Tags = make([]*model.Tag, 0)
	}

	var images []*model.FeedImage
	err := db.Where("feed_id IN ?", ids).Order("feed_id, sort_order ASC, id ASC").Find(&images).Error
	if err != nil {
		return err
	}
	for _, img := range images {
		if f, ok := byID[img.FeedID]; ok {
			f.FeedImages = append(f.FeedImages, img)
		}
	}

	rows, err := feedTagRows(db, ids)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if f, ok := byID[r.FeedID]; ok {
			f.Tags = append(f.Tags, &model.Tag{ID: r.TagID, TagName: r.TagName})
		}
	}

	if viewerID == 0 {
		return nil
	}

	var liked, bookmarked []uint64
	err = db.Model(&model.FeedLike{}).
		Where("user_id = ? AND feed_id IN ?", viewerID, ids).
		Pluck("feed_id", &liked).Error
	if err != nil {
		return err
	}
	err = db.Model(&model.FeedBookmark{}).
		Where("user_id = ? AND feed_id IN ?", viewerID, ids).
		Pluck("feed_id", &bookmarked).Error
	if err != nil {
		return err
	}

	likedSet := toSet(liked)
	bookmarkedSet := toSet(bookmarked)
	for _, f := range feeds {
		_, l := likedSet[f.ID]
		_, b := bookmarkedSet[f.ID]
		f.LikedYn = model.YnOf(l)
		f.BookmarkedYn = model.YnOf(b)
	}
	return nil
}

func toSet(ids []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
