package service

import (
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/model"
	"Snapfeed/internal/pkg/pagination"
	"Snapfeed/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"sort"
	"strings"

	"github.com/jinzhu/copier"
)

// FeedSearcher 信息流全文检索
type FeedSearcher interface {
	SearchFeedIDs(ctx context.Context, keyword string, from, size int) ([]uint64, int64, error)
}

type FeedService interface {
	GetAllFeeds(ctx context.Context, viewerID uint64, tag string, page, limit int) (*pagination.Result[*dto.FeedDTO], error)
	GetFollowingFeeds(ctx context.Context, viewerID uint64, page, limit int) (*pagination.Result[*dto.FeedDTO], error)
	GetFeedsByUser(ctx context.Context, viewerID, userID uint64, status model.FeedStatus, page, limit int) (*pagination.Result[*dto.FeedDTO], error)
	GetBookmarkedFeeds(ctx context.Context, viewerID uint64, page, limit int) (*pagination.Result[*dto.FeedDTO], error)
	SearchFeeds(ctx context.Context, viewerID uint64, keyword string, page, limit int) (*pagination.Result[*dto.FeedDTO], error)
	GetFeed(ctx context.Context, viewerID, feedID uint64) (*dto.FeedDTO, error)

	CreateFeed(ctx context.Context, userID uint64, req *dto.CreateFeedDTO) (*dto.FeedDTO, error)
	UpdateFeed(ctx context.Context, userID, feedID uint64, req *dto.UpdateFeedDTO) (*dto.FeedDTO, error)
	UpdateStatus(ctx context.Context, userID, feedID uint64, status model.FeedStatus) error
	UpdateShowLikeCount(ctx context.Context, userID, feedID uint64, yn model.YN) error
	UpdateDisplay(ctx context.Context, userID, feedID uint64, yn model.YN) error
	DeleteFeed(ctx context.Context, userID, feedID uint64) error
	HardDeleteFeed(ctx context.Context, userID, feedID uint64) error

	Like(ctx context.Context, userID, feedID uint64) error
	Unlike(ctx context.Context, userID, feedID uint64) error
	Bookmark(ctx context.Context, userID, feedID uint64) error
	Unbookmark(ctx context.Context, userID, feedID uint64) error
}

type FeedServiceImpl struct {
	feedRepo          repository.FeedRepo
	tagRepo           repository.TagRepo
	userRepo          repository.UserRepo
	userFollowService UserFollowService
	mediaService      MediaService
	searcher          FeedSearcher
	cfg               config.FeedConfig
}

func NewFeedService(
	feedRepo repository.FeedRepo,
	tagRepo repository.TagRepo,
	userRepo repository.UserRepo,
	userFollowService UserFollowService,
	mediaService MediaService,
	searcher FeedSearcher,
	cfg config.FeedConfig,
) FeedService {
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 10
	}
	if cfg.MaxTags <= 0 {
		cfg.MaxTags = 30
	}
	return &FeedServiceImpl{
		feedRepo:          feedRepo,
		tagRepo:           tagRepo,
		userRepo:          userRepo,
		userFollowService: userFollowService,
		mediaService:      mediaService,
		searcher:          searcher,
		cfg:               cfg,
	}
}

// GetAllFeeds 广场信息流，登录用户会过滤掉自己拉黑的作者
func (s *FeedServiceImpl) GetAllFeeds(ctx context.Context, viewerID uint64, tag string, page, limit int) (*pagination.Result[*dto.FeedDTO], error) {
	page, limit = pagination.Normalize(page, limit)
	query := repository.FeedQuery{
		Page:     page,
		Limit:    limit,
		ViewerID: viewerID,
	}

	if names := repository.NormalizeTagNames([]string{tag}); len(names) > 0 {
		if _, err := s.tagRepo.GetTagByName(ctx, names[0]); err != nil {
			if errors.Is(err, repository.ErrTagNotFound) {
				return pagination.New([]*dto.FeedDTO{}, 0, page, limit), nil
			}
			return nil, mapRepoErr(ctx, err)
		}
		query.TagName = names[0]
	}

	if viewerID > 0 {
		blocked, err := s.userFollowService.GetBlockedUserIDs(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		query.ExcludeUserIDs = blocked
	}

	result, err := s.feedRepo.GetAllFeeds(ctx, query)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	return s.toFeedPage(result, viewerID), nil
}

// GetFollowingFeeds 本人与关注用户的信息流
func (s *FeedServiceImpl) GetFollowingFeeds(ctx context.Context, viewerID uint64, page, limit int) (*pagination.Result[*dto.FeedDTO], error) {
	followingIDs, err := s.userFollowService.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	result, err := s.feedRepo.GetFollowingFeeds(ctx, viewerID, followingIDs, page, limit)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	return s.toFeedPage(result, viewerID), nil
}

// GetFeedsByUser 用户主页，非本人只能查看有效状态
func (s *FeedServiceImpl) GetFeedsByUser(ctx context.Context, viewerID, userID uint64, status model.FeedStatus, page, limit int) (*pagination.Result[*dto.FeedDTO], error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if user == nil || user.Status == model.UserStatusDeleted {
		return nil, ErrUserNotFound
	}

	if viewerID != userID || status == "" {
		status = model.FeedStatusActive
	}
	if !status.Valid() {
		return nil, ErrParamInvalid
	}

	result, err := s.feedRepo.GetFeedsByUser(ctx, userID, status, page, limit, viewerID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	return s.toFeedPage(result, viewerID), nil
}

func (s *FeedServiceImpl) GetBookmarkedFeeds(ctx context.Context, viewerID uint64, page, limit int) (*pagination.Result[*dto.FeedDTO], error) {
	result, err := s.feedRepo.GetBookmarkedFeeds(ctx, viewerID, page, limit)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	return s.toFeedPage(result, viewerID), nil
}

// SearchFeeds 关键字检索，命中结果以数据库中的最新状态为准
func (s *FeedServiceImpl) SearchFeeds(ctx context.Context, viewerID uint64, keyword string, page, limit int) (*pagination.Result[*dto.FeedDTO], error) {
	if s.searcher == nil {
		return nil, ErrSearchUnavailable
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrParamInvalid
	}
	page, limit = pagination.Normalize(page, limit)

	ids, total, err := s.searcher.SearchFeedIDs(ctx, keyword, pagination.Offset(page, limit), limit)
	if err != nil {
		log.ErrorContext(ctx, "search feeds failed", "keyword", keyword, "err", err)
		return nil, ErrSearchUnavailable
	}
	feeds, err := s.feedRepo.GetFeedsByIDs(ctx, ids, viewerID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}

	items := make([]*dto.FeedDTO, 0, len(feeds))
	for _, feed := range feeds {
		items = append(items, s.toFeedDTO(feed, viewerID))
	}
	return pagination.New(items, total, page, limit), nil
}

// GetFeed 单条详情，可见性规则见 model.Feed.VisibleTo
func (s *FeedServiceImpl) GetFeed(ctx context.Context, viewerID, feedID uint64) (*dto.FeedDTO, error) {
	feed, err := s.feedRepo.GetFeed(ctx, feedID, viewerID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if !feed.VisibleTo(viewerID) {
		return nil, ErrFeedNotFound
	}
	return s.toFeedDTO(feed, viewerID), nil
}

// CreateFeed 发布信息流，图片须为当前用户已上传的临时文件
func (s *FeedServiceImpl) CreateFeed(ctx context.Context, userID uint64, req *dto.CreateFeedDTO) (*dto.FeedDTO, error) {
	if len(req.Images) == 0 || len(req.Images) > s.cfg.MaxImages {
		return nil, ErrParamInvalid
	}
	tagNames := repository.NormalizeTagNames(req.TagNames)
	if len(tagNames) > s.cfg.MaxTags {
		return nil, ErrParamInvalid
	}

	images := make([]*model.FeedImage, 0, len(req.Images))
	seen := make(map[string]struct{}, len(req.Images))
	for _, img := range req.Images {
		if _, ok := seen[img.ImageURL]; ok {
			return nil, ErrParamInvalid
		}
		seen[img.ImageURL] = struct{}{}

		meta, err := s.mediaService.ResolveTemp(ctx, userID, img.ImageURL)
		if err != nil {
			return nil, err
		}
		images = append(images, &model.FeedImage{
			ImageURL:  img.ImageURL,
			SortOrder: img.SortOrder,
			Width:     meta.Width,
			Height:    meta.Height,
		})
	}
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].SortOrder < images[j].SortOrder
	})

	promoted := make([]string, 0, len(images))
	for _, img := range images {
		if err := s.mediaService.Promote(ctx, img.ImageURL); err != nil {
			s.mediaService.Remove(ctx, promoted)
			log.ErrorContext(ctx, "promote media failed", "object", img.ImageURL, "err", err)
			return nil, UnExpectedError
		}
		promoted = append(promoted, img.ImageURL)
	}

	feed := &model.Feed{
		UserID:          userID,
		Description:     strings.TrimSpace(req.Description),
		DisplayYn:       req.DisplayYn,
		ShowLikeCountYn: req.ShowLikeCountYn,
	}
	if err := s.feedRepo.CreateFeed(ctx, feed, images, tagNames); err != nil {
		s.mediaService.Remove(ctx, promoted)
		return nil, mapRepoErr(ctx, err)
	}
	return s.GetFeed(ctx, userID, feed.ID)
}

// UpdateFeed 修改描述并以提交的标签集合整体覆盖
func (s *FeedServiceImpl) UpdateFeed(ctx context.Context, userID, feedID uint64, req *dto.UpdateFeedDTO) (*dto.FeedDTO, error) {
	tagNames := repository.NormalizeTagNames(req.TagNames)
	if len(tagNames) > s.cfg.MaxTags {
		return nil, ErrParamInvalid
	}
	if _, err := s.ownedFeed(ctx, userID, feedID); err != nil {
		return nil, err
	}
	if err := s.feedRepo.UpdateFeed(ctx, feedID, strings.TrimSpace(req.Description), tagNames); err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	return s.GetFeed(ctx, userID, feedID)
}

// UpdateStatus 作者可在三种状态间切换，包括恢复已删除的信息流
func (s *FeedServiceImpl) UpdateStatus(ctx context.Context, userID, feedID uint64, status model.FeedStatus) error {
	if !status.Valid() {
		return ErrParamInvalid
	}
	feed, err := s.feedRepo.GetFeedByID(ctx, feedID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if feed.UserID != userID {
		return UnauthorizedError
	}
	return mapRepoErr(ctx, s.feedRepo.UpdateStatus(ctx, feedID, status))
}

func (s *FeedServiceImpl) UpdateShowLikeCount(ctx context.Context, userID, feedID uint64, yn model.YN) error {
	if !yn.Valid() {
		return ErrParamInvalid
	}
	if _, err := s.ownedFeed(ctx, userID, feedID); err != nil {
		return err
	}
	return mapRepoErr(ctx, s.feedRepo.UpdateShowLikeCount(ctx, feedID, yn))
}

func (s *FeedServiceImpl) UpdateDisplay(ctx context.Context, userID, feedID uint64, yn model.YN) error {
	if !yn.Valid() {
		return ErrParamInvalid
	}
	if _, err := s.ownedFeed(ctx, userID, feedID); err != nil {
		return err
	}
	return mapRepoErr(ctx, s.feedRepo.UpdateDisplay(ctx, feedID, yn))
}

// DeleteFeed 软删除
func (s *FeedServiceImpl) DeleteFeed(ctx context.Context, userID, feedID uint64) error {
	if _, err := s.ownedFeed(ctx, userID, feedID); err != nil {
		return err
	}
	return mapRepoErr(ctx, s.feedRepo.SoftDelete(ctx, feedID))
}

// HardDeleteFeed 物理删除信息流及其关联数据，提交后再清理对象存储
func (s *FeedServiceImpl) HardDeleteFeed(ctx context.Context, userID, feedID uint64) error {
	feed, err := s.feedRepo.GetFeed(ctx, feedID, 0)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if feed.UserID != userID {
		return UnauthorizedError
	}
	if err = s.feedRepo.HardDelete(ctx, feedID); err != nil {
		return mapRepoErr(ctx, err)
	}

	objects := make([]string, 0, len(feed.FeedImages))
	for _, img := range feed.FeedImages {
		objects = append(objects, img.ImageURL)
	}
	s.mediaService.Remove(ctx, objects)
	return nil
}

func (s *FeedServiceImpl) Like(ctx context.Context, userID, feedID uint64) error {
	if err := s.requireVisible(ctx, userID, feedID); err != nil {
		return err
	}
	return mapRepoErr(ctx, s.feedRepo.Like(ctx, userID, feedID))
}

func (s *FeedServiceImpl) Unlike(ctx context.Context, userID, feedID uint64) error {
	return mapRepoErr(ctx, s.feedRepo.Unlike(ctx, userID, feedID))
}

func (s *FeedServiceImpl) Bookmark(ctx context.Context, userID, feedID uint64) error {
	if err := s.requireVisible(ctx, userID, feedID); err != nil {
		return err
	}
	return mapRepoErr(ctx, s.feedRepo.Bookmark(ctx, userID, feedID))
}

func (s *FeedServiceImpl) Unbookmark(ctx context.Context, userID, feedID uint64) error {
	return mapRepoErr(ctx, s.feedRepo.Unbookmark(ctx, userID, feedID))
}

// ownedFeed 校验信息流存在、未删除且属于当前用户
func (s *FeedServiceImpl) ownedFeed(ctx context.Context, userID, feedID uint64) (*model.Feed, error) {
	feed, err := s.feedRepo.GetFeedByID(ctx, feedID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if feed.Status == model.FeedStatusDeleted {
		return nil, ErrFeedNotFound
	}
	if feed.UserID != userID {
		return nil, UnauthorizedError
	}
	return feed, nil
}

func (s *FeedServiceImpl) requireVisible(ctx context.Context, viewerID, feedID uint64) error {
	feed, err := s.feedRepo.GetFeedByID(ctx, feedID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if !feed.VisibleTo(viewerID) {
		return ErrFeedNotFound
	}
	return nil
}

func (s *FeedServiceImpl) toFeedPage(result *pagination.Result[*model.Feed], viewerID uint64) *pagination.Result[*dto.FeedDTO] {
	return pagination.Map(result, func(feed *model.Feed) *dto.FeedDTO {
		return s.toFeedDTO(feed, viewerID)
	})
}

// toFeedDTO 作者关闭点赞数展示时，仅作者本人可见点赞数
func (s *FeedServiceImpl) toFeedDTO(feed *model.Feed, viewerID uint64) *dto.FeedDTO {
	feedDTO := &dto.FeedDTO{}
	if err := copier.Copy(feedDTO, feed); err != nil {
		log.Warn("copy feed failed", "feed_id", feed.ID, "err", err)
	}

	if feed.ShowLikeCountYn.Bool() || (viewerID > 0 && viewerID == feed.UserID) {
		likeCount := feed.LikeCount
		feedDTO.LikeCount = &likeCount
	}

	feedDTO.Images = make([]*dto.FeedImageDTO, 0, len(feed.FeedImages))
	for _, img := range feed.FeedImages {
		feedDTO.Images = append(feedDTO.Images, &dto.FeedImageDTO{
			ImageURL:  s.mediaService.PublicURL(img.ImageURL),
			SortOrder: img.SortOrder,
			Width:     img.Width,
			Height:    img.Height,
		})
	}
	feedDTO.Tags = feed.TagNames()
	return feedDTO
}
