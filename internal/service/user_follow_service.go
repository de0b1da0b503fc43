package service

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/model"
	"Snapfeed/internal/pkg/consts"
	"Snapfeed/internal/pkg/pagination"
	"Snapfeed/internal/pkg/redis"
	"Snapfeed/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

const (
	MaxFollowingCount  = 5000
	followingCacheTTL  = time.Hour
	followingCacheMark = "0" // 空集合占位，区分 "无关注" 与 "未缓存"
)

type UserFollowService interface {
	Follow(ctx context.Context, userID, followeeID uint64) error
	Unfollow(ctx context.Context, userID, followeeID uint64) error
	GetFollowers(ctx context.Context, userID uint64, page, limit int) (*pagination.Result[*dto.FollowUserDTO], error)
	GetFollowing(ctx context.Context, userID uint64, page, limit int) (*pagination.Result[*dto.FollowUserDTO], error)
	GetFollowerCount(ctx context.Context, userID uint64) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint64) (int64, error)
	GetFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
	Block(ctx context.Context, userID, blockedUserID uint64) error
	Unblock(ctx context.Context, userID, blockedUserID uint64) error
	GetBlockedUserIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

type UserFollowServiceImpl struct {
	userRepo       repository.UserRepo
	userFollowRepo repository.UserFollowRepo
	userBlockRepo  repository.UserBlockRepo
}

func NewUserFollowService(userRepo repository.UserRepo, userFollowRepo repository.UserFollowRepo, userBlockRepo repository.UserBlockRepo) UserFollowService {
	return &UserFollowServiceImpl{
		userRepo:       userRepo,
		userFollowRepo: userFollowRepo,
		userBlockRepo:  userBlockRepo,
	}
}

type fetchFollowFunc func(ctx context.Context, userID uint64, limit, offset int) ([]*model.MapperUserFollow, error)
type fetchCountFunc func(ctx context.Context, userID uint64) (int64, error)

func (s *UserFollowServiceImpl) Follow(ctx context.Context, userID, followeeID uint64) error {
	if userID == followeeID {
		return ErrUserFollowSelf
	}
	if err := s.requireActiveUser(ctx, followeeID); err != nil {
		return err
	}

	// 任意一方拉黑都不允许关注
	blocked, err := s.userBlockRepo.IsBlocked(ctx, followeeID, userID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if !blocked {
		blocked, err = s.userBlockRepo.IsBlocked(ctx, userID, followeeID)
		if err != nil {
			return mapRepoErr(ctx, err)
		}
	}
	if blocked {
		return ErrUserFollowBlocked
	}

	count, err := s.userFollowRepo.GetUserFollowingCount(ctx, userID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if count >= MaxFollowingCount {
		return ErrParamInvalid
	}

	exist, err := s.userFollowRepo.GetUserFollow(ctx, userID, followeeID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if exist != nil {
		return ErrUserFollowExist
	}

	err = s.userFollowRepo.CreateUserFollow(ctx, &model.MapperUserFollow{
		FollowerID: userID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	s.evictFollowing(ctx, userID)
	return nil
}

func (s *UserFollowServiceImpl) Unfollow(ctx context.Context, userID, followeeID uint64) error {
	affected, err := s.userFollowRepo.DeleteUserFollow(ctx, userID, followeeID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if affected == 0 {
		return ErrActionNotFound
	}
	s.evictFollowing(ctx, userID)
	return nil
}

func (s *UserFollowServiceImpl) GetFollowers(ctx context.Context, userID uint64, page, limit int) (*pagination.Result[*dto.FollowUserDTO], error) {
	return s.listCommon(ctx, userID, page, limit, true, s.userFollowRepo.GetUserFollowers, s.userFollowRepo.GetUserFollowerCount)
}

func (s *UserFollowServiceImpl) GetFollowing(ctx context.Context, userID uint64, page, limit int) (*pagination.Result[*dto.FollowUserDTO], error) {
	return s.listCommon(ctx, userID, page, limit, false, s.userFollowRepo.GetUserFollowing, s.userFollowRepo.GetUserFollowingCount)
}

func (s *UserFollowServiceImpl) GetFollowerCount(ctx context.Context, userID uint64) (int64, error) {
	count, err := s.userFollowRepo.GetUserFollowerCount(ctx, userID)
	return count, mapRepoErr(ctx, err)
}

func (s *UserFollowServiceImpl) GetFollowingCount(ctx context.Context, userID uint64) (int64, error) {
	count, err := s.userFollowRepo.GetUserFollowingCount(ctx, userID)
	return count, mapRepoErr(ctx, err)
}

// GetFollowingIDs 关注的用户ID，优先读取缓存
func (s *UserFollowServiceImpl) GetFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	key := consts.UserFollowingKey + strconv.FormatUint(userID, 10)
	members, err := redis.ZMembers(ctx, key)
	if err == nil && len(members) > 0 {
		ids := make([]uint64, 0, len(members))
		for _, m := range members {
			if m == followingCacheMark {
				continue
			}
			id, err := strconv.ParseUint(m, 10, 64)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	if err != nil {
		log.WarnContext(ctx, "following cache read failed", "user_id", userID, "err", err)
	}

	// 先记下版本号再读库，回写后版本号变化说明期间发生过失效
	verKey := consts.UserFollowingVer + strconv.FormatUint(userID, 10)
	version, verErr := redis.GetValue(ctx, verKey)

	ids, err := s.userFollowRepo.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if verErr == nil {
		s.cacheFollowingIDs(ctx, userID, version, ids)
	}
	return ids, nil
}

// cacheFollowingIDs 回写关注ID缓存，若版本号已被失效操作推进则删除刚写入的旧数据
func (s *UserFollowServiceImpl) cacheFollowingIDs(ctx context.Context, userID uint64, version string, ids []uint64) {
	key := consts.UserFollowingKey + strconv.FormatUint(userID, 10)
	zMembers := make([]redisv9.Z, 0, len(ids)+1)
	zMembers = append(zMembers, redisv9.Z{Score: 0, Member: followingCacheMark})
	for _, id := range ids {
		zMembers = append(zMembers, redisv9.Z{Score: float64(id), Member: strconv.FormatUint(id, 10)})
	}
	if err := redis.ReplaceZSet(ctx, key, zMembers, followingCacheTTL); err != nil {
		log.WarnContext(ctx, "following cache write failed", "user_id", userID, "err", err)
		return
	}

	current, err := redis.GetValue(ctx, consts.UserFollowingVer+strconv.FormatUint(userID, 10))
	if err == nil && current == version {
		return
	}
	if err = redis.DeleteKey(ctx, key); err != nil {
		log.WarnContext(ctx, "drop stale following cache failed", "user_id", userID, "err", err)
	}
}

func (s *UserFollowServiceImpl) Block(ctx context.Context, userID, blockedUserID uint64) error {
	if userID == blockedUserID {
		return ErrUserBlockSelf
	}
	user, err := s.userRepo.GetUserById(ctx, blockedUserID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	blocked, err := s.userBlockRepo.IsBlocked(ctx, userID, blockedUserID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if blocked {
		return ErrActionDuplicate
	}
	if err = s.userBlockRepo.Block(ctx, userID, blockedUserID); err != nil {
		return mapRepoErr(ctx, err)
	}
	// 拉黑会同时解除双向关注
	s.evictFollowing(ctx, userID, blockedUserID)
	return nil
}

func (s *UserFollowServiceImpl) Unblock(ctx context.Context, userID, blockedUserID uint64) error {
	affected, err := s.userBlockRepo.Unblock(ctx, userID, blockedUserID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if affected == 0 {
		return ErrActionNotFound
	}
	return nil
}

func (s *UserFollowServiceImpl) GetBlockedUserIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids, err := s.userBlockRepo.GetBlockedUserIDs(ctx, userID)
	return ids, mapRepoErr(ctx, err)
}

func (s *UserFollowServiceImpl) listCommon(
	ctx context.Context,
	userID uint64,
	page, limit int,
	isFollowerList bool,
	fetchDB fetchFollowFunc,
	countDB fetchCountFunc,
) (*pagination.Result[*dto.FollowUserDTO], error) {
	page, limit = pagination.Normalize(page, limit)

	total, err := countDB(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if total == 0 || int64(pagination.Offset(page, limit)) >= total {
		return pagination.New[*dto.FollowUserDTO](nil, total, page, limit), nil
	}
	rows, err := fetchDB(ctx, userID, limit, pagination.Offset(page, limit))
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}

	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, s.otherSide(row, isFollowerList))
	}
	names, err := s.usernames(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.FollowUserDTO, 0, len(rows))
	for _, row := range rows {
		id := s.otherSide(row, isFollowerList)
		items = append(items, &dto.FollowUserDTO{
			UserID:     id,
			Username:   names[id],
			FollowedAt: row.CreatedAt,
		})
	}
	return pagination.New(items, total, page, limit), nil
}

func (s *UserFollowServiceImpl) otherSide(row *model.MapperUserFollow, isFollowerList bool) uint64 {
	if isFollowerList {
		return row.FollowerID
	}
	return row.FolloweeID
}

func (s *UserFollowServiceImpl) usernames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	names := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	users, err := s.userRepo.GetUserByIds(ctx, ids)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

func (s *UserFollowServiceImpl) requireActiveUser(ctx context.Context, userID uint64) error {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if user == nil || user.Status == model.UserStatusDeleted {
		return ErrUserNotFound
	}
	return nil
}

// evictFollowing 失效关注ID缓存
func (s *UserFollowServiceImpl) evictFollowing(ctx context.Context, userIDs ...uint64) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		uid := strconv.FormatUint(id, 10)
		if _, err := redis.Incr(ctx, consts.UserFollowingVer+uid); err != nil {
			log.WarnContext(ctx, "bump following cache version failed", "user_id", id, "err", err)
		}
		keys = append(keys, consts.UserFollowingKey+uid)
	}
	if err := redis.DeleteKey(ctx, keys...); err != nil {
		log.WarnContext(ctx, "evict following cache failed", "keys", keys, "err", err)
	}
}
