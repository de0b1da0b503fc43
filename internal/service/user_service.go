package service

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/model"
	"Snapfeed/internal/pkg/consts"
	"Snapfeed/internal/pkg/redis"
	"Snapfeed/internal/pkg/security"
	"Snapfeed/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

const userSimpleInfoTTL = time.Hour

type UserService interface {
	Register(ctx context.Context, dto *dto.RegisterDTO) (*dto.UserDTO, error)
	Login(ctx context.Context, dto *dto.CredentialDTO) (*dto.TokenDTO, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error)
	GetUserSimpleInfoByIds(ctx context.Context, ids []uint64) (map[uint64]*dto.UserDTO, error)
	CancelUser(ctx context.Context, id uint64) error
}

type UserServiceImpl struct {
	userRepo          repository.UserRepo
	userFollowService UserFollowService
}

func NewUserService(userRepo repository.UserRepo, userFollowService UserFollowService) UserService {
	return &UserServiceImpl{
		userRepo:          userRepo,
		userFollowService: userFollowService,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) (*dto.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(regDTO.Email))
	exist, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if exist != nil {
		return nil, ErrUserExist
	}
	exist, err = s.userRepo.GetUserByUsername(ctx, regDTO.Username)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if exist != nil {
		return nil, ErrUserExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		Username:     regDTO.Username,
		PasswordHash: passwordHash,
		Gender:       regDTO.Gender,
	}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if repository.IsDuplicate(err) {
			return nil, ErrUserExist
		}
		return nil, mapRepoErr(ctx, err)
	}
	return s.toUserDTO(user, 0, 0)
}

func (s *UserServiceImpl) Login(ctx context.Context, credential *dto.CredentialDTO) (*dto.TokenDTO, error) {
	account := strings.TrimSpace(credential.Account)

	var user *model.User
	var err error
	if strings.Contains(account, "@") {
		user, err = s.userRepo.GetUserByEmail(ctx, strings.ToLower(account))
	} else {
		user, err = s.userRepo.GetUserByUsername(ctx, account)
	}
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if user == nil || user.Status == model.UserStatusDeleted {
		return nil, ErrUserNotFound
	}
	if user.Status == model.UserStatusBanned {
		return nil, ErrUserBanned
	}
	if err = security.CheckPasswordHash(credential.Password, user.PasswordHash); err != nil {
		return nil, ErrPasswordIncorrect
	}
	if security.NeedsRehash(user.PasswordHash) {
		s.rehashPassword(ctx, user.ID, credential.Password)
	}

	token, err := security.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenDTO{
		Token:     token,
		ExpiresIn: int64(security.JWTExpirationTime.Seconds()),
	}, nil
}

// Logout 将 Token 签名加入黑名单直至其自然过期
// rehashPassword 成本调整后在登录时顺带升级旧哈希，失败不影响登录
func (s *UserServiceImpl) rehashPassword(ctx context.Context, userID uint64, password string) {
	hash, err := security.HashPassword(password)
	if err == nil {
		err = s.userRepo.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		log.WarnContext(ctx, "rehash password failed", "user_id", userID, "err", err)
	}
}

func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := security.ValidateToken(token)
	if err != nil {
		return UnauthorizedError
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return UnauthorizedError
	}
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return nil
	}
	return redis.SetWithExpiration(ctx, consts.TokenBlacklistKey+signature, 1, ttl)
}

func (s *UserServiceImpl) GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if user == nil || user.Status == model.UserStatusDeleted {
		return nil, ErrUserNotFound
	}
	following, err := s.userFollowService.GetFollowingCount(ctx, id)
	if err != nil {
		return nil, err
	}
	followers, err := s.userFollowService.GetFollowerCount(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toUserDTO(user, following, followers)
}

// GetUserSimpleInfoByIds 批量获取用户简要信息，先读缓存再回源
func (s *UserServiceImpl) GetUserSimpleInfoByIds(ctx context.Context, ids []uint64) (map[uint64]*dto.UserDTO, error) {
	mp := make(map[uint64]*dto.UserDTO, len(ids))
	newIds := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := mp[id]; ok {
			continue
		}
		value, err := redis.GetValue(ctx, consts.UserSimpleInfoKey+strconv.FormatUint(id, 10))
		if err != nil || value == "" {
			newIds = append(newIds, id)
			continue
		}
		userDTO := &dto.UserDTO{}
		if err = json.Unmarshal([]byte(value), userDTO); err != nil {
			newIds = append(newIds, id)
			continue
		}
		mp[id] = userDTO
	}
	if len(newIds) == 0 {
		return mp, nil
	}

	users, err := s.userRepo.GetUserByIds(ctx, newIds)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	for _, user := range users {
		userDTO := &dto.UserDTO{
			ID:       user.ID,
			Username: user.Username,
			Status:   user.Status,
		}
		mp[user.ID] = userDTO
		jsonStr, err := json.Marshal(userDTO)
		if err != nil {
			continue
		}
		key := consts.UserSimpleInfoKey + strconv.FormatUint(user.ID, 10)
		if err = redis.SetWithExpiration(ctx, key, string(jsonStr), userSimpleInfoTTL); err != nil {
			log.WarnContext(ctx, "cache user simple info failed", "user_id", user.ID, "err", err)
		}
	}
	return mp, nil
}

// CancelUser 注销账号
func (s *UserServiceImpl) CancelUser(ctx context.Context, id uint64) error {
	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		return mapRepoErr(ctx, err)
	}
	keys := []string{
		consts.UserSimpleInfoKey + strconv.FormatUint(id, 10),
		consts.UserFollowingKey + strconv.FormatUint(id, 10),
	}
	if err := redis.DeleteKey(ctx, keys...); err != nil {
		log.WarnContext(ctx, "evict user cache failed", "user_id", id, "err", err)
	}
	return nil
}

func (s *UserServiceImpl) toUserDTO(user *model.User, following, followers int64) (*dto.UserDTO, error) {
	userDTO := &dto.UserDTO{}
	if err := copier.Copy(userDTO, user); err != nil {
		return nil, err
	}
	userDTO.FollowingCount = following
	userDTO.FollowerCount = followers
	return userDTO, nil
}
