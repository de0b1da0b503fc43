package service

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/pkg/mongo"
	"Snapfeed/internal/pkg/pagination"
	"context"
	"errors"
	"time"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

type SysBoxService interface {
	Notify(ctx context.Context, msg *mongo.SysBoxModel) error
	GetNotificationList(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.SysBoxDTO, error)
	GetUnreadCount(ctx context.Context, userID uint64) (*dto.SysBoxUnreadDTO, error)
	MarkRead(ctx context.Context, userID uint64, msgID string) error
	MarkAllRead(ctx context.Context, userID uint64) (*dto.SysBoxReadAllDTO, error)
}

type sysBoxServiceImpl struct {
	sysBoxRepo  mongo.SysBoxRepo
	userService UserService
}

func NewSysBoxService(sysBox mongo.SysBoxRepo, userService UserService) SysBoxService {
	return &sysBoxServiceImpl{
		sysBoxRepo:  sysBox,
		userService: userService,
	}
}

// Notify 投递一条通知，自己对自己的操作不通知
func (s *sysBoxServiceImpl) Notify(ctx context.Context, msg *mongo.SysBoxModel) error {
	if msg.ReceiverID == 0 || msg.ReceiverID == msg.SenderID {
		return nil
	}
	return s.sysBoxRepo.CreateNotification(ctx, msg)
}

// GetNotificationList 获取通知列表并补全用户信息
func (s *sysBoxServiceImpl) GetNotificationList(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.SysBoxDTO, error) {
	page, pageSize = pagination.Normalize(page, pageSize)

	list, err := s.sysBoxRepo.GetNotificationList(ctx, userID, int64(pageSize), int64(pagination.Offset(page, pageSize)))
	if err != nil {
		return nil, err
	}

	senderIDs := make([]uint64, 0, len(list))
	for _, m := range list {
		if m.SenderID > 0 {
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	senders, err := s.userService.GetUserSimpleInfoByIds(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SysBoxDTO, 0, len(list))
	for _, m := range list {
		d := &dto.SysBoxDTO{}
		_ = copier.Copy(d, m)
		d.ID = m.ID.Hex()
		d.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)

		// SenderID 为 0 代表系统发送
		if m.SenderID == 0 {
			d.SenderName = "系统通知"
		} else if sender, ok := senders[m.SenderID]; ok {
			d.SenderName = sender.Username
		}
		res = append(res, d)
	}
	return res, nil
}

// GetUnreadCount 获取未读数
func (s *sysBoxServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (*dto.SysBoxUnreadDTO, error) {
	count, err := s.sysBoxRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.SysBoxUnreadDTO{UnreadCount: count}, nil
}

// MarkRead 只能标记发给自己的通知，已读的重复标记直接成功
func (s *sysBoxServiceImpl) MarkRead(ctx context.Context, userID uint64, msgID string) error {
	objectID, err := primitive.ObjectIDFromHex(msgID)
	if err != nil {
		return ErrParamInvalid
	}

	notice, err := s.sysBoxRepo.GetByID(ctx, objectID)
	if errors.Is(err, mongoDB.ErrNoDocuments) {
		return ErrSysBoxNotFound
	}
	if err != nil {
		return err
	}
	if notice.ReceiverID != userID {
		return UnauthorizedError
	}
	if notice.IsRead {
		return nil
	}

	err = s.sysBoxRepo.MarkAsRead(ctx, userID, objectID)
	if errors.Is(err, mongoDB.ErrNoDocuments) {
		return ErrSysBoxNotFound
	}
	return err
}

// MarkAllRead 一键已读
func (s *sysBoxServiceImpl) MarkAllRead(ctx context.Context, userID uint64) (*dto.SysBoxReadAllDTO, error) {
	n, err := s.sysBoxRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.SysBoxReadAllDTO{Updated: n}, nil
}
