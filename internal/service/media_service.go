package service

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/pkg/consts"
	"Snapfeed/internal/pkg/redis"
	"bytes"
	"context"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MediaStorage 对象存储
type MediaStorage interface {
	UploadTemp(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Promote(ctx context.Context, objectName string) error
	RemoveTemp(ctx context.Context, objectName string) error
	Remove(ctx context.Context, objectName string) error
	PublicURL(objectName string) string
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
}

type MediaService interface {
	Upload(ctx context.Context, userID uint64, reader io.Reader, size int64) (*dto.MediaUploadDTO, error)
	ResolveTemp(ctx context.Context, userID uint64, objectName string) (*dto.MediaTempMetadata, error)
	Promote(ctx context.Context, objectName string) error
	Remove(ctx context.Context, objectNames []string)
	PublicURL(objectName string) string
	CleanupExpired(ctx context.Context) (int, error)
}

type MediaServiceImpl struct {
	storage   MediaStorage
	maxSize   int64
	expiresIn time.Duration
}

func NewMediaService(storage MediaStorage, maxSize int64, tempExpireHour int) MediaService {
	if tempExpireHour <= 0 {
		tempExpireHour = 24
	}
	return &MediaServiceImpl{
		storage:   storage,
		maxSize:   maxSize,
		expiresIn: time.Duration(tempExpireHour) * time.Hour,
	}
}

// Upload 校验图片并上传到临时桶，元数据记录在 MediaTempKey 中等待发布时引用
func (s *MediaServiceImpl) Upload(ctx context.Context, userID uint64, reader io.Reader, size int64) (*dto.MediaUploadDTO, error) {
	if size <= 0 {
		return nil, ErrFileNotExist
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(reader, size+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != size {
		return nil, ErrParamInvalid
	}

	mimeType := http.DetectContentType(data)
	ext, ok := imageExtensions[mimeType]
	if !ok || !strings.HasPrefix(mimeType, consts.MimePrefixImage) {
		return nil, ErrFileNotSupported
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrFileNotSupported
	}
	bounds := img.Bounds()

	objectName := fmt.Sprintf("feeds/%d/%s%s", userID, uuid.NewString(), ext)
	if err = s.storage.UploadTemp(ctx, objectName, bytes.NewReader(data), size, mimeType); err != nil {
		return nil, err
	}

	meta := dto.MediaTempMetadata{
		MimeType:  mimeType,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Size:      size,
		UserID:    userID,
		CreatedAt: time.Now().Unix(),
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	if err = redis.HSet(ctx, consts.MediaTempKey, objectName, string(metaJSON)); err != nil {
		_ = s.storage.RemoveTemp(ctx, objectName)
		return nil, err
	}

	return &dto.MediaUploadDTO{
		ObjectName: objectName,
		URL:        s.storage.PublicURL(objectName),
		MimeType:   mimeType,
		Width:      meta.Width,
		Height:     meta.Height,
		Size:       size,
	}, nil
}

// ResolveTemp 校验临时文件存在且属于当前用户
func (s *MediaServiceImpl) ResolveTemp(ctx context.Context, userID uint64, objectName string) (*dto.MediaTempMetadata, error) {
	value, err := redis.HGet(ctx, consts.MediaTempKey, objectName)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, ErrFileNotExist
	}
	var meta dto.MediaTempMetadata
	if err = json.Unmarshal([]byte(value), &meta); err != nil {
		return nil, ErrFileNotExist
	}
	if meta.UserID != userID {
		return nil, UnauthorizedError
	}
	return &meta, nil
}

// Promote 发布成功后转存到主桶并移除临时记录
func (s *MediaServiceImpl) Promote(ctx context.Context, objectName string) error {
	if err := s.storage.Promote(ctx, objectName); err != nil {
		return err
	}
	return redis.HDel(ctx, consts.MediaTempKey, objectName)
}

// Remove 删除主桶对象，失败仅记录日志
func (s *MediaServiceImpl) Remove(ctx context.Context, objectNames []string) {
	for _, name := range objectNames {
		if err := s.storage.Remove(ctx, name); err != nil {
			log.WarnContext(ctx, "remove media failed", "object", name, "err", err)
		}
	}
}

func (s *MediaServiceImpl) PublicURL(objectName string) string {
	return s.storage.PublicURL(objectName)
}

// CleanupExpired 清理超时未被引用的临时上传
func (s *MediaServiceImpl) CleanupExpired(ctx context.Context) (int, error) {
	allMedia, err := redis.HGetAll(ctx, consts.MediaTempKey)
	if err != nil {
		return 0, err
	}

	deadline := time.Now().Add(-s.expiresIn).Unix()
	count := 0
	for objectName, val := range allMedia {
		var meta dto.MediaTempMetadata
		if err = json.Unmarshal([]byte(val), &meta); err != nil {
			log.Warn("invalid media meta format", "object", objectName)
			_ = redis.HDel(ctx, consts.MediaTempKey, objectName)
			continue
		}
		if meta.CreatedAt > deadline {
			continue
		}
		if err = s.storage.RemoveTemp(ctx, objectName); err != nil {
			log.Error("failed to delete expired file", "object", objectName, "err", err)
			continue
		}
		if err = redis.HDel(ctx, consts.MediaTempKey, objectName); err != nil {
			log.Error("failed to remove media meta", "object", objectName, "err", err)
			continue
		}
		count++
	}
	return count, nil
}
