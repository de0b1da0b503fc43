package minio

import (
	"Snapfeed/internal/api/config"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Store 信息流图片存储，上传先落临时桶，发布时复制到主桶
type Store struct {
	client     *minio.Client
	mainBucket string
	tempBucket string
	publicBase string
}

func NewStore(client *minio.Client, cfg config.MinIOConfig) *Store {
	endpoint := cfg.ExternalEndpoint
	if endpoint == "" {
		endpoint = cfg.InternalEndpoint
	}
	protocol := "http"
	if cfg.UsePublicLink || cfg.InternalEndpoint == "" {
		protocol = "https"
	}
	return &Store{
		client:     client,
		mainBucket: cfg.MainBucket,
		tempBucket: cfg.TempBucket,
		publicBase: fmt.Sprintf("%s://%s", protocol, strings.TrimSuffix(endpoint, "/")),
	}
}

// UploadTemp 上传到临时桶
func (s *Store) UploadTemp(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.tempBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

// Promote 将临时对象复制到主桶并删除临时副本
func (s *Store) Promote(ctx context.Context, objectName string) error {
	dst := minio.CopyDestOptions{Bucket: s.mainBucket, Object: objectName}
	src := minio.CopySrcOptions{Bucket: s.tempBucket, Object: objectName}
	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("failed to promote file: %w", err)
	}
	// 临时桶有生命周期兜底
	_ = s.client.RemoveObject(ctx, s.tempBucket, objectName, minio.RemoveObjectOptions{})
	return nil
}

// RemoveTemp 删除临时桶中的对象
func (s *Store) RemoveTemp(ctx context.Context, objectName string) error {
	return s.remove(ctx, s.tempBucket, objectName)
}

// Remove 删除主桶中的对象
func (s *Store) Remove(ctx context.Context, objectName string) error {
	return s.remove(ctx, s.mainBucket, objectName)
}

// PublicURL 主桶对象的公共访问地址，已是完整地址时原样返回
func (s *Store) PublicURL(objectName string) string {
	if objectName == "" || strings.HasPrefix(objectName, "http://") || strings.HasPrefix(objectName, "https://") {
		return objectName
	}
	return fmt.Sprintf("%s/%s/%s", s.publicBase, s.mainBucket, objectName)
}

func (s *Store) remove(ctx context.Context, bucket, objectName string) error {
	err := s.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
