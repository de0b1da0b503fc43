package minio

import (
	"Snapfeed/internal/api/config"
	"context"
	"fmt"
	log "log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// Init 初始化 MinIO 客户端并返回对象存储
func Init(cfg config.MinIOConfig, tempExpireHour int) (*Store, error) {
	var endpoint string
	var useSSL bool
	if cfg.InternalEndpoint != "" {
		endpoint = cfg.InternalEndpoint
		useSSL = cfg.InternalUseSSL
	} else {
		endpoint = cfg.ExternalEndpoint
		useSSL = true
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	ctx := context.Background()
	if _, err = client.ListBuckets(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to minio server: %w", err)
	}

	store := NewStore(client, cfg)
	for _, bucket := range []string{store.mainBucket, store.tempBucket} {
		if err = ensureBucket(ctx, client, bucket); err != nil {
			return nil, err
		}
	}

	days := (tempExpireHour + 23) / 24
	if days < 1 {
		days = 1
	}
	if err = ensureTempBucketLifecycle(ctx, client, store.tempBucket, days); err != nil {
		return nil, err
	}
	log.Info("MinIO initialized successfully", "main", store.mainBucket, "temp", store.tempBucket)
	return store, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", bucket, err)
	}
	return nil
}

// ensureTempBucketLifecycle 临时桶兜底过期策略，未被引用的上传最终由存储侧清理
func ensureTempBucketLifecycle(ctx context.Context, client *minio.Client, bucket string, days int) error {
	lcConfig, err := client.GetBucketLifecycle(ctx, bucket)
	if err != nil {
		lcConfig = lifecycle.NewConfiguration()
	}

	for _, rule := range lcConfig.Rules {
		// 状态开启 + 全桶匹配 + 过期天数一致
		if rule.Status == "Enabled" &&
			int(rule.Expiration.Days) == days &&
			rule.RuleFilter.Prefix == "" {
			log.Info("temp bucket lifecycle rule exists", "ruleID", rule.ID)
			return nil
		}
	}

	lcConfig.Rules = append(lcConfig.Rules, lifecycle.Rule{
		ID:     "SnapfeedTempExpire",
		Status: "Enabled",
		Expiration: lifecycle.Expiration{
			Days: lifecycle.ExpirationDays(days),
		},
	})
	if err = client.SetBucketLifecycle(ctx, bucket, lcConfig); err != nil {
		return fmt.Errorf("设置生命周期失败: %w", err)
	}
	log.Info("temp bucket lifecycle rule created", "days", days)
	return nil
}
