package es

import (
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/pkg/logger"
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

const (
	DefaultFeedIndex = "snapfeed_feeds"
	connectTimeout   = 5 * time.Second
)

// InitClient 创建带日志 Transport 的 TypedClient，并确认集群可达
func InitClient(elasticCfg config.ElasticConfig) (*elasticsearch.TypedClient, error) {
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: []string{elasticCfg.Address},
		Username:  elasticCfg.Username,
		Password:  elasticCfg.Password,
		Transport: &logger.ESTransport{Transport: http.DefaultTransport},
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	info, err := client.Info().Do(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("Connected to Elasticsearch",
		"cluster", info.ClusterName,
		"version", info.Version.Int,
		"feed_index", elasticCfg.Indices.FeedIndex,
	)
	return client, nil
}

// hasStatus 判断 ES 返回的错误状态码
func hasStatus(err error, status int) bool {
	var e *types.ElasticsearchError
	return errors.As(err, &e) && e.Status == status
}
