package mongo

import (
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/pkg/logger"
	"context"
	log "log/slog"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const appName = "snapfeed"

// InitMongo 连接系统通知所在的库，连不上时直接返回错误
func InitMongo(cfg config.MongoConfig) (*mongo.Database, error) {
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions(cfg, timeout))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "mongo ping")
	}

	log.Info("MongoDB initialized successfully", "db", cfg.Database, "max_pool_size", cfg.MaxPoolSize)
	return client.Database(cfg.Database), nil
}

func clientOptions(cfg config.MongoConfig, timeout time.Duration) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetAppName(appName).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMonitor(logger.NewMongoMonitor())
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	return opts
}

// Close 断开 Database 所属的客户端
func Close(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	return db.Client().Disconnect(ctx)
}
