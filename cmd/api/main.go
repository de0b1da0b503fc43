package main

import (
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/pkg/cron"
	"Snapfeed/internal/pkg/database"
	"Snapfeed/internal/pkg/es"
	"Snapfeed/internal/pkg/logger"
	"Snapfeed/internal/pkg/minio"
	"Snapfeed/internal/pkg/mongo"
	"Snapfeed/internal/pkg/pagination"
	"Snapfeed/internal/pkg/redis"
	"Snapfeed/internal/pkg/security"
	"Snapfeed/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 加载配置
	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		panic(err)
	}
	cfg := config.Cfg

	// 初始化日志
	logger.InitLogger(cfg.Logstash)
	security.InitJWT(cfg.JWT)
	pagination.SetLimits(cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)

	// 数据库连接
	dbCfg := cfg.DB
	db, err := database.NewGormDB(&dbCfg)
	if err != nil {
		log.Error("Fatal error: failed to create database connection", "err", err)
		panic(err)
	}

	// Redis 连接
	err = redis.InitRedis(cfg.Redis)
	if err != nil {
		log.Error("Fatal error: failed to create redis connection", "err", err)
		panic(err)
	}

	// Mongo 连接
	mongoConn, err := mongo.InitMongo(cfg.Mongo)
	if err != nil {
		log.Error("Fatal error: failed to create mongo connection", "err", err)
		panic(err)
	}

	// MinIO 连接
	store, err := minio.Init(cfg.MinIO, cfg.Media.TempExpireHour)
	if err != nil {
		log.Error("Fatal error: failed to initialize MinIO", "err", err)
		panic(err)
	}

	// ElasticSearch 连接，失败时仅关闭搜索
	var esClient *elasticsearch.TypedClient
	if cfg.Elastic.Address != "" {
		esClient, err = es.InitClient(cfg.Elastic)
		if err != nil {
			log.Warn("ElasticSearch unavailable, feed search disabled", "err", err)
			esClient = nil
		}
	}

	// 依赖注入
	app, err := wire.BuildApplication(db, mongoConn, esClient, store, cfg)
	if err != nil {
		log.Error("Fatal error: failed to create application", "err", err)
		panic(err)
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err = app.SysBoxRepo.EnsureIndexes(initCtx); err != nil {
		log.Warn("failed to ensure sys box indexes", "err", err)
	}
	if app.FeedESRepo != nil {
		if err = app.FeedESRepo.EnsureIndex(initCtx); err != nil {
			log.Warn("failed to ensure feed index", "err", err)
		}
	}
	initCancel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// 定时任务
	g.Go(func() error {
		return cron.Run(ctx, app.CronMgr)
	})

	// Kafka 消费者
	if app.KafkaManager != nil {
		g.Go(func() error {
			log.Info("Kafka Consumers starting...")
			return app.KafkaManager.Start(ctx)
		})
	}

	// HTTP 服务器
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: app.Router,
	}
	g.Go(func() error {
		log.Info("HTTP Server starting...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-ctx.Done():
		case sig := <-quit:
			log.Info("Received signal, shutting down...", "signal", sig)
			cancel()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP Server shutdown failed", "err", err)
		}
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("App exited with error", "err", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err = mongo.Close(closeCtx, mongoConn); err != nil {
		log.Warn("failed to disconnect mongo", "err", err)
	}
	closeCancel()
	log.Info("App exited successfully.")
}
