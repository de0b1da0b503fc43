package wire

import (
	"Snapfeed/internal/api"
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/api/handler"
	"Snapfeed/internal/job"
	"Snapfeed/internal/pkg/cron"
	"Snapfeed/internal/pkg/es"
	"Snapfeed/internal/pkg/kafka"
	"Snapfeed/internal/pkg/minio"
	"Snapfeed/internal/pkg/mongo"
	"Snapfeed/internal/repository"
	"Snapfeed/internal/service"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
	SysBoxRepo   mongo.SysBoxRepo
	FeedESRepo   es.FeedRepo
}

// BuildApplication 组装依赖，esClient 为 nil 时关闭搜索与索引同步
func BuildApplication(
	db *gorm.DB,
	mongoConn *mongoDB.Database,
	esClient *elasticsearch.TypedClient,
	store *minio.Store,
	cfg *config.Config,
) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	userFollowRepo := repository.NewUserFollowRepo(db)
	userBlockRepo := repository.NewUserBlockRepo(db)
	feedRepo := repository.NewFeedRepo(db)
	tagRepo := repository.NewTagRepository(db)
	commentRepo := repository.NewCommentRepo(db)
	counterRepo := repository.NewCounterRepo(db)
	sysBoxRepo := mongo.NewSysBoxRepo(mongoConn, cfg.Notification.Collection, time.Duration(cfg.Notification.RetentionDays)*24*time.Hour)

	var feedESRepo es.FeedRepo
	var searcher service.FeedSearcher
	if esClient != nil {
		feedESRepo = es.NewFeedRepo(esClient, cfg.Elastic.Indices.FeedIndex)
		searcher = feedESRepo
	}

	userFollowService := service.NewUserFollowService(userRepo, userFollowRepo, userBlockRepo)
	userService := service.NewUserService(userRepo, userFollowService)
	mediaService := service.NewMediaService(store, cfg.Media.MaxUploadSize, cfg.Media.TempExpireHour)
	tagService := service.NewTagService(tagRepo, cfg.Feed.PopularTagSize)
	feedService := service.NewFeedService(feedRepo, tagRepo, userRepo, userFollowService, mediaService, searcher, cfg.Feed)
	commentService := service.NewCommentService(commentRepo, feedRepo, userService)
	sysBoxService := service.NewSysBoxService(sysBoxRepo, userService)

	handlers := &api.HandlersGroup{
		UserHandler:       handler.NewUserHandler(userService),
		UserFollowHandler: handler.NewUserFollowHandler(userFollowService),
		FeedHandler:       handler.NewFeedHandler(feedService),
		CommentHandler:    handler.NewCommentHandler(commentService),
		TagHandler:        handler.NewTagHandler(tagService),
		MediaHandler:      handler.NewMediaHandler(mediaService),
		SysBoxHandler:     handler.NewSysBoxHandler(sysBoxService),
	}

	router := api.SetupRouter(handlers, cfg.Server)
	router.MaxMultipartMemory = cfg.Media.MaxUploadSize

	cronMgr := cron.NewCronManager(
		cfg.Cron,
		job.NewCounterRepairJob(counterRepo),
		job.NewMediaCleanupJob(mediaService),
		job.NewPopularTagsJob(tagService),
	)

	var kafkaMgr *kafka.ConsumerManager
	if len(cfg.Kafka.Brokers) > 0 {
		var err error
		kafkaMgr, err = kafka.NewConsumerManager(cfg, feedESRepo, feedRepo, userRepo, commentRepo, sysBoxService)
		if err != nil {
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
		SysBoxRepo:   sysBoxRepo,
		FeedESRepo:   feedESRepo,
	}, nil
}
