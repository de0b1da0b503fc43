package config

// Config 配置主体
type Config struct {
	Server                  ServerConfig       `mapstructure:"server"`
	DB                      DBConfig           `mapstructure:"database"`
	Redis                   RedisConfig        `mapstructure:"redis"`
	Logstash                LogstashConfig     `mapstructure:"logstash"`
	JWT                     JWTConfig          `mapstructure:"jwt"`
	MinIO                   MinIOConfig        `mapstructure:"minio"`
	Elastic                 ElasticConfig      `mapstructure:"elastic"`
	Mongo                   MongoConfig        `mapstructure:"mongo"`
	Cron                    CronConfig         `mapstructure:"cron"`
	Kafka                   KafkaConfig        `mapstructure:"kafka"`
	KafkaFeedConsumer       KafkaTopicConsumer `mapstructure:"kafka_feed_consumer"`
	KafkaFeedLikeConsumer   KafkaTopicConsumer `mapstructure:"kafka_feed_like_consumer"`
	KafkaCommentConsumer    KafkaTopicConsumer `mapstructure:"kafka_comment_consumer"`
	KafkaUserFollowConsumer KafkaTopicConsumer `mapstructure:"kafka_user_follow_consumer"`
	Feed                    FeedConfig         `mapstructure:"feed"`
	Pagination              PaginationConfig   `mapstructure:"pagination"`
	Media                   MediaConfig        `mapstructure:"media"`
	Notification            NotificationConfig `mapstructure:"notification"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	RequestTimeout int      `mapstructure:"request_timeout"` // 秒
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
	AllowOrigins   []string `mapstructure:"allow_origins"` // 为空时允许任意来源
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Issuer     string `mapstructure:"issuer"`
	ExpireHour int    `mapstructure:"expire_hour"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MainBucket       string `mapstructure:"main_bucket"`
	TempBucket       string `mapstructure:"temp_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	UsePublicLink    bool   `mapstructure:"use_public_link"`
}

// ElasticConfig Elastic配置
type ElasticConfig struct {
	Address  string         `mapstructure:"address"`
	Username string         `mapstructure:"username"`
	Password string         `mapstructure:"password"`
	Indices  ElasticIndices `mapstructure:"indices"`
}

// ElasticIndices Elastic索引
type ElasticIndices struct {
	FeedIndex string `mapstructure:"feed_index"`
}

type MongoConfig struct {
	URL            string `mapstructure:"url"`
	Database       string `mapstructure:"database"`
	MaxPoolSize    uint64 `mapstructure:"max_pool_size"`
	ConnectTimeout int    `mapstructure:"connect_timeout"`
}

// CronConfig 定时任务表达式
type CronConfig struct {
	CounterRepair string `mapstructure:"counter_repair"`
	MediaCleanup  string `mapstructure:"media_cleanup"`
	PopularTags   string `mapstructure:"popular_tags"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Version  string         `mapstructure:"version"`
	ClientID string         `mapstructure:"client_id"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
	// InitialOffset newest 或 oldest
	InitialOffset string `mapstructure:"initial_offset"`
}

type KafkaTopicConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// FeedConfig 帖子相关限制
type FeedConfig struct {
	MaxImages      int `mapstructure:"max_images"`
	MaxTags        int `mapstructure:"max_tags"`
	PopularTagSize int `mapstructure:"popular_tag_size"`
}

// PaginationConfig 分页默认值
type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type MediaConfig struct {
	TempExpireHour int   `mapstructure:"temp_expire_hour"`
	MaxUploadSize  int64 `mapstructure:"max_upload_size"`
}

type NotificationConfig struct {
	Collection string `mapstructure:"collection"`
	// RetentionDays 为 0 时不清理
	RetentionDays int `mapstructure:"retention_days"`
}
