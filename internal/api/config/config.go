package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("SNAPFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", 10)
	v.SetDefault("server.max_body_bytes", 24<<20)
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 100)
	v.SetDefault("database.max_lifetime", 60)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("jwt.issuer", "Snapfeed")
	v.SetDefault("jwt.expire_hour", 24)
	v.SetDefault("elastic.indices.feed_index", "snapfeed_feeds")
	v.SetDefault("mongo.database", "snapfeed")
	v.SetDefault("mongo.max_pool_size", 50)
	v.SetDefault("mongo.connect_timeout", 10)
	v.SetDefault("kafka.client_id", "snapfeed")
	v.SetDefault("kafka.consumer.initial_offset", "newest")
	v.SetDefault("cron.counter_repair", "0 30 4 * * *")
	v.SetDefault("cron.media_cleanup", "0 0 * * * *")
	v.SetDefault("cron.popular_tags", "0 */10 * * * *")
	v.SetDefault("feed.max_images", 10)
	v.SetDefault("feed.max_tags", 30)
	v.SetDefault("feed.popular_tag_size", 20)
	v.SetDefault("pagination.default_limit", 10)
	v.SetDefault("pagination.max_limit", 100)
	v.SetDefault("media.temp_expire_hour", 24)
	v.SetDefault("media.max_upload_size", 20<<20)
	v.SetDefault("notification.collection", "sys_box")
	v.SetDefault("notification.retention_days", 90)
}
