package kafka

import (
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/pkg/es"
	"Snapfeed/internal/repository"
	"Snapfeed/internal/service"
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

// 消费失败后的重试间隔
var (
	consumeRetryBase = time.Second
	consumeRetryMax  = 30 * time.Second
)

type consumer struct {
	name    string
	topic   string
	group   sarama.ConsumerGroup
	handler sarama.ConsumerGroupHandler
}

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	consumers []*consumer
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	feedESRepo es.FeedRepo,
	feedDBRepo repository.FeedRepo,
	userDBRepo repository.UserRepo,
	commentDBRepo repository.CommentRepo,
	sysBoxService service.SysBoxService,
) (*ConsumerManager, error) {
	saramaCfg, err := newSaramaConfig(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	type consumerSpec struct {
		name    string
		topic   config.KafkaTopicConsumer
		handler sarama.ConsumerGroupHandler
	}
	specs := []consumerSpec{
		{"feed-like", cfg.KafkaFeedLikeConsumer, NewFeedLikesHandler(feedDBRepo, sysBoxService)},
		{"comment", cfg.KafkaCommentConsumer, NewCommentsHandler(feedDBRepo, commentDBRepo, sysBoxService)},
		{"user-follow", cfg.KafkaUserFollowConsumer, NewUserFollowsHandler(sysBoxService)},
	}
	// 搜索不可用时不同步索引，积压的变更在恢复后由 Kafka 重新投递
	if feedESRepo != nil {
		specs = append(specs, consumerSpec{"feed", cfg.KafkaFeedConsumer, NewFeedsHandler(feedDBRepo, userDBRepo, feedESRepo)})
	}

	m := &ConsumerManager{}
	for _, spec := range specs {
		if spec.topic.Topic == "" {
			log.Warn("kafka topic not configured, consumer skipped", "name", spec.name)
			continue
		}
		group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, spec.topic.GroupID, saramaCfg)
		if err != nil {
			m.close()
			return nil, err
		}
		m.consumers = append(m.consumers, &consumer{
			name:    spec.name,
			topic:   spec.topic.Topic,
			group:   group,
			handler: spec.handler,
		})
	}
	return m, nil
}

// Start 启动所有消费者，ctx 结束后关闭并返回
func (m *ConsumerManager) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, c := range m.consumers {
		wg.Add(1)
		go func(c *consumer) {
			defer wg.Done()
			log.Info("consumer started", "name", c.name, "topic", c.topic)
			c.run(ctx)
		}(c)
	}

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")
	m.close()
	wg.Wait()
	return nil
}

func (m *ConsumerManager) close() {
	for _, c := range m.consumers {
		if err := c.group.Close(); err != nil {
			log.Error("Failed to close consumer", "name", c.name, "err", err)
		}
	}
}

// run 循环消费，连续出错时按指数退避重试，避免 broker 不可达时空转
func (c *consumer) run(ctx context.Context) {
	delay := consumeRetryBase
	for {
		err := c.group.Consume(ctx, []string{c.topic}, c.handler)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			delay = consumeRetryBase
			continue
		}

		log.Error("Error from consumer", "name", c.name, "err", err, "retry_in", delay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, consumeRetryMax)
	}
}
