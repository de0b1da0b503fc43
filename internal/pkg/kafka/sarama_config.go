package kafka

import (
	"Snapfeed/internal/api/config"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const defaultClientID = "snapfeed"

// newSaramaConfig 所有 Canal 消费组共用的 sarama.Config，位点由 handler 处理完后手动提交
func newSaramaConfig(kafkaCfg config.KafkaConfig) (*sarama.Config, error) {
	c := sarama.NewConfig()

	c.ClientID = defaultClientID
	if kafkaCfg.ClientID != "" {
		c.ClientID = kafkaCfg.ClientID
	}
	if kafkaCfg.Version != "" {
		version, err := sarama.ParseKafkaVersion(kafkaCfg.Version)
		if err != nil {
			return nil, errors.Wrap(err, "kafka.version")
		}
		c.Version = version
	}

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	offset, err := initialOffset(kafkaCfg.Consumer.InitialOffset)
	if err != nil {
		return nil, err
	}
	c.Consumer.Offsets.Initial = offset
	c.Consumer.Offsets.AutoCommit.Enable = false
	c.Consumer.Return.Errors = true

	c.Consumer.Group.Session.Timeout = seconds(kafkaCfg.Consumer.SessionTimeout, c.Consumer.Group.Session.Timeout)
	c.Consumer.Group.Heartbeat.Interval = seconds(kafkaCfg.Consumer.HeartbeatInterval, c.Consumer.Group.Heartbeat.Interval)
	c.Consumer.Group.Rebalance.Timeout = seconds(kafkaCfg.Consumer.RebalanceTimeout, c.Consumer.Group.Rebalance.Timeout)
	c.Consumer.MaxProcessingTime = seconds(kafkaCfg.Consumer.MaxProcessingTime, c.Consumer.MaxProcessingTime)

	if err = c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid kafka config")
	}
	return c, nil
}

// initialOffset 消费组首次加入时的起始位点，默认只消费新消息
func initialOffset(name string) (int64, error) {
	switch name {
	case "", "newest":
		return sarama.OffsetNewest, nil
	case "oldest":
		return sarama.OffsetOldest, nil
	default:
		return 0, fmt.Errorf("unknown kafka.consumer.initial_offset %q", name)
	}
}

// seconds 未配置时沿用 sarama 默认值
func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
