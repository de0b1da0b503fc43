package kafka

import (
	"Snapfeed/internal/api/config"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaramaConfig(t *testing.T) {
	c, err := newSaramaConfig(config.KafkaConfig{
		Version: "3.6.0",
		Consumer: config.ConsumerConfig{
			SessionTimeout:    30,
			HeartbeatInterval: 3,
			InitialOffset:     "oldest",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, defaultClientID, c.ClientID)
	assert.Equal(t, sarama.V3_6_0_0, c.Version)
	assert.Equal(t, sarama.OffsetOldest, c.Consumer.Offsets.Initial)
	assert.False(t, c.Consumer.Offsets.AutoCommit.Enable)
	assert.Equal(t, 30*time.Second, c.Consumer.Group.Session.Timeout)
	// 未配置的超时沿用 sarama 默认值
	assert.Equal(t, sarama.NewConfig().Consumer.Group.Rebalance.Timeout, c.Consumer.Group.Rebalance.Timeout)
}

func TestNewSaramaConfig_Invalid(t *testing.T) {
	_, err := newSaramaConfig(config.KafkaConfig{Version: "not-a-version"})
	assert.Error(t, err)

	_, err = newSaramaConfig(config.KafkaConfig{Consumer: config.ConsumerConfig{InitialOffset: "latest"}})
	assert.Error(t, err)

	// 开启 SASL 但缺少用户名
	_, err = newSaramaConfig(config.KafkaConfig{Sasl: config.SaslConfig{Enable: true}})
	assert.Error(t, err)
}
