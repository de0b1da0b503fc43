package kafka

import (
	"Snapfeed/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second
	// batchWorkers 一批内同时处理的消息数
	batchWorkers = 8
)

var (
	retryBase = 100 * time.Millisecond
	retryMax  = 5 * time.Second
)

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 攒够 batchSize 条或等满 batchTimeout 后整批处理
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			processBatch(session, batch, logic)
			batch = make([]*sarama.ConsumerMessage, 0, batchSize)
		}
	}

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				flush()
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			flush()
		case <-session.Context().Done():
			return nil
		}
	}
}

// processBatch 并发处理一批消息，失败的消息退避重试直到成功或会话结束；
// 只有整批成功才提交位点，会话中断时未完成的消息在重平衡后重新投递
func processBatch(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage, logic LogicFunc) bool {
	ctx := session.Context()
	g := new(errgroup.Group)
	g.SetLimit(batchWorkers)

	for _, msg := range messages {
		g.Go(func() error {
			return retry(logger.WithTrace(ctx, messageTraceID(msg)), msg, logic)
		})
	}
	if err := g.Wait(); err != nil {
		log.WarnContext(ctx, "batch interrupted, offsets not committed", "err", err, "size", len(messages))
		return false
	}

	last := messages[len(messages)-1]
	session.MarkMessage(last, "")
	session.Commit()
	return true
}

func retry(ctx context.Context, msg *sarama.ConsumerMessage, logic LogicFunc) error {
	delay := retryBase
	for {
		err := logic(ctx, msg)
		if err == nil {
			return nil
		}
		log.ErrorContext(ctx, "process message error", "err", err, "topic", msg.Topic, "offset", msg.Offset, "retry_in", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, retryMax)
	}
}

// messageTraceID 同一条消息的重试日志共用一个 trace_id
func messageTraceID(msg *sarama.ConsumerMessage) string {
	return fmt.Sprintf("kafka-%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
}

// ToCanalMessage 将kafka消息转换为canal消息结构体
// 表名不匹配、DDL 或空数据的消息返回 nil，调用方直接跳过
func ToCanalMessage(msg *sarama.ConsumerMessage, tableNames ...string) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		log.Error("unmarshal canal message error", "err", err, "offset", msg.Offset)
		return nil, nil
	}

	if canalMsg.IsDDL || len(canalMsg.Data) == 0 {
		return nil, nil
	}

	if !canalMsg.hasTable(tableNames...) {
		return nil, nil
	}
	return &canalMsg, nil
}

// wrapf 为消费错误补充表名与主键，便于重试日志定位
func wrapf(err error, table string, id uint64) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "sync %s id=%d", table, id)
}
