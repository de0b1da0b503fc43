package kafka

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
)

type failingGroup struct {
	sarama.ConsumerGroup
	calls atomic.Int32
}

func (g *failingGroup) Consume(ctx context.Context, _ []string, _ sarama.ConsumerGroupHandler) error {
	g.calls.Add(1)
	return errors.New("kafka: client has run out of available brokers")
}

func TestConsumerRun_BacksOffOnError(t *testing.T) {
	base, maxDelay := consumeRetryBase, consumeRetryMax
	consumeRetryBase, consumeRetryMax = 20*time.Millisecond, 40*time.Millisecond
	t.Cleanup(func() { consumeRetryBase, consumeRetryMax = base, maxDelay })

	group := &failingGroup{}
	c := &consumer{name: "feeds", topic: "canal.feeds", group: group}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after context cancel")
	}

	// 20ms + 40ms + 40ms ... 150ms 内约 4~5 次
	calls := group.calls.Load()
	assert.GreaterOrEqual(t, calls, int32(2))
	assert.LessOrEqual(t, calls, int32(8))
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx     context.Context
	marked  []int64
	commits int
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

func (s *fakeSession) Commit() { s.commits++ }

func TestProcessBatch_RetriesThenCommits(t *testing.T) {
	base := retryBase
	retryBase = time.Millisecond
	t.Cleanup(func() { retryBase = base })

	session := &fakeSession{ctx: context.Background()}
	var attempts atomic.Int32
	logic := func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		if msg.Offset == 11 && attempts.Add(1) < 3 {
			return errors.New("es unavailable")
		}
		return nil
	}

	msgs := []*sarama.ConsumerMessage{{Topic: "canal.feeds", Offset: 10}, {Topic: "canal.feeds", Offset: 11}, {Topic: "canal.feeds", Offset: 12}}
	assert.True(t, processBatch(session, msgs, logic))
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, []int64{12}, session.marked)
	assert.Equal(t, 1, session.commits)
}

func TestProcessBatch_InterruptedBatchNotCommitted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	session := &fakeSession{ctx: ctx}

	logic := func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		if msg.Offset == 21 {
			return errors.New("mongo unavailable")
		}
		return nil
	}
	msgs := []*sarama.ConsumerMessage{{Offset: 20}, {Offset: 21}}

	assert.False(t, processBatch(session, msgs, logic))
	assert.Empty(t, session.marked)
	assert.Zero(t, session.commits)
}
