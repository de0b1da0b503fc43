package redis

import (
	"Snapfeed/internal/api/config"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{
		Addr:                     mr.Addr(),
		MaintNotificationsConfig: &maintnotifications.Config{Mode: maintnotifications.ModeDisabled},
	}))
	t.Cleanup(func() { _ = Rdb.Close() })
	return mr
}

func TestHashHelpers(t *testing.T) {
	setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, HSet(ctx, "h", "a", "1"))
	require.NoError(t, HSet(ctx, "h", "b", "2"))

	v, err := HGet(ctx, "h", "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	v, err = HGet(ctx, "h", "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, HDel(ctx, "h", "a"))
	all, err := HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "2"}, all)
}

func TestReplaceZSet(t *testing.T) {
	mr := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, ReplaceZSet(ctx, "z", []redis.Z{{Score: 1, Member: "x"}, {Score: 3, Member: "y"}}, time.Minute))
	require.NoError(t, ReplaceZSet(ctx, "z", []redis.Z{{Score: 2, Member: "w"}, {Score: 5, Member: "y"}}, time.Minute))

	top, err := ZRevRangeWithScores(ctx, "z", 0, -1)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "y", top[0].Member)
	assert.Equal(t, float64(5), top[0].Score)
	assert.True(t, mr.TTL("z") > 0)

	members, err := ZMembers(ctx, "absent")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestIncr(t *testing.T) {
	setupMiniRedis(t)
	ctx := context.Background()

	v, err := GetValue(ctx, "ver")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	n, err := Incr(ctx, "ver")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	v, err = GetValue(ctx, "ver")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestLock(t *testing.T) {
	setupMiniRedis(t)
	ctx := context.Background()

	ok, err := TryLock(ctx, "lock", "token-a", time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = TryLock(ctx, "lock", "token-b", time.Minute, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	UnLock(ctx, "lock", "token-b")
	exists, err := Exists(ctx, "lock")
	require.NoError(t, err)
	assert.True(t, exists)

	UnLock(ctx, "lock", "token-a")
	exists, err = Exists(ctx, "lock")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInitRedis(t *testing.T) {
	prev := Rdb
	t.Cleanup(func() { Rdb = prev })

	mr := miniredis.RunT(t)
	require.NoError(t, InitRedis(config.RedisConfig{Addr: mr.Addr(), PoolSize: 2}))
	require.NotNil(t, Rdb)
	assert.Equal(t, mr.Addr(), Rdb.Options().Addr)
	connected := Rdb

	// 连不上时保留原客户端
	mr.Close()
	assert.Error(t, InitRedis(config.RedisConfig{Addr: mr.Addr()}))
	assert.Same(t, connected, Rdb)
	_ = connected.Close()
}
