package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetWithExpiration 设置键值对并设置过期时间
func SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return Rdb.Set(ctx, key, value, expiration).Err()
}

// GetValue 获取字符串类型的值，不存在时返回空串
func GetValue(ctx context.Context, key string) (string, error) {
	value, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// Incr 自增并返回新值
func Incr(ctx context.Context, key string) (int64, error) {
	return Rdb.Incr(ctx, key).Result()
}

// Exists 键是否存在
func Exists(ctx context.Context, key string) (bool, error) {
	n, err := Rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TryLock 尝试加锁，retryTimes 为 -1 时一直重试
func TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error) {
	for i := 0; i < retryTimes || retryTimes == -1; i++ {
		success, err := Rdb.SetNX(ctx, key, value, expiration).Result()
		if err != nil {
			return false, err
		}
		if success {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(time.Millisecond * 200):
		}
	}
	return false, nil
}

// UnLock 释放锁
func UnLock(ctx context.Context, key string, value interface{}) {
	Rdb.Eval(ctx, "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end", []string{key}, value)
}

// DeleteKey 删除一个或多个键
func DeleteKey(ctx context.Context, keys ...string) error {
	return Rdb.Del(ctx, keys...).Err()
}

// HSet 设置哈希字段
func HSet(ctx context.Context, key, field string, value interface{}) error {
	return Rdb.HSet(ctx, key, field, value).Err()
}

// HGet 获取哈希字段，不存在时返回空串
func HGet(ctx context.Context, key, field string) (string, error) {
	value, err := Rdb.HGet(ctx, key, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// HDel 删除哈希字段
func HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return Rdb.HDel(ctx, key, fields...).Err()
}

// HGetAll 获取哈希全部字段
func HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return Rdb.HGetAll(ctx, key).Result()
}

// ZMembers 有序集合全部成员，键不存在时返回空切片
func ZMembers(ctx context.Context, key string) ([]string, error) {
	return Rdb.ZRange(ctx, key, 0, -1).Result()
}

// ZRevRangeWithScores 按分数从高到低取指定区间
func ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]redis.Z, error) {
	return Rdb.ZRevRangeWithScores(ctx, key, start, stop).Result()
}

// ReplaceZSet 以事务整体替换有序集合，members 为空时仅清空
func ReplaceZSet(ctx context.Context, key string, members []redis.Z, expiration time.Duration) error {
	pipe := Rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.ZAdd(ctx, key, members...)
	}
	if expiration > 0 && len(members) > 0 {
		pipe.Expire(ctx, key, expiration)
	}
	_, err := pipe.Exec(ctx)
	return err
}
