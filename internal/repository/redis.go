// Package repository holds the optional persistence backends: Redis for
// daily usage counters and Postgres for the copy-trade journal. Both are
// optional; the daemon degrades to in-memory equivalents without them.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

// GetDailyUsage returns the account's order count and USDC volume for today.
func (r *RedisClient) GetDailyUsage(ctx context.Context, account string) (int, float64, error) {
	today := time.Now().Format("2006-01-02")
	keyVol := fmt.Sprintf("usage:%s:%s:volume", account, today)
	keyCount := fmt.Sprintf("usage:%s:%s:count", account, today)

	pipe := r.Client.Pipeline()
	volCmd := pipe.Get(ctx, keyVol)
	countCmd := pipe.Get(ctx, keyCount)
	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return 0, 0, err
	}

	vol, _ := volCmd.Float64()
	count, _ := countCmd.Int()
	return count, vol, nil
}

// AddDailyUsage increments today's counters. Keys expire after two days so
// old days clean themselves up.
func (r *RedisClient) AddDailyUsage(ctx context.Context, account string, orders int, amount float64) error {
	today := time.Now().Format("2006-01-02")
	keyVol := fmt.Sprintf("usage:%s:%s:volume", account, today)
	keyCount := fmt.Sprintf("usage:%s:%s:count", account, today)

	pipe := r.Client.Pipeline()
	pipe.IncrByFloat(ctx, keyVol, amount)
	pipe.IncrBy(ctx, keyCount, int64(orders))
	pipe.Expire(ctx, keyVol, 48*time.Hour)
	pipe.Expire(ctx, keyCount, 48*time.Hour)

	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}
