// Package cache keeps computed leaderboards in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"troopstats/domain/core"
	"troopstats/domain/leaderboard"
	"troopstats/ports"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "troopstats:leaderboard:"

// RedisLeaderboardCache stores boards as JSON under a per-group key.
// Entries expire after ttl even if no invalidation arrives.
type RedisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.LeaderboardCache = (*RedisLeaderboardCache)(nil)

// NewRedisLeaderboardCache wraps an existing client
func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{client: client, ttl: ttl}
}

// Connect parses redisURL and pings the server
func Connect(ctx context.Context, redisURL string, ttl time.Duration) (*RedisLeaderboardCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return NewRedisLeaderboardCache(client, ttl), nil
}

// Close closes the underlying client
func (c *RedisLeaderboardCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Get returns nil, nil on a miss
func (c *RedisLeaderboardCache) Get(ctx context.Context, groupID core.GroupID) (*leaderboard.Board, error) {
	raw, err := c.client.Get(ctx, Key(groupID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var board leaderboard.Board
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, fmt.Errorf("corrupt cached board for group %s: %w", groupID, err)
	}
	return &board, nil
}

// Set stores the board until the ttl passes
func (c *RedisLeaderboardCache) Set(ctx context.Context, board *leaderboard.Board) error {
	raw, err := json.Marshal(board)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(board.GroupID), raw, c.ttl).Err()
}

// Invalidate drops the group's board
func (c *RedisLeaderboardCache) Invalidate(ctx context.Context, groupID core.GroupID) error {
	return c.client.Del(ctx, Key(groupID)).Err()
}

// Key is the Redis key of a group's board
func Key(groupID core.GroupID) string {
	return keyPrefix + groupID.String()
}
