// Package cache keeps assistant answers in Redis so repeated questions do not
// reach the model twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "advice:"

// AnswerCache stores answers keyed by a hash of the normalised question.
type AnswerCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  Stats
}

// Stats tracks cache statistics.
type Stats struct {
	Hits   atomic.Uint64
	Misses atomic.Uint64
	Sets   atomic.Uint64
	Errors atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Sets   uint64 `json:"sets"`
	Errors uint64 `json:"errors"`
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr string, ttl time.Duration) (*AnswerCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return New(client, defaultPrefix, ttl), nil
}

// New wraps an existing client.
func New(client *redis.Client, prefix string, ttl time.Duration) *AnswerCache {
	return &AnswerCache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the cached answer for question, if any.
func (c *AnswerCache) Get(ctx context.Context, question string) (string, bool, error) {
	answer, err := c.client.Get(ctx, c.key(question)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.stats.Misses.Add(1)
			return "", false, nil
		}
		c.stats.Errors.Add(1)
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	c.stats.Hits.Add(1)
	return answer, true, nil
}

// Set stores answer with the configured TTL.
func (c *AnswerCache) Set(ctx context.Context, question, answer string) error {
	if err := c.client.Set(ctx, c.key(question), answer, c.ttl).Err(); err != nil {
		c.stats.Errors.Add(1)
		return fmt.Errorf("cache set: %w", err)
	}
	c.stats.Sets.Add(1)
	return nil
}

// Stats returns the current counters.
func (c *AnswerCache) Stats() StatsSnapshot {
	return StatsSnapshot{
		Hits:   c.stats.Hits.Load(),
		Misses: c.stats.Misses.Load(),
		Sets:   c.stats.Sets.Load(),
		Errors: c.stats.Errors.Load(),
	}
}

// Ping checks the Redis connection.
func (c *AnswerCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *AnswerCache) Close() error {
	return c.client.Close()
}

func (c *AnswerCache) key(question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return c.prefix + hex.EncodeToString(sum[:])
}
