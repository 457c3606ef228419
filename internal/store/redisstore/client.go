// Package redisstore persists conversations, recommendation sets and CVs in Redis as JSON
// documents, one key per owner.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/zhouzirui/path-finder/backend/internal/config"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
)

const keyPrefix = "pathfinder:"

// Client is a connected Redis client shared by the stores.
type Client struct {
	rdb *goredis.Client
	log *logger.Logger
}

// Connect dials Redis and pings it once.
func Connect(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNop()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{rdb: rdb, log: log.With("component", "redisstore")}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// getJSON decodes the document at key into dst. It reports false when the key does not exist.
func (c *Client) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Client) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func conversationKey(userID, channelID string) string {
	return keyPrefix + "conversation:" + userID + ":" + channelID
}

func recommendationsKey(userID string) string {
	return keyPrefix + "recommendations:" + userID
}

func cvKey(ownerID string) string {
	return keyPrefix + "cv:" + ownerID
}

func profileKey(userID string) string {
	return keyPrefix + "profile:" + userID
}
