package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/storage"
	"github.com/postcraft/backend/internal/storage/models"
	"github.com/postcraft/backend/pkg/logger"
)

const (
	styleKeyPrefix     = "state:style:"
	generatedKeyPrefix = "state:generated:"
	sessionKeyPrefix   = "session:"
	busyKeyPrefix      = "busy:"
)

type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
	StateTTL time.Duration
	BusyTTL  time.Duration
}

// Client backs the per-user state cache, the session store and the busy
// guard with a single redis connection pool.
type Client struct {
	client   *redis.Client
	stateTTL time.Duration
	busyTTL  time.Duration
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", addr))

	return &Client{
		client:   client,
		stateTTL: opts.StateTTL,
		busyTTL:  opts.BusyTTL,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetStyle reports whether a cached style exists for the user.
func (c *Client) GetStyle(ctx context.Context, userID string) (*models.UserStyle, bool, error) {
	data, err := c.client.Get(ctx, styleKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get style state: %w", err)
	}

	var style models.UserStyle
	if err := json.Unmarshal(data, &style); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal style state: %w", err)
	}

	logger.Debug("Style state hit", zap.String("user_id", userID))
	return &style, true, nil
}

func (c *Client) SetStyle(ctx context.Context, style *models.UserStyle) error {
	data, err := json.Marshal(style)
	if err != nil {
		return fmt.Errorf("failed to marshal style state: %w", err)
	}

	if err := c.client.Set(ctx, styleKeyPrefix+style.UserID, data, c.stateTTL).Err(); err != nil {
		return fmt.Errorf("failed to set style state: %w", err)
	}

	logger.Debug("Style state cached", zap.String("user_id", style.UserID), zap.Duration("ttl", c.stateTTL))
	return nil
}

func (c *Client) SetLastGenerated(ctx context.Context, userID, content string) error {
	if err := c.client.Set(ctx, generatedKeyPrefix+userID, content, c.stateTTL).Err(); err != nil {
		return fmt.Errorf("failed to set generated state: %w", err)
	}
	return nil
}

func (c *Client) GetLastGenerated(ctx context.Context, userID string) (string, bool, error) {
	content, err := c.client.Get(ctx, generatedKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get generated state: %w", err)
	}
	return content, true, nil
}

func (c *Client) SaveSession(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, sessionKeyPrefix+tokenID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns storage.ErrNotFound once the session expired or was
// deleted.
func (c *Client) GetSession(ctx context.Context, tokenID string) (string, error) {
	userID, err := c.client.Get(ctx, sessionKeyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return userID, nil
}

func (c *Client) DeleteSession(ctx context.Context, tokenID string) error {
	deleted, err := c.client.Del(ctx, sessionKeyPrefix+tokenID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted == 0 {
		logger.Debug("Session already gone", zap.String("token_id", tokenID))
	}
	return nil
}

// Acquire sets the busy flag for key and reports false when it is already
// held. The flag expires on its own after the busy TTL.
func (c *Client) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := c.client.SetNX(ctx, busyKeyPrefix+key, time.Now().UnixMilli(), c.busyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire busy flag: %w", err)
	}
	return ok, nil
}

func (c *Client) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, busyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release busy flag: %w", err)
	}
	return nil
}
