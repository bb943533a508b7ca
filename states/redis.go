package states

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hearthwatch/sdk/entity"
)

// statesKey is the Redis hash holding every live entity state.
const statesKey = "hearthwatch:states"

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// RedisClient implements the Client interface using go-redis/v9.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis state client with the given options.
func NewRedisClient(opts RedisOptions) (*RedisClient, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}

	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}

	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// EntityIDs returns the ID of every entity with a live state, sorted.
func (c *RedisClient) EntityIDs(ctx context.Context) ([]entity.ID, error) {
	fields, err := c.client.HKeys(ctx, statesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list state keys: %w", err)
	}

	sort.Strings(fields)

	ids := make([]entity.ID, 0, len(fields))
	for _, field := range fields {
		ids = append(ids, entity.ID(field))
	}
	return ids, nil
}

// Get returns the live state for an entity.
func (c *RedisClient) Get(ctx context.Context, id entity.ID) (*State, error) {
	data, err := c.client.HGet(ctx, statesKey, string(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get state for %s: %w", id, err)
	}

	var state State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state for %s: %w", id, err)
	}

	return &state, nil
}

// Set records the live state for an entity.
func (c *RedisClient) Set(ctx context.Context, state State) error {
	if err := state.IsValid(); err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := c.client.HSet(ctx, statesKey, string(state.EntityID), data).Err(); err != nil {
		return fmt.Errorf("failed to set state for %s: %w", state.EntityID, err)
	}

	return nil
}

// Delete removes the live state for an entity.
func (c *RedisClient) Delete(ctx context.Context, id entity.ID) (bool, error) {
	removed, err := c.client.HDel(ctx, statesKey, string(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete state for %s: %w", id, err)
	}
	return removed > 0, nil
}

// Ping verifies the connection is alive.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}
