package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces every Redis key the bus touches.
	keyPrefix = "hearthwatch"

	// jobQueue is the list holding pending inspection jobs.
	jobQueue = keyPrefix + ":jobs:inspect"
)

// ChannelFor returns the pub/sub channel name for an event type.
func ChannelFor(t Type) string {
	return fmt.Sprintf("%s:events:%s", keyPrefix, t)
}

// Bus defines the interface for the event fabric backing inspections.
type Bus interface {
	// Publish sends an event to its per-type pub/sub channel.
	Publish(ctx context.Context, event Event) error

	// Subscribe creates a subscription to one or more event types.
	// Returns a channel that receives events until the context is cancelled.
	Subscribe(ctx context.Context, types ...Type) (<-chan Event, error)

	// PushJob adds an inspection job to the end of the work queue (LPUSH).
	PushJob(ctx context.Context, job InspectJob) error

	// PopJob removes and returns a job from the front of the queue (BRPOP).
	// Blocks until a job is available, the pop timeout elapses (returning
	// a nil job), or the context is cancelled.
	PopJob(ctx context.Context) (*InspectJob, error)

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close closes the Redis connection.
	Close() error
}

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

	// PopTimeout bounds each blocking PopJob call. A timed-out pop returns
	// a nil job so callers can check for shutdown between attempts.
	PopTimeout time.Duration
}

// RedisBus implements the Bus interface using go-redis/v9.
type RedisBus struct {
	client     *redis.Client
	popTimeout time.Duration
}

// NewRedisBus creates a new Redis event bus with the given options.
func NewRedisBus(opts RedisOptions) (*RedisBus, error) {
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

	if opts.PopTimeout == 0 {
		opts.PopTimeout = 5 * time.Second
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

	return &RedisBus{client: client, popTimeout: opts.PopTimeout}, nil
}

// Publish sends an event to its per-type pub/sub channel.
func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := ChannelFor(event.Type)
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}

	return nil
}

// Subscribe creates a subscription to one or more event types.
func (b *RedisBus) Subscribe(ctx context.Context, types ...Type) (<-chan Event, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("at least one event type is required")
	}

	channels := make([]string, 0, len(types))
	for _, t := range types {
		if !t.IsValid() {
			return nil, fmt.Errorf("unknown event type: %s", t)
		}
		channels = append(channels, ChannelFor(t))
	}

	pubsub := b.client.Subscribe(ctx, channels...)

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %d channels: %w", len(channels), err)
	}

	eventChan := make(chan Event)

	go func() {
		defer close(eventChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					// Skip malformed payloads but keep the subscription alive
					continue
				}

				select {
				case eventChan <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return eventChan, nil
}

// PushJob adds an inspection job to the end of the work queue.
func (b *RedisBus) PushJob(ctx context.Context, job InspectJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal inspect job: %w", err)
	}

	if err := b.client.LPush(ctx, jobQueue, data).Err(); err != nil {
		return fmt.Errorf("failed to push to queue %s: %w", jobQueue, err)
	}

	return nil
}

// PopJob removes and returns a job from the front of the queue.
// Blocks until a job is available or the pop timeout elapses.
func (b *RedisBus) PopJob(ctx context.Context) (*InspectJob, error) {
	// BRPOP returns [queue_name, value] or redis.Nil on timeout
	result, err := b.client.BRPop(ctx, b.popTimeout, jobQueue).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue %s: %w", jobQueue, err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP result length: %d", len(result))
	}

	var job InspectJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inspect job: %w", err)
	}

	return &job, nil
}

// Ping verifies the connection is alive.
func (b *RedisBus) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (b *RedisBus) Close() error {
	return b.client.Close()
}
