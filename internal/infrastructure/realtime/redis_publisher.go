package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher on Redis pub/sub. Redis PUBLISH
// is itself at-most-once to currently connected subscribers, which
// matches the delivery contract exactly.
type RedisPublisher struct {
	client *redis.Client
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisPublisher creates a Redis-backed publisher, verifying the
// connection up front so the caller can fall back to a NoopPublisher.
func NewRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisPublisher{client: client}, nil
}

// NewRedisPublisherWithClient creates a publisher sharing an existing client
func NewRedisPublisherWithClient(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends one event to one channel
func (p *RedisPublisher) Publish(ctx context.Context, channel string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// Close closes the Redis client
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

var _ Publisher = (*RedisPublisher)(nil)
