package broker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
)

const (
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// RedisBroker mirrors the stream onto a Redis pub/sub channel.
type RedisBroker struct {
	client  *redis.Client
	channel string
}

// NewRedisBroker connects to Redis and verifies the connection before
// returning.
func NewRedisBroker(addr, channel string) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisBroker{client: client, channel: channel}, nil
}

// Publish sends one message to the mirror channel, retrying transient
// failures with exponential backoff.
func (b *RedisBroker) Publish(ctx context.Context, payload []byte) error {
	operation := func() error {
		return b.client.Publish(ctx, b.channel, payload).Err()
	}

	backoffStrategy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(initialBackoff),
				backoff.WithMaxInterval(maxBackoff),
			),
			maxRetries,
		),
		ctx,
	)

	return backoff.RetryNotify(operation, backoffStrategy, func(err error, d time.Duration) {
		log.Printf("[broker] retrying mirror publish: %v (next attempt in %s)", err, d)
	})
}

// Close releases the Redis connection.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
