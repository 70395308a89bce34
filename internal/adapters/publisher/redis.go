// Package publisher announces completed runs on a Redis stream.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/flagmap/internal/adapters/repository"
)

// DefaultStream is the stream run summaries are added to.
const DefaultStream = "flagmap.runs"

const pingTimeout = 5 * time.Second

// ErrNoURL is returned when no redis url is configured.
var ErrNoURL = errors.New("redis url not configured")

type streamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisPublisher adds one entry per completed run to a Redis stream.
type RedisPublisher struct {
	client streamClient
	stream string
	now    func() time.Time
}

// NewRedisPublisher connects to redisURL and checks the connection.
func NewRedisPublisher(ctx context.Context, redisURL, stream string) (*RedisPublisher, error) {
	if redisURL == "" {
		return nil, ErrNoURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newPublisher(client, stream), nil
}

func newPublisher(client streamClient, stream string) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{client: client, stream: stream, now: time.Now}
}

// Name identifies the sink in logs and metrics.
func (p *RedisPublisher) Name() string { return "redis" }

// Stream returns the target stream name.
func (p *RedisPublisher) Stream() string { return p.stream }

// Export publishes the run summary.
func (p *RedisPublisher) Export(ctx context.Context, run *repository.Run) error {
	if run == nil {
		return repository.ErrNilRun
	}
	data, err := json.Marshal(run.Report.Summary())
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"run_id":    run.ID(),
			"data":      string(data),
			"timestamp": p.now().Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// Close closes the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
