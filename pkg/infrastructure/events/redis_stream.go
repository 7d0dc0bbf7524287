package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StreamClient is the part of the Redis client the publisher needs
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamPublisher forwards yard events to a Redis stream so other
// plant systems can follow intake and storage in near real time
type RedisStreamPublisher struct {
	client  StreamClient
	stream  string
	maxLen  int64
	timeout time.Duration
	logger  *zap.Logger
}

// NewRedisStreamPublisher creates a publisher writing to stream. maxLen caps
// the stream approximately; 0 leaves it unbounded.
func NewRedisStreamPublisher(client StreamClient, stream string, maxLen int64, logger *zap.Logger) *RedisStreamPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStreamPublisher{
		client:  client,
		stream:  stream,
		maxLen:  maxLen,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// Verify interface compliance
var _ EventHandler = (*RedisStreamPublisher)(nil)

// CanHandle accepts every yard event
func (p *RedisStreamPublisher) CanHandle(eventType string) bool {
	return true
}

// Handle appends the event to the stream with XADD
func (p *RedisStreamPublisher) Handle(event Event) error {
	data, err := json.Marshal(event.Data())
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"type":      event.Type(),
			"stream_id": event.StreamID(),
			"version":   strconv.Itoa(event.Version()),
			"timestamp": event.Timestamp().UTC().Format(time.RFC3339Nano),
			"data":      string(data),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type(), p.stream, err)
	}
	p.logger.Debug("event published",
		zap.String("event_type", event.Type()),
		zap.String("redis_id", id))
	return nil
}
