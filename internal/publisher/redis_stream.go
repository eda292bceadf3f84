package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/courtside/internal/store"
)

// StatsStream is where stat change events land.
const StatsStream = "courtside:stats"

// StatEvent is the payload written to the stream.
type StatEvent struct {
	Type string      `json:"type"`
	Stat *store.Stat `json:"stat"`
}

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: StatsStream,
		maxLen: 10000,
	}
}

// PublishStatEvent appends a stat change to the stream, trimming it to
// roughly the newest maxLen entries.
func (p *RedisStreamPublisher) PublishStatEvent(ctx context.Context, eventType string, stat *store.Stat) error {
	values, err := encode(StatEvent{Type: eventType, Stat: stat}, time.Now())
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Err()
}

func encode(event StatEvent, at time.Time) (map[string]interface{}, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encoding stat event: %w", err)
	}
	return map[string]interface{}{
		"type":      event.Type,
		"data":      string(data),
		"timestamp": at.Unix(),
	}, nil
}
