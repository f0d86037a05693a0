package events

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisLog appends events to a capped Redis stream.
type RedisLog struct {
	Client *redis.Client
	Stream string
	MaxLen int64
}

// Append adds event to the stream, trimming it to roughly MaxLen entries.
func (l RedisLog) Append(ctx context.Context, event Event) error {
	if l.Client == nil {
		return errors.New("events: redis client not configured")
	}
	stream := l.Stream
	if stream == "" {
		stream = "cart:events"
	}
	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"id":        event.ID,
			"topic":     event.Topic,
			"aggregate": event.AggregateID,
			"payload":   string(event.Payload),
			"occurred":  event.OccurredAt.UnixMilli(),
		},
	}
	if l.MaxLen > 0 {
		args.MaxLen = l.MaxLen
		args.Approx = true
	}
	return l.Client.XAdd(ctx, args).Err()
}
