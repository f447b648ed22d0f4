package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// StreamPublisher publishes integration events to a Redis Stream. Consumers
// in the downstream bounded contexts read the stream with consumer groups and
// deduplicate on (order_id, decided_at) carried inside the payload.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

// Publish appends the event to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, evt domain.OutboxEvent) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_id": evt.ID,
			"order_id": evt.OrderID,
			"type":     evt.Type,
			"payload":  string(evt.Payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
