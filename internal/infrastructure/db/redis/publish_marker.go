package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const markerTTL = time.Hour

// PublishMarker records which outbox events have already reached the stream.
// It suppresses the double publish that happens when the relay crashes
// between XAdd and the outbox status update. Best effort only: delivery stays
// at-least-once and consumers must still deduplicate.
// Key format: published:<event_id>
type PublishMarker struct {
	client *redis.Client
}

func NewPublishMarker(client *redis.Client) *PublishMarker {
	return &PublishMarker{client: client}
}

// IsPublished reports whether this event was already pushed to the stream.
func (m *PublishMarker) IsPublished(ctx context.Context, eventID string) (bool, error) {
	n, err := m.client.Exists(ctx, m.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("publish marker check: %w", err)
	}
	return n > 0, nil
}

// Mark records the event as published (expires after markerTTL).
func (m *PublishMarker) Mark(ctx context.Context, eventID string) error {
	return m.client.Set(ctx, m.key(eventID), "1", markerTTL).Err()
}

func (m *PublishMarker) key(eventID string) string {
	return "published:" + eventID
}
