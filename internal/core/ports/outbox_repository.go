package ports

import (
	"context"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// OutboxRepository stores integration events awaiting publication. Events are
// appended transactionally with the decision (see OrderRepository) and drained
// by the relay; delivery is at-least-once.
type OutboxRepository interface {
	// FetchPending returns up to limit events in pending state, oldest first.
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	// MarkPublished flips the event to published.
	MarkPublished(ctx context.Context, eventID string) error
	// MarkFailed records a failed publish attempt. The event stays eligible
	// for retry until maxAttempts is reached, then moves to failed.
	MarkFailed(ctx context.Context, eventID string, cause string) error
	// CountPending reports the current outbox backlog, for metrics.
	CountPending(ctx context.Context) (int64, error)
}
