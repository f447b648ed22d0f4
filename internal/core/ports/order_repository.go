package ports

import (
	"context"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// OrderRepository defines persistence operations for orders. The repository is
// the enforcement point of the single-writer invariant: AttachDecision and
// MarkFailed are conditional on the order still being in pending_fulfillment,
// and a rejected conditional write surfaces as a typed error instead of being
// retried silently.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)

	// AttachDecision atomically attaches the decision, transitions the order
	// to decided, and appends the integration event to the outbox — all in
	// one transactional boundary. It fails with domain.ErrAlreadyDecided when
	// the order already carries a decision, and domain.ErrDecisionConflict
	// when another writer won the status-guarded update.
	AttachDecision(ctx context.Context, orderID string, d domain.FulfillmentDecision, evt domain.OutboxEvent) error

	// MarkFailed transitions a pending order to failed with a reason, under
	// the same status guard as AttachDecision.
	MarkFailed(ctx context.Context, orderID string, reason string) error
}
