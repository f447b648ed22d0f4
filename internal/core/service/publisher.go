package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
	"github.com/greenroute/fulfillment-engine/internal/core/ports"
)

// DecisionPublisher commits a decision to its order and queues the
// OrderFulfillmentDecided integration event. Persisting the decision, the
// status transition, and the outbox append happen in one transactional
// boundary inside the repository; the relay delivers the event afterwards
// with at-least-once semantics.
type DecisionPublisher struct {
	orders ports.OrderRepository
	log    zerolog.Logger
}

func NewDecisionPublisher(orders ports.OrderRepository, log zerolog.Logger) *DecisionPublisher {
	return &DecisionPublisher{orders: orders, log: log}
}

// Publish attaches the decision to the order. A rejected status-guarded write
// propagates as domain.ErrAlreadyDecided or domain.ErrDecisionConflict — it is
// never retried here; the caller decides whether a reset and re-run is wanted.
func (p *DecisionPublisher) Publish(ctx context.Context, order *domain.Order, d domain.FulfillmentDecision) error {
	evt := domain.NewOrderFulfillmentDecided(uuid.NewString(), order.ID, d)
	outboxEvt, err := domain.NewDecisionOutboxEvent(evt)
	if err != nil {
		return fmt.Errorf("encode decision event: %w", err)
	}

	if err := p.orders.AttachDecision(ctx, order.ID, d, outboxEvt); err != nil {
		p.log.Error().Err(err).Str("order_id", order.ID).Msg("failed to attach decision")
		return err
	}

	p.log.Info().
		Str("order_id", order.ID).
		Str("event_id", evt.EventID).
		Str("warehouse_id", d.WarehouseID).
		Str("carrier_id", d.CarrierID).
		Msg("decision committed, event queued")
	return nil
}
