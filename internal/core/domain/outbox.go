package domain

import (
	"encoding/json"
	"time"
)

// OutboxStatus is the delivery state of an outbox event.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxPublished OutboxStatus = "published"
	OutboxFailed    OutboxStatus = "failed"
)

const EventTypeOrderFulfillmentDecided = "order.fulfillment.decided"

// OutboxEvent is a durable record of an integration event to publish. It is
// appended in the same transaction that commits the decision, so the event
// survives a crash between commit and publish (at-least-once delivery).
type OutboxEvent struct {
	ID          string       `json:"id" bson:"_id"`
	OrderID     string       `json:"order_id" bson:"order_id"`
	Type        string       `json:"type" bson:"type"`
	Payload     []byte       `json:"payload" bson:"payload"`
	Status      OutboxStatus `json:"status" bson:"status"`
	Attempts    int          `json:"attempts" bson:"attempts"`
	LastError   string       `json:"last_error,omitempty" bson:"last_error,omitempty"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	PublishedAt *time.Time   `json:"published_at,omitempty" bson:"published_at,omitempty"`
}

// NewDecisionOutboxEvent wraps an OrderFulfillmentDecided event for the outbox.
func NewDecisionOutboxEvent(evt OrderFulfillmentDecided) (OutboxEvent, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return OutboxEvent{}, err
	}
	return OutboxEvent{
		ID:        evt.EventID,
		OrderID:   evt.OrderID,
		Type:      EventTypeOrderFulfillmentDecided,
		Payload:   payload,
		Status:    OutboxPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}
