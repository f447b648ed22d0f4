package ports

import (
	"context"
	"time"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// LineItemInput is one ordered product position.
type LineItemInput struct {
	ProductID    string
	Quantity     int
	UnitWeightKg float64
}

// CoordinatesInput holds geographic coordinates.
type CoordinatesInput struct {
	Lat float64
	Lng float64
}

// AddressInput holds the delivery destination.
type AddressInput struct {
	Line        string
	City        string
	ZipCode     string
	CountryCode string
	Coordinates CoordinatesInput
}

// CreateOrderInput carries all data needed to register a new order for fulfillment.
type CreateOrderInput struct {
	CustomerID  string
	Lines       []LineItemInput
	Destination AddressInput
	Strategy    string
}

// OrderResult is returned by the service after creating an order.
type OrderResult struct {
	OrderID   string
	Status    string
	Strategy  string
	CreatedAt time.Time
}

// DecisionView is the read model of a fulfillment decision.
type DecisionView struct {
	WarehouseID string
	CarrierID   string
	Strategy    string
	Cost        float64
	Currency    string
	CarbonKg    float64
	TransitDays int
	DecidedAt   time.Time
}

// OrderDetail is the full order view returned by GetOrder.
type OrderDetail struct {
	OrderID       string
	CustomerID    string
	Status        string
	Strategy      string
	Lines         []LineItemInput
	Destination   AddressInput
	TotalWeightKg float64
	CreatedAt     time.Time
	Decision      *DecisionView
	FailureReason string
}

// OrderService defines use-case operations for order intake and lookup.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderResult, error)
	GetOrder(ctx context.Context, orderID string) (*OrderDetail, error)
}

// DecisionResult is the outcome of a successful optimization run.
type DecisionResult struct {
	OrderID             string
	Decision            DecisionView
	CandidatesEvaluated int
	CandidatesFeasible  int
}

// OptimizerService runs the fulfillment optimization pipeline for one order.
type OptimizerService interface {
	// Optimize selects a (warehouse, carrier) pair for a pending order,
	// persists the decision, and queues the integration event. Calling it on
	// an order that is already decided yields domain.ErrAlreadyDecided; the
	// owning workflow must reset the order to pending_fulfillment first.
	Optimize(ctx context.Context, orderID string) (*DecisionResult, error)
}

// NewDecisionView maps a domain decision to its read model.
func NewDecisionView(d domain.FulfillmentDecision) DecisionView {
	return DecisionView{
		WarehouseID: d.WarehouseID,
		CarrierID:   d.CarrierID,
		Strategy:    string(d.Strategy),
		Cost:        d.Cost,
		Currency:    d.Currency,
		CarbonKg:    d.CarbonKg,
		TransitDays: d.TransitDays,
		DecidedAt:   d.DecidedAt,
	}
}
