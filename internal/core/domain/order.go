package domain

import (
	"errors"
	"time"
)

// Strategy is the optimization objective requested for an order.
type Strategy string

const (
	StrategyFastest      Strategy = "fastest"
	StrategyCheapest     Strategy = "cheapest"
	StrategyLowestCarbon Strategy = "lowest_carbon"
)

// IsValid reports whether the strategy is one of the known objectives.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyFastest, StrategyCheapest, StrategyLowestCarbon:
		return true
	}
	return false
}

// OrderStatus represents the fulfillment lifecycle state of an order.
type OrderStatus string

const (
	StatusPendingFulfillment OrderStatus = "pending_fulfillment"
	StatusDecided            OrderStatus = "decided"
	StatusConfirmed          OrderStatus = "confirmed"
	StatusFailed             OrderStatus = "failed"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPendingFulfillment: {StatusDecided, StatusFailed},
	StatusDecided:            {StatusConfirmed, StatusPendingFulfillment},
	StatusFailed:             {StatusPendingFulfillment},
}

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidOrder         = errors.New("invalid order")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrAlreadyDecided       = errors.New("order already decided")
	ErrDecisionConflict     = errors.New("concurrent decision conflict")
	ErrNoCandidates         = errors.New("no warehouse/carrier candidates for destination")
	ErrNoFeasibleCandidate  = errors.New("no feasible candidate")
	ErrOptimizationTimedOut = errors.New("optimization timed out")
	ErrProviderUnavailable  = errors.New("provider unavailable")
	ErrProviderTimeout      = errors.New("provider timeout")
)

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Address represents the delivery destination of an order.
type Address struct {
	Line        string      `json:"line" bson:"line"`
	City        string      `json:"city" bson:"city"`
	ZipCode     string      `json:"zip_code" bson:"zip_code"`
	CountryCode string      `json:"country_code" bson:"country_code"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
}

// LineItem is one ordered product position.
type LineItem struct {
	ProductID    string  `json:"product_id" bson:"product_id"`
	Quantity     int     `json:"quantity" bson:"quantity"`
	UnitWeightKg float64 `json:"unit_weight_kg" bson:"unit_weight_kg"`
}

// Order is the aggregate root of the fulfillment bounded context. It is
// mutated only by attaching a decision or through lifecycle transitions.
type Order struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	CustomerID  string      `json:"customer_id" bson:"customer_id"`
	Lines       []LineItem  `json:"lines" bson:"lines"`
	Destination Address     `json:"destination" bson:"destination"`
	Strategy    Strategy    `json:"strategy" bson:"strategy"`
	Status      OrderStatus `json:"status" bson:"status"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`

	// Decision is the currently active fulfillment decision, nil while pending.
	Decision *FulfillmentDecision `json:"decision,omitempty" bson:"decision,omitempty"`
	// DecisionHistory keeps every decision ever taken for audit. A re-run after
	// a reset appends a new decision, it never rewrites an old one.
	DecisionHistory []FulfillmentDecision `json:"decision_history,omitempty" bson:"decision_history,omitempty"`
	FailureReason   string                `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
}

// Validate enforces the order invariants: at least one line item, positive
// quantities, and positive total weight. Invariant violations are rejected
// before any provider I/O is attempted.
func (o *Order) Validate() error {
	if len(o.Lines) == 0 {
		return ErrInvalidOrder
	}
	for _, l := range o.Lines {
		if l.ProductID == "" || l.Quantity <= 0 || l.UnitWeightKg < 0 {
			return ErrInvalidOrder
		}
	}
	if o.TotalWeightKg() <= 0 {
		return ErrInvalidOrder
	}
	if !o.Strategy.IsValid() {
		return ErrInvalidOrder
	}
	if o.Destination.CountryCode == "" {
		return ErrInvalidOrder
	}
	return nil
}

// DemandByProduct sums the ordered quantity per product. Orders may list the
// same product on several lines; fulfillment decisions are made against the
// combined quantity, never against individual lines.
func (o *Order) DemandByProduct() map[string]int {
	demand := make(map[string]int, len(o.Lines))
	for _, l := range o.Lines {
		demand[l.ProductID] += l.Quantity
	}
	return demand
}

// TotalWeightKg is the summed weight of all line items.
func (o *Order) TotalWeightKg() float64 {
	var total float64
	for _, l := range o.Lines {
		total += float64(l.Quantity) * l.UnitWeightKg
	}
	return total
}
