package domain

import "time"

// Candidate is one (warehouse, carrier) pairing evaluated for an order,
// together with the provider snapshots collected for it. Candidates are
// created fresh per optimization run and discarded after the decision.
type Candidate struct {
	Warehouse Warehouse
	Carrier   Carrier

	// Stock maps product ID to the quantity available at the warehouse.
	// Unknown stock is recorded as zero (conservative).
	Stock map[string]int
	// Cost and TransitDays come from the shipping quote; CarbonKg from the
	// carbon provider. Complete is false when any provider call for this
	// candidate failed or missed the aggregate deadline, in which case the
	// candidate is infeasible and the value fields must not be read.
	Cost        float64
	Currency    string
	TransitDays int
	CarbonKg    float64
	Complete    bool
}

// FeasibleFor reports whether the candidate can fulfil the order's combined
// per-product demand from its warehouse stock. Incomplete candidates are
// never feasible.
func (c Candidate) FeasibleFor(o *Order) bool {
	if !c.Complete {
		return false
	}
	for productID, qty := range o.DemandByProduct() {
		if c.Stock[productID] < qty {
			return false
		}
	}
	return true
}

// FulfillmentDecision is the immutable outcome of one optimization run.
// A re-run produces a new decision value; existing decisions are never mutated.
type FulfillmentDecision struct {
	WarehouseID string    `json:"warehouse_id" bson:"warehouse_id"`
	CarrierID   string    `json:"carrier_id" bson:"carrier_id"`
	Strategy    Strategy  `json:"strategy" bson:"strategy"`
	Cost        float64   `json:"cost" bson:"cost"`
	Currency    string    `json:"currency" bson:"currency"`
	CarbonKg    float64   `json:"carbon_kg" bson:"carbon_kg"`
	TransitDays int       `json:"transit_days" bson:"transit_days"`
	DecidedAt   time.Time `json:"decided_at" bson:"decided_at"`
}

// NewFulfillmentDecision snapshots the winning candidate into a decision.
func NewFulfillmentDecision(c Candidate, strategy Strategy, decidedAt time.Time) FulfillmentDecision {
	return FulfillmentDecision{
		WarehouseID: c.Warehouse.ID,
		CarrierID:   c.Carrier.ID,
		Strategy:    strategy,
		Cost:        c.Cost,
		Currency:    c.Currency,
		CarbonKg:    c.CarbonKg,
		TransitDays: c.TransitDays,
		DecidedAt:   decidedAt.UTC(),
	}
}

// OrderFulfillmentDecided is the integration event emitted once per successful
// decision. Delivery is at-least-once; consumers deduplicate on
// (OrderID, DecidedAt).
type OrderFulfillmentDecided struct {
	EventID     string    `json:"event_id"`
	OrderID     string    `json:"order_id"`
	WarehouseID string    `json:"warehouse_id"`
	CarrierID   string    `json:"carrier_id"`
	Strategy    Strategy  `json:"strategy"`
	Cost        float64   `json:"cost"`
	Currency    string    `json:"currency"`
	CarbonKg    float64   `json:"carbon_kg"`
	TransitDays int       `json:"transit_days"`
	DecidedAt   time.Time `json:"decided_at"`
}

// NewOrderFulfillmentDecided builds the integration event for a decision.
func NewOrderFulfillmentDecided(eventID, orderID string, d FulfillmentDecision) OrderFulfillmentDecided {
	return OrderFulfillmentDecided{
		EventID:     eventID,
		OrderID:     orderID,
		WarehouseID: d.WarehouseID,
		CarrierID:   d.CarrierID,
		Strategy:    d.Strategy,
		Cost:        d.Cost,
		Currency:    d.Currency,
		CarbonKg:    d.CarbonKg,
		TransitDays: d.TransitDays,
		DecidedAt:   d.DecidedAt,
	}
}
