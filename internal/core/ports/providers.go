package ports

import (
	"context"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// Provider gateways are the only coupling between this core and the
// supporting bounded contexts (inventory, shipping cost, carbon accounting).
// The core defines the contracts; the supporting contexts implement them.
// Every call may fail with domain.ErrProviderUnavailable (transient) or
// domain.ErrProviderTimeout, and must honour context cancellation: the
// optimizer imposes one aggregate deadline across all gateway calls of a run.

// ShippingQuote is the read-only snapshot returned by the shipping-cost context.
type ShippingQuote struct {
	Cost        float64
	Currency    string
	TransitDays int
}

// StockProvider answers how many units of a product a warehouse holds.
type StockProvider interface {
	// Availability returns the available quantity for (warehouse, product).
	// A provider that has no data for the key returns (0, nil): unknown
	// stock is treated as zero stock.
	Availability(ctx context.Context, warehouseID, productID string) (int, error)
}

// ShippingQuoteProvider quotes cost and transit time for a shipment leg.
type ShippingQuoteProvider interface {
	// Quote returns the quote for shipping from the warehouse to the
	// destination with the given carrier, or (nil, nil) when the carrier
	// offers no route for the key.
	Quote(ctx context.Context, warehouseID string, dest domain.Address, carrierID string) (*ShippingQuote, error)
}

// CarbonProvider estimates emissions for a shipment leg.
type CarbonProvider interface {
	// Estimate returns kg CO2e for moving weightKg over distanceKm with the
	// carrier's transport mode.
	Estimate(ctx context.Context, carrierID string, mode domain.TransportMode, distanceKm, weightKg float64) (float64, error)
}
