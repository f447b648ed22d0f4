package gateway

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
	"github.com/greenroute/fulfillment-engine/internal/core/ports"
)

// QuoteClient implements ports.ShippingQuoteProvider against the
// shipping-cost context.
type QuoteClient struct {
	api *apiClient
}

func NewQuoteClient(baseURL string, timeout time.Duration) *QuoteClient {
	return &QuoteClient{api: newAPIClient(baseURL, timeout)}
}

type quoteResponse struct {
	Cost        float64 `json:"cost"`
	Currency    string  `json:"currency"`
	TransitDays int     `json:"transit_days"`
}

// Quote returns the quote for the (warehouse, destination, carrier) leg, or
// (nil, nil) when the carrier offers no route for it.
func (c *QuoteClient) Quote(ctx context.Context, warehouseID string, dest domain.Address, carrierID string) (*ports.ShippingQuote, error) {
	q := url.Values{}
	q.Set("warehouse_id", warehouseID)
	q.Set("carrier_id", carrierID)
	q.Set("country", dest.CountryCode)
	q.Set("zip_code", dest.ZipCode)

	var resp quoteResponse
	if err := c.api.getJSON(ctx, "/v1/quotes", q, &resp); err != nil {
		if errors.Is(err, errNoData) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.ShippingQuote{
		Cost:        resp.Cost,
		Currency:    resp.Currency,
		TransitDays: resp.TransitDays,
	}, nil
}
