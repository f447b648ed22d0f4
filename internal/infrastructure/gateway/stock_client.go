package gateway

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// StockClient implements ports.StockProvider against the inventory context.
type StockClient struct {
	api *apiClient
}

func NewStockClient(baseURL string, timeout time.Duration) *StockClient {
	return &StockClient{api: newAPIClient(baseURL, timeout)}
}

type stockResponse struct {
	Available int `json:"available"`
}

// Availability returns the available quantity for (warehouse, product).
// Unknown keys report zero stock — the conservative reading.
func (c *StockClient) Availability(ctx context.Context, warehouseID, productID string) (int, error) {
	q := url.Values{}
	q.Set("warehouse_id", warehouseID)
	q.Set("product_id", productID)

	var resp stockResponse
	if err := c.api.getJSON(ctx, "/v1/stock", q, &resp); err != nil {
		if errors.Is(err, errNoData) {
			return 0, nil
		}
		return 0, err
	}
	return resp.Available, nil
}
