package gateway

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// CarbonClient implements ports.CarbonProvider against the carbon-accounting
// context.
type CarbonClient struct {
	api *apiClient
}

func NewCarbonClient(baseURL string, timeout time.Duration) *CarbonClient {
	return &CarbonClient{api: newAPIClient(baseURL, timeout)}
}

type carbonResponse struct {
	CarbonKg float64 `json:"carbon_kg"`
}

// Estimate returns kg CO2e for the leg. The carbon context knows every
// transport mode, so a missing key is a provider fault, not "no data": it
// falls back to the domain's published emission factors rather than scoring
// the candidate with an optimistic zero.
func (c *CarbonClient) Estimate(ctx context.Context, carrierID string, mode domain.TransportMode, distanceKm, weightKg float64) (float64, error) {
	q := url.Values{}
	q.Set("carrier_id", carrierID)
	q.Set("mode", string(mode))
	q.Set("distance_km", strconv.FormatFloat(distanceKm, 'f', 2, 64))
	q.Set("weight_kg", strconv.FormatFloat(weightKg, 'f', 3, 64))

	var resp carbonResponse
	if err := c.api.getJSON(ctx, "/v1/carbon", q, &resp); err != nil {
		if errors.Is(err, errNoData) {
			return domain.EstimateCarbonKg(mode, distanceKm, weightKg), nil
		}
		return 0, err
	}
	return resp.CarbonKg, nil
}
