// Package gateway contains the HTTP clients for the three provider contracts
// the core defines: stock availability, shipping quotes, and carbon
// estimates. Each supporting bounded context exposes a small read-only REST
// surface; the clients here translate transport failures into the typed
// provider errors the optimizer tolerates per candidate.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

const defaultClientTimeout = 2 * time.Second

// errNoData signals a 404 from a provider: the key is unknown, not an error.
var errNoData = errors.New("no data for key")

type apiClient struct {
	base string
	hc   *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return &apiClient{
		base: baseURL,
		hc:   &http.Client{Timeout: timeout},
	}
}

// getJSON issues a GET and decodes the JSON body into out. Errors are
// normalized: deadline/cancellation → domain.ErrProviderTimeout, transport or
// 5xx failures → domain.ErrProviderUnavailable, 404 → errNoData.
func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return domain.ErrProviderTimeout
		}
		var ue *url.Error
		if errors.As(err, &ue) && ue.Timeout() {
			return domain.ErrProviderTimeout
		}
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNoData
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: %s returned %d", domain.ErrProviderUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", domain.ErrProviderUnavailable, err)
	}
	return nil
}
