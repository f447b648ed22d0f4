// Package network loads the static warehouse/carrier topology from a JSON
// file. The topology is configuration, owned by operations: changing it
// requires a deploy or restart, never a provider call.
package network

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/greenroute/fulfillment-engine/internal/core/service"
)

// Load reads and validates the network definition at path.
func Load(path string) (service.Network, error) {
	var n service.Network

	raw, err := os.ReadFile(path)
	if err != nil {
		return n, fmt.Errorf("read network config: %w", err)
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return n, fmt.Errorf("parse network config: %w", err)
	}
	if err := validate(n); err != nil {
		return n, fmt.Errorf("invalid network config: %w", err)
	}
	return n, nil
}

func validate(n service.Network) error {
	if len(n.Warehouses) == 0 {
		return fmt.Errorf("no warehouses defined")
	}
	if len(n.Carriers) == 0 {
		return fmt.Errorf("no carriers defined")
	}

	seen := make(map[string]struct{})
	for _, w := range n.Warehouses {
		if w.ID == "" {
			return fmt.Errorf("warehouse with empty id")
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("duplicate warehouse id %q", w.ID)
		}
		seen[w.ID] = struct{}{}
	}

	seen = make(map[string]struct{})
	for _, c := range n.Carriers {
		if c.ID == "" {
			return fmt.Errorf("carrier with empty id")
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate carrier id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if !c.Mode.IsValid() {
			return fmt.Errorf("carrier %q has unknown transport mode %q", c.ID, c.Mode)
		}
		if len(c.ServiceCountries) == 0 {
			return fmt.Errorf("carrier %q serves no countries", c.ID)
		}
	}
	return nil
}
