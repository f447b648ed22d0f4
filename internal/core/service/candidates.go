package service

import (
	"sort"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// Network is the static set of warehouses and carriers known to the engine.
// It is configuration, not provider data: candidate generation does no I/O.
type Network struct {
	Warehouses []domain.Warehouse `json:"warehouses"`
	Carriers   []domain.Carrier   `json:"carriers"`
}

// CandidatePair is one (warehouse, carrier) pairing to evaluate for an order.
type CandidatePair struct {
	Warehouse domain.Warehouse
	Carrier   domain.Carrier
}

// CandidateGenerator enumerates the feasible pairs for an order. Warehouses
// are excluded only when administratively disabled; stock sufficiency needs
// provider data and is checked later, during scoring. Carriers are excluded
// when the destination country is outside their service area.
type CandidateGenerator struct {
	network Network
}

// NewCandidateGenerator copies and sorts the network so that generated pairs
// come out warehouse-ID ascending, then carrier-ID ascending. Downstream
// tie-breaks rely on this ordering being reproducible.
func NewCandidateGenerator(n Network) *CandidateGenerator {
	warehouses := make([]domain.Warehouse, len(n.Warehouses))
	copy(warehouses, n.Warehouses)
	sort.Slice(warehouses, func(i, j int) bool { return warehouses[i].ID < warehouses[j].ID })

	carriers := make([]domain.Carrier, len(n.Carriers))
	copy(carriers, n.Carriers)
	sort.Slice(carriers, func(i, j int) bool { return carriers[i].ID < carriers[j].ID })

	return &CandidateGenerator{network: Network{Warehouses: warehouses, Carriers: carriers}}
}

// Generate returns the ordered candidate pairs for the order, or
// domain.ErrNoCandidates when no warehouse/carrier combination exists for the
// destination. That error is terminal for the run: it signals a configuration
// or address-country problem, not a transient condition.
func (g *CandidateGenerator) Generate(order *domain.Order) ([]CandidatePair, error) {
	var carriers []domain.Carrier
	for _, c := range g.network.Carriers {
		if c.ServesCountry(order.Destination.CountryCode) {
			carriers = append(carriers, c)
		}
	}

	var pairs []CandidatePair
	for _, w := range g.network.Warehouses {
		if w.Disabled {
			continue
		}
		for _, c := range carriers {
			pairs = append(pairs, CandidatePair{Warehouse: w, Carrier: c})
		}
	}

	if len(pairs) == 0 {
		return nil, domain.ErrNoCandidates
	}
	return pairs, nil
}
