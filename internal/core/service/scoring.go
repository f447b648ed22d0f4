package service

import (
	"sort"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// primaryMetric returns the candidate's score for the requested strategy.
// Lower is always better.
func primaryMetric(c domain.Candidate, strategy domain.Strategy) float64 {
	switch strategy {
	case domain.StrategyFastest:
		return float64(c.TransitDays)
	case domain.StrategyLowestCarbon:
		return c.CarbonKg
	default: // cheapest
		return c.Cost
	}
}

// rankCandidates filters out infeasible candidates and sorts the rest by the
// order strategy's primary metric ascending. Ties resolve by lower cost, then
// lower carbon, then lower warehouse ID. The stable sort preserves the
// generator's carrier ordering for candidates identical on all four keys, so
// the ranking is deterministic for identical inputs.
func rankCandidates(order *domain.Order, candidates []domain.Candidate) []domain.Candidate {
	feasible := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.FeasibleFor(order) {
			feasible = append(feasible, c)
		}
	}

	sort.SliceStable(feasible, func(i, j int) bool {
		a, b := feasible[i], feasible[j]
		if pa, pb := primaryMetric(a, order.Strategy), primaryMetric(b, order.Strategy); pa != pb {
			return pa < pb
		}
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		if a.CarbonKg != b.CarbonKg {
			return a.CarbonKg < b.CarbonKg
		}
		return a.Warehouse.ID < b.Warehouse.ID
	})

	return feasible
}
