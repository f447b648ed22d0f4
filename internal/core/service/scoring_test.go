package service

import (
	"testing"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// cand builds a complete candidate with enough stock for testOrder's two units.
func cand(warehouseID, carrierID string, cost, carbonKg float64, transitDays int) domain.Candidate {
	return domain.Candidate{
		Warehouse:   domain.Warehouse{ID: warehouseID},
		Carrier:     domain.Carrier{ID: carrierID},
		Stock:       map[string]int{"SKU-1": 10},
		Cost:        cost,
		Currency:    "EUR",
		TransitDays: transitDays,
		CarbonKg:    carbonKg,
		Complete:    true,
	}
}

func TestRankCandidates_Cheapest(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	ranked := rankCandidates(order, []domain.Candidate{
		cand("WH-A", "C1", 15.0, 3.2, 2),
		cand("WH-B", "C2", 9.0, 2.1, 4),
	})

	if len(ranked) != 2 {
		t.Fatalf("expected 2 feasible candidates, got %d", len(ranked))
	}
	if ranked[0].Warehouse.ID != "WH-B" {
		t.Fatalf("cheapest should win, got %s", ranked[0].Warehouse.ID)
	}
}

func TestRankCandidates_Fastest(t *testing.T) {
	order := testOrder(domain.StrategyFastest, "DE")
	ranked := rankCandidates(order, []domain.Candidate{
		cand("WH-A", "C1", 9.0, 2.1, 4),
		cand("WH-B", "C2", 15.0, 3.2, 1),
	})

	if ranked[0].Warehouse.ID != "WH-B" {
		t.Fatalf("fastest should win, got %s", ranked[0].Warehouse.ID)
	}
}

func TestRankCandidates_LowestCarbon(t *testing.T) {
	order := testOrder(domain.StrategyLowestCarbon, "DE")
	ranked := rankCandidates(order, []domain.Candidate{
		cand("WH-A", "C1", 9.0, 8.4, 2),
		cand("WH-B", "C2", 15.0, 1.2, 5),
	})

	if ranked[0].Warehouse.ID != "WH-B" {
		t.Fatalf("lowest carbon should win, got %s", ranked[0].Warehouse.ID)
	}
}

func TestRankCandidates_TieBreakChain(t *testing.T) {
	order := testOrder(domain.StrategyFastest, "DE")

	// All tied on transit days. Cost breaks the first tie, carbon the second,
	// warehouse ID the third.
	ranked := rankCandidates(order, []domain.Candidate{
		cand("WH-C", "C1", 10.0, 2.0, 3),
		cand("WH-B", "C2", 10.0, 2.0, 3),
		cand("WH-A", "C3", 10.0, 1.0, 3),
		cand("WH-D", "C4", 9.0, 5.0, 3),
	})

	want := []string{"WH-D", "WH-A", "WH-B", "WH-C"}
	for i, wh := range want {
		if ranked[i].Warehouse.ID != wh {
			t.Errorf("rank %d: expected %s, got %s", i, wh, ranked[i].Warehouse.ID)
		}
	}
}

func TestRankCandidates_Deterministic(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	input := []domain.Candidate{
		cand("WH-B", "C2", 10.0, 2.0, 3),
		cand("WH-A", "C1", 10.0, 2.0, 3),
		cand("WH-C", "C3", 8.0, 4.0, 2),
	}

	first := rankCandidates(order, input)
	for run := 0; run < 10; run++ {
		again := rankCandidates(order, input)
		for i := range first {
			if first[i].Warehouse.ID != again[i].Warehouse.ID || first[i].Carrier.ID != again[i].Carrier.ID {
				t.Fatalf("run %d: ranking differs at position %d", run, i)
			}
		}
	}
}

func TestRankCandidates_FiltersInfeasible(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")

	short := cand("WH-A", "C1", 1.0, 1.0, 1)
	short.Stock = map[string]int{"SKU-1": 1} // order needs 2

	incomplete := cand("WH-B", "C2", 2.0, 2.0, 2)
	incomplete.Complete = false

	ranked := rankCandidates(order, []domain.Candidate{
		short,
		incomplete,
		cand("WH-C", "C3", 99.0, 9.0, 9),
	})

	if len(ranked) != 1 || ranked[0].Warehouse.ID != "WH-C" {
		t.Fatalf("expected only WH-C to survive filtering, got %+v", ranked)
	}
}

func TestRankCandidates_DuplicateLinesSumDemand(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	// SKU-1 appears twice: 2 + 3 units. A stock of 4 covers either line alone
	// but not the combined demand.
	order.Lines = append(order.Lines, domain.LineItem{ProductID: "SKU-1", Quantity: 3, UnitWeightKg: 1.5})

	short := cand("WH-A", "C1", 1.0, 1.0, 1)
	short.Stock = map[string]int{"SKU-1": 4}

	enough := cand("WH-B", "C2", 2.0, 2.0, 2)
	enough.Stock = map[string]int{"SKU-1": 5}

	ranked := rankCandidates(order, []domain.Candidate{short, enough})
	if len(ranked) != 1 || ranked[0].Warehouse.ID != "WH-B" {
		t.Fatalf("expected only WH-B to cover the combined demand, got %+v", ranked)
	}
}

func TestRankCandidates_Empty(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	if ranked := rankCandidates(order, nil); len(ranked) != 0 {
		t.Fatalf("expected empty ranking, got %d", len(ranked))
	}
}
