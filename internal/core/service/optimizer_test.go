package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
	"github.com/greenroute/fulfillment-engine/internal/core/ports"
)

type stubOrderRepo struct {
	orders map[string]*domain.Order
	outbox []domain.OutboxEvent
	failed map[string]string
}

func newStubOrderRepo(orders ...*domain.Order) *stubOrderRepo {
	r := &stubOrderRepo{
		orders: make(map[string]*domain.Order),
		failed: make(map[string]string),
	}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	if _, exists := r.orders[o.ID]; exists {
		return errors.New("duplicate order")
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) AttachDecision(_ context.Context, orderID string, d domain.FulfillmentDecision, evt domain.OutboxEvent) error {
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != domain.StatusPendingFulfillment {
		return domain.ErrAlreadyDecided
	}
	o.Status = domain.StatusDecided
	o.Decision = &d
	o.DecisionHistory = append(o.DecisionHistory, d)
	r.outbox = append(r.outbox, evt)
	return nil
}

func (r *stubOrderRepo) MarkFailed(_ context.Context, orderID string, reason string) error {
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = domain.StatusFailed
	o.FailureReason = reason
	r.failed[orderID] = reason
	return nil
}

type stockProviderFunc func(ctx context.Context, warehouseID, productID string) (int, error)

func (f stockProviderFunc) Availability(ctx context.Context, warehouseID, productID string) (int, error) {
	return f(ctx, warehouseID, productID)
}

type quoteProviderFunc func(ctx context.Context, warehouseID string, dest domain.Address, carrierID string) (*ports.ShippingQuote, error)

func (f quoteProviderFunc) Quote(ctx context.Context, warehouseID string, dest domain.Address, carrierID string) (*ports.ShippingQuote, error) {
	return f(ctx, warehouseID, dest, carrierID)
}

type carbonProviderFunc func(ctx context.Context, carrierID string, mode domain.TransportMode, distanceKm, weightKg float64) (float64, error)

func (f carbonProviderFunc) Estimate(ctx context.Context, carrierID string, mode domain.TransportMode, distanceKm, weightKg float64) (float64, error) {
	return f(ctx, carrierID, mode, distanceKm, weightKg)
}

func newTestOptimizer(repo *stubOrderRepo, stock ports.StockProvider, quotes ports.ShippingQuoteProvider, carbon ports.CarbonProvider, timeout time.Duration) *Optimizer {
	log := zerolog.Nop()
	return NewOptimizer(
		repo,
		NewCandidateGenerator(testNetwork()),
		stock,
		quotes,
		carbon,
		NewDecisionPublisher(repo, log),
		timeout,
		log,
	)
}

// happyProviders returns providers for a two-warehouse race: Amsterdam holds
// plenty of stock at a higher price, Berlin is cheaper and greener but only
// holds 5 units.
func happyProviders() (ports.StockProvider, ports.ShippingQuoteProvider, ports.CarbonProvider) {
	stock := stockProviderFunc(func(_ context.Context, warehouseID, _ string) (int, error) {
		if warehouseID == "WH-AMS" {
			return 20, nil
		}
		return 5, nil
	})
	quotes := quoteProviderFunc(func(_ context.Context, warehouseID string, _ domain.Address, _ string) (*ports.ShippingQuote, error) {
		if warehouseID == "WH-AMS" {
			return &ports.ShippingQuote{Cost: 15.0, Currency: "EUR", TransitDays: 3}, nil
		}
		return &ports.ShippingQuote{Cost: 9.0, Currency: "EUR", TransitDays: 1}, nil
	})
	carbon := carbonProviderFunc(func(_ context.Context, _ string, _ domain.TransportMode, _, _ float64) (float64, error) {
		return 3.2, nil
	})
	return stock, quotes, carbon
}

func TestOptimizer_CheapestFeasibleWins(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	order.Lines[0].Quantity = 10 // Berlin's 5 units cannot cover this

	repo := newStubOrderRepo(order)
	stock, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	result, err := opt.Optimize(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}

	// Berlin is cheaper but infeasible; Amsterdam wins, and among Amsterdam's
	// tied carriers the generator's carrier ordering decides.
	if result.Decision.WarehouseID != "WH-AMS" {
		t.Fatalf("expected WH-AMS, got %s", result.Decision.WarehouseID)
	}
	if result.Decision.CarrierID != "CARR-DHL" {
		t.Fatalf("expected CARR-DHL by tie-break ordering, got %s", result.Decision.CarrierID)
	}
	if result.Decision.Cost != 15.0 {
		t.Errorf("expected cost 15.0, got %v", result.Decision.Cost)
	}
	if result.CandidatesEvaluated != 4 {
		t.Errorf("expected 4 candidates evaluated, got %d", result.CandidatesEvaluated)
	}
	if result.CandidatesFeasible != 2 {
		t.Errorf("expected 2 feasible candidates, got %d", result.CandidatesFeasible)
	}

	stored := repo.orders[order.ID]
	if stored.Status != domain.StatusDecided {
		t.Errorf("expected order decided, got %s", stored.Status)
	}
	if stored.Decision == nil || stored.Decision.WarehouseID != "WH-AMS" {
		t.Errorf("decision not persisted: %+v", stored.Decision)
	}
	if len(repo.outbox) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(repo.outbox))
	}
	if repo.outbox[0].Type != domain.EventTypeOrderFulfillmentDecided {
		t.Errorf("unexpected event type %s", repo.outbox[0].Type)
	}
}

func TestOptimizer_CheapestPrefersBerlinWhenFeasible(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	order.Lines[0].Quantity = 2 // both warehouses can cover this

	repo := newStubOrderRepo(order)
	stock, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	result, err := opt.Optimize(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}
	if result.Decision.WarehouseID != "WH-BER" {
		t.Fatalf("expected cheaper WH-BER, got %s", result.Decision.WarehouseID)
	}
	if result.Decision.Cost != 9.0 {
		t.Errorf("expected cost 9.0, got %v", result.Decision.Cost)
	}
}

func TestOptimizer_AlreadyDecided(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	order.Status = domain.StatusDecided

	repo := newStubOrderRepo(order)
	stock, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	if _, err := opt.Optimize(context.Background(), order.ID); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestOptimizer_InvalidStatus(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	order.Status = domain.StatusFailed

	repo := newStubOrderRepo(order)
	stock, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	if _, err := opt.Optimize(context.Background(), order.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOptimizer_OrderNotFound(t *testing.T) {
	repo := newStubOrderRepo()
	stock, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	if _, err := opt.Optimize(context.Background(), "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOptimizer_NoCandidatesForDestination(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "US")

	repo := newStubOrderRepo(order)
	stock, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	if _, err := opt.Optimize(context.Background(), order.ID); !errors.Is(err, domain.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if repo.orders[order.ID].Status != domain.StatusPendingFulfillment {
		t.Errorf("order status should be untouched, got %s", repo.orders[order.ID].Status)
	}
}

func TestOptimizer_TimeoutLeavesOrderPending(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")

	repo := newStubOrderRepo(order)
	_, quotes, carbon := happyProviders()
	blocking := stockProviderFunc(func(ctx context.Context, _, _ string) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	opt := newTestOptimizer(repo, blocking, quotes, carbon, 30*time.Millisecond)

	start := time.Now()
	_, err := opt.Optimize(context.Background(), order.ID)
	if !errors.Is(err, domain.ErrOptimizationTimedOut) {
		t.Fatalf("expected ErrOptimizationTimedOut, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("run did not respect the aggregate deadline: %v", elapsed)
	}

	stored := repo.orders[order.ID]
	if stored.Status != domain.StatusPendingFulfillment {
		t.Errorf("timed-out run must leave the order pending, got %s", stored.Status)
	}
	if len(repo.outbox) != 0 {
		t.Errorf("timed-out run must not queue events, got %d", len(repo.outbox))
	}
}

func TestOptimizer_CancelledRunWritesNothing(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")

	repo := newStubOrderRepo(order)
	stock, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := opt.Optimize(ctx, order.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if repo.orders[order.ID].Status != domain.StatusPendingFulfillment {
		t.Errorf("cancelled run must not change status, got %s", repo.orders[order.ID].Status)
	}
	if len(repo.outbox) != 0 {
		t.Errorf("cancelled run must not queue events, got %d", len(repo.outbox))
	}
}

func TestOptimizer_AllProvidersFailing(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")

	repo := newStubOrderRepo(order)
	failing := stockProviderFunc(func(_ context.Context, _, _ string) (int, error) {
		return 0, domain.ErrProviderUnavailable
	})
	_, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, failing, quotes, carbon, time.Second)

	_, err := opt.Optimize(context.Background(), order.ID)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}

	// Transient starvation: the order stays pending for a later retry.
	if repo.orders[order.ID].Status != domain.StatusPendingFulfillment {
		t.Errorf("expected order to stay pending, got %s", repo.orders[order.ID].Status)
	}
}

func TestOptimizer_DuplicateProductLinesAggregateDemand(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	// The same product on two lines: 3 + 3 units. Berlin's 5 units cover each
	// line in isolation but not the combined demand, so Amsterdam must win.
	order.Lines[0].Quantity = 3
	order.Lines = append(order.Lines, domain.LineItem{ProductID: "SKU-1", Quantity: 3, UnitWeightKg: 1.5})

	repo := newStubOrderRepo(order)
	stock, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	result, err := opt.Optimize(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}
	if result.Decision.WarehouseID != "WH-AMS" {
		t.Fatalf("expected WH-AMS to cover the combined 6 units, got %s", result.Decision.WarehouseID)
	}
	if result.CandidatesFeasible != 2 {
		t.Errorf("expected Amsterdam's 2 pairings feasible, got %d", result.CandidatesFeasible)
	}
	if repo.orders[order.ID].Status != domain.StatusDecided {
		t.Errorf("expected order decided, got %s", repo.orders[order.ID].Status)
	}
}

func TestOptimizer_InsufficientStockEverywhere(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	order.Lines[0].Quantity = 1000

	repo := newStubOrderRepo(order)
	stock, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	_, err := opt.Optimize(context.Background(), order.ID)
	if !errors.Is(err, domain.ErrNoFeasibleCandidate) {
		t.Fatalf("expected ErrNoFeasibleCandidate, got %v", err)
	}

	stored := repo.orders[order.ID]
	if stored.Status != domain.StatusFailed {
		t.Errorf("expected order failed, got %s", stored.Status)
	}
	if stored.FailureReason == "" {
		t.Errorf("expected a failure reason to be recorded")
	}
}

func TestOptimizer_NoRouteAnywhere(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")

	repo := newStubOrderRepo(order)
	stock, _, carbon := happyProviders()
	noRoute := quoteProviderFunc(func(_ context.Context, _ string, _ domain.Address, _ string) (*ports.ShippingQuote, error) {
		return nil, nil
	})
	opt := newTestOptimizer(repo, stock, noRoute, carbon, time.Second)

	// "No route" is a definitive answer, so the order fails rather than
	// staying pending behind a transient error.
	_, err := opt.Optimize(context.Background(), order.ID)
	if !errors.Is(err, domain.ErrNoFeasibleCandidate) {
		t.Fatalf("expected ErrNoFeasibleCandidate, got %v", err)
	}
	if repo.orders[order.ID].Status != domain.StatusFailed {
		t.Errorf("expected order failed, got %s", repo.orders[order.ID].Status)
	}
}

func TestOptimizer_SingleProviderFailureDropsCandidate(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")

	repo := newStubOrderRepo(order)
	stock, _, carbon := happyProviders()
	// Berlin's quotes fail: the cheaper warehouse drops out and Amsterdam wins.
	flaky := quoteProviderFunc(func(_ context.Context, warehouseID string, _ domain.Address, _ string) (*ports.ShippingQuote, error) {
		if warehouseID == "WH-BER" {
			return nil, domain.ErrProviderTimeout
		}
		return &ports.ShippingQuote{Cost: 15.0, Currency: "EUR", TransitDays: 3}, nil
	})
	opt := newTestOptimizer(repo, stock, flaky, carbon, time.Second)

	result, err := opt.Optimize(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}
	if result.Decision.WarehouseID != "WH-AMS" {
		t.Fatalf("expected WH-AMS after Berlin dropped out, got %s", result.Decision.WarehouseID)
	}
}

func TestOptimizer_InvalidOrderRejectedBeforeProviders(t *testing.T) {
	order := testOrder(domain.StrategyCheapest, "DE")
	order.Lines = nil

	repo := newStubOrderRepo(order)
	called := false
	stock := stockProviderFunc(func(_ context.Context, _, _ string) (int, error) {
		called = true
		return 0, nil
	})
	_, quotes, carbon := happyProviders()
	opt := newTestOptimizer(repo, stock, quotes, carbon, time.Second)

	if _, err := opt.Optimize(context.Background(), order.ID); !errors.Is(err, domain.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
	if called {
		t.Errorf("invariant violations must fail before provider I/O")
	}
}
