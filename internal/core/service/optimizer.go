package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
	"github.com/greenroute/fulfillment-engine/internal/core/ports"
	"github.com/greenroute/fulfillment-engine/internal/pkg/metrics"
)

const defaultOptimizeTimeout = 3 * time.Second

// Optimizer drives one optimization run per order: generate candidates, fetch
// provider data concurrently under a single aggregate deadline, score, select,
// and hand the winning candidate to the decision publisher.
type Optimizer struct {
	orders    ports.OrderRepository
	generator *CandidateGenerator
	stock     ports.StockProvider
	quotes    ports.ShippingQuoteProvider
	carbon    ports.CarbonProvider
	publisher *DecisionPublisher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewOptimizer wires the optimization pipeline. timeout bounds all provider
// calls of one run combined (not per call); values <= 0 fall back to 3s.
func NewOptimizer(
	orders ports.OrderRepository,
	generator *CandidateGenerator,
	stock ports.StockProvider,
	quotes ports.ShippingQuoteProvider,
	carbon ports.CarbonProvider,
	publisher *DecisionPublisher,
	timeout time.Duration,
	log zerolog.Logger,
) *Optimizer {
	if timeout <= 0 {
		timeout = defaultOptimizeTimeout
	}
	return &Optimizer{
		orders:    orders,
		generator: generator,
		stock:     stock,
		quotes:    quotes,
		carbon:    carbon,
		publisher: publisher,
		timeout:   timeout,
		log:       log,
	}
}

// Optimize selects a (warehouse, carrier) pair for the order and persists the
// decision. The run is one-directional: collecting candidates, querying
// providers, scoring, then decided or failed — no backtracking, no silent
// retries. A second run on an already decided order is rejected with
// domain.ErrAlreadyDecided.
func (o *Optimizer) Optimize(ctx context.Context, orderID string) (*ports.DecisionResult, error) {
	start := time.Now()

	order, err := o.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case domain.StatusPendingFulfillment:
		// proceed
	case domain.StatusDecided, domain.StatusConfirmed:
		return nil, domain.ErrAlreadyDecided
	default:
		return nil, fmt.Errorf("%w: cannot optimize order in status %s", domain.ErrInvalidTransition, order.Status)
	}

	// Invariant violations fail fast, before any provider I/O.
	if err := order.Validate(); err != nil {
		return nil, err
	}

	pairs, err := o.generator.Generate(order)
	if err != nil {
		o.observeOutcome(order.Strategy, "no_candidates", start)
		return nil, err
	}

	o.log.Debug().
		Str("order_id", order.ID).
		Int("candidates", len(pairs)).
		Str("strategy", string(order.Strategy)).
		Msg("querying providers")

	qctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	data, timedOut := o.queryProviders(qctx, order, pairs)

	candidates, definitive := assembleCandidates(order, pairs, data)
	ranked := rankCandidates(order, candidates)

	if len(ranked) == 0 {
		// The encompassing request may have been cancelled mid-run; an
		// abandoned run must not write anything.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		switch {
		case timedOut:
			o.observeOutcome(order.Strategy, "timed_out", start)
			return nil, domain.ErrOptimizationTimedOut
		case definitive == 0:
			// Every candidate was lost to provider failures, not to stock:
			// transient, the order stays pending for the caller to retry.
			o.observeOutcome(order.Strategy, "providers_unavailable", start)
			return nil, fmt.Errorf("%w: no provider data for any candidate", domain.ErrProviderUnavailable)
		default:
			// Insufficient stock everywhere: a business failure that moves
			// the order to failed and triggers the backorder flow upstream.
			o.observeOutcome(order.Strategy, "no_feasible_candidate", start)
			if err := o.orders.MarkFailed(ctx, order.ID, domain.ErrNoFeasibleCandidate.Error()); err != nil {
				return nil, err
			}
			return nil, domain.ErrNoFeasibleCandidate
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	best := ranked[0]
	decision := domain.NewFulfillmentDecision(best, order.Strategy, time.Now())
	if err := o.publisher.Publish(ctx, order, decision); err != nil {
		return nil, err
	}

	o.observeOutcome(order.Strategy, "decided", start)
	metrics.CandidatesEvaluated.Observe(float64(len(pairs)))
	o.log.Info().
		Str("order_id", order.ID).
		Str("warehouse_id", best.Warehouse.ID).
		Str("carrier_id", best.Carrier.ID).
		Str("strategy", string(order.Strategy)).
		Float64("cost", best.Cost).
		Float64("carbon_kg", best.CarbonKg).
		Int("transit_days", best.TransitDays).
		Msg("fulfillment decided")

	return &ports.DecisionResult{
		OrderID:             order.ID,
		Decision:            ports.NewDecisionView(decision),
		CandidatesEvaluated: len(pairs),
		CandidatesFeasible:  len(ranked),
	}, nil
}

func (o *Optimizer) observeOutcome(strategy domain.Strategy, outcome string, start time.Time) {
	metrics.DecisionsTotal.WithLabelValues(string(strategy), outcome).Inc()
	metrics.OptimizationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// ---------------------------------------------------------------------------
// Concurrent provider fan-out
// ---------------------------------------------------------------------------

type fetchKind int

const (
	fetchStock fetchKind = iota
	fetchQuote
	fetchCarbon
)

// fetchResult is the independent slot one gateway call settles into. Slots
// travel over a buffered channel sized for every call of the run, so late
// results never block their goroutine and are simply never read.
type fetchResult struct {
	kind        fetchKind
	warehouseID string
	carrierID   string
	productID   string
	qty         int
	quote       *ports.ShippingQuote
	carbonKg    float64
	elapsed     time.Duration
	err         error
}

func (k fetchKind) label() string {
	switch k {
	case fetchStock:
		return "stock"
	case fetchQuote:
		return "quote"
	default:
		return "carbon"
	}
}

// providerData accumulates the results that arrived before the deadline.
type providerData struct {
	stock     map[string]map[string]int // warehouse -> product -> qty
	stockErr  map[string]bool           // warehouse had a failed stock lookup
	quotes    map[string]*ports.ShippingQuote
	quoteErr  map[string]bool
	carbon    map[string]float64
	carbonErr map[string]bool
}

func pairKey(warehouseID, carrierID string) string {
	return warehouseID + "|" + carrierID
}

// queryProviders dispatches every gateway call for the run concurrently and
// joins them under ctx's deadline. Results are only read after a call has
// settled; calls still in flight when the deadline passes are abandoned and
// their candidates treated as incomplete. The second return value reports
// whether the deadline cut the join short.
func (o *Optimizer) queryProviders(ctx context.Context, order *domain.Order, pairs []CandidatePair) (*providerData, bool) {
	weight := order.TotalWeightKg()
	demand := order.DemandByProduct()

	warehouses := make(map[string]domain.Warehouse)
	for _, p := range pairs {
		warehouses[p.Warehouse.ID] = p.Warehouse
	}

	// One stock lookup per warehouse and unique product: an order listing the
	// same product on several lines still needs exactly one availability answer.
	total := len(warehouses)*len(demand) + 2*len(pairs)
	ch := make(chan fetchResult, total)

	for _, w := range warehouses {
		for productID := range demand {
			go func(warehouseID, productID string) {
				start := time.Now()
				qty, err := o.stock.Availability(ctx, warehouseID, productID)
				ch <- fetchResult{kind: fetchStock, warehouseID: warehouseID, productID: productID, qty: qty, elapsed: time.Since(start), err: err}
			}(w.ID, productID)
		}
	}
	for _, p := range pairs {
		go func(p CandidatePair) {
			start := time.Now()
			quote, err := o.quotes.Quote(ctx, p.Warehouse.ID, order.Destination, p.Carrier.ID)
			ch <- fetchResult{kind: fetchQuote, warehouseID: p.Warehouse.ID, carrierID: p.Carrier.ID, quote: quote, elapsed: time.Since(start), err: err}
		}(p)
		go func(p CandidatePair) {
			start := time.Now()
			distance := domain.HaversineKm(p.Warehouse.Coordinates, order.Destination.Coordinates)
			kg, err := o.carbon.Estimate(ctx, p.Carrier.ID, p.Carrier.Mode, distance, weight)
			ch <- fetchResult{kind: fetchCarbon, warehouseID: p.Warehouse.ID, carrierID: p.Carrier.ID, carbonKg: kg, elapsed: time.Since(start), err: err}
		}(p)
	}

	data := &providerData{
		stock:     make(map[string]map[string]int),
		stockErr:  make(map[string]bool),
		quotes:    make(map[string]*ports.ShippingQuote),
		quoteErr:  make(map[string]bool),
		carbon:    make(map[string]float64),
		carbonErr: make(map[string]bool),
	}

	for received := 0; received < total; received++ {
		select {
		case r := <-ch:
			data.absorb(r)
		case <-ctx.Done():
			return data, true
		}
	}
	return data, false
}

func (d *providerData) absorb(r fetchResult) {
	metrics.ProviderCallDuration.WithLabelValues(r.kind.label()).Observe(r.elapsed.Seconds())
	switch r.kind {
	case fetchStock:
		if r.err != nil {
			metrics.ProviderCallsTotal.WithLabelValues("stock", "error").Inc()
			d.stockErr[r.warehouseID] = true
			return
		}
		metrics.ProviderCallsTotal.WithLabelValues("stock", "ok").Inc()
		if d.stock[r.warehouseID] == nil {
			d.stock[r.warehouseID] = make(map[string]int)
		}
		d.stock[r.warehouseID][r.productID] = r.qty
	case fetchQuote:
		if r.err != nil {
			metrics.ProviderCallsTotal.WithLabelValues("quote", "error").Inc()
			d.quoteErr[pairKey(r.warehouseID, r.carrierID)] = true
			return
		}
		metrics.ProviderCallsTotal.WithLabelValues("quote", "ok").Inc()
		d.quotes[pairKey(r.warehouseID, r.carrierID)] = r.quote
	case fetchCarbon:
		if r.err != nil {
			metrics.ProviderCallsTotal.WithLabelValues("carbon", "error").Inc()
			d.carbonErr[pairKey(r.warehouseID, r.carrierID)] = true
			return
		}
		metrics.ProviderCallsTotal.WithLabelValues("carbon", "ok").Inc()
		d.carbon[pairKey(r.warehouseID, r.carrierID)] = r.carbonKg
	}
}

// assembleCandidates combines pairs with provider data. A candidate is
// complete only when every stock line, the quote, and the carbon estimate
// arrived without error; incomplete candidates stay in the slice (they count
// toward evaluation totals) but can never be feasible. The second return
// value counts candidates whose data was definitive — fully answered, even
// if the answer was "no stock" or "no route" — which distinguishes a genuine
// business failure from a run starved by provider errors.
func assembleCandidates(order *domain.Order, pairs []CandidatePair, data *providerData) ([]domain.Candidate, int) {
	candidates := make([]domain.Candidate, 0, len(pairs))
	definitive := 0
	products := len(order.DemandByProduct())

	for _, p := range pairs {
		c := domain.Candidate{Warehouse: p.Warehouse, Carrier: p.Carrier}
		key := pairKey(p.Warehouse.ID, p.Carrier.ID)

		stock, stockOK := data.stock[p.Warehouse.ID]
		if data.stockErr[p.Warehouse.ID] || len(stock) < products {
			stockOK = false
		}

		quote, quoteAnswered := data.quotes[key]
		quoteOK := quoteAnswered && !data.quoteErr[key]

		carbonKg, carbonAnswered := data.carbon[key]
		carbonOK := carbonAnswered && !data.carbonErr[key]

		if stockOK && quoteOK && carbonOK {
			definitive++
			if quote != nil {
				c.Stock = stock
				c.Cost = quote.Cost
				c.Currency = quote.Currency
				c.TransitDays = quote.TransitDays
				c.CarbonKg = carbonKg
				c.Complete = true
			}
			// quote == nil: the carrier offers no route for this leg — a
			// definitive answer, but the candidate cannot be scored.
		}
		candidates = append(candidates, c)
	}
	return candidates, definitive
}
