package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
	"github.com/greenroute/fulfillment-engine/internal/core/ports"
	"github.com/greenroute/fulfillment-engine/internal/pkg/metrics"
)

const (
	defaultWorkers   = 4
	defaultBatchSize = 64
	defaultInterval  = time.Second
	channelBuffer    = 128
)

// StreamPublisher pushes one integration event to the transport.
type StreamPublisher interface {
	Publish(ctx context.Context, evt domain.OutboxEvent) error
}

// PublishMarker suppresses re-publishing events that already reached the
// stream (best effort; delivery stays at-least-once).
type PublishMarker interface {
	IsPublished(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// Relay drains the outbox and publishes pending events. Events are routed to
// a fixed set of workers by consistent hashing on the order ID, so events of
// one order are always published in the order they were appended.
type Relay struct {
	outbox    ports.OutboxRepository
	publisher StreamPublisher
	marker    PublishMarker
	workers   []chan domain.OutboxEvent
	interval  time.Duration
	batchSize int
	log       zerolog.Logger
}

// Options tunes the relay; zero values fall back to defaults.
type Options struct {
	Workers   int
	BatchSize int
	Interval  time.Duration
}

// NewRelay creates a Relay with opts.Workers sharded workers.
func NewRelay(outbox ports.OutboxRepository, publisher StreamPublisher, marker PublishMarker, opts Options, log zerolog.Logger) *Relay {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}

	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		marker:    marker,
		workers:   make([]chan domain.OutboxEvent, opts.Workers),
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		log:       log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan domain.OutboxEvent, channelBuffer)
	}
	return r
}

// Start launches the poll loop and all worker goroutines. Everything stops
// when ctx is cancelled.
func (r *Relay) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
	go r.runPollLoop(ctx)
}

func (r *Relay) runPollLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// An event still queued from the previous tick may be fetched again; the
	// publish marker makes the redundant delivery a no-op on the stream.
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *Relay) drainOnce(ctx context.Context) {
	events, err := r.outbox.FetchPending(ctx, r.batchSize)
	if err != nil {
		r.log.Error().Err(err).Msg("outbox fetch failed")
		return
	}

	if pending, err := r.outbox.CountPending(ctx); err == nil {
		metrics.OutboxPending.Set(float64(pending))
	}

	for _, evt := range events {
		select {
		case r.workers[r.shardIndex(evt.OrderID)] <- evt:
		case <-ctx.Done():
			return
		}
	}
}

// shardIndex maps an order ID deterministically to a worker index.
func (r *Relay) shardIndex(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32()) % len(r.workers)
}

func (r *Relay) runWorker(ctx context.Context, id int, ch <-chan domain.OutboxEvent) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := r.deliver(ctx, evt); err != nil {
				metrics.OutboxErrorsTotal.Inc()
				r.log.Error().Err(err).
					Str("event_id", evt.ID).
					Str("order_id", evt.OrderID).
					Str("worker_id", workerID).
					Msg("event publish failed")
				if markErr := r.outbox.MarkFailed(ctx, evt.ID, err.Error()); markErr != nil {
					r.log.Warn().Err(markErr).Str("event_id", evt.ID).Msg("failed to record publish failure")
				}
			}
		}
	}
}

// deliver publishes one event and marks it published. The marker check makes
// redelivery after a crash between publish and mark a no-op on the stream.
func (r *Relay) deliver(ctx context.Context, evt domain.OutboxEvent) error {
	published, err := r.marker.IsPublished(ctx, evt.ID)
	if err != nil {
		r.log.Warn().Err(err).Str("event_id", evt.ID).Msg("marker check failed, publishing anyway")
	}

	if !published {
		if err := r.publisher.Publish(ctx, evt); err != nil {
			return err
		}
		if err := r.marker.Mark(ctx, evt.ID); err != nil {
			r.log.Warn().Err(err).Str("event_id", evt.ID).Msg("failed to set publish marker")
		}
		metrics.OutboxPublishedTotal.Inc()
	}

	if err := r.outbox.MarkPublished(ctx, evt.ID); err != nil {
		return err
	}

	r.log.Debug().
		Str("event_id", evt.ID).
		Str("order_id", evt.OrderID).
		Str("type", evt.Type).
		Msg("event published")
	return nil
}
