package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

type stubOutbox struct {
	mu        sync.Mutex
	pending   []domain.OutboxEvent
	published []string
	failed    map[string]string
}

func newStubOutbox(events ...domain.OutboxEvent) *stubOutbox {
	return &stubOutbox{pending: events, failed: make(map[string]string)}
}

func (s *stubOutbox) FetchPending(_ context.Context, limit int) ([]domain.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > limit {
		return append([]domain.OutboxEvent(nil), s.pending[:limit]...), nil
	}
	return append([]domain.OutboxEvent(nil), s.pending...), nil
}

func (s *stubOutbox) MarkPublished(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, eventID)
	kept := s.pending[:0]
	for _, e := range s.pending {
		if e.ID != eventID {
			kept = append(kept, e)
		}
	}
	s.pending = kept
	return nil
}

func (s *stubOutbox) MarkFailed(_ context.Context, eventID string, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[eventID] = cause
	return nil
}

func (s *stubOutbox) CountPending(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.pending)), nil
}

func (s *stubOutbox) publishedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.published...)
}

type stubStreamPublisher struct {
	mu     sync.Mutex
	events []domain.OutboxEvent
	err    error
}

func (s *stubStreamPublisher) Publish(_ context.Context, evt domain.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, evt)
	return nil
}

func (s *stubStreamPublisher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type stubMarker struct {
	mu     sync.Mutex
	marked map[string]bool
}

func newStubMarker() *stubMarker {
	return &stubMarker{marked: make(map[string]bool)}
}

func (s *stubMarker) IsPublished(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked[eventID], nil
}

func (s *stubMarker) Mark(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked[eventID] = true
	return nil
}

func evt(id, orderID string) domain.OutboxEvent {
	return domain.OutboxEvent{
		ID:      id,
		OrderID: orderID,
		Type:    domain.EventTypeOrderFulfillmentDecided,
		Payload: []byte(`{}`),
		Status:  domain.OutboxPending,
	}
}

func TestRelay_DeliverPublishesAndMarks(t *testing.T) {
	outbox := newStubOutbox()
	stream := &stubStreamPublisher{}
	marker := newStubMarker()
	r := NewRelay(outbox, stream, marker, Options{}, zerolog.Nop())

	e := evt("evt-1", "order-1")
	if err := r.deliver(context.Background(), e); err != nil {
		t.Fatalf("deliver returned error: %v", err)
	}
	if stream.count() != 1 {
		t.Fatalf("expected 1 published event, got %d", stream.count())
	}
	if !marker.marked["evt-1"] {
		t.Errorf("expected publish marker to be set")
	}
	if got := outbox.publishedIDs(); len(got) != 1 || got[0] != "evt-1" {
		t.Errorf("expected outbox record marked published, got %v", got)
	}
}

func TestRelay_DeliverSkipsAlreadyMarked(t *testing.T) {
	outbox := newStubOutbox()
	stream := &stubStreamPublisher{}
	marker := newStubMarker()
	marker.marked["evt-1"] = true
	r := NewRelay(outbox, stream, marker, Options{}, zerolog.Nop())

	if err := r.deliver(context.Background(), evt("evt-1", "order-1")); err != nil {
		t.Fatalf("deliver returned error: %v", err)
	}
	if stream.count() != 0 {
		t.Errorf("marked event must not hit the stream again, got %d publishes", stream.count())
	}
	// The outbox record is still settled so the relay stops refetching it.
	if got := outbox.publishedIDs(); len(got) != 1 {
		t.Errorf("expected outbox record marked published, got %v", got)
	}
}

func TestRelay_DeliverFailurePropagates(t *testing.T) {
	outbox := newStubOutbox()
	stream := &stubStreamPublisher{err: errors.New("stream down")}
	r := NewRelay(outbox, stream, newStubMarker(), Options{}, zerolog.Nop())

	if err := r.deliver(context.Background(), evt("evt-1", "order-1")); err == nil {
		t.Fatalf("expected delivery error")
	}
	if got := outbox.publishedIDs(); len(got) != 0 {
		t.Errorf("failed delivery must not mark the event published, got %v", got)
	}
}

func TestRelay_ShardIndexStablePerOrder(t *testing.T) {
	r := NewRelay(newStubOutbox(), &stubStreamPublisher{}, newStubMarker(), Options{Workers: 4}, zerolog.Nop())

	first := r.shardIndex("order-42")
	for i := 0; i < 100; i++ {
		if r.shardIndex("order-42") != first {
			t.Fatalf("shard index is not stable")
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("shard index %d out of range", first)
	}
}

func TestRelay_DrainsOutboxEndToEnd(t *testing.T) {
	outbox := newStubOutbox(
		evt("evt-1", "order-1"),
		evt("evt-2", "order-2"),
		evt("evt-3", "order-1"),
	)
	stream := &stubStreamPublisher{}
	marker := newStubMarker()
	r := NewRelay(outbox, stream, marker, Options{Workers: 2, Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		if pending, _ := outbox.CountPending(context.Background()); pending == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("relay did not drain the outbox in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if stream.count() != 3 {
		t.Fatalf("expected 3 events on the stream, got %d", stream.count())
	}
}
