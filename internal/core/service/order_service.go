package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
	"github.com/greenroute/fulfillment-engine/internal/core/ports"
	"github.com/greenroute/fulfillment-engine/internal/pkg/metrics"
)

// OrderService handles order intake and lookup. Orders enter the engine in
// pending_fulfillment; the optimizer is the only component that moves them on.
type OrderService struct {
	repo ports.OrderRepository
	log  zerolog.Logger
}

func NewOrderService(repo ports.OrderRepository, log zerolog.Logger) *OrderService {
	return &OrderService{repo: repo, log: log}
}

// CreateOrder validates the order invariants and registers it for fulfillment.
func (s *OrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*ports.OrderResult, error) {
	lines := make([]domain.LineItem, 0, len(input.Lines))
	for _, l := range input.Lines {
		lines = append(lines, domain.LineItem{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			UnitWeightKg: l.UnitWeightKg,
		})
	}

	order := &domain.Order{
		ID:         uuid.NewString(),
		CustomerID: input.CustomerID,
		Lines:      lines,
		Destination: domain.Address{
			Line:        input.Destination.Line,
			City:        input.Destination.City,
			ZipCode:     input.Destination.ZipCode,
			CountryCode: input.Destination.CountryCode,
			Coordinates: domain.Coordinates{
				Lat: input.Destination.Coordinates.Lat,
				Lng: input.Destination.Coordinates.Lng,
			},
		},
		Strategy:  domain.Strategy(input.Strategy),
		Status:    domain.StatusPendingFulfillment,
		CreatedAt: time.Now().UTC(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.log.Error().Err(err).Msg("failed to create order")
		return nil, err
	}

	metrics.OrdersCreatedTotal.WithLabelValues(string(order.Strategy)).Inc()
	s.log.Info().
		Str("order_id", order.ID).
		Str("customer_id", order.CustomerID).
		Str("strategy", string(order.Strategy)).
		Msg("order registered for fulfillment")

	return &ports.OrderResult{
		OrderID:   order.ID,
		Status:    string(order.Status),
		Strategy:  string(order.Strategy),
		CreatedAt: order.CreatedAt,
	}, nil
}

// GetOrder returns the full order view, including the decision once taken.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*ports.OrderDetail, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines := make([]ports.LineItemInput, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, ports.LineItemInput{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			UnitWeightKg: l.UnitWeightKg,
		})
	}

	detail := &ports.OrderDetail{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     string(order.Status),
		Strategy:   string(order.Strategy),
		Lines:      lines,
		Destination: ports.AddressInput{
			Line:        order.Destination.Line,
			City:        order.Destination.City,
			ZipCode:     order.Destination.ZipCode,
			CountryCode: order.Destination.CountryCode,
			Coordinates: ports.CoordinatesInput{
				Lat: order.Destination.Coordinates.Lat,
				Lng: order.Destination.Coordinates.Lng,
			},
		},
		TotalWeightKg: order.TotalWeightKg(),
		CreatedAt:     order.CreatedAt,
		FailureReason: order.FailureReason,
	}
	if order.Decision != nil {
		view := ports.NewDecisionView(*order.Decision)
		detail.Decision = &view
	}
	return detail, nil
}
