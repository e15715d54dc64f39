package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"
	tracking "fulfillment-tracker/internal/features/tracking/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrOrderNotFound is returned when the order does not exist.
var ErrOrderNotFound = ports.ErrOrderNotFound

// ErrEmailMismatch is returned when the provided email does not match the order's email.
var ErrEmailMismatch = errors.New("email does not match order record")

// ErrInvalidOrder is returned when a placement request is malformed.
var ErrInvalidOrder = errors.New("invalid order")

// PlaceOrderInput carries the fields of a newly placed order.
type PlaceOrderInput struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Items     []domain.OrderItem
}

// OrderService handles placing orders and the customer-facing order lookup.
type OrderService struct {
	// repo is the order document store.
	repo ports.OrderRepository
	// leadTime seeds the expected delivery of new and backfilled orders.
	leadTime time.Duration
	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(repo ports.OrderRepository, leadTime time.Duration) *OrderService {
	return &OrderService{
		repo:     repo,
		leadTime: leadTime,
		now:      time.Now,
	}
}

// PlaceOrder stores a new order with its seed tracking.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidOrder)
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	now := s.now().UTC()
	order := &domain.Order{
		ID:        id,
		Email:     email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Items:     in.Items,
		CreatedAt: now,
	}
	order.ApplyTracking(tracking.NewSeedTracking(tracking.StatusPlaced, now, s.leadTime), now)

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("service: failed to place order: %w", err)
	}

	logger.Named("orders").Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
	)

	return order, nil
}

// GetOrder retrieves an order by ID and validates that the provided email matches the order's email.
// Orders that predate tracking are returned with a synthesized one.
func (s *OrderService) GetOrder(ctx context.Context, orderID, email string) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(order.Email, email) {
		return nil, ErrEmailMismatch
	}

	tr := order.CurrentTracking(s.leadTime)
	order.Tracking = &tr

	return order, nil
}
