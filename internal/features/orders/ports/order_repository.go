package ports

import (
	"context"
	"errors"

	"fulfillment-tracker/internal/features/orders/domain"
)

var (
	// ErrOrderNotFound is returned when no order matches the identifier or tracking number.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists is returned when creating an order whose id is taken.
	ErrOrderExists = errors.New("order already exists")
	// ErrVersionConflict is returned when the order changed since it was read.
	// The caller must re-read before retrying.
	ErrVersionConflict = errors.New("order was modified concurrently")
	// ErrOrderVanished is returned when the document was deleted between read and write.
	// It is a persistence failure, not a lookup miss.
	ErrOrderVanished = errors.New("order document vanished before write")
)

// OrderRepository persists whole order documents.
// This is a Secondary Port (Driven Port).
type OrderRepository interface {
	// Create stores a new order with version 1.
	Create(ctx context.Context, order *domain.Order) error
	// Get retrieves an order by its unique identifier.
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	// FindByTrackingNumber retrieves the order whose courier carries the tracking number.
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error)
	// Save replaces the stored document if its version still equals order.Version,
	// then bumps order.Version. Otherwise it returns ErrVersionConflict, or
	// ErrOrderVanished when the document no longer exists.
	Save(ctx context.Context, order *domain.Order) error
}
