package ports

import (
	"context"
	"time"

	"fulfillment-tracker/internal/features/tracking/domain"
)

// Service defines the primary port for tracking reads and writes.
// Every write is a read-modify-write of one order; reads never persist.
type Service interface {
	// GetTracking returns the tracking of an order, normalized for orders that predate it.
	GetTracking(ctx context.Context, orderID string) (*domain.Tracking, error)
	// GetTrackingByNumber returns the tracking of the order carrying a courier tracking number.
	GetTrackingByNumber(ctx context.Context, trackingNumber string) (*domain.Tracking, error)
	// GetProgress returns the six-step timeline projection of an order's tracking.
	GetProgress(ctx context.Context, orderID string) ([]domain.ProgressStep, error)

	// SetStatus moves the order to status and records the milestone event.
	SetStatus(ctx context.Context, orderID string, status domain.Status, actor domain.Actor) (*domain.Tracking, error)
	// CorrectStatus moves the order to status without recording an event.
	CorrectStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Tracking, error)
	// AddEvent appends an event in chronological position.
	AddEvent(ctx context.Context, orderID string, in domain.EventInput) (*domain.Tracking, error)
	// UpdateCourier merges a partial courier record.
	UpdateCourier(ctx context.Context, orderID string, patch domain.CourierPatch) (*domain.Tracking, error)
	// UpdateExpectedDelivery replaces the delivery estimate.
	UpdateExpectedDelivery(ctx context.Context, orderID string, eta time.Time) (*domain.Tracking, error)
}
