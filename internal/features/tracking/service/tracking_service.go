package service

import (
	"context"
	"fmt"
	"time"

	"fulfillment-tracker/internal/core/logger"
	orderports "fulfillment-tracker/internal/features/orders/ports"
	"fulfillment-tracker/internal/features/tracking/domain"
	"fulfillment-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// TrackingService applies tracking mutations to orders.
//
// Each write fetches the order, runs the pure domain transformation and saves
// the whole document guarded by the order's version. A concurrent writer makes
// the save fail with orderports.ErrVersionConflict; no retry happens here.
type TrackingService struct {
	orders   orderports.OrderRepository
	policy   domain.TransitionPolicy
	leadTime time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(orders orderports.OrderRepository, policy domain.TransitionPolicy, leadTime time.Duration) *TrackingService {
	return &TrackingService{
		orders:   orders,
		policy:   policy,
		leadTime: leadTime,
		now:      time.Now,
		log:      logger.Named("tracking"),
	}
}

// GetTracking returns the tracking of an order.
func (s *TrackingService) GetTracking(ctx context.Context, orderID string) (*domain.Tracking, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	tr := order.CurrentTracking(s.leadTime)
	return &tr, nil
}

// GetTrackingByNumber returns the tracking of the order carrying trackingNumber.
func (s *TrackingService) GetTrackingByNumber(ctx context.Context, trackingNumber string) (*domain.Tracking, error) {
	order, err := s.orders.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	tr := order.CurrentTracking(s.leadTime)
	return &tr, nil
}

// GetProgress returns the timeline projection of an order's tracking.
func (s *TrackingService) GetProgress(ctx context.Context, orderID string) ([]domain.ProgressStep, error) {
	tr, err := s.GetTracking(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return domain.Progress(*tr), nil
}

// SetStatus moves the order to status and records the milestone event.
func (s *TrackingService) SetStatus(ctx context.Context, orderID string, status domain.Status, actor domain.Actor) (*domain.Tracking, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, "set_status", func(tr domain.Tracking, now time.Time) (domain.Tracking, error) {
		if err := s.policy.Check(tr.CurrentStatus, status); err != nil {
			return tr, err
		}
		return tr.Transition(status, actor, now)
	}, zap.String("status", string(status)))
}

// CorrectStatus moves the order to status without recording an event.
func (s *TrackingService) CorrectStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Tracking, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, "correct_status", func(tr domain.Tracking, _ time.Time) (domain.Tracking, error) {
		if err := s.policy.Check(tr.CurrentStatus, status); err != nil {
			return tr, err
		}
		return tr.WithStatus(status), nil
	}, zap.String("status", string(status)))
}

// AddEvent appends an event in chronological position.
func (s *TrackingService) AddEvent(ctx context.Context, orderID string, in domain.EventInput) (*domain.Tracking, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, "add_event", func(tr domain.Tracking, now time.Time) (domain.Tracking, error) {
		return tr.AddEvent(in, now)
	}, zap.String("event_type", string(in.Type)))
}

// UpdateCourier merges a partial courier record.
func (s *TrackingService) UpdateCourier(ctx context.Context, orderID string, patch domain.CourierPatch) (*domain.Tracking, error) {
	if patch.IsEmpty() {
		return nil, &domain.ValidationError{Field: "courier", Reason: "at least one field is required"}
	}

	return s.mutate(ctx, orderID, "update_courier", func(tr domain.Tracking, _ time.Time) (domain.Tracking, error) {
		return tr.WithCourier(patch), nil
	})
}

// UpdateExpectedDelivery replaces the delivery estimate.
func (s *TrackingService) UpdateExpectedDelivery(ctx context.Context, orderID string, eta time.Time) (*domain.Tracking, error) {
	if eta.IsZero() {
		return nil, &domain.ValidationError{Field: "expectedDelivery", Reason: "is required"}
	}

	return s.mutate(ctx, orderID, "update_eta", func(tr domain.Tracking, _ time.Time) (domain.Tracking, error) {
		return tr.WithExpectedDelivery(eta), nil
	}, zap.Time("expected_delivery", eta))
}

type transform func(tr domain.Tracking, now time.Time) (domain.Tracking, error)

// mutate is the single read-modify-write path shared by every write.
func (s *TrackingService) mutate(ctx context.Context, orderID, op string, fn transform, fields ...zap.Field) (*domain.Tracking, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	next, err := fn(order.CurrentTracking(s.leadTime), now)
	if err != nil {
		return nil, err
	}

	log := logger.ForOrder(s.log, orderID)
	order.ApplyTracking(next, now)
	if err := s.orders.Save(ctx, order); err != nil {
		log.Warn("Tracking write rejected",
			append(fields,
				zap.String("op", op),
				zap.Error(err),
			)...,
		)
		return nil, fmt.Errorf("service: failed to persist tracking: %w", err)
	}

	log.Info("Tracking updated",
		append(fields,
			zap.String("op", op),
			zap.String("current_status", string(next.CurrentStatus)),
			zap.Int("events", len(next.Events)),
			zap.Int64("version", order.Version),
		)...,
	)

	return &next, nil
}

var _ ports.Service = (*TrackingService)(nil)
