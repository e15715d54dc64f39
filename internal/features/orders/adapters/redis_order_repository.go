package adapters

import (
	"context"
	"errors"
	"fmt"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"

	"github.com/goccy/go-json"
)

// Order documents and the tracking-number index live under disjoint
// prefixes so no client-chosen order id can address an index key.
const (
	orderKeyPrefix    = "order:"
	trackingKeyPrefix = "tracking:"
)

func orderKey(orderID string) string {
	return orderKeyPrefix + orderID
}

func trackingKey(trackingNumber string) string {
	return trackingKeyPrefix + trackingNumber
}

// storedVersion decodes only the concurrency token of a stored document.
type storedVersion struct {
	Version int64 `json:"version"`
}

// RedisOrderRepository implements ports.OrderRepository on top of the cache port.
// Each order is one JSON document; a side key maps courier tracking numbers to order ids.
type RedisOrderRepository struct {
	cache cache.Cache
}

// NewRedisOrderRepository creates a new RedisOrderRepository.
func NewRedisOrderRepository(c cache.Cache) *RedisOrderRepository {
	return &RedisOrderRepository{
		cache: c,
	}
}

// Create stores a new order document.
func (r *RedisOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	next := *order
	next.Version = 1

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	key := orderKey(order.ID)
	err = r.cache.Update(ctx, key, func(current []byte) (map[string][]byte, error) {
		if current != nil {
			return nil, ports.ErrOrderExists
		}
		return r.writes(&next, data), nil
	})
	if err != nil {
		return r.translate(err, order.ID)
	}

	order.Version = next.Version
	return nil
}

// Get retrieves an order document by id.
func (r *RedisOrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	data, err := r.cache.Get(ctx, orderKey(orderID))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ports.ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to get order from store: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order %s: %w", orderID, err)
	}

	return &order, nil
}

// FindByTrackingNumber resolves the tracking-number index and loads the order.
// Index entries left behind by a changed tracking number are ignored.
func (r *RedisOrderRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	id, err := r.cache.Get(ctx, trackingKey(trackingNumber))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: tracking number %s", ports.ErrOrderNotFound, trackingNumber)
		}
		return nil, fmt.Errorf("failed to resolve tracking number: %w", err)
	}

	order, err := r.Get(ctx, string(id))
	if err != nil {
		return nil, err
	}

	if order.TrackingNumber() != trackingNumber {
		return nil, fmt.Errorf("%w: tracking number %s", ports.ErrOrderNotFound, trackingNumber)
	}

	return order, nil
}

// Save replaces the order document when the stored version matches order.Version.
func (r *RedisOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	expected := order.Version
	next := *order
	next.Version = expected + 1

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	err = r.cache.Update(ctx, orderKey(order.ID), func(current []byte) (map[string][]byte, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ports.ErrOrderVanished, order.ID)
		}

		var stored storedVersion
		if err := json.Unmarshal(current, &stored); err != nil {
			return nil, fmt.Errorf("failed to read stored version: %w", err)
		}
		if stored.Version != expected {
			return nil, fmt.Errorf("%w: stored version %d, read version %d", ports.ErrVersionConflict, stored.Version, expected)
		}

		return r.writes(&next, data), nil
	})
	if err != nil {
		return r.translate(err, order.ID)
	}

	order.Version = next.Version
	return nil
}

// writes lists the keys persisted alongside an order document.
func (r *RedisOrderRepository) writes(order *domain.Order, data []byte) map[string][]byte {
	w := map[string][]byte{orderKey(order.ID): data}
	if n := order.TrackingNumber(); n != "" {
		w[trackingKey(n)] = []byte(order.ID)
	}
	return w
}

func (r *RedisOrderRepository) translate(err error, orderID string) error {
	switch {
	case errors.Is(err, cache.ErrConflict):
		return fmt.Errorf("%w: %s", ports.ErrVersionConflict, orderID)
	case errors.Is(err, ports.ErrOrderExists),
		errors.Is(err, ports.ErrOrderNotFound),
		errors.Is(err, ports.ErrVersionConflict):
		return err
	default:
		return fmt.Errorf("failed to save order %s: %w", orderID, err)
	}
}
