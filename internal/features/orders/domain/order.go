package domain

import (
	"time"

	tracking "fulfillment-tracker/internal/features/tracking/domain"
)

// Order represents a customer order as stored in the document store.
type Order struct {
	// ID is the unique identifier for the order.
	ID string `json:"id"`
	// Email is the contact email for the customer.
	Email string `json:"email"`
	// FirstName is the first name of the customer.
	FirstName string `json:"firstName,omitempty"`
	// LastName is the last name of the customer.
	LastName string `json:"lastName,omitempty"`
	// Status is the legacy single-value status read by older dashboards.
	// It is rewritten from Tracking on every save and never read back as truth.
	Status string `json:"status"`
	// Tracking is the fulfillment state. Orders created before tracking existed have none.
	Tracking *tracking.Tracking `json:"tracking,omitempty"`
	// Items contains the list of products included in the order.
	Items []OrderItem `json:"items,omitempty"`
	// Version is the optimistic concurrency token, bumped by every successful save.
	Version int64 `json:"version"`
	// CreatedAt is the timestamp when the order was placed.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp of the last write.
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItem represents an individual item within an order.
type OrderItem struct {
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity"`
	// SKU is the Stock Keeping Unit identifier for the product.
	SKU string `json:"sku"`
	// Name is the descriptive name of the product.
	Name string `json:"name"`
	// Picture is the URL to an image of the product.
	Picture string `json:"picture,omitempty"`
}

// Snapshot returns the fields a backfilled tracking is derived from.
func (o *Order) Snapshot() tracking.LegacySnapshot {
	return tracking.LegacySnapshot{
		OrderID:  o.ID,
		Status:   o.Status,
		PlacedAt: o.CreatedAt,
	}
}

// CurrentTracking returns the stored tracking, synthesizing one for orders
// that predate the feature. Nothing is persisted.
func (o *Order) CurrentTracking(leadTime time.Duration) tracking.Tracking {
	return tracking.Normalize(o.Tracking, o.Snapshot(), leadTime)
}

// ApplyTracking stores t on the order and mirrors the legacy status.
func (o *Order) ApplyTracking(t tracking.Tracking, now time.Time) {
	o.Tracking = &t
	o.Status = tracking.LegacyStatus(t.CurrentStatus)
	o.UpdatedAt = now.UTC()
}

// TrackingNumber returns the courier tracking number, if any.
func (o *Order) TrackingNumber() string {
	if o.Tracking == nil {
		return ""
	}
	return o.Tracking.TrackingNumber()
}
