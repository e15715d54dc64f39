package domain

import (
	"slices"
	"time"
)

// CourierInfo describes the carrier handling the shipment.
type CourierInfo struct {
	Name           string `json:"name,omitempty"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	TrackingURL    string `json:"trackingUrl,omitempty"`
	Contact        string `json:"contact,omitempty"`
}

// CourierPatch is a partial courier update. Nil fields are left untouched.
type CourierPatch struct {
	Name           *string `json:"name,omitempty"`
	TrackingNumber *string `json:"trackingNumber,omitempty"`
	TrackingURL    *string `json:"trackingUrl,omitempty"`
	Contact        *string `json:"contact,omitempty"`
}

// IsEmpty reports whether the patch carries no field.
func (p CourierPatch) IsEmpty() bool {
	return p.Name == nil && p.TrackingNumber == nil && p.TrackingURL == nil && p.Contact == nil
}

// Tracking is the fulfillment state owned by one order.
//
// Events are kept sorted non-decreasing by At. Every method returns a new
// value and leaves the receiver untouched; callers persist the result.
type Tracking struct {
	CurrentStatus    Status       `json:"currentStatus"`
	ExpectedDelivery *time.Time   `json:"expectedDelivery,omitempty"`
	Courier          *CourierInfo `json:"courier,omitempty"`
	Events           []Event      `json:"events"`
}

// SeedTitle is the title of the synthetic event every order starts with.
const SeedTitle = "Order placed"

// NewSeedTracking builds the tracking of a freshly placed order: one
// order_placed event at placedAt and an expected delivery leadTime later.
// A zero leadTime leaves the expected delivery unset.
func NewSeedTracking(initial Status, placedAt time.Time, leadTime time.Duration) Tracking {
	if initial == "" {
		initial = StatusPlaced
	}
	placedAt = placedAt.UTC()

	seed, _ := NewEvent(EventInput{
		Type:        EventOrderPlaced,
		Title:       SeedTitle,
		Description: "Your order has been placed.",
		Status:      SeveritySuccess,
		At:          placedAt,
		Actor:       &Actor{Role: ActorSystem},
	}, placedAt)

	t := Tracking{
		CurrentStatus: initial,
		Events:        []Event{seed},
	}
	if leadTime > 0 {
		eta := placedAt.Add(leadTime)
		t.ExpectedDelivery = &eta
	}
	return t
}

// clone copies the slices and pointers owned by t.
func (t Tracking) clone() Tracking {
	out := t
	out.Events = slices.Clone(t.Events)
	if t.ExpectedDelivery != nil {
		eta := *t.ExpectedDelivery
		out.ExpectedDelivery = &eta
	}
	if t.Courier != nil {
		c := *t.Courier
		out.Courier = &c
	}
	return out
}

// AddEvent returns a copy of t with the event inserted in chronological
// order. Events dated before existing ones are accepted and land in place;
// equal timestamps keep insertion order.
func (t Tracking) AddEvent(in EventInput, now time.Time) (Tracking, error) {
	ev, err := NewEvent(in, now)
	if err != nil {
		return t, err
	}

	out := t.clone()
	out.Events = append(out.Events, ev)
	slices.SortStableFunc(out.Events, func(a, b Event) int {
		return a.At.Compare(b.At)
	})
	return out, nil
}

// WithStatus returns a copy of t with only the current status replaced.
// No event is recorded; this is the quiet correction path.
func (t Tracking) WithStatus(s Status) Tracking {
	out := t.clone()
	out.CurrentStatus = s
	return out
}

// StatusEvent synthesizes the milestone event recorded when an operator
// moves an order from one status to another.
func StatusEvent(from, to Status, actor Actor, now time.Time) EventInput {
	severity := SeverityInfo
	if to == StatusCancelled {
		severity = SeverityDanger
	}
	actor.Role = ActorAdmin

	return EventInput{
		Type:   EventTypeForStatus(to),
		Title:  HumanizeStatus(to),
		Status: severity,
		At:     now,
		Actor:  &actor,
		Meta: map[string]any{
			"previousStatus": string(from),
			"status":         string(to),
		},
	}
}

// Transition sets the status and records the matching milestone event.
func (t Tracking) Transition(to Status, actor Actor, now time.Time) (Tracking, error) {
	return t.WithStatus(to).AddEvent(StatusEvent(t.CurrentStatus, to, actor, now), now)
}

// WithCourier merges the supplied patch fields into the courier record.
func (t Tracking) WithCourier(p CourierPatch) Tracking {
	out := t.clone()
	c := CourierInfo{}
	if out.Courier != nil {
		c = *out.Courier
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.TrackingNumber != nil {
		c.TrackingNumber = *p.TrackingNumber
	}
	if p.TrackingURL != nil {
		c.TrackingURL = *p.TrackingURL
	}
	if p.Contact != nil {
		c.Contact = *p.Contact
	}
	out.Courier = &c
	return out
}

// WithExpectedDelivery replaces the delivery estimate.
func (t Tracking) WithExpectedDelivery(eta time.Time) Tracking {
	out := t.clone()
	eta = eta.UTC()
	out.ExpectedDelivery = &eta
	return out
}

// TrackingNumber returns the courier tracking number, if any.
func (t Tracking) TrackingNumber() string {
	if t.Courier == nil {
		return ""
	}
	return t.Courier.TrackingNumber
}

// LastEvent returns the most recent event by At.
func (t Tracking) LastEvent() (Event, bool) {
	if len(t.Events) == 0 {
		return Event{}, false
	}
	return t.Events[len(t.Events)-1], true
}
