package domain

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType classifies what happened to an order.
type EventType string

const (
	EventOrderPlaced    EventType = "order_placed"
	EventOrderConfirmed EventType = "order_confirmed"
	EventPacked         EventType = "packed"
	EventShipped        EventType = "shipped"
	EventInTransit      EventType = "in_transit"
	EventOutForDelivery EventType = "out_for_delivery"
	EventDelivered      EventType = "delivered"
	EventDelayed        EventType = "delayed"
	EventCancelled      EventType = "cancelled"
	EventCustom         EventType = "custom"
)

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	switch t {
	case EventOrderPlaced, EventOrderConfirmed, EventPacked, EventShipped, EventInTransit,
		EventOutForDelivery, EventDelivered, EventDelayed, EventCancelled, EventCustom:
		return true
	default:
		return false
	}
}

// stepKey is the progress step an event belongs to.
func (t EventType) stepKey() string {
	return strings.TrimPrefix(string(t), "order_")
}

// Severity is a display hint for an event.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// IsValid reports whether s is empty or a known severity.
func (s Severity) IsValid() bool {
	switch s {
	case "", SeveritySuccess, SeverityInfo, SeverityWarning, SeverityDanger:
		return true
	default:
		return false
	}
}

// ActorRole identifies who caused an event.
type ActorRole string

const (
	ActorSystem ActorRole = "system"
	ActorUser   ActorRole = "user"
	ActorAdmin  ActorRole = "admin"
)

// IsValid reports whether r is a known role.
func (r ActorRole) IsValid() bool {
	return r == ActorSystem || r == ActorUser || r == ActorAdmin
}

// Actor is the party responsible for an event.
type Actor struct {
	Role ActorRole `json:"role"`
	Name string    `json:"name,omitempty"`
	ID   string    `json:"id,omitempty"`
}

// Event is an immutable fact about an order. Corrections are new events.
type Event struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      Severity       `json:"status,omitempty"`
	At          time.Time      `json:"at"`
	Actor       *Actor         `json:"actor,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// EventInput is an event before it is stamped with an id and defaults.
type EventInput struct {
	ID          string
	Type        EventType
	Title       string
	Description string
	Status      Severity
	At          time.Time
	Actor       *Actor
	Meta        map[string]any
}

// ValidationError reports malformed input. Nothing is applied when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the mandatory fields of an event.
func (in EventInput) Validate() error {
	if in.Type == "" {
		return &ValidationError{Field: "type", Reason: "is required"}
	}
	if !in.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown event type %q", in.Type)}
	}
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if !in.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown severity %q", in.Status)}
	}
	if in.Actor != nil && in.Actor.Role != "" && !in.Actor.Role.IsValid() {
		return &ValidationError{Field: "actor.role", Reason: fmt.Sprintf("unknown role %q", in.Actor.Role)}
	}
	return nil
}

// NewEvent validates in and fills the defaults: a fresh id, now for a zero
// timestamp and the system role for a missing actor role.
func NewEvent(in EventInput, now time.Time) (Event, error) {
	if err := in.Validate(); err != nil {
		return Event{}, err
	}

	ev := Event{
		ID:          in.ID,
		Type:        in.Type,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		At:          in.At,
		Meta:        maps.Clone(in.Meta),
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = now
	}
	ev.At = ev.At.UTC()

	actor := Actor{Role: ActorSystem}
	if in.Actor != nil {
		actor = *in.Actor
		if actor.Role == "" {
			actor.Role = ActorSystem
		}
	}
	ev.Actor = &actor

	return ev, nil
}
