package domain

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Status is the fulfillment stage of an order.
type Status string

const (
	StatusPlaced          Status = "placed"
	StatusConfirmed       Status = "confirmed"
	StatusPacked          Status = "packed"
	StatusShipped         Status = "shipped"
	StatusOutForDelivery  Status = "out_for_delivery"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
	StatusReturnRequested Status = "return_requested"
	StatusReturned        Status = "returned"
)

// ForwardPath is the normal progression of an order, in order.
var ForwardPath = []Status{
	StatusPlaced,
	StatusConfirmed,
	StatusPacked,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
}

// AllStatuses lists every known status.
var AllStatuses = append(append([]Status{}, ForwardPath...),
	StatusCancelled,
	StatusReturnRequested,
	StatusReturned,
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", &ValidationError{Field: "status", Reason: "unknown status " + strconv.Quote(raw)}
	}
	return s, nil
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPlaced, StatusConfirmed, StatusPacked, StatusShipped, StatusOutForDelivery,
		StatusDelivered, StatusCancelled, StatusReturnRequested, StatusReturned:
		return true
	default:
		return false
	}
}

// IsException reports whether s leaves the forward path.
func (s Status) IsException() bool {
	return s == StatusCancelled || s == StatusReturnRequested || s == StatusReturned
}

// IsTerminal reports whether no further transition is expected from s.
// Terminal statuses are not blocked by the open transition policy.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusReturned
}

// forwardIndex returns the position of s in ForwardPath, or -1.
func (s Status) forwardIndex() int {
	for i, step := range ForwardPath {
		if step == s {
			return i
		}
	}
	return -1
}

// Legacy status values read by older dashboards.
const (
	LegacyProcessing = "processing"
	LegacyShipped    = "shipped"
	LegacyDelivered  = "delivered"
	LegacyCancelled  = "cancelled"
)

// LegacyStatus projects a status onto the coarse single-value field kept for
// old readers. It is computed at write time and never read back as truth.
func LegacyStatus(s Status) string {
	switch s {
	case StatusDelivered:
		return LegacyDelivered
	case StatusShipped, StatusOutForDelivery:
		return LegacyShipped
	case StatusCancelled:
		return LegacyCancelled
	default:
		return LegacyProcessing
	}
}

// EventTypeForStatus is the event type recorded when an admin moves an order to s.
func EventTypeForStatus(s Status) EventType {
	switch s {
	case StatusPlaced:
		return EventOrderPlaced
	case StatusConfirmed:
		return EventOrderConfirmed
	case StatusPacked:
		return EventPacked
	case StatusShipped:
		return EventShipped
	case StatusOutForDelivery:
		return EventOutForDelivery
	case StatusDelivered:
		return EventDelivered
	case StatusCancelled:
		return EventCancelled
	default:
		return EventCustom
	}
}

// HumanizeStatus renders a status for display: "out_for_delivery" -> "Out for delivery".
func HumanizeStatus(s Status) string {
	text := strings.ReplaceAll(string(s), "_", " ")
	if text == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(r)) + text[size:]
}
