package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LegacySnapshot is what an order that predates tracking still carries.
type LegacySnapshot struct {
	OrderID  string
	Status   string
	PlacedAt time.Time
}

// Normalize returns existing when set. Otherwise it synthesizes a seed
// tracking from the legacy snapshot so older orders can be displayed without
// a migration. The seed is derived only from the snapshot, so repeated calls
// yield identical values.
func Normalize(existing *Tracking, legacy LegacySnapshot, leadTime time.Duration) Tracking {
	if existing != nil {
		return *existing
	}

	t := NewSeedTracking(StatusFromLegacy(legacy.Status), legacy.PlacedAt, leadTime)
	t.Events[0].ID = SeedEventID(legacy.OrderID)
	return t
}

// SeedEventID is the stable id of a backfilled seed event.
func SeedEventID(orderID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("order:"+orderID+":seed")).String()
}

// StatusFromLegacy reads a stored status string. Rich values are kept,
// the coarse legacy values map onto the nearest status and anything else
// falls back to placed.
func StatusFromLegacy(raw string) Status {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if s := Status(raw); s.IsValid() {
		return s
	}
	switch raw {
	case LegacyProcessing, "pending", "on-hold":
		return StatusPlaced
	case "canceled", "refunded", "failed":
		return StatusCancelled
	case "completed":
		return StatusDelivered
	default:
		return StatusPlaced
	}
}
