package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func assertSorted(t *testing.T, events []Event) {
	t.Helper()
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].At.Before(events[i-1].At), "event %d is out of order", i)
	}
}

func TestNewSeedTracking(t *testing.T) {
	tr := NewSeedTracking(StatusPlaced, placedAt, 5*24*time.Hour)

	assert.Equal(t, StatusPlaced, tr.CurrentStatus)
	require.Len(t, tr.Events, 1)
	seed := tr.Events[0]
	assert.Equal(t, EventOrderPlaced, seed.Type)
	assert.Equal(t, SeedTitle, seed.Title)
	assert.Equal(t, SeveritySuccess, seed.Status)
	assert.Equal(t, placedAt, seed.At)
	assert.NotEmpty(t, seed.ID)
	require.NotNil(t, seed.Actor)
	assert.Equal(t, ActorSystem, seed.Actor.Role)

	require.NotNil(t, tr.ExpectedDelivery)
	assert.Equal(t, placedAt.Add(5*24*time.Hour), *tr.ExpectedDelivery)
	assert.Nil(t, tr.Courier)
}

func TestNewSeedTracking_Defaults(t *testing.T) {
	tr := NewSeedTracking("", placedAt, 0)

	assert.Equal(t, StatusPlaced, tr.CurrentStatus)
	assert.Nil(t, tr.ExpectedDelivery)
}

func TestTracking_AddEvent(t *testing.T) {
	now := placedAt.Add(2 * time.Hour)
	base := NewSeedTracking(StatusPlaced, placedAt, 0)

	t.Run("FillsDefaults", func(t *testing.T) {
		out, err := base.AddEvent(EventInput{Type: EventCustom, Title: "Gift wrap added"}, now)
		require.NoError(t, err)

		require.Len(t, out.Events, 2)
		ev := out.Events[1]
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, "Gift wrap added", ev.Title)
		assert.Equal(t, now, ev.At)
		require.NotNil(t, ev.Actor)
		assert.Equal(t, ActorSystem, ev.Actor.Role)
		assertSorted(t, out.Events)
	})

	t.Run("KeepsSuppliedID", func(t *testing.T) {
		out, err := base.AddEvent(EventInput{ID: "evt-1", Type: EventDelayed, Title: "Weather delay", At: now}, now)
		require.NoError(t, err)
		assert.Equal(t, "evt-1", out.Events[1].ID)
	})

	t.Run("DoesNotMutateReceiver", func(t *testing.T) {
		_, err := base.AddEvent(EventInput{Type: EventCustom, Title: "Note"}, now)
		require.NoError(t, err)
		assert.Len(t, base.Events, 1)
	})

	t.Run("GeneratesDistinctIDs", func(t *testing.T) {
		a, err := base.AddEvent(EventInput{Type: EventCustom, Title: "A"}, now)
		require.NoError(t, err)
		b, err := a.AddEvent(EventInput{Type: EventCustom, Title: "B"}, now)
		require.NoError(t, err)
		assert.NotEqual(t, b.Events[1].ID, b.Events[2].ID)
		assert.NotEqual(t, b.Events[0].ID, b.Events[1].ID)
	})

	t.Run("InsertsLateArrivalInPlace", func(t *testing.T) {
		tr, err := base.AddEvent(EventInput{Type: EventShipped, Title: "Shipped", At: placedAt.Add(48 * time.Hour)}, now)
		require.NoError(t, err)
		tr, err = tr.AddEvent(EventInput{Type: EventOutForDelivery, Title: "Out for delivery", At: placedAt.Add(72 * time.Hour)}, now)
		require.NoError(t, err)

		late := EventInput{
			Type:  EventInTransit,
			Title: "Arrived at hub",
			At:    placedAt.Add(60 * time.Hour),
			Actor: &Actor{Role: ActorSystem, Name: "BlueDart webhook"},
		}
		out, err := tr.AddEvent(late, now)
		require.NoError(t, err)

		require.Len(t, out.Events, len(tr.Events)+1)
		assertSorted(t, out.Events)
		assert.Equal(t, "Arrived at hub", out.Events[2].Title)
		assert.Equal(t, EventOutForDelivery, out.Events[3].Type)
	})

	t.Run("EqualTimestampsKeepInsertionOrder", func(t *testing.T) {
		a, err := base.AddEvent(EventInput{Type: EventCustom, Title: "First", At: now}, now)
		require.NoError(t, err)
		b, err := a.AddEvent(EventInput{Type: EventCustom, Title: "Second", At: now}, now)
		require.NoError(t, err)
		assert.Equal(t, "First", b.Events[1].Title)
		assert.Equal(t, "Second", b.Events[2].Title)
	})
}

func TestTracking_AddEvent_Validation(t *testing.T) {
	base := NewSeedTracking(StatusPlaced, placedAt, 0)

	tests := []struct {
		name  string
		in    EventInput
		field string
	}{
		{"MissingType", EventInput{Title: "x"}, "type"},
		{"UnknownType", EventInput{Type: "teleported", Title: "x"}, "type"},
		{"MissingTitle", EventInput{Type: EventCustom}, "title"},
		{"BlankTitle", EventInput{Type: EventCustom, Title: "   "}, "title"},
		{"UnknownSeverity", EventInput{Type: EventCustom, Title: "x", Status: "fatal"}, "status"},
		{"UnknownRole", EventInput{Type: EventCustom, Title: "x", Actor: &Actor{Role: "robot"}}, "actor.role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := base.AddEvent(tt.in, placedAt)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Len(t, out.Events, 1)
		})
	}
}

func TestTracking_WithStatus(t *testing.T) {
	base := NewSeedTracking(StatusConfirmed, placedAt, 0)

	out := base.WithStatus(StatusPacked)

	assert.Equal(t, StatusPacked, out.CurrentStatus)
	assert.Equal(t, base.Events, out.Events)
	assert.Equal(t, StatusConfirmed, base.CurrentStatus)
}

func TestTracking_Transition(t *testing.T) {
	now := placedAt.Add(24 * time.Hour)

	t.Run("Shipped", func(t *testing.T) {
		base := NewSeedTracking(StatusConfirmed, placedAt, 0)

		out, err := base.Transition(StatusShipped, Actor{Name: "ops"}, now)
		require.NoError(t, err)

		assert.Equal(t, StatusShipped, out.CurrentStatus)
		require.Len(t, out.Events, len(base.Events)+1)
		ev, ok := out.LastEvent()
		require.True(t, ok)
		assert.Equal(t, EventShipped, ev.Type)
		assert.Equal(t, "Shipped", ev.Title)
		assert.Equal(t, SeverityInfo, ev.Status)
		assert.Equal(t, ActorAdmin, ev.Actor.Role)
		assert.Equal(t, "ops", ev.Actor.Name)
		assert.Equal(t, "confirmed", ev.Meta["previousStatus"])
		assert.Equal(t, LegacyShipped, LegacyStatus(out.CurrentStatus))
	})

	t.Run("Cancelled", func(t *testing.T) {
		base := NewSeedTracking(StatusPlaced, placedAt, 0)

		out, err := base.Transition(StatusCancelled, Actor{}, now)
		require.NoError(t, err)

		ev, _ := out.LastEvent()
		assert.Equal(t, EventCancelled, ev.Type)
		assert.Equal(t, SeverityDanger, ev.Status)
		assert.Equal(t, LegacyCancelled, LegacyStatus(out.CurrentStatus))
	})

	t.Run("ExceptionStatusUsesCustomEvent", func(t *testing.T) {
		base := NewSeedTracking(StatusDelivered, placedAt, 0)

		out, err := base.Transition(StatusReturnRequested, Actor{}, now)
		require.NoError(t, err)

		ev, _ := out.LastEvent()
		assert.Equal(t, EventCustom, ev.Type)
		assert.Equal(t, "Return requested", ev.Title)
	})
}

func TestTracking_WithCourier(t *testing.T) {
	base := NewSeedTracking(StatusShipped, placedAt, 0).WithCourier(CourierPatch{Name: strPtr("BlueDart")})

	out := base.WithCourier(CourierPatch{TrackingNumber: strPtr("X")})

	require.NotNil(t, out.Courier)
	assert.Equal(t, CourierInfo{Name: "BlueDart", TrackingNumber: "X"}, *out.Courier)
	assert.Equal(t, "X", out.TrackingNumber())
	assert.Equal(t, CourierInfo{Name: "BlueDart"}, *base.Courier)
	assert.Len(t, out.Events, 1)
}

func TestTracking_WithExpectedDelivery(t *testing.T) {
	base := NewSeedTracking(StatusPlaced, placedAt, 24*time.Hour)
	eta := placedAt.Add(96 * time.Hour)

	out := base.WithExpectedDelivery(eta)

	require.NotNil(t, out.ExpectedDelivery)
	assert.Equal(t, eta, *out.ExpectedDelivery)
	assert.Equal(t, placedAt.Add(24*time.Hour), *base.ExpectedDelivery)
	assert.Len(t, out.Events, 1)
}
