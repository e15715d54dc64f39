package adapters

import (
	"context"
	"testing"
	"time"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"
	tracking "fulfillment-tracker/internal/features/tracking/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) (*RedisOrderRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	adapter, err := cache.NewRedisAdapter("redis://"+mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return NewRedisOrderRepository(adapter), mr
}

func newOrder(id string) *domain.Order {
	tr := tracking.NewSeedTracking(tracking.StatusPlaced, placedAt, 5*24*time.Hour)
	o := &domain.Order{ID: id, Email: "buyer@example.com", CreatedAt: placedAt}
	o.ApplyTracking(tr, placedAt)
	return o
}

func TestRedisOrderRepository_CreateGet(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	order := newOrder("ord-1")
	require.NoError(t, repo.Create(ctx, order))
	assert.Equal(t, int64(1), order.Version)
	assert.True(t, mr.Exists("order:ord-1"))

	got, err := repo.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "processing", got.Status)
	assert.Equal(t, int64(1), got.Version)
	require.NotNil(t, got.Tracking)
	assert.Equal(t, order.Tracking.Events, got.Tracking.Events)
	assert.Equal(t, *order.Tracking.ExpectedDelivery, *got.Tracking.ExpectedDelivery)
}

func TestRedisOrderRepository_CreateDuplicate(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newOrder("ord-1")))

	err := repo.Create(ctx, newOrder("ord-1"))
	assert.ErrorIs(t, err, ports.ErrOrderExists)
}

func TestRedisOrderRepository_GetNotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrOrderNotFound)
}

func TestRedisOrderRepository_GetLegacyDocument(t *testing.T) {
	repo, mr := setupRepo(t)
	require.NoError(t, mr.Set("order:old-7", `{"id":"old-7","status":"shipped","createdAt":"2024-11-02T08:00:00Z"}`))

	got, err := repo.Get(context.Background(), "old-7")
	require.NoError(t, err)
	assert.Nil(t, got.Tracking)
	assert.Equal(t, "shipped", got.Status)
	assert.Equal(t, int64(0), got.Version)
}

func TestRedisOrderRepository_Save(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	order := newOrder("ord-1")
	require.NoError(t, repo.Create(ctx, order))

	shipped, err := order.Tracking.Transition(tracking.StatusShipped, tracking.Actor{}, placedAt.Add(time.Hour))
	require.NoError(t, err)
	order.ApplyTracking(shipped, placedAt.Add(time.Hour))

	require.NoError(t, repo.Save(ctx, order))
	assert.Equal(t, int64(2), order.Version)

	got, err := repo.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "shipped", got.Status)
	assert.Equal(t, tracking.StatusShipped, got.Tracking.CurrentStatus)
	assert.Len(t, got.Tracking.Events, 2)
	assert.Equal(t, int64(2), got.Version)
}

func TestRedisOrderRepository_SaveStaleVersion(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newOrder("ord-1")))

	admin, err := repo.Get(ctx, "ord-1")
	require.NoError(t, err)
	webhook, err := repo.Get(ctx, "ord-1")
	require.NoError(t, err)

	withEvent, err := webhook.Tracking.AddEvent(tracking.EventInput{Type: tracking.EventInTransit, Title: "At hub"}, placedAt)
	require.NoError(t, err)
	webhook.ApplyTracking(withEvent, placedAt)
	require.NoError(t, repo.Save(ctx, webhook))

	admin.ApplyTracking(admin.Tracking.WithStatus(tracking.StatusCancelled), placedAt)
	err = repo.Save(ctx, admin)
	assert.ErrorIs(t, err, ports.ErrVersionConflict)
	assert.Equal(t, int64(1), admin.Version)

	got, err := repo.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Len(t, got.Tracking.Events, 2, "the first writer's event must survive")
	assert.Equal(t, tracking.StatusPlaced, got.Tracking.CurrentStatus)
}

func TestRedisOrderRepository_SaveVanished(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	order := newOrder("ord-1")
	require.NoError(t, repo.Create(ctx, order))
	mr.Del("order:ord-1")

	err := repo.Save(ctx, order)
	assert.ErrorIs(t, err, ports.ErrOrderVanished)
	assert.NotErrorIs(t, err, ports.ErrOrderNotFound)
	assert.NotErrorIs(t, err, ports.ErrVersionConflict)
	assert.False(t, mr.Exists("order:ord-1"), "nothing is resurrected")
}

func TestRedisOrderRepository_FindByTrackingNumber(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	order := newOrder("ord-1")
	require.NoError(t, repo.Create(ctx, order))

	_, err := repo.FindByTrackingNumber(ctx, "AWB1")
	assert.ErrorIs(t, err, ports.ErrOrderNotFound)

	first := "AWB1"
	order.ApplyTracking(order.Tracking.WithCourier(tracking.CourierPatch{TrackingNumber: &first}), placedAt)
	require.NoError(t, repo.Save(ctx, order))

	got, err := repo.FindByTrackingNumber(ctx, "AWB1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", got.ID)

	second := "AWB2"
	order.ApplyTracking(order.Tracking.WithCourier(tracking.CourierPatch{TrackingNumber: &second}), placedAt)
	require.NoError(t, repo.Save(ctx, order))

	_, err = repo.FindByTrackingNumber(ctx, "AWB1")
	assert.ErrorIs(t, err, ports.ErrOrderNotFound, "stale index entries are ignored")

	got, err = repo.FindByTrackingNumber(ctx, "AWB2")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", got.ID)
}

func TestRedisOrderRepository_IndexCannotOverwriteOrders(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	victim := newOrder("tracking:ABC")
	require.NoError(t, repo.Create(ctx, victim))

	other := newOrder("ord-2")
	require.NoError(t, repo.Create(ctx, other))
	number := "ABC"
	other.ApplyTracking(other.Tracking.WithCourier(tracking.CourierPatch{TrackingNumber: &number}), placedAt)
	require.NoError(t, repo.Save(ctx, other))

	got, err := repo.Get(ctx, "tracking:ABC")
	require.NoError(t, err)
	assert.Equal(t, "tracking:ABC", got.ID)
	require.NotNil(t, got.Tracking)
	assert.Len(t, got.Tracking.Events, 1)

	found, err := repo.FindByTrackingNumber(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, "ord-2", found.ID)

	index, err := mr.Get("tracking:ABC")
	require.NoError(t, err)
	assert.Equal(t, "ord-2", index)
}
