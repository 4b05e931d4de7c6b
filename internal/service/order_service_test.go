package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/repository"
)

func storedOrder(buyerID string, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Payment: *approvedOutcome(),
		Status:  status,
	}
}

func TestOrdersForBuyer_CacheHit(t *testing.T) {
	repo := &mockRepository{listErr: errors.New("must not hit the repository")}
	c := newMockCache()
	cached := []*domain.Order{storedOrder("buyer-1", domain.OrderStatusShipped)}
	require.NoError(t, c.Set(context.Background(), "buyer-1", cached))

	sut := NewOrderService(repo, c, domain.TransitionRules{})
	orders, err := sut.OrdersForBuyer(context.Background(), "buyer-1")

	require.NoError(t, err)
	assert.Equal(t, cached, orders)
}

func TestOrdersForBuyer_CacheMissPopulatesCache(t *testing.T) {
	repo := &mockRepository{orders: []*domain.Order{
		storedOrder("buyer-1", domain.OrderStatusNotProcessed),
		storedOrder("buyer-2", domain.OrderStatusNotProcessed),
	}}
	c := newMockCache()

	sut := NewOrderService(repo, c, domain.TransitionRules{})
	orders, err := sut.OrdersForBuyer(context.Background(), "buyer-1")

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "buyer-1", orders[0].BuyerID)

	// Cache write happens asynchronously.
	require.Eventually(t, func() bool {
		return len(c.get("buyer-1")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestOrdersForBuyer_RepositoryError(t *testing.T) {
	repo := &mockRepository{listErr: errors.New("db down")}

	sut := NewOrderService(repo, newMockCache(), domain.TransitionRules{})
	_, err := sut.OrdersForBuyer(context.Background(), "buyer-1")

	assert.Error(t, err)
}

func TestAllOrders_BypassesCache(t *testing.T) {
	repo := &mockRepository{orders: []*domain.Order{
		storedOrder("buyer-1", domain.OrderStatusNotProcessed),
		storedOrder("buyer-2", domain.OrderStatusShipped),
	}}
	c := newMockCache()
	// A stale cache entry must not leak into the admin view.
	require.NoError(t, c.Set(context.Background(), "buyer-1", nil))

	sut := NewOrderService(repo, c, domain.TransitionRules{})
	orders, err := sut.AllOrders(context.Background())

	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestUpdateStatus(t *testing.T) {
	order := storedOrder("buyer-1", domain.OrderStatusNotProcessed)
	repo := &mockRepository{orders: []*domain.Order{order}}
	c := newMockCache()
	require.NoError(t, c.Set(context.Background(), "buyer-1", []*domain.Order{order}))

	sut := NewOrderService(repo, c, domain.TransitionRules{})
	updated, err := sut.UpdateStatus(context.Background(), order.ID, "SHIPPED")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)
	assert.Nil(t, c.get("buyer-1"), "buyer's cached list must be invalidated")
}

func TestUpdateStatus_UnknownValueRejected(t *testing.T) {
	order := storedOrder("buyer-1", domain.OrderStatusNotProcessed)
	repo := &mockRepository{orders: []*domain.Order{order}}

	sut := NewOrderService(repo, newMockCache(), domain.TransitionRules{})
	_, err := sut.UpdateStatus(context.Background(), order.ID, "LOST_IN_TRANSIT")

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, domain.OrderStatusNotProcessed, order.Status, "order must not be mutated")
}

func TestUpdateStatus_OrderNotFound(t *testing.T) {
	sut := NewOrderService(&mockRepository{}, newMockCache(), domain.TransitionRules{})
	_, err := sut.UpdateStatus(context.Background(), uuid.New(), "SHIPPED")

	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestUpdateStatus_AnyToAnyByDefault(t *testing.T) {
	// Default rules allow moving a cancelled order back into processing.
	order := storedOrder("buyer-1", domain.OrderStatusCancelled)
	repo := &mockRepository{orders: []*domain.Order{order}}

	sut := NewOrderService(repo, newMockCache(), domain.TransitionRules{})
	updated, err := sut.UpdateStatus(context.Background(), order.ID, "PROCESSING")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
}

func TestUpdateStatus_CancelledTerminal(t *testing.T) {
	order := storedOrder("buyer-1", domain.OrderStatusCancelled)
	repo := &mockRepository{orders: []*domain.Order{order}}

	sut := NewOrderService(repo, newMockCache(), domain.TransitionRules{CancelledTerminal: true})
	_, err := sut.UpdateStatus(context.Background(), order.ID, "PROCESSING")

	assert.ErrorIs(t, err, ErrTransitionNotAllowed)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}
