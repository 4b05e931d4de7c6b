package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ecomcore/storefront/internal/cache"
	"github.com/ecomcore/storefront/internal/catalog"
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/gateway"
	"github.com/ecomcore/storefront/internal/repository"
)

// mockRepository implements repository.OrderRepository for testing
type mockRepository struct {
	m         sync.RWMutex
	orders    []*domain.Order
	createErr error
	getErr    error
	listErr   error
	updateErr error
}

func (m *mockRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, o := range m.orders {
		if o.IdempotencyKey == order.IdempotencyKey {
			return repository.ErrDuplicateCheckout
		}
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockRepository) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockRepository) GetOrderByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, o := range m.orders {
		if o.IdempotencyKey == key {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockRepository) ListOrdersByBuyer(_ context.Context, buyerID string) ([]*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.Order
	for _, o := range m.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockRepository) ListAllOrders(context.Context) ([]*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.orders, nil
}

func (m *mockRepository) UpdateOrderStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	for _, o := range m.orders {
		if o.ID == id {
			o.Status = status
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockRepository) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	return nil, nil
}

func (m *mockRepository) MarkEventAsProcessed(context.Context, int) error {
	return nil
}

func (m *mockRepository) Close() error {
	return nil
}

func (m *mockRepository) recorded() []*domain.Order {
	m.m.RLock()
	defer m.m.RUnlock()
	return append([]*domain.Order(nil), m.orders...)
}

// mockCatalog implements catalog.ProductCatalog for testing
type mockCatalog struct {
	products map[int64]*catalog.Product
	err      error
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalog) Close() error { return nil }

// mockGateway implements gateway.PaymentGateway for testing
type mockGateway struct {
	m         sync.Mutex
	token     string
	tokenErr  error
	outcome   *domain.PaymentOutcome
	saleErr   error
	saleCalls []gateway.SaleRequest
}

func (m *mockGateway) GenerateClientToken(context.Context, string) (string, error) {
	return m.token, m.tokenErr
}

func (m *mockGateway) Sale(_ context.Context, req gateway.SaleRequest) (*domain.PaymentOutcome, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.saleCalls = append(m.saleCalls, req)
	if m.saleErr != nil {
		return nil, m.saleErr
	}
	return m.outcome, nil
}

func (m *mockGateway) calls() []gateway.SaleRequest {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]gateway.SaleRequest(nil), m.saleCalls...)
}

// mockCache implements cache.OrderCache for testing
type mockCache struct {
	m      sync.RWMutex
	orders map[string][]*domain.Order
	err    error
}

func newMockCache() *mockCache {
	return &mockCache{orders: make(map[string][]*domain.Order)}
}

func (m *mockCache) Get(_ context.Context, buyerID string) ([]*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	orders, ok := m.orders[buyerID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return orders, nil
}

func (m *mockCache) Set(_ context.Context, buyerID string, orders []*domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.orders[buyerID] = orders
	return m.err
}

func (m *mockCache) Delete(_ context.Context, buyerID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.orders, buyerID)
	return m.err
}

func (m *mockCache) get(buyerID string) []*domain.Order {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.orders[buyerID]
}

func approvedOutcome() *domain.PaymentOutcome {
	return &domain.PaymentOutcome{
		Success:     true,
		Transaction: &domain.Transaction{ID: "txn_1", Amount: "14.99", Currency: "USD"},
	}
}

func declinedOutcome() *domain.PaymentOutcome {
	return &domain.PaymentOutcome{
		Success: false,
		Error: &domain.GatewayError{
			Message:          "Processor Declined",
			ValidationErrors: map[string][]string{"amount": {"Amount is an invalid format."}},
		},
	}
}

func testCatalog() *mockCatalog {
	return &mockCatalog{products: map[int64]*catalog.Product{
		1: {ID: 1, Name: "Novel", Price: 14.99},
		2: {ID: 2, Name: "Laptop", Price: 999.00},
	}}
}
