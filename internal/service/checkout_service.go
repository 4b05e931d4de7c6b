package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ecomcore/storefront/internal/cache"
	"github.com/ecomcore/storefront/internal/catalog"
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/gateway"
	"github.com/ecomcore/storefront/internal/metrics"
	"github.com/ecomcore/storefront/internal/repository"
)

type CheckoutRequest struct {
	BuyerID        string
	BuyerName      string
	Nonce          string
	IdempotencyKey string
	Cart           []domain.CartLine
}

type CheckoutService struct {
	repo     repository.OrderRepository
	catalog  catalog.ProductCatalog
	gateway  gateway.PaymentGateway
	cache    cache.OrderCache
	currency string
}

func NewCheckoutService(
	repo repository.OrderRepository,
	cat catalog.ProductCatalog,
	gw gateway.PaymentGateway,
	orderCache cache.OrderCache,
	currency string,
) *CheckoutService {
	return &CheckoutService{
		repo:     repo,
		catalog:  cat,
		gateway:  gw,
		cache:    orderCache,
		currency: currency,
	}
}

// ClientToken fetches a short-lived token the client needs before it can
// render the payment widget. No token means no payment UI; there is no retry
// here, a reload is the recovery path.
func (s *CheckoutService) ClientToken(ctx context.Context, buyerID string) (string, error) {
	return s.gateway.GenerateClientToken(ctx, buyerID)
}

// Checkout charges the nonce for the repriced cart total and records an order
// for the attempt whether the gateway approves or declines. The returned
// order's Payment.Success tells the two apart; a non-nil error means the
// attempt never produced a known outcome (validation, transport or storage
// failure).
func (s *CheckoutService) Checkout(ctx context.Context, req *CheckoutRequest) (*domain.Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Replayed idempotency key: return the recorded outcome, charge nothing.
	existing, err := s.repo.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil && !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		log.Printf("duplicate checkout detected idempotency_key = %v order_id = %v", req.IdempotencyKey, existing.ID)
		metrics.CheckoutsTotal.WithLabelValues("duplicate").Inc()
		return existing, nil
	}

	snapshots, total, err := s.reprice(ctx, req.Cart)
	if err != nil {
		return nil, err
	}

	outcome, err := s.gateway.Sale(ctx, gateway.SaleRequest{
		Nonce:    req.Nonce,
		Amount:   fmt.Sprintf("%.2f", total),
		Currency: s.currency,
		OrderRef: req.IdempotencyKey,
	})
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("gateway sale failed: %w", err)
	}

	order := &domain.Order{
		ID:             uuid.New(),
		BuyerID:        req.BuyerID,
		BuyerName:      req.BuyerName,
		IdempotencyKey: req.IdempotencyKey,
		Products:       snapshots,
		Payment:        *outcome,
		Status:         domain.OrderStatusNotProcessed,
		TotalAmount:    total,
		Currency:       s.currency,
	}

	// The order is the audit record of the attempt, recorded on decline too.
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateCheckout) {
			// Lost a race with a concurrent submission of the same attempt.
			return s.repo.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
		}
		metrics.CheckoutsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	if outcome.Success {
		metrics.CheckoutsTotal.WithLabelValues("approved").Inc()
		metrics.PaymentAmount.Observe(total)
	} else {
		metrics.CheckoutsTotal.WithLabelValues("declined").Inc()
	}

	s.invalidateCache(req.BuyerID)
	return order, nil
}

func validateRequest(req *CheckoutRequest) error {
	if len(req.Cart) == 0 {
		return ErrEmptyCart
	}
	if req.Nonce == "" {
		return ErrMissingNonce
	}
	if req.IdempotencyKey == "" {
		return ErrMissingIdempotencyKey
	}
	return nil
}

// reprice builds order snapshots from the catalog. Client-submitted prices
// are never charged; a mismatch is logged and overridden, an unknown product
// aborts before any gateway call.
func (s *CheckoutService) reprice(ctx context.Context, lines []domain.CartLine) ([]domain.ProductSnapshot, float64, error) {
	snapshots := make([]domain.ProductSnapshot, 0, len(lines))
	var total float64

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, fmt.Errorf("%w: product %d", ErrInvalidQuantity, line.ProductID)
		}

		p, err := s.catalog.GetProduct(ctx, line.ProductID)
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, 0, fmt.Errorf("%w: product %d", ErrUnknownProduct, line.ProductID)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("catalog lookup failed: %w", err)
		}

		if line.Price != p.Price {
			log.Printf("price drift for product %d: client sent %.2f, catalog has %.2f", p.ID, line.Price, p.Price)
		}

		snapshots = append(snapshots, domain.ProductSnapshot{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
		total += p.Price * float64(line.Quantity)
	}

	return snapshots, total, nil
}

func (s *CheckoutService) invalidateCache(buyerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, buyerID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
