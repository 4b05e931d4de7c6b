package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/ecomcore/storefront/internal/cache"
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/metrics"
	"github.com/ecomcore/storefront/internal/repository"
)

type OrderService struct {
	repo  repository.OrderRepository
	cache cache.OrderCache
	rules domain.TransitionRules
	sfg   singleflight.Group // Prevents cache stampede
}

func NewOrderService(repo repository.OrderRepository, orderCache cache.OrderCache, rules domain.TransitionRules) *OrderService {
	return &OrderService{
		repo:  repo,
		cache: orderCache,
		rules: rules,
	}
}

// OrdersForBuyer returns the buyer's orders, newest first.
func (s *OrderService) OrdersForBuyer(ctx context.Context, buyerID string) ([]*domain.Order, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(buyerID, func() (interface{}, error) {

		orders, err := s.cache.Get(ctx, buyerID)
		if err == nil {
			return orders, nil // list is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		orders, errList := s.repo.ListOrdersByBuyer(ctx, buyerID)
		if errList != nil {
			return nil, errList
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), buyerID, orders)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return orders, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]*domain.Order), nil
}

// AllOrders bypasses the cache: the admin list is always refetched so a
// status update is reflected on the very next load.
func (s *OrderService) AllOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.ListAllOrders(ctx)
}

// UpdateStatus moves an order to a new fulfillment status. Raw status values
// outside the fixed enumeration are rejected without touching the store.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (*domain.Order, error) {
	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}

	current, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.rules.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, current.Status, status)
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	metrics.StatusUpdatesTotal.WithLabelValues(string(status)).Inc()
	s.invalidateCache(updated.BuyerID)
	return updated, nil
}

func (s *OrderService) invalidateCache(buyerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, buyerID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
