package cache

import (
	"context"
	"errors"

	"github.com/ecomcore/storefront/internal/domain"
)

// OrderCache holds a buyer's rendered order list. It is purely an
// acceleration layer: every write path invalidates, never patches.
type OrderCache interface {
	Get(ctx context.Context, buyerID string) ([]*domain.Order, error)
	Set(ctx context.Context, buyerID string, orders []*domain.Order) error
	Delete(ctx context.Context, buyerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
