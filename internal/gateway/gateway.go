package gateway

import (
	"context"
	"errors"

	"github.com/ecomcore/storefront/internal/domain"
)

// PaymentGateway is the boundary to the external payment provider. Sale
// returns a PaymentOutcome for both approvals and declines; an error means the
// round-trip itself failed (network, timeout, open circuit) and no outcome is
// known.
type PaymentGateway interface {
	GenerateClientToken(ctx context.Context, buyerID string) (string, error)
	Sale(ctx context.Context, req SaleRequest) (*domain.PaymentOutcome, error)
}

type SaleRequest struct {
	Nonce    string `json:"nonce"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	// OrderRef ties the gateway transaction back to the checkout attempt.
	OrderRef string `json:"order_ref"`
}

var (
	ErrTokenUnavailable = errors.New("gateway client token unavailable")
	ErrGatewayDown      = errors.New("payment gateway unreachable")
)
