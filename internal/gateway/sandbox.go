package gateway

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ecomcore/storefront/internal/domain"
)

// Scripted nonces the sandbox understands, mirroring the provider's test
// values. Anything else is rejected as an unknown payment method.
const (
	NonceValid             = "fake-valid-nonce"
	NonceProcessorDeclined = "fake-processor-declined-nonce"
	NonceInvalidAmount     = "fake-invalid-amount-nonce"
)

// Sandbox is a deterministic in-process gateway for development and tests.
// It approves or declines based on the nonce and never touches the network.
type Sandbox struct{}

func NewSandbox() *Sandbox {
	return &Sandbox{}
}

func (s *Sandbox) GenerateClientToken(_ context.Context, buyerID string) (string, error) {
	if buyerID == "" {
		return "", ErrTokenUnavailable
	}
	return "sandbox-" + uuid.NewString(), nil
}

func (s *Sandbox) Sale(_ context.Context, req SaleRequest) (*domain.PaymentOutcome, error) {
	if _, err := strconv.ParseFloat(req.Amount, 64); err != nil || req.Nonce == NonceInvalidAmount {
		return &domain.PaymentOutcome{
			Success: false,
			Error: &domain.GatewayError{
				Message: "Amount is an invalid format.",
				ValidationErrors: map[string][]string{
					"amount": {"Amount is an invalid format."},
				},
			},
		}, nil
	}

	switch req.Nonce {
	case NonceValid:
		return &domain.PaymentOutcome{
			Success: true,
			Transaction: &domain.Transaction{
				ID:        fmt.Sprintf("txn_%s", uuid.NewString()[:8]),
				Amount:    req.Amount,
				Currency:  req.Currency,
				CreatedAt: time.Now().UTC(),
			},
		}, nil
	case NonceProcessorDeclined:
		return &domain.PaymentOutcome{
			Success: false,
			Error: &domain.GatewayError{
				Message: "Processor Declined: Do Not Honor.",
			},
		}, nil
	default:
		return &domain.PaymentOutcome{
			Success: false,
			Error: &domain.GatewayError{
				Message: "Unknown or consumed payment method nonce.",
				ValidationErrors: map[string][]string{
					"payment_method_nonce": {"Unknown or consumed payment method nonce."},
				},
			},
		}, nil
	}
}
