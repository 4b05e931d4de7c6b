package checkout

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/pkg/cart"
)

// Result is the explicit outcome of a submitted checkout. Approved and
// declined attempts both carry the recorded order; only transport or server
// failures surface as a Go error from Submit.
type Result struct {
	Approved bool
	Order    *domain.Order
	Decline  *domain.PaymentOutcome
}

// Submitter drives the full payment flow: token, nonce, submission, and on
// approval the cart clear.
type Submitter struct {
	client    *Client
	cart      *cart.Store
	collector MethodCollector
}

func NewSubmitter(client *Client, cartStore *cart.Store, collector MethodCollector) *Submitter {
	return &Submitter{
		client:    client,
		cart:      cartStore,
		collector: collector,
	}
}

type paymentRequest struct {
	Nonce          string            `json:"nonce"`
	IdempotencyKey string            `json:"idempotencyKey"`
	Cart           []domain.CartLine `json:"cart"`
}

type paymentResponse struct {
	OK      bool                   `json:"ok"`
	Code    string                 `json:"code"`
	Order   *domain.Order          `json:"order"`
	Payment *domain.PaymentOutcome `json:"payment"`
}

// Submit charges the current cart. The cart is cleared only on approval; a
// decline or failure leaves it intact so the buyer can retry. Each call is a
// fresh attempt with its own idempotency key, retries of the same attempt
// belong inside the transport layer, not here.
func (s *Submitter) Submit(ctx context.Context) (*Result, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	clientToken, err := s.client.ClientToken(ctx)
	if err != nil {
		return nil, err
	}

	nonce, err := s.collector.CollectNonce(ctx, clientToken)
	if err != nil {
		return nil, err
	}

	var body paymentResponse
	resp, err := s.client.http.R().
		SetContext(ctx).
		SetAuthToken(s.client.creds.Token).
		SetBody(paymentRequest{
			Nonce:          nonce,
			IdempotencyKey: uuid.NewString(),
			Cart:           lines,
		}).
		SetResult(&body).
		SetError(&body).
		Post("/api/v1/product/braintree/payment")
	if err != nil {
		return nil, fmt.Errorf("payment submission failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		if err := s.cart.Clear(); err != nil {
			// The charge went through; a stale local cart is recoverable.
			log.Printf("failed to clear cart after approval: %v", err)
		}
		return &Result{Approved: true, Order: body.Order}, nil

	case http.StatusPaymentRequired:
		return &Result{Approved: false, Order: body.Order, Decline: body.Payment}, nil

	default:
		return nil, fmt.Errorf("payment submission failed: status %d", resp.StatusCode())
	}
}
