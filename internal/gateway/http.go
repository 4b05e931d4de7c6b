package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/metrics"
)

// HTTPGateway talks to the payment provider's REST API. No automatic retries;
// a failed call surfaces immediately and the circuit breaker sheds load while
// the provider is down.
type HTTPGateway struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
}

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0)

	settings := gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %v -> %v", name, from, to)
			metrics.GatewayState.Set(float64(to))
		},
	}

	return &HTTPGateway{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[*resty.Response](settings),
	}
}

type clientTokenResponse struct {
	ClientToken string `json:"clientToken"`
}

func (g *HTTPGateway) GenerateClientToken(ctx context.Context, buyerID string) (string, error) {
	resp, err := g.breaker.Execute(func() (*resty.Response, error) {
		return g.client.R().
			SetContext(ctx).
			SetBody(map[string]string{"customer_id": buyerID}).
			SetResult(&clientTokenResponse{}).
			Post("/client_token")
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayDown, err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("%w: gateway returned %d", ErrTokenUnavailable, resp.StatusCode())
	}

	token := resp.Result().(*clientTokenResponse).ClientToken
	if token == "" {
		return "", ErrTokenUnavailable
	}
	return token, nil
}

// saleResponse mirrors the provider's transaction-sale payload. Declines come
// back with HTTP 200 and success=false; only transport-level problems are
// errors.
type saleResponse struct {
	Success     bool `json:"success"`
	Transaction *struct {
		ID        string    `json:"id"`
		Amount    string    `json:"amount"`
		Currency  string    `json:"currency"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"transaction,omitempty"`
	Message          string              `json:"message,omitempty"`
	ValidationErrors map[string][]string `json:"validation_errors,omitempty"`
}

func (g *HTTPGateway) Sale(ctx context.Context, req SaleRequest) (*domain.PaymentOutcome, error) {
	resp, err := g.breaker.Execute(func() (*resty.Response, error) {
		return g.client.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&saleResponse{}).
			Post("/transactions")
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayDown, err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayDown, resp.StatusCode())
	}

	sale := resp.Result().(*saleResponse)
	if sale.Success {
		if sale.Transaction == nil {
			return nil, fmt.Errorf("gateway approved sale without transaction detail")
		}
		return &domain.PaymentOutcome{
			Success: true,
			Transaction: &domain.Transaction{
				ID:        sale.Transaction.ID,
				Amount:    sale.Transaction.Amount,
				Currency:  sale.Transaction.Currency,
				CreatedAt: sale.Transaction.CreatedAt,
			},
		}, nil
	}

	return &domain.PaymentOutcome{
		Success: false,
		Error: &domain.GatewayError{
			Message:          sale.Message,
			ValidationErrors: sale.ValidationErrors,
		},
	}, nil
}
