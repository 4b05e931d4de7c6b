package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/gateway"
	"github.com/ecomcore/storefront/internal/service"
)

type checkoutService interface {
	ClientToken(ctx context.Context, buyerID string) (string, error)
	Checkout(ctx context.Context, req *service.CheckoutRequest) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout checkoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout checkoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type TokenResponseDTO struct {
	ClientToken string `json:"clientToken"`
}

type PaymentRequestDTO struct {
	Nonce          string            `json:"nonce"`
	IdempotencyKey string            `json:"idempotencyKey"`
	Cart           []domain.CartLine `json:"cart"`
}

type PaymentResponseDTO struct {
	OK      bool                   `json:"ok"`
	Code    string                 `json:"code,omitempty"`
	Order   *domain.Order          `json:"order,omitempty"`
	Payment *domain.PaymentOutcome `json:"payment,omitempty"`
}

// GET /api/v1/product/braintree/token
func (h *CheckoutHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	token, err := h.checkout.ClientToken(ctx, claims.UserID)
	if err != nil {
		log.Printf("client token generation failed: %v", err)
		respondError(w, http.StatusBadGateway, "gateway_unavailable", "payment gateway unavailable")
		return
	}

	respondJSON(w, http.StatusOK, TokenResponseDTO{ClientToken: token})
}

// POST /api/v1/product/braintree/payment
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req PaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.checkout.Checkout(ctx, &service.CheckoutRequest{
		BuyerID:        claims.UserID,
		BuyerName:      claims.Name,
		Nonce:          req.Nonce,
		IdempotencyKey: req.IdempotencyKey,
		Cart:           req.Cart,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	if !order.Payment.Success {
		// The decline is recorded as an order; the client gets the detail.
		respondJSON(w, http.StatusPaymentRequired, PaymentResponseDTO{
			OK:      false,
			Code:    "payment_declined",
			Order:   order,
			Payment: &order.Payment,
		})
		return
	}

	respondJSON(w, http.StatusOK, PaymentResponseDTO{OK: true, Order: order})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.Is(err, service.ErrMissingNonce):
		respondError(w, http.StatusBadRequest, "missing_nonce", "nonce is required")
	case errors.Is(err, service.ErrMissingIdempotencyKey):
		respondError(w, http.StatusBadRequest, "missing_idempotency_key", "idempotencyKey is required")
	case errors.Is(err, service.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "line quantity must be positive")
	case errors.Is(err, service.ErrUnknownProduct):
		respondError(w, http.StatusUnprocessableEntity, "unknown_product", "cart references an unknown product")
	case errors.Is(err, gateway.ErrGatewayDown):
		respondError(w, http.StatusBadGateway, "gateway_unavailable", "payment gateway unavailable")
	default:
		log.Printf("checkout failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
