package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/repository"
	"github.com/ecomcore/storefront/internal/service"
)

type orderService interface {
	OrdersForBuyer(ctx context.Context, buyerID string) ([]*domain.Order, error)
	AllOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (*domain.Order, error)
}

type OrdersHandler struct {
	orders  orderService
	timeout time.Duration
}

func NewOrdersHandler(orders orderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type StatusUpdateRequestDTO struct {
	Status string `json:"status"`
}

// GET /api/v1/auth/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	claims := claimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.OrdersForBuyer(ctx, claims.UserID)
	if err != nil {
		log.Printf("failed to list orders for buyer %v: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/auth/all-orders
func (h *OrdersHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.AllOrders(ctx)
	if err != nil {
		log.Printf("failed to list all orders: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// PUT /api/v1/auth/order-status/{order_id}
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req StatusUpdateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		handleStatusError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func handleStatusError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "invalid_status", "status is not in the allowed set")
	case errors.Is(err, service.ErrTransitionNotAllowed):
		respondError(w, http.StatusConflict, "transition_not_allowed", "status transition not allowed")
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	default:
		log.Printf("status update failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
