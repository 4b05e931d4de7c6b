package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecomcore/storefront/internal/metrics"
)

// NewRouter assembles the full HTTP surface. The checkout and order routes
// sit behind JWT auth; health and metrics are open.
func NewRouter(
	checkoutHandler *CheckoutHandler,
	ordersHandler *OrdersHandler,
	jwtSecret string,
	requestTimeout time.Duration,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticator(jwtSecret))

		r.Route("/product/braintree", func(r chi.Router) {
			r.Get("/token", checkoutHandler.GetToken)
			r.Post("/payment", checkoutHandler.SubmitPayment)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/orders", ordersHandler.ListOrders)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/all-orders", ordersHandler.ListAllOrders)
				r.Put("/order-status/{order_id}", ordersHandler.UpdateStatus)
			})
		})
	})

	return r
}
