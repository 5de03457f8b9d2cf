package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// OrderService combines the per-handler interfaces the router wires up.
type OrderService interface {
	OrderCreator
	OrderConfirmer
	OrderCloser
	OrderLister
}

// NewRouter builds the HTTP surface of the service.
func NewRouter(svc OrderService, db Pinger, logger *slog.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(CorrelationID)
	r.Use(RequestLogger(logger))
	r.Use(CORS(corsOrigins))
	r.NotFound(NotFoundHandler())
	r.MethodNotAllowed(MethodNotAllowedHandler())

	r.Get("/health", HealthHandler(db))
	r.Post("/orders", HandleCreateOrder(svc, logger))
	r.Get("/orders", HandleListOrders(svc, logger))
	r.Patch("/orders/{id}/confirm", HandleConfirmOrder(svc, logger))
	r.Post("/orders/{id}/close", HandleCloseOrder(svc, logger))

	return r
}
