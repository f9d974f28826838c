package router

import (
	"net/http"

	"voucher-pool/internal/handler"
	"voucher-pool/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(voucherHandler *handler.VoucherHandler, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Route("/api/vouchers", func(r chi.Router) {
		r.Post("/generate", voucherHandler.Generate)
		r.Post("/validate", voucherHandler.Validate)
		r.Post("/redeem", voucherHandler.Redeem)
		r.Get("/customer/{email}", voucherHandler.ListByCustomer)

		r.Get("/", voucherHandler.GetAll)
		r.Get("/{id}", voucherHandler.GetByID)
		r.Delete("/{id}", voucherHandler.Delete)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
