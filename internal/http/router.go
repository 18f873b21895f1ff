package httpx

import (
	"net/http"

	"payrelay/internal/config"
	"payrelay/internal/http/handlers"
	middlewarex "payrelay/internal/http/middleware"
	"payrelay/internal/metrics"
	"payrelay/internal/services/payment"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	Config           config.Cfg
	PaymentService   *payment.Service
	Metrics          *metrics.Metrics
	WebhookValidator middlewarex.WebhookValidator
	WebhookHeader    string
}

// NewRouter wires the relay endpoints.
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(middlewarex.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middlewarex.Instrument(deps.Metrics))

	r.Get("/", handlers.Info)
	r.Get("/health", handlers.Health(deps.Config.App.Env))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	// Storefront checkout
	r.Post("/pay", handlers.Pay(deps.PaymentService))

	// Processor callbacks (signed when a PayU second key is configured)
	r.Group(func(r chi.Router) {
		if deps.WebhookValidator != nil {
			r.Use(middlewarex.WebhookAuth(deps.WebhookValidator, deps.WebhookHeader, handlers.MaxBodyBytes))
		}
		r.Post("/notify", handlers.Notify(deps.PaymentService))
	})

	return r
}
