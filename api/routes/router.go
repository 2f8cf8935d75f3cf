package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beezio/settlement-backend/api/controllers"
	webhookcontrollers "github.com/beezio/settlement-backend/api/controllers/webhooks"
	"github.com/beezio/settlement-backend/api/middleware"
	stripewebhook "github.com/beezio/settlement-backend/internal/webhooks/stripe"
	"github.com/beezio/settlement-backend/pkg/config"
	"github.com/beezio/settlement-backend/pkg/db"
	"github.com/beezio/settlement-backend/pkg/logger"
	"github.com/beezio/settlement-backend/pkg/redis"
	"github.com/beezio/settlement-backend/pkg/stripe"
)

// NewRouter wires the settlement HTTP surface: health probes, the Stripe
// webhook endpoint, and the Prometheus scrape handler.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	stripeClient *stripe.Client,
	settlementService webhookcontrollers.StripeWebhookService,
	webhookGuard *stripewebhook.IdempotencyGuard,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(settlementService, stripeClient, webhookGuard, logg))
	})

	return r
}
