package httpapi

import (
	"crypto/rsa"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pixgen/internal/http/handlers"
	"pixgen/internal/infra/geoip"
	"pixgen/internal/metrics"
	"pixgen/internal/middleware"
)

// NewRouter wires the HTTP surface. Webhook routes bypass bearer auth; they
// are gated by the body HMAC inside the handlers instead.
func NewRouter(app *handlers.App, authKey *rsa.PublicKey, resolver geoip.CountryResolver) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger, resolver),
		middleware.CORS([]string{app.Config.FrontendURL}),
	)

	// Health
	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Provider callbacks
	r.Post("/modal/webhook/train", app.ModalWebhookTrain)
	r.Post("/modal/webhook/image", app.ModalWebhookImage)

	// Catalog
	r.Get("/pack/bulk", app.PacksBulk)

	// Authenticated surface
	r.Group(func(r chi.Router) {
		r.Use(
			middleware.AuthBearer(authKey),
			middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
		)

		r.Post("/user/sync", app.UserSync)
		r.Post("/ai/training", app.AITraining)
		r.Post("/ai/generate", app.AIGenerate)
		r.Post("/pack/generate", app.PackGenerate)
		r.Get("/models", app.ModelsList)
		r.Get("/image/bulk", app.ImagesBulk)
		r.Get("/pre-signed-url", app.PresignedURL)
	})

	return r
}
