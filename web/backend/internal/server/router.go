package server

import (
	"net/http"

	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/middleware"
	"github.com/hookline/hookline/web/backend/internal/auth"
	"github.com/hookline/hookline/web/backend/internal/handlers"
	webmiddleware "github.com/hookline/hookline/web/backend/internal/middleware"
	"github.com/hookline/hookline/web/backend/internal/proxy"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds dependencies needed to configure routes
type RouterConfig struct {
	AuthHandler          *handlers.AuthHandler
	SourcesHandler       *handlers.SourcesHandler
	EventsHandler        *handlers.EventsHandler
	SubscriptionsHandler *handlers.SubscriptionsHandler
	AuthMiddleware       *auth.Middleware
	APIProxy             *proxy.Proxy
	RateLimiter          *webmiddleware.LimiterStore // nil disables rate limiting
	MetricsHandler       http.Handler                // defaults to promhttp.Handler()
	StaticDir            string
}

// NewRouter constructs a ServeMux with web backend routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	limit := func(h http.Handler) http.Handler { return h }
	if cfg.RateLimiter != nil {
		limit = webmiddleware.RateLimit(cfg.RateLimiter)
	}
	protect := func(h http.HandlerFunc) http.Handler {
		return cfg.AuthMiddleware.Protect(limit(h))
	}

	// Auth endpoints
	mux.HandleFunc("POST /api/auth/login", cfg.AuthHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", cfg.AuthHandler.Logout)
	mux.Handle("GET /api/auth/me", protect(cfg.AuthHandler.Me))
	mux.Handle("PUT /api/session/project", protect(cfg.AuthHandler.SwitchProject))

	// Sources
	mux.Handle("POST /api/sources", protect(cfg.SourcesHandler.Create))

	// Events and deliveries
	mux.Handle("GET /api/events", protect(cfg.EventsHandler.ListEvents))
	mux.Handle("GET /api/events/{id}", protect(cfg.EventsHandler.GetEvent))
	mux.Handle("PUT /api/events/{id}/replay", protect(cfg.EventsHandler.ReplayEvent))
	mux.Handle("GET /api/eventdeliveries", protect(cfg.EventsHandler.ListDeliveries))
	mux.Handle("GET /api/eventdeliveries/{id}", protect(cfg.EventsHandler.GetDelivery))
	mux.Handle("PUT /api/eventdeliveries/{id}/resend", protect(cfg.EventsHandler.ResendDelivery))
	mux.Handle("GET /api/eventdeliveries/countbatchretryevents", protect(cfg.EventsHandler.CountBatchRetry))
	mux.Handle("POST /api/eventdeliveries/batchretry", protect(cfg.EventsHandler.BatchRetry))
	mux.Handle("POST /api/eventdeliveries/forceresend", protect(cfg.EventsHandler.ForceResend))

	// Subscriptions
	mux.Handle("GET /api/subscriptions", protect(cfg.SubscriptionsHandler.List))
	mux.Handle("POST /api/subscriptions", protect(cfg.SubscriptionsHandler.Create))
	mux.Handle("GET /api/subscriptions/{id}", protect(cfg.SubscriptionsHandler.Get))
	mux.Handle("PUT /api/subscriptions/{id}", protect(cfg.SubscriptionsHandler.Update))
	mux.Handle("DELETE /api/subscriptions/{id}", protect(cfg.SubscriptionsHandler.Delete))
	mux.Handle("PUT /api/subscriptions/{id}/toggle_status", protect(cfg.SubscriptionsHandler.ToggleStatus))

	// Everything else under /api/v1 goes straight to the backend (protected)
	mux.Handle("/api/v1/", cfg.AuthMiddleware.Protect(limit(
		http.StripPrefix("/api/v1", cfg.APIProxy.Handler()),
	)))

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "web"})
	})

	metrics := cfg.MetricsHandler
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	mux.Handle("GET /metrics", metrics)

	// Serve static files (must be last)
	mux.Handle("/", handlers.NewSPAHandler(cfg.StaticDir))

	return middleware.RequestID(mux)
}
