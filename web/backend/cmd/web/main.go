package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hookline/hookline/common/client"
	"github.com/hookline/hookline/common/config"
	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/logging"
	"github.com/hookline/hookline/common/middleware"
	"github.com/hookline/hookline/common/session"
	"github.com/hookline/hookline/web/backend/internal/auth"
	"github.com/hookline/hookline/web/backend/internal/handlers"
	webmiddleware "github.com/hookline/hookline/web/backend/internal/middleware"
	"github.com/hookline/hookline/web/backend/internal/proxy"
	"github.com/hookline/hookline/web/backend/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format).
		With(logging.Service("web"))
	logging.SetDefault(logger)

	if cfg.InsecureSecret() && !cfg.DevMode {
		logger.Warn("session.secret is the built-in default; set HOOKLINE_SESSION_SECRET")
	}

	store, closeStore, err := newSessionStore(cfg.Session)
	if err != nil {
		logger.Error("failed to initialize session store", logging.Error(err))
		os.Exit(1)
	}
	defer closeStore()

	manager := session.NewManager(store, session.NewTokenIssuer(cfg.Session.Secret), cfg.Session.TTL)
	cookies := auth.Cookies{Secure: cfg.Session.Secure}

	transport := client.NewClient(cfg.API.URL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithTokenSource(session.APIKeyFromContext),
		client.WithLogger(logger),
	)
	groups := session.ContextResolver{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var limiter *webmiddleware.LimiterStore
	if cfg.RateLimit.Enabled {
		limiter = webmiddleware.NewLimiterStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		proxies, _ := httputil.ParseTrustedProxies(cfg.Server.TrustedProxies) // checked by Validate
		limiter.TrustProxies(proxies)
		limiter.StartJanitor(ctx, 2*time.Minute)
	}

	mux := server.NewRouter(server.RouterConfig{
		AuthHandler:          handlers.NewAuthHandler(manager, cookies, logger),
		SourcesHandler:       handlers.NewSourcesHandler(client.NewSourcesService(transport, groups), logger),
		EventsHandler:        handlers.NewEventsHandler(client.NewEventsService(transport, groups), logger),
		SubscriptionsHandler: handlers.NewSubscriptionsHandler(client.NewSubscriptionsService(transport, groups), logger),
		AuthMiddleware:       auth.NewMiddleware(manager, cookies, logger),
		APIProxy:             proxy.NewProxy(cfg.API.URL, cfg.API.Timeout, logger),
		RateLimiter:          limiter,
		StaticDir:            cfg.StaticDir,
	})

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORS.AllowedOrigins

	csrf, err := webmiddleware.CSRF(cfg.CORS.AllowedOrigins, logger)
	if err != nil {
		logger.Error("invalid CORS origins", logging.Error(err))
		os.Exit(1)
	}

	// Chain middleware: CORS -> Security Headers -> CSRF -> Routes
	handler := csrf(mux)
	handler = webmiddleware.SecurityHeaders(webmiddleware.SecurityConfig{CookieSecure: cfg.Session.Secure})(handler)
	handler = middleware.CORS(corsConfig)(handler)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("hookline web starting",
			"addr", httpServer.Addr,
			"api_url", cfg.API.URL,
			"session_backend", cfg.Session.Backend,
			"static_dir", cfg.StaticDir,
			"dev_mode", cfg.DevMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", logging.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", logging.Error(err))
	}
}

func newSessionStore(cfg config.SessionConfig) (session.Store, func(), error) {
	switch cfg.Backend {
	case "redis":
		store, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}
