package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/bandar-cart/internal/cart"
	"github.com/noah-isme/bandar-cart/internal/checkout"
	"github.com/noah-isme/bandar-cart/internal/config"
	"github.com/noah-isme/bandar-cart/internal/events"
	"github.com/noah-isme/bandar-cart/internal/health"
	"github.com/noah-isme/bandar-cart/internal/obs"
	"github.com/noah-isme/bandar-cart/internal/ratelimit"
	"github.com/noah-isme/bandar-cart/internal/session"
	"github.com/noah-isme/bandar-cart/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracingEnabled := cfg.Obs.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "bandar-cart",
			Endpoint:      cfg.Obs.OTLPEndpoint,
			Exporter:      cfg.Obs.TracingExporter,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	deps := mustInitStorage(ctx, cfg, logger)
	defer deps.close()

	bus := &events.Bus{
		Store:     deps.eventLog,
		Topics:    events.DefaultTopics(),
		Notifiers: []events.Notifier{events.LogNotifier{Logger: logger.With().Str("component", "events").Logger()}},
	}

	registry := cart.NewRegistry(cart.Config{
		Slot:             deps.cartSlot,
		Key:              cfg.CartStorageKey,
		Policy:           cfg.Policy(),
		Currency:         cfg.Currency,
		Language:         cfg.DefaultLanguage,
		PlaceholderImage: cfg.PlaceholderImage,
		Logger:           &logger,
		Listeners:        []cart.Listener{cart.EventListener{Bus: bus}},
	})
	go sweepIdle(ctx, registry, cfg.CartIdleTimeout, logger)

	redirect := &checkout.SessionRedirect{Slot: deps.checkoutSlot, Key: cfg.CheckoutKey, URL: cfg.CheckoutRedirectURL}
	var handoff checkout.Handoff = redirect
	if cfg.CheckoutChannel == checkout.ChannelMessage {
		handoff = &checkout.MessageLink{Phone: cfg.CheckoutPhone, BaseURL: cfg.CheckoutMessageURL}
	}
	cartHandler := &cart.Handler{Registry: registry}
	checkoutHandler := &checkout.Handler{
		Carts:    cartHandler,
		Svc:      checkout.NewService(handoff, bus, &logger),
		Redirect: redirect,
	}

	sessions := session.NewResolver(cfg.SessionHeader, cfg.SessionCookie)
	sessions.CookieSecure = cfg.SessionCookieSecure

	limiter := ratelimit.Handler{
		Limiter: deps.limiter,
		Window:  cfg.RateLimitWindow,
		Max:     cfg.RateLimitMax,
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.Obs.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", cfg.SessionHeader, "X-Cart-Lang", "X-Request-ID"},
		ExposedHeaders:   []string{cfg.SessionHeader, "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(middleware.SetHeader("Referrer-Policy", "no-referrer"))

	if cfg.Obs.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	healthHandler := health.Handler{Checks: deps.checks, Timeout: cfg.Obs.ReadyTimeout}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1/cart", func(c chi.Router) {
		c.Use(sessions.Middleware)
		c.Use(obs.RequestLogger{Logger: logger}.Middleware)
		c.Use(middleware.RequestSize(cfg.BodyLimitBytes))

		c.Get("/", cartHandler.Get)
		c.Get("/checkout", checkoutHandler.Snapshot)
		c.Group(func(g chi.Router) {
			g.Use(limiter.Middleware)
			g.Post("/items", cartHandler.AddItem)
			g.Patch("/items/{id}", cartHandler.UpdateItem)
			g.Delete("/items/{id}", cartHandler.RemoveItem)
			g.Post("/checkout", checkoutHandler.Checkout)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	logger.Info().
		Str("addr", srv.Addr).
		Str("storage", deps.kind).
		Str("checkout_channel", handoff.Channel()).
		Str("fee_mode", string(cfg.FeeMode)).
		Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

type dependencies struct {
	kind         string
	cartSlot     storage.Slot
	checkoutSlot storage.Slot
	eventLog     events.EventStore
	limiter      ratelimit.Limiter
	checks       map[string]health.Checker
	close        func()
}

// mustInitStorage connects Redis when REDIS_URL is set and falls back to
// process memory otherwise.
func mustInitStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) dependencies {
	if cfg.RedisURL == "" {
		logger.Warn().Msg("REDIS_URL not set, carts are kept in memory")
		return dependencies{
			kind:         "memory",
			cartSlot:     storage.NewMemorySlot(cfg.CartTTL),
			checkoutSlot: storage.NewMemorySlot(cfg.CheckoutSnapshotTTL),
			limiter:      ratelimit.NewMemory(),
			checks:       map[string]health.Checker{},
			close:        func() {},
		}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if cfg.Obs.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	cartSlot := storage.NewRedisSlot(client, cfg.CartTTL)
	return dependencies{
		kind:         "redis",
		cartSlot:     cartSlot,
		checkoutSlot: storage.NewRedisSlot(client, cfg.CheckoutSnapshotTTL),
		eventLog:     events.RedisLog{Client: client, Stream: cfg.EventsStream, MaxLen: 10000},
		limiter:      ratelimit.SlidingWindow{Client: client, Prefix: "cart:ratelimit:"},
		checks:       map[string]health.Checker{"redis": cartSlot},
		close: func() {
			if err := client.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		},
	}
}

func sweepIdle(ctx context.Context, registry *cart.Registry, idle time.Duration, logger zerolog.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Sweep(idle); n > 0 {
				logger.Debug().Int("dropped", n).Int("open", registry.Len()).Msg("swept idle carts")
			}
		}
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
