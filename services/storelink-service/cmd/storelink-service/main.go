package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/storelink/libs/auth"
	"github.com/md-rashed-zaman/storelink/libs/db"
	"github.com/md-rashed-zaman/storelink/libs/httpx"
	"github.com/md-rashed-zaman/storelink/libs/kafkax"
	"github.com/md-rashed-zaman/storelink/libs/metrics"
	otelx "github.com/md-rashed-zaman/storelink/libs/otel"
	"github.com/md-rashed-zaman/storelink/libs/runtime"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/aggregator"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/compliance"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/dedupe"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/erasure"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/handlers"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/outbox"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/shopify"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/storage"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		runtime.NewLogger("storelink-service").Error("config invalid", "err", err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.Service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.Service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	secret, err := compliance.NewSecret(cfg.APISecret)
	if err != nil {
		logger.Error("webhook secret invalid", "err", err)
		os.Exit(1)
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	webhookMetrics := metrics.NewWebhooks(reg)
	serverMetrics := metrics.NewServer(reg)

	readyChecks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}

	onboardingRepo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	var writer outbox.MessageWriter
	if brokers := kafkax.SplitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		w := kafkax.NewWriter(brokers)
		defer w.Close()
		writer = w
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}
	publisher := outbox.NewPublisher(pool, outboxRepo, writer, logger, outbox.PublisherConfig{
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go publisher.Run(ctx)

	var deliveries handlers.DeliveryStore
	var limiter httpx.Limiter = httpx.NewMemoryLimiter(cfg.RatePerMinute, time.Minute)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		deliveries = dedupe.NewRedisStore(rdb, cfg.DedupeTTL)
		limiter = httpx.NewRedisLimiter(rdb, cfg.RatePerMinute, time.Minute, "storelink:ratelimit:")
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: dedupe.ReadyCheck(rdb)})
	}

	outboundHTTP := otelx.HTTPClient(10 * time.Second)
	authenticator := shopify.NewAuthenticator(
		auth.NewSessionTokenVerifier(cfg.APISecret, cfg.APIKey),
		shopify.NewTokenExchanger(shopify.ExchangeConfig{
			ClientID:     cfg.APIKey,
			ClientSecret: cfg.APISecret,
			HTTPClient:   outboundHTTP,
		}),
	)

	dispatcher := compliance.NewDispatcher(
		erasure.New(pool, onboardingRepo, outboxRepo, logger),
		logger,
		compliance.DispatcherConfig{Timeout: cfg.HandlerTimeout, Metrics: webhookMetrics},
	)

	h := handlers.New(handlers.Deps{
		Dispatcher: dispatcher,
		Deliveries: deliveries,
		Auth:       authenticator,
		Onboarding: onboardingRepo,
		Stores:     aggregator.NewClient(cfg.AggregatorURL, outboundHTTP),
		Admin:      shopify.NewAdminClient(outboundHTTP, cfg.AdminAPIVersion),
		Metrics:    webhookMetrics,
	}, logger, handlers.Config{
		WebhookSecret: secret,
		OnboardingURL: cfg.OnboardingURL,
		BodyLimit:     cfg.BodyLimit,
	})

	rateLimited := httpx.WithRateLimit(limiter, httpx.ClientIP, logger, true)
	appRoute := func(name string, fn http.HandlerFunc) http.Handler {
		return serverMetrics.Instrument(name, httpx.Chain(fn, rateLimited, httpx.WithTimeout(20*time.Second)))
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.Handle("/webhooks", serverMetrics.Instrument("webhooks", http.HandlerFunc(h.Webhooks)))
	mux.Handle("/auth/callback", serverMetrics.Instrument("auth_callback", http.HandlerFunc(h.AppEntry)))
	mux.Handle("/app", serverMetrics.Instrument("app", http.HandlerFunc(h.AppEntry)))
	mux.Handle("/app/onboarding", appRoute("onboarding", h.Onboarding))
	mux.Handle("/app/api", appRoute("app_api", h.AppAPI))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           serverHandler(mux, logger, cfg.BodyLimit),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	if err := runtime.Serve(ctx, srv, logger, 10*time.Second); err != nil {
		os.Exit(1)
	}
}

// serverHandler wraps the routes in the shared middleware. Request ids are
// assigned first so recovered panics are logged with one.
func serverHandler(mux http.Handler, logger *slog.Logger, bodyLimit int64) http.Handler {
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithRecover(logger),
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(bodyLimit),
	)
	return otelhttp.NewHandler(handler, "storelink")
}
