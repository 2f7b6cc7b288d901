// Command saasforge runs the SaaSForge core API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	sfhttp "github.com/saasforge/saasforge/internal/adapter/http"
	sfnats "github.com/saasforge/saasforge/internal/adapter/nats"
	"github.com/saasforge/saasforge/internal/adapter/otel"
	"github.com/saasforge/saasforge/internal/adapter/postgres"
	"github.com/saasforge/saasforge/internal/adapter/ristretto"
	"github.com/saasforge/saasforge/internal/adapter/ws"
	"github.com/saasforge/saasforge/internal/config"
	"github.com/saasforge/saasforge/internal/domain/module"
	"github.com/saasforge/saasforge/internal/logger"
	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/service"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "migrate" {
		if err := runMigrate(args[1:]); err != nil {
			slog.Error("migrate failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	cfg, yamlPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logClose := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logClose.Close()

	holder := config.NewHolder(cfg, yamlPath)
	go watchReload(holder)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx := context.Background()

	// --- Telemetry ---
	otelShutdown, err := otel.Setup(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := sfnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	recordCache, err := ristretto.New(int64(cfg.Cache.MaxSizeMB) << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer recordCache.Close()

	// --- Services ---
	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	registry := module.DefaultRegistry()

	toolSvc := service.NewToolService(store, registry, hub, metrics)
	generationSvc := service.NewGenerationService(store, queue, hub, metrics)
	templateSvc := service.NewTemplateService(store, registry, queue, hub, metrics)
	marketplaceSvc := service.NewMarketplaceService(store, queue, hub, metrics)
	resolutionSvc := service.NewResolutionService(store, registry)
	dynamicSvc := service.NewDynamicService(store, recordCache, queue, hub, metrics, cfg.Cache.TTL)
	webhookSvc := service.NewWebhookService(store, queue, metrics, cfg.Webhook)
	adminSvc := service.NewAdminService(store)

	// Queue consumers: generation results, webhook fan-out and delivery.
	cancelResults, err := generationSvc.StartResultSubscriber(ctx)
	if err != nil {
		return fmt.Errorf("generation subscriber: %w", err)
	}
	defer cancelResults()

	cancelDispatch, err := webhookSvc.StartDispatcher(ctx)
	if err != nil {
		return fmt.Errorf("webhook dispatcher: %w", err)
	}
	defer cancelDispatch()

	cancelDeliver, err := webhookSvc.StartDeliveryWorker(ctx)
	if err != nil {
		return fmt.Errorf("webhook delivery worker: %w", err)
	}
	defer cancelDeliver()

	// --- HTTP ---
	handlers := &sfhttp.Handlers{
		Tools:       toolSvc,
		Generation:  generationSvc,
		Templates:   templateSvc,
		Marketplace: marketplaceSvc,
		Resolution:  resolutionSvc,
		Dynamic:     dynamicSvc,
		Webhooks:    webhookSvc,
		Admin:       adminSvc,
		DB:          store,
	}

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(sfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(sfhttp.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(sfhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(otel.HTTPMiddleware(cfg.Otel.ServiceName))
	r.Use(middleware.TenantID)
	r.Use(middleware.Identity)
	r.Use(limiter.Handler)

	sfhttp.MountRoutes(r, handlers, hub.HandleWS)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// watchReload re-reads the YAML config on SIGHUP. Only settings read
// through the holder pick the change up; listeners keep their boot values.
func watchReload(holder *config.Holder) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	for range hup {
		if err := holder.Reload(); err != nil {
			slog.Error("config reload failed", "error", err)
			continue
		}
		slog.Info("config reloaded")
	}
}
