package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"medtransit/internal/app"
	"medtransit/internal/distance"
	distancemetrics "medtransit/internal/distance/metrics"
	jwttoken "medtransit/internal/jwt_token"
	"medtransit/internal/notify"
	"medtransit/internal/platform/config"
	"medtransit/internal/platform/events"
	"medtransit/internal/platform/httpserver"
	"medtransit/internal/platform/logger"
	"medtransit/internal/platform/metrics"
	"medtransit/internal/platform/middleware"
	platformredis "medtransit/internal/platform/redis"
	"medtransit/internal/statistics"
	"medtransit/internal/transfer/generator"
	transferhandler "medtransit/internal/transfer/handler"
	transfermetrics "medtransit/internal/transfer/metrics"
	transferservice "medtransit/internal/transfer/service"
	"medtransit/pkg/platform/httputil"
	"medtransit/pkg/platform/middleware/requesttime"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router and runs the
// daily generation scheduler. Business logic lives in internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = stores.Close() }()

	cache, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		// The cache is optional; lookups go straight to the API without it.
		log.Warn("redis unavailable, distance cache disabled", "error", err)
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	publisher, err := events.FromConfig(ctx, cfg.Events, log)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	transferMetrics := transfermetrics.New()
	loc := cfg.Location()

	svc := transferservice.New(stores.Transfer, stores.Tx, stores.Directory,
		transferservice.WithLogger(log),
		transferservice.WithMetrics(transferMetrics),
		transferservice.WithNotifier(notify.FromConfig(cfg.Notify, log)),
		transferservice.WithEventPublisher(publisher),
		transferservice.WithLocation(loc),
	)
	gen := generator.New(stores.Transfer, stores.Tx,
		generator.WithLogger(log),
		generator.WithMetrics(transferMetrics),
		generator.WithLocation(loc),
	)
	hour, minute, err := cfg.Generator.Clock()
	if err != nil {
		return err
	}
	scheduler, err := generator.NewScheduler(gen, hour, minute, loc, log)
	if err != nil {
		return err
	}

	var lookup distance.Lookup
	if cfg.Distance.APIKey != "" {
		lookup = distance.NewCachedLookup(distance.NewClient(cfg.Distance, nil), cache, cfg.Distance,
			distance.WithLogger(log),
			distance.WithMetrics(distancemetrics.New()),
		)
	} else {
		log.Info("no distance API key configured, travel time lookups disabled")
	}

	router := newRouter(cfg, log, stores, cache)
	router.Group(func(r chi.Router) {
		if cfg.Auth.ActorTokenKey != "" {
			r.Use(middleware.Actor(jwttoken.NewJWTService(cfg.Auth.ActorTokenKey, cfg.Auth.Issuer), log))
		}
		transferhandler.New(svc, gen, lookup, log).Register(r)
		statistics.NewHandler(statistics.New(stores.Transfer, stores.Directory, loc), log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting medtransit", "addr", cfg.Server.Addr, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start(gctx, cfg.Generator.RunOnStart)
		if next, err := scheduler.NextRun(); err == nil {
			log.Info("daily status generation scheduled", "next_run", next)
		}
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		return scheduler.Stop(shutdownCtx)
	})
	return g.Wait()
}

func newRouter(cfg *config.Config, log *slog.Logger, stores *app.Stores, cache *platformredis.Client) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(requesttime.Middleware)
	r.Use(middleware.LatencyMiddleware(metrics.New()))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if db := stores.DB(); db != nil {
			if err := db.PingContext(req.Context()); err != nil {
				status["database"] = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		if cache != nil {
			if err := cache.Health(req.Context()); err != nil {
				status["redis"] = "unavailable"
			}
		}
		httputil.WriteJSON(w, code, status)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
