// jobmate-insights-service
//
// Compensation and competitive benchmarking for recruiting organisations.
// Exposes a REST API (and the same operations over gRPC) used by the Gateway:
//   - benchmarks     market distribution, candidate position, premium-adjusted range
//   - scorecard      six-axis radar comparison against one competitor
//   - funnel         hiring-pipeline reach counts per configured view
//
// Funnel reports are cached in Redis and recomputed on a cron schedule;
// each recomputation publishes EVENT_FUNNEL_REFRESHED for Gateway SSE forward.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"

	"jobmate/insights-service/internal/cache"
	"jobmate/insights-service/internal/config"
	"jobmate/insights-service/internal/db"
	"jobmate/insights-service/internal/grpcserver"
	"jobmate/insights-service/internal/insights"
	"jobmate/insights-service/internal/logger"
	"jobmate/insights-service/internal/metrics"
	"jobmate/insights-service/internal/scheduler"
	"jobmate/insights-service/internal/store"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("insights-service exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Setup(cfg.IsProduction())

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	slog.Info("connecting to PostgreSQL")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	// ── Redis ────────────────────────────────────────────────────────────────
	slog.Info("connecting to Redis")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	// ── Service ──────────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBuilder(reg)

	orgs := store.NewOrganizationStore(pool)
	redisCache := cache.NewRedis(rdb)
	svc, err := insights.NewService(insights.Deps{
		Benchmarks:    store.NewBenchmarkStore(pool),
		Organizations: orgs,
		Pipeline:      store.NewPipelineStore(pool),
		Cache:         redisCache,
		Events:        redisCache,
		Metrics:       m,
	}, catalog, cfg.FunnelCacheTTL)
	if err != nil {
		return fmt.Errorf("insights service: %w", err)
	}

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(svc, cfg.FunnelRefreshInterval)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), m.Build())
	r.GET("/health", healthHandler)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	insights.NewHandler(svc).RegisterRoutes(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	gs := grpc.NewServer()
	grpcserver.Register(gs, grpcserver.NewServer(svc))

	errCh := make(chan error, 2)
	go func() {
		slog.Info("HTTP listening", "version", version, "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		slog.Info("gRPC listening", "port", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gs.GracefulStop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "err", err)
	}
	slog.Info("stopped")
	return nil
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "insights-service",
		"version": version,
	})
}
