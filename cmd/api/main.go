package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mudatech/healthmon/internal/config"
	"github.com/mudatech/healthmon/internal/httpapi"
	"github.com/mudatech/healthmon/internal/logging"
	"github.com/mudatech/healthmon/internal/metrics"
	"github.com/mudatech/healthmon/internal/monitor"
	"github.com/mudatech/healthmon/internal/probe"
	"github.com/mudatech/healthmon/internal/repo"
	"github.com/mudatech/healthmon/internal/repo/memory"
	"github.com/mudatech/healthmon/internal/repo/postgres"
	"github.com/mudatech/healthmon/internal/stats"
)

func main() {
	cfg := config.Load()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		services repo.ServiceStore
		results  repo.ResultStore
		statsSrc stats.Store
	)
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("postgres_connect_failed", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("postgres_schema_failed", zap.Error(err))
		}
		services, results, statsSrc = pg, pg, pg
		logger.Info("store_postgres")
	} else {
		mem := memory.New()
		services, results, statsSrc = mem, mem, mem
		logger.Warn("store_memory", zap.String("hint", "set DATABASE_URL for persistence"))
	}

	var checker probe.Checker = probe.NewHTTPChecker(cfg.ProbeTimeout)
	if cfg.RetryAttempts > 1 {
		checker = &probe.RetryChecker{Inner: checker, Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
	}

	m := metrics.New()
	mon := monitor.New(logger, services, results, checker, m, cfg.CheckInterval, cfg.Concurrency)
	if err := mon.Bootstrap(ctx); err != nil {
		logger.Fatal("bootstrap_failed", zap.Error(err))
	}
	mon.Start(ctx)

	api := httpapi.NewServer(logger, services, results, stats.NewEngine(statsSrc), mon, m.Handler())
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(cfg.AllowedOrigins, cfg.RateLimitRPM, cfg.RateLimitBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		mon.Stop()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("api_exit", zap.Error(err))
	}
	logger.Info("api_shutdown_clean")
}
