package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"stammdaten/internal/audit"
	"stammdaten/internal/platform/config"
	"stammdaten/internal/platform/health"
	"stammdaten/internal/platform/httpserver"
	"stammdaten/internal/platform/logger"
	"stammdaten/internal/profile/store"
	httptransport "stammdaten/internal/transport/http"
	"stammdaten/internal/workflow"
	wfmetrics "stammdaten/internal/workflow/metrics"
	"stammdaten/internal/workflow/tracer"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing stammdaten",
		"addr", cfg.Addr,
		"data_dir", cfg.DataDir,
	)

	fileStore := store.NewFileStore(cfg.DataDir)
	trail := audit.NewInMemoryStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := workflow.New(ctx, fileStore,
		workflow.WithLogger(log),
		workflow.WithMetrics(wfmetrics.New()),
		workflow.WithAuditPublisher(audit.NewPublisher(trail, log)),
		workflow.WithTracer(tracer.NewNoop()),
	)
	if err != nil {
		// A malformed document must never be shadowed by a fresh profile.
		log.Error("refusing to start over unreadable profile document",
			"error", err,
			"path", fileStore.Path(),
		)
		os.Exit(1)
	}

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("data_dir", func() error {
		_, statErr := os.Stat(cfg.DataDir)
		if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			return statErr
		}
		return nil
	})

	handler := httptransport.New(service, trail, log)
	router := httptransport.NewRouter(handler, healthHandler, log, cfg.RequestTimeout)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
