// Package server wires the store, the analysis service and the router into
// a running HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/contentiq/internal/analysis"
	"github.com/palemoky/contentiq/internal/api/rest"
	"github.com/palemoky/contentiq/internal/config"
	"github.com/palemoky/contentiq/internal/database"
	"github.com/palemoky/contentiq/internal/estimator"
)

const shutdownTimeout = 5 * time.Second

// Run serves until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting ContentIQ server",
		zap.Int("port", cfg.Server.Port),
		zap.Duration("analysis_delay", cfg.Analysis.Delay),
		zap.Int("max_open_conns", cfg.Store.MaxOpenConns),
	)

	// Open the transient analysis store
	db, err := database.Open(cfg.Store.DSN, cfg.Store.MaxOpenConns, cfg.Store.MaxIdleConns)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		return err
	}

	repo := database.NewRepository(db)

	est, err := estimator.New(cfg.Analysis.CacheSize)
	if err != nil {
		return err
	}

	svc := analysis.NewService(repo, est, analysis.Options{
		Delay: cfg.Analysis.Delay,
		TTL:   cfg.Analysis.TTL,
	}, log.Named("analysis"))
	defer svc.Close()

	router, limiter, err := rest.SetupRouter(cfg, db, repo, svc, log.Named("http"))
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}

	go svc.RunJanitor(ctx, cfg.Analysis.JanitorInterval)
	if limiter != nil {
		go limiter.RunEvictor(ctx.Done(), cfg.RateLimit.IdleTimeout)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server started",
			zap.Int("port", cfg.Server.Port),
			zap.String("page", fmt.Sprintf("http://localhost:%d/", cfg.Server.Port)),
			zap.String("rest_api", fmt.Sprintf("http://localhost:%d/api/v1", cfg.Server.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
