package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger.Logger)

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res := cli.OpenBackend(context.Background(), logger.Logger, bc)

	publisher, closePublisher := backend.NewPublisher(cfg, logger.Logger)
	svc := services.NewLedgerService(res.Store, publisher)

	sess, err := session.Open(context.Background(), svc)
	if err != nil {
		logger.Error("Failed to load ledger", applog.FieldBackend, bc.Type, applog.FieldError, err)
		_ = res.Close()
		os.Exit(1)
	}
	l, _ := sess.Snapshot()
	logger.Info("Ledger loaded", applog.FieldBackend, bc.Type, applog.FieldRecords, l.Len())

	srv := apphttp.NewServer(":"+cfg.Port, sess, svc, apphttp.Options{
		Budget:      cfg.Budget,
		RecentLimit: cfg.RecentLimit,
		Logger:      logger,
		Ready: func(ctx context.Context) error {
			_, err := res.Store.Load(ctx)
			return err
		},
	})

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if sess.Dirty() {
			logger.Warn("Shutting down with unsaved records", applog.FieldBackend, bc.Type)
		}
		if closePublisher != nil {
			if err := closePublisher(); err != nil {
				logger.Warn("Failed to close AMQP client", applog.FieldError, err)
			}
		}
		if err := res.Close(); err != nil {
			logger.Warn("Failed to close backend", applog.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense tracker server", "port", cfg.Port, applog.FieldBackend, bc.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "port", cfg.Port, applog.FieldError, err)
		_ = res.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
