// Package cmd provides the commands of the ledger CLI.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/ports"
	"expensetracker/internal/services"
)

type rootOptions struct {
	backend string
	file    string
	debug   bool

	logger *applog.Logger
	now    func() time.Time
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{now: time.Now}

	root := &cobra.Command{
		Use:   "ledger",
		Short: "Record and inspect expenses from the terminal",
		Long: `ledger works on the same expense ledger as the web dashboard.

The store is chosen by DATA_BACKEND (csv, memory, sqlite, bolt, sheets, gcs)
and the usual environment variables, or by the flags below.

Example:
  ledger add --category Food --amount 12.50 --note lunch
  ledger recent --limit 10
  ledger budget --daily 800
  ledger export -o expenses.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.LoadEnvFile()
			level := "warn"
			if opts.debug {
				level = "debug"
			}
			opts.logger = applog.New(applog.Config{
				Level:     applog.ParseLevel(level),
				Component: applog.ComponentCLI,
				Output:    cmd.ErrOrStderr(),
			})
			applog.SetDefault(opts.logger)
		},
	}

	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "storage backend (overrides DATA_BACKEND)")
	root.PersistentFlags().StringVar(&opts.file, "file", "", "ledger CSV file (overrides LEDGER_FILE)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newAddCmd(opts),
		newRecentCmd(opts),
		newSummaryCmd(opts),
		newBudgetCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// loadConfig reads the environment and applies the flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.backend != "" {
		if err := os.Setenv("DATA_BACKEND", o.backend); err != nil {
			return nil, err
		}
	}
	if o.file != "" {
		if err := os.Setenv("LEDGER_FILE", o.file); err != nil {
			return nil, err
		}
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openService connects the configured store and, when AMQP is set up, the
// event publisher. The returned func releases both.
func (o *rootOptions) openService(ctx context.Context, withPublisher bool) (*services.LedgerService, *config.Config, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := o.baseLogger()
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open %s backend: %w", bc.Type, err)
	}

	var (
		publisher      ports.ExpensePublisher
		closePublisher backend.CleanupFunc
	)
	if withPublisher {
		publisher, closePublisher = backend.NewPublisher(cfg, logger)
	}
	svc := services.NewLedgerService(res.Store, publisher)

	release := func() {
		if closePublisher != nil {
			if err := closePublisher(); err != nil {
				logger.Warn("Failed to close AMQP client", applog.FieldError, err)
			}
		}
		if err := res.Close(); err != nil {
			logger.Warn("Failed to close backend", applog.FieldError, err)
		}
	}
	return svc, cfg, release, nil
}

func (o *rootOptions) baseLogger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger.Logger
}
