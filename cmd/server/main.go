// Package main is the snaplabel API server.
//
// Usage:
//
//	snaplabel-server                 serve the API (default)
//	snaplabel-server migrate up      apply pending migrations
//	snaplabel-server token           mint a bearer token for the CLI
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/saransh1220/snaplabel/internal/gateway"
	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/config"
	"github.com/saransh1220/snaplabel/internal/shared/log"
	"github.com/saransh1220/snaplabel/internal/shared/version"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
	}

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd creates the root command. Without a subcommand it serves the API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snaplabel-server",
		Short: "Upload-URL issuer and label analyzer API",
		Long: `snaplabel-server issues pre-signed upload URLs, runs label detection on
uploaded images and stores the results.

Configuration is read from the environment (and a .env file when present).`,
		Version:       version.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewTokenCmd())

	return cmd
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return log.New(cmd.ErrOrStderr(), log.Options{Verbose: verbose, JSON: true})
}

func runServe(cmd *cobra.Command) error {
	logger := newLogger(cmd)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Info("starting snaplabel-server",
		"version", version.Version(),
		"store", cfg.Store.Backend,
		"analyzer", cfg.Analyzer.Provider,
		"s3", cfg.FileStorage.UseS3,
	)

	return serve(ctx, cfg, logger)
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := gateway.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return gateway.NewServer(cfg.Server.Port, app.Handler, logger).Start(ctx)
}
