package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/saransh1220/snaplabel/internal/client/api"
	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/config"
	"github.com/saransh1220/snaplabel/internal/shared/log"
	"github.com/saransh1220/snaplabel/internal/shared/version"
)

// NewRootCmd creates the root command for snaplabel.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snaplabel",
		Short: "Upload images and detect labels with the snaplabel API",
		Long: `snaplabel requests a pre-signed upload URL from the snaplabel API, uploads
an image directly to object storage, and runs label detection on it.

The API base URL is taken from --api-base, then SNAPLABEL_API_BASE, then
api_base in the config file ($XDG_CONFIG_HOME/snaplabel/config.yaml).`,
		Version:       version.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("api-base", "", "API base URL, e.g. https://abc.execute-api.us-east-1.amazonaws.com/prod")
	flags.String("token", "", "Bearer token for the API")
	flags.Duration("timeout", 0, "HTTP timeout per request (0 waits indefinitely)")
	flags.StringP("config", "c", "", "Config file path (default: $XDG_CONFIG_HOME/snaplabel/config.yaml)")
	flags.StringP("format", "f", "", "Output format: json or markdown (default json)")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewResultCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var silent *silentError
		if !errors.As(err, &silent) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// silentError is returned after the error was already shown to the user.
type silentError struct {
	err error
}

func (e *silentError) Error() string { return e.err.Error() }
func (e *silentError) Unwrap() error { return e.err }

// resolveConfig merges flags, environment and the config file.
func resolveConfig(cmd *cobra.Command) (config.ClientConfig, error) {
	flags := cmd.Flags()

	var fromFlags config.ClientConfig
	var err error
	if fromFlags.APIBase, err = flags.GetString("api-base"); err != nil {
		return config.ClientConfig{}, err
	}
	if fromFlags.Token, err = flags.GetString("token"); err != nil {
		return config.ClientConfig{}, err
	}
	if fromFlags.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return config.ClientConfig{}, err
	}
	if fromFlags.Format, err = flags.GetString("format"); err != nil {
		return config.ClientConfig{}, err
	}
	path, err := flags.GetString("config")
	if err != nil {
		return config.ClientConfig{}, err
	}

	cfg, err := config.ResolveClient(fromFlags, path, path != "")
	if err != nil {
		return config.ClientConfig{}, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return log.New(cmd.ErrOrStderr(), log.Options{Verbose: verbose})
}

func newClient(cfg config.ClientConfig, logger *slog.Logger) *api.Client {
	return api.New(cfg.APIBase,
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		api.WithToken(cfg.Token),
		api.WithLogger(logger),
	)
}
