package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saransh1220/snaplabel/internal/client/api"
	"github.com/saransh1220/snaplabel/internal/client/display"
	"github.com/saransh1220/snaplabel/internal/client/workflow"
)

// NewResultCmd creates the result command.
func NewResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <analysis-id>",
		Short: "Fetch a stored analysis",
		Long: `Result fetches the latest stored analysis for an analysis ID from
GET {api-base}/result.

Examples:
  snaplabel result 0f8fad5b-d9cb-469f-a165-70867728950e`,
		Args: cobra.ExactArgs(1),
		RunE: runResultCmd,
	}
}

func runResultCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := newClient(cfg, logger).GetResult(ctx, args[0])
	if err != nil {
		msg := err.Error()
		var se *api.StatusError
		if errors.As(err, &se) && se.Message != "" {
			msg = se.Message
		}
		fmt.Fprintln(cmd.ErrOrStderr(), workflow.StatusErrPrefix+msg)
		return &silentError{err: err}
	}

	return display.NewRenderer(cfg.Format).Render(cmd.OutOrStdout(), result)
}
