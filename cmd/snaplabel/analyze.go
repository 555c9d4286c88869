package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saransh1220/snaplabel/internal/client/display"
	"github.com/saransh1220/snaplabel/internal/client/workflow"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <image>",
		Short: "Upload an image and detect its labels",
		Long: `Analyze runs the full workflow for one image:

  1. POST {api-base}/upload-url for a pre-signed upload URL
  2. PUT the image bytes to that URL
  3. POST {api-base}/analyze with the storage key

Progress is written to stderr and the analysis result to stdout.

Examples:
  snaplabel analyze cat.jpg
  snaplabel analyze --format markdown cat.jpg
  snaplabel analyze --api-base http://localhost:8080 cat.jpg`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := display.NewTerminal(cmd.ErrOrStderr(), cmd.OutOrStdout(), display.NewRenderer(cfg.Format))
	runner := workflow.NewRunner(newClient(cfg, logger), term, logger)

	var file *workflow.File
	if len(args) == 1 {
		file, err = workflow.NewLocalFile(args[0])
		if err != nil {
			return err
		}
	}

	return runWorkflow(ctx, runner, term, file)
}

func runWorkflow(ctx context.Context, runner *workflow.Runner, term *display.Terminal, file *workflow.File) error {
	if _, err := runner.Run(ctx, file); err != nil {
		term.Close()
		return &silentError{err: err}
	}
	return term.Flush()
}
