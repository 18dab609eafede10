package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"masonry/internal/config"
)

// app carries process state shared by every subcommand. It is filled in by
// the root command's PersistentPreRunE.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	// flag overrides; empty or zero means "use the environment"
	logLevel  string
	logFormat string
	workers   int
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "masonry",
		Short: "Assemble OpenControl workspaces into certification documentation",
		Long: `masonry reads an OpenControl workspace (components, standards and
certifications), resolves a certification into a single YAML document and
renders that document as a GitBook, a Word document or an inventory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (env "+config.EnvLogLevel+")")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json (env "+config.EnvLogFormat+")")
	root.PersistentFlags().IntVar(&a.workers, "workers", 0, "controls resolved concurrently (env "+config.EnvWorkers+")")

	root.AddCommand(
		newInitCmd(a),
		newNewCmd(a),
		newExportCmd(a),
		newDocsCmd(a),
		newInventoryCmd(a),
		newCertificationsCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(logOut io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if a.workers != 0 {
		cfg.Workers = a.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = setupLogger(logOut, cfg)
	return nil
}

func setupLogger(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("masonry: "+err.Error()))
		os.Exit(1)
	}
}
