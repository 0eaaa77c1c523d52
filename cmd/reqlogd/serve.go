package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "github.com/fyrsmithlabs/reqlog/internal/http"
	"github.com/fyrsmithlabs/reqlog/internal/telemetry"
	"github.com/fyrsmithlabs/reqlog/pkg/logging"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo API with access logging",
		Long: `Serve a small echo API on server.host:server.port. Every request is logged
through reqlog.

Routes:
  GET  /health              liveness
  GET  /echo, POST /echo    echo query and JSON body
  GET  /fail[?status=N]     fail with an error or status N
  GET  /slow?delay=D        wait D, or until the client goes away
  GET  /metrics             Prometheus metrics

Examples:
  reqlogd serve --config reqlogd.yaml
  REQLOGD_REQLOG_OBFUSCATE=body.password reqlogd serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	return cmd
}

// runServe wires logging, telemetry, the access log and the server, and
// serves until ctx is done.
func runServe(ctx context.Context, cfg *AppConfig) (err error) {
	logger, err := logging.NewLogger(&cfg.Logging, nil)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() {
		err = errors.Join(err, logger.Sync())
	}()

	tel, err := telemetry.New(ctx, &cfg.Telemetry, telemetry.WithLogger(logger.Underlying()))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		err = errors.Join(err, tel.Shutdown(context.Background()))
	}()

	name := cfg.Reqlog.Name
	if name == "" {
		name = reqlog.DefaultName
	}
	access, err := reqlog.New(&cfg.Reqlog, reqlog.WithLogger(logger.Named(name).Underlying()))
	if err != nil {
		return fmt.Errorf("creating access log: %w", err)
	}

	metrics := httpserver.NewHTTPMetrics(tel.Meter("github.com/fyrsmithlabs/reqlog/internal/http"), logger.Underlying())

	server, err := httpserver.NewServer(logger.Underlying(), access, metrics, &cfg.Server)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutdown requested", zap.String("cause", context.Cause(ctx).Error()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	return errors.Join(server.Shutdown(shutdownCtx), <-errCh)
}
