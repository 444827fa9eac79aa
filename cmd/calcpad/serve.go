package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/internal/cli"
	httpAdapter "github.com/aretw0/calcpad/pkg/adapters/http"
	"github.com/aretw0/calcpad/pkg/observability"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves calculator sessions over HTTP. Each session keeps its own history
under "calculator-history:<id>" in the configured store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("otlp-endpoint") {
			cfg.Server.OTLPEndpoint, _ = cmd.Flags().GetString("otlp-endpoint")
			cfg.Server.Tracing = true
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var envOpts []cli.EnvOption
		var serverOpts []httpAdapter.Option
		if cfg.Server.Metrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			envOpts = append(envOpts, cli.WithMetrics(observability.NewMetrics(reg)))
			serverOpts = append(serverOpts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
		}
		calcOpts := []calcpad.Option{calcpad.WithConfirmer(ports.ContextConfirmer)}
		if cfg.Server.Tracing {
			shutdown, err := observability.InitTracing(ctx, cfg.Server.OTLPEndpoint)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					logger.Warn("failed to flush traces", "err", err)
				}
			}()
			calcOpts = append(calcOpts, calcpad.WithHooks(observability.TracingHooks()))
		}

		env, err := cli.Open(cfg, append(envOpts, cli.WithLogger(logger))...)
		if err != nil {
			return err
		}
		defer env.Close()

		sessions := env.SessionManager(calcOpts...)
		handler := httpAdapter.NewHandler(sessions, append(serverOpts, httpAdapter.WithLogger(logger))...)

		return serve(ctx, logger, &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		})
	},
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, logger *slog.Logger, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting calcpad server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down calcpad server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		logger.Info("calcpad server stopped gracefully")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("otlp-endpoint", "", "OTLP/HTTP endpoint for traces (enables tracing)")
}
