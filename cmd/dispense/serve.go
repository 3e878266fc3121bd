package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/dispense/api"
	"github.com/warp/dispense/factory"
	"github.com/warp/dispense/logging"
	"github.com/warp/dispense/metrics"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			log, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer log.Sync()
			log = log.Named("dispense")

			f := &factory.PrescriptionFactory{
				DefaultWindow: cfg.Schedule.Window(),
				MaxIterations: cfg.Schedule.MaxIterations,
			}
			h := api.NewHandler(f, log.Named("api"), metrics.New())

			server := &http.Server{
				Addr:         cfg.Server.Addr(),
				Handler:      api.NewRouter(h, cfg.Server.CORSOrigins),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, server, cfg.Server.ShutdownTimeout, log)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port (overrides config)")
	return cmd
}

// run serves until ctx is cancelled, then drains active requests for up to
// shutdownTimeout.
func run(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, log logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", logging.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logging.Err(err))
		return err
	}

	log.Info("server stopped")
	return nil
}
