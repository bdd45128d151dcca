package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/dtlattendance/internal/attendance"
	"github.com/mmynk/dtlattendance/internal/middleware"
	"github.com/mmynk/dtlattendance/internal/service"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand runs the HTTP API until interrupted.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the attendance HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.HTTPAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from DTL_HTTP_ADDR)")
	return cmd
}

// newHandler wires the API, health and metrics routes behind the logging
// and CORS middleware.
func newHandler(store *attendance.Store, reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	service.NewAttendanceService(store).Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return middleware.Logging(middleware.CORS(mux))
}

func serve(ctx context.Context, opts *RootOptions, addr string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s, err := openSession(ctx, opts.cfg, attendance.WithMetrics(attendance.NewMetrics(reg)))
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}()
	slog.Info("Storage initialized", "backend", opts.cfg.StorageBackend, "database", opts.cfg.DBPath)

	// h2c serves HTTP/2 without TLS for clients on the local network.
	server := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(newHandler(s.store, reg), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "address", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
