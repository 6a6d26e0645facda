package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/janus/internal/attendance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Start runs the HTTP server carrying the scan ingress API together with
// the health check and metrics endpoints. It blocks until ctx is
// cancelled or the listener fails.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - dtb: A database connector for the health check (ping).
// - cache: A redis client for the health check (ping).
// - svc: The attendance service backing the API endpoints.
// - port: The port number on which the server will listen.
func Start(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb DBPinger,
	cache RedisPinger,
	svc *attendance.Service,
	port int,
) {
	mux := http.NewServeMux()
	healthChecker := NewHealthChecker(log, dtb, cache)

	mux.Handle("/healthz", healthChecker)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	NewAPI(log, svc).Register(mux)

	log.InfoContext(ctx, "Starting HTTP server", "port", port)

	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	var err error
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(readTimeout)*time.Second)
		defer cancel()
		log.InfoContext(ctx, "HTTP server shutting down.")
		if err = server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "HTTP server failed to shutdown", "error", err)
			return
		}
	case err = <-serverErr:
		log.ErrorContext(ctx, "HTTP server failed", "error", err)
	}
}
