package metricsexport

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a registry's collected metrics over /metrics for Prometheus
// to scrape.
type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, reg http.Handler) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewDefaultServer builds a Server serving the default Prometheus registry's
// handler, the one NewExporter registers its gauges with when passed
// prometheus.DefaultRegisterer.
func NewDefaultServer(addr string) *Server {
	return NewServer(addr, promhttp.Handler())
}

// ListenAndServe blocks until ctx is canceled, then gracefully shuts the
// server down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
