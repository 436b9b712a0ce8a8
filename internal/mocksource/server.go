package mocksource

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yegors/flight-overlay/internal/config"
	"github.com/yegors/flight-overlay/pkg/logger"
)

// Server serves a mock flight on the configured address
type Server struct {
	flight *Flight
	server *http.Server
	logger *logger.Logger
}

// NewServer creates the mock telemetry server
func NewServer(cfg config.MockConfig, loggerObj *logger.Logger) *Server {
	flight := NewFlight(cfg, loggerObj)
	return &Server{
		flight: flight,
		server: &http.Server{
			Addr:              cfg.Listen,
			Handler:           flight,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: loggerObj.Named("mock-server"),
	}
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving mock telemetry", logger.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
