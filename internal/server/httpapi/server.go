package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/burnnote/burner/internal/logging"
	"github.com/burnnote/burner/internal/store"
)

// Server runs the note API over HTTP with graceful shutdown.
type Server struct {
	address string
	handler *Handler
	log     logging.Logger
}

func NewServer(address string, s store.Store, log logging.Logger, limits Limits) *Server {
	return &Server{
		address: address,
		handler: NewHandler(s, log, limits),
		log:     log.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.handler.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
