package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/logger"
)

// readHeaderTimeout bounds slow clients. There is no write timeout because a
// prompt blocks until the mech delivers.
const readHeaderTimeout = 10 * time.Second

// ListenAndServe listens on addr and serves until Shutdown
func (s *RelayServer) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. It returns nil after a
// graceful shutdown.
func (s *RelayServer) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		ln.Close()
		return errors.New("server already started")
	}
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Infow("HTTP server listening", logger.FieldAddress, ln.Addr().String())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires, then closes any that remain
func (s *RelayServer) Shutdown(ctx context.Context) error {
	if s.State() == ServerStateStopped {
		return nil
	}
	s.logger.Infow("Initiating server shutdown")
	s.setState(ServerStateDraining)

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	var shutdownErr error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Warnw("Graceful shutdown incomplete, closing connections", logger.FieldError, err)
			if closeErr := srv.Close(); closeErr != nil {
				s.logger.Warnw("Failed to close HTTP server", logger.FieldError, closeErr)
			}
			shutdownErr = errors.Wrap(err, "graceful shutdown timed out")
		}
	}

	s.setState(ServerStateStopped)
	s.logger.Infow("Server shutdown complete")
	return shutdownErr
}
