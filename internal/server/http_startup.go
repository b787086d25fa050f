package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 30 * time.Second

// Run starts the HTTP server and shuts it down gracefully when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	httpServer := s.setupHTTPServer()

	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(ctx, httpServer)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// Certificates are served by the certificate manager.
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.cleanup()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.cleanup()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanup stops the certificate manager and rate limiter
func (s *Server) cleanup() {
	if s.CertificateManager != nil {
		if err := s.CertificateManager.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate manager")
		}
	}

	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
