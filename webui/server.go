// Package webui serves a small HTML front-end for listing and editing notes.
package webui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arvidh/dynotes/notes"
)

// ServerConfig configures the UI server.
type ServerConfig struct {
	// Host is the interface to bind, default loopback.
	Host string
	// Port is the HTTP port to listen on.
	Port int
	// DefaultUserID is used for item operations when a form does not carry
	// its own user id. Needed for tables with a sort key.
	DefaultUserID string
}

// Server is the notes UI HTTP server.
type Server struct {
	config     ServerConfig
	store      *notes.Store
	httpServer *http.Server
}

// NewServer creates a new UI server on top of an open store.
func NewServer(config ServerConfig, store *notes.Store) *Server {
	return &Server{
		config: config,
		store:  store,
	}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	mux := http.NewServeMux()

	handler := NewHandler(s.store, s.config.DefaultUserID)
	handler.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      loggingMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Handle shutdown signals
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.httpServer.Shutdown(ctx)
		close(done)
	}()

	slog.Info("notes UI listening",
		"url", fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port),
		"table", s.store.Table().Name)

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-done
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if r.URL.Path != "/favicon.ico" {
			slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		}
	})
}
