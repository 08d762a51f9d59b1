package webgate

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Config holds gateway server configuration
type Config struct {
	ListenAddr string
	Port       int
}

// Server serves the published site behind the clearance gate
type Server struct {
	config     *Config
	httpServer *http.Server
}

// New creates a new gateway server
func New(config *Config, handler *Handler) (*Server, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	return &Server{
		config: config,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", config.ListenAddr, config.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
