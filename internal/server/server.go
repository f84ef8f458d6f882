// Package server exposes the SQL tool set over an HTTP JSON API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/strata-db/strata/internal/server/middleware"
	"github.com/strata-db/strata/pkg/core/connection"
	"github.com/strata-db/strata/pkg/tools"
)

// Server represents the tool API server.
type Server struct {
	tools  *tools.Toolbox
	pool   *connection.Pool
	mux    *http.ServeMux
	host   string
	port   int
	logger *zap.Logger
}

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    int
	Toolbox *tools.Toolbox
	Pool    *connection.Pool
	Logger  *zap.Logger
}

// NewServer creates a new tool API server.
func NewServer(cfg Config) *Server {
	s := &Server{
		tools:  cfg.Toolbox,
		pool:   cfg.Pool,
		host:   cfg.Host,
		port:   cfg.Port,
		mux:    http.NewServeMux(),
		logger: cfg.Logger.With(zap.String("component", "server")),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/query", s.handleQuery)
	s.mux.HandleFunc("/api/execute", s.handleExecute)
	s.mux.HandleFunc("/api/ddl", s.handleDDL)
	s.mux.HandleFunc("/api/tables", s.handleTables)
	s.mux.HandleFunc("/api/tables/", s.handleTableDetails)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/health", s.handleHealth)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// Handler returns the full middleware-wrapped handler; used by tests.
func (s *Server) Handler() http.Handler {
	return middleware.CORS(middleware.RequestLog(s.logger, s.mux))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	server := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("tool server listening", zap.String("addr", s.Addr()))
	return server.ListenAndServe()
}

// StartWithContext starts the server with graceful shutdown support.
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("tool server listening", zap.String("addr", s.Addr()))
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
