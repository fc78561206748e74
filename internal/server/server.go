package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/msto63/hermes/internal/config"
	"github.com/msto63/hermes/internal/gateway"
	"github.com/msto63/hermes/internal/metrics"
	"github.com/msto63/hermes/pkg/core/health"
	"github.com/msto63/hermes/pkg/core/logging"
)

// Server is the hermes HTTP server
type Server struct {
	httpServer *http.Server
	handler    *Handler
	health     *health.Registry
	logger     *logging.Logger
	config     Config
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string
	CORS         config.CORSConfig
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		Version:      "1.0.0",
	}
}

// New creates a new hermes server
func New(cfg Config, orchestrator *gateway.Orchestrator, m *metrics.Metrics,
	healthRegistry *health.Registry) *Server {
	logger := logging.New("hermes-server")

	h := NewHandler(cfg.Version, orchestrator, m, healthRegistry, cfg.CORS)

	mux := http.NewServeMux()
	mux.Handle("/", h)
	mux.Handle("/api/", h)
	mux.Handle("/api/v1/", h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	healthRegistry.RegisterFunc("http", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{
			Name:    "http",
			Status:  health.StatusHealthy,
			Message: "HTTP server is running",
		}
	})

	return &Server{
		httpServer: httpServer,
		handler:    h,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting hermes gateway",
		"host", s.config.Host,
		"port", s.config.Port,
	)
	return s.httpServer.ListenAndServe()
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	s.logger.Info("Starting hermes gateway (async)",
		"host", s.config.Host,
		"port", s.config.Port,
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping hermes gateway")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
