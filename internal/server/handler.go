// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     server
// Description: HTTP transport for the execution pipeline
// License:     MIT
// ============================================================================

package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/msto63/hermes/internal/config"
	"github.com/msto63/hermes/internal/gateway"
	"github.com/msto63/hermes/internal/metrics"
	"github.com/msto63/hermes/internal/model"
	"github.com/msto63/hermes/pkg/core/health"
	"github.com/msto63/hermes/pkg/core/logging"
)

// ErrorResponse represents a transport-level API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Handler routes API requests to the pipeline
type Handler struct {
	orchestrator *gateway.Orchestrator
	metrics      *metrics.Metrics
	health       *health.Registry
	logger       *logging.Logger
	version      string
	cors         config.CORSConfig
}

// NewHandler creates a Handler
func NewHandler(version string, o *gateway.Orchestrator, m *metrics.Metrics,
	h *health.Registry, cors config.CORSConfig) *Handler {
	return &Handler{
		orchestrator: o,
		metrics:      m,
		health:       h,
		logger:       logging.New("hermes-handler"),
		version:      version,
		cors:         cors,
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	if h.cors.Enabled {
		origins := "*"
		if len(h.cors.AllowedOrigins) > 0 {
			origins = strings.Join(h.cors.AllowedOrigins, ", ")
		}
		methods := "GET, POST, OPTIONS"
		if len(h.cors.AllowedMethods) > 0 {
			methods = strings.Join(h.cors.AllowedMethods, ", ")
		}
		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Route requests
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" || path == "/":
		h.handleRoot(w, r)
	case path == "health" || path == "health/":
		h.handleHealth(w, r)
	case path == "metrics" || path == "metrics/":
		h.handleMetrics(w, r)
	case path == "execute" || path == "execute/":
		h.handleExecute(w, r)
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "Unknown endpoint", r.URL.Path)
	}
}

// handleExecute runs one pipeline invocation
func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req model.IncomingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON", err.Error())
		return
	}

	resp := h.orchestrator.Process(r.Context(), &req)
	h.writeJSON(w, httpStatusFor(resp.OverallStatus), resp)
}

// httpStatusFor maps the pipeline outcome to an HTTP status. A command that
// ran and failed is still a well-formed 200 response.
func httpStatusFor(status model.OverallStatus) int {
	switch status {
	case model.StatusValidationError:
		return http.StatusBadRequest
	case model.StatusInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	report := h.health.CheckWithTimeout(2 * time.Second)

	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

// handleMetrics handles metrics snapshot requests
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	h.writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

// handleRoot handles the root endpoint
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "hermes AI Command Gateway",
		"version": h.version,
		"endpoints": []string{
			"POST /api/v1/execute",
			"GET  /health",
			"GET  /metrics",
		},
	}
	h.writeJSON(w, http.StatusOK, info)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	h.writeJSON(w, status, resp)
}
