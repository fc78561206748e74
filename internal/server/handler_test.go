package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/msto63/hermes/internal/config"
	"github.com/msto63/hermes/internal/gateway"
	"github.com/msto63/hermes/internal/generator"
	"github.com/msto63/hermes/internal/metrics"
	"github.com/msto63/hermes/internal/model"
	"github.com/msto63/hermes/internal/provider"
	"github.com/msto63/hermes/internal/resolver"
	"github.com/msto63/hermes/internal/safety"
	"github.com/msto63/hermes/pkg/core/health"
	"github.com/msto63/hermes/pkg/core/logging"
)

var testMapping = map[string]string{
	"market-predictor": "infrastructure-market-predictor",
}

type stubProvider struct {
	text string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.CompletionResponse, error) {
	return &provider.CompletionResponse{Text: s.text}, nil
}

func (s *stubProvider) HealthCheck(ctx context.Context) error { return nil }

type stubExecutor struct {
	result model.ExecutionResult
}

func (s *stubExecutor) Name() string { return "stub" }

func (s *stubExecutor) Execute(ctx context.Context, command string, timeout time.Duration) (model.ExecutionResult, error) {
	return s.result, nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	logger := logging.New("server-test")
	code := 0
	exec := &stubExecutor{result: model.ExecutionResult{
		Status:   model.ExecutionSuccess,
		ExitCode: &code,
		Stdout:   "ok",
	}}
	g := generator.New(
		&stubProvider{text: "docker ps --filter name=infrastructure-market-predictor"},
		safety.New(testMapping),
		config.LLMConfig{Timeout: config.Duration{Duration: 5 * time.Second}},
		logger)
	m := metrics.New()
	o := gateway.New(resolver.New(testMapping), g, exec, m, logger, 30*time.Second)

	registry := health.NewRegistry("hermes", "1.0.0")
	registry.RegisterFunc("configuration", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{Status: health.StatusHealthy, Message: "1 service configured"}
	})

	return NewHandler("1.0.0", o, m, registry, config.CORSConfig{Enabled: true})
}

func TestHandler_Execute_Success(t *testing.T) {
	h := newTestHandler(t)

	body := `{"source_id":"t","target_resource":{"name":"market-predictor"},"action_request":{"intent":"check status"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp model.GatewayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OverallStatus != model.StatusCompletedSuccess {
		t.Errorf("OverallStatus = %v, want COMPLETED_SUCCESS", resp.OverallStatus)
	}
	if resp.ExecutionDetails == nil {
		t.Error("ExecutionDetails = nil")
	}
	if resp.RequestID == "" {
		t.Error("RequestID is empty")
	}
}

func TestHandler_Execute_ValidationError(t *testing.T) {
	h := newTestHandler(t)

	body := `{"target_resource":{"name":"market-predictor"},"action_request":{"intent":"check status"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %v, want 400", rec.Code)
	}

	var resp model.GatewayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OverallStatus != model.StatusValidationError {
		t.Errorf("OverallStatus = %v, want VALIDATION_ERROR", resp.OverallStatus)
	}
	if resp.ErrorDetails == nil || resp.ErrorDetails.ErrorCode != "MISSING_FIELD" {
		t.Errorf("ErrorDetails = %v, want MISSING_FIELD", resp.ErrorDetails)
	}
}

func TestHandler_Execute_InvalidJSON(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %v, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "invalid_json" {
		t.Errorf("Code = %v, want invalid_json", resp.Code)
	}
}

func TestHandler_Execute_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/execute", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %v, want 405", rec.Code)
	}
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	var report health.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Status != health.StatusHealthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if report.Service != "hermes" {
		t.Errorf("Service = %v, want hermes", report.Service)
	}
}

func TestHandler_Metrics(t *testing.T) {
	h := newTestHandler(t)

	// One successful pipeline run first
	body := `{"source_id":"t","target_resource":{"name":"market-predictor"},"action_request":{"intent":"check status"}}`
	execReq := httptest.NewRequest(http.MethodPost, "/api/v1/execute", strings.NewReader(body))
	h.ServeHTTP(httptest.NewRecorder(), execReq)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.RequestsTotal != 1 {
		t.Errorf("RequestsTotal = %v, want 1", snap.RequestsTotal)
	}
	if snap.CompletedSuccess != 1 {
		t.Errorf("CompletedSuccess = %v, want 1", snap.CompletedSuccess)
	}
}

func TestHandler_Root(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hermes") {
		t.Errorf("body = %q, want service info", rec.Body.String())
	}
}

func TestHandler_CORSPreflight(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/execute", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %v, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Access-Control-Allow-Origin = %v, want *", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %v, want 404", rec.Code)
	}
}
