// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     metrics
// Description: Process-wide atomic outcome and duration counters
// License:     MIT
// ============================================================================

package metrics

import (
	"sync/atomic"
	"time"

	"github.com/msto63/hermes/internal/model"
)

// Sink receives one outcome event per pipeline run
type Sink interface {
	// Report records a terminal pipeline outcome and its elapsed duration
	Report(status model.OverallStatus, duration time.Duration)

	// RecordGeneration records a command generation attempt
	RecordGeneration(success bool)
}

// Metrics is the process-wide Sink. All counters are atomic; this is the
// only mutable state shared across requests.
type Metrics struct {
	requestsTotal     atomic.Int64
	completedSuccess  atomic.Int64
	completedFailure  atomic.Int64
	validationErrors  atomic.Int64
	generationFailed  atomic.Int64
	internalErrors    atomic.Int64
	generationSuccess atomic.Int64
	generationFailure atomic.Int64
	totalDurationMs   atomic.Int64
}

// New creates a Metrics sink
func New() *Metrics {
	return &Metrics{}
}

// Report records a terminal pipeline outcome and its elapsed duration
func (m *Metrics) Report(status model.OverallStatus, duration time.Duration) {
	m.requestsTotal.Add(1)
	m.totalDurationMs.Add(duration.Milliseconds())

	switch status {
	case model.StatusCompletedSuccess:
		m.completedSuccess.Add(1)
	case model.StatusCompletedFailure:
		m.completedFailure.Add(1)
	case model.StatusValidationError:
		m.validationErrors.Add(1)
	case model.StatusLLMGenerationFailed:
		m.generationFailed.Add(1)
	case model.StatusInternalError:
		m.internalErrors.Add(1)
	}
}

// RecordGeneration records a command generation attempt
func (m *Metrics) RecordGeneration(success bool) {
	if success {
		m.generationSuccess.Add(1)
	} else {
		m.generationFailure.Add(1)
	}
}

// Snapshot is a point-in-time copy of all counters
type Snapshot struct {
	RequestsTotal     int64 `json:"requests_total"`
	CompletedSuccess  int64 `json:"completed_success"`
	CompletedFailure  int64 `json:"completed_failure"`
	ValidationErrors  int64 `json:"validation_errors"`
	GenerationFailed  int64 `json:"llm_generation_failed"`
	InternalErrors    int64 `json:"internal_errors"`
	GenerationSuccess int64 `json:"generation_success"`
	GenerationFailure int64 `json:"generation_failure"`
	TotalDurationMs   int64 `json:"total_duration_ms"`
}

// Snapshot returns a copy of the current counter values
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RequestsTotal:     m.requestsTotal.Load(),
		CompletedSuccess:  m.completedSuccess.Load(),
		CompletedFailure:  m.completedFailure.Load(),
		ValidationErrors:  m.validationErrors.Load(),
		GenerationFailed:  m.generationFailed.Load(),
		InternalErrors:    m.internalErrors.Load(),
		GenerationSuccess: m.generationSuccess.Load(),
		GenerationFailure: m.generationFailure.Load(),
		TotalDurationMs:   m.totalDurationMs.Load(),
	}
}
