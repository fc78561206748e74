// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     model
// Description: Request/response data model for the execution pipeline
// License:     MIT
// ============================================================================

package model

import "time"

// Priority indicates the urgency of a requested operation
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid reports whether p is one of the four priority literals
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TargetResource names the logical service an operation targets
type TargetResource struct {
	Name string `json:"name"`
}

// ActionRequest describes the desired operation in natural language
type ActionRequest struct {
	Intent   string   `json:"intent"`
	Context  string   `json:"context,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

// IncomingRequest is the payload accepted at the transport boundary.
// Immutable once validated; owned by a single pipeline invocation.
type IncomingRequest struct {
	SourceID       string         `json:"source_id"`
	TargetResource TargetResource `json:"target_resource"`
	ActionRequest  ActionRequest  `json:"action_request"`
}

// ResolvedTarget pairs a logical name with its concrete container identifier
type ResolvedTarget struct {
	LogicalName string
	ContainerID string
}

// GeneratedCommand holds the provider output before and after sanitization.
// Execution is reachable only when Safe is true.
type GeneratedCommand struct {
	Raw     string
	Command string
	Safe    bool
}

// ExecutionStatus classifies the outcome of a single command execution
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "SUCCESS"
	ExecutionFailure ExecutionStatus = "FAILURE"
	ExecutionTimeout ExecutionStatus = "TIMEOUT"
	ExecutionError   ExecutionStatus = "ERROR"
)

// ExecutionResult is the transport-independent outcome of running a command.
// ExitCode is present only for SUCCESS and FAILURE.
type ExecutionResult struct {
	Status   ExecutionStatus `json:"status"`
	ExitCode *int            `json:"exit_code,omitempty"`
	Stdout   string          `json:"stdout"`
	Stderr   string          `json:"stderr"`
	Duration time.Duration   `json:"-"`
}

// OverallStatus classifies the terminal outcome of a pipeline run
type OverallStatus string

const (
	StatusCompletedSuccess    OverallStatus = "COMPLETED_SUCCESS"
	StatusCompletedFailure    OverallStatus = "COMPLETED_FAILURE"
	StatusValidationError     OverallStatus = "VALIDATION_ERROR"
	StatusLLMGenerationFailed OverallStatus = "LLM_GENERATION_FAILED"
	StatusInternalError       OverallStatus = "INTERNAL_ERROR"
)

// ExecutionDetails is present in a response iff a command was actually run
type ExecutionDetails struct {
	Command         string           `json:"command"`
	ExecutionResult *ExecutionResult `json:"execution_result"`
}

// ErrorDetails is present in a response iff overall_status is not
// COMPLETED_SUCCESS
type ErrorDetails struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// GatewayResponse is the uniform response shape for every pipeline outcome
type GatewayResponse struct {
	RequestID             string            `json:"request_id"`
	TimestampProcessedUTC string            `json:"timestamp_processed_utc"`
	OverallStatus         OverallStatus     `json:"overall_status"`
	ExecutionDetails      *ExecutionDetails `json:"execution_details,omitempty"`
	ErrorDetails          *ErrorDetails     `json:"error_details,omitempty"`
}
