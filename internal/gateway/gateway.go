// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     gateway
// Description: Per-request pipeline orchestration and response assembly
// License:     MIT
// ============================================================================

package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/hermes/internal/executor"
	"github.com/msto63/hermes/internal/generator"
	"github.com/msto63/hermes/internal/metrics"
	"github.com/msto63/hermes/internal/model"
	"github.com/msto63/hermes/internal/resolver"
	"github.com/msto63/hermes/pkg/core/logging"
)

// Error codes surfaced in error_details
const (
	CodeMissingField    = "MISSING_FIELD"
	CodeInvalidPriority = "INVALID_PRIORITY"
	CodeUnknownService  = "UNKNOWN_SERVICE"
	CodeLLMError        = "LLM_ERROR"
	CodeConnectionError = "EXECUTION_CONNECTION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"

	internalErrorMessage = "an internal error occurred while processing the request"
)

// Orchestrator sequences one pipeline per request:
// Validate -> Resolve -> Generate(+safety) -> Execute -> BuildResponse.
// Strictly sequential, short-circuiting on the first failing stage.
type Orchestrator struct {
	resolver       *resolver.Resolver
	generator      *generator.Generator
	executor       executor.Strategy
	metrics        metrics.Sink
	logger         *logging.Logger
	commandTimeout time.Duration
}

// New creates an Orchestrator
func New(r *resolver.Resolver, g *generator.Generator, e executor.Strategy,
	m metrics.Sink, logger *logging.Logger, commandTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		resolver:       r,
		generator:      g,
		executor:       e,
		metrics:        m,
		logger:         logger,
		commandTimeout: commandTimeout,
	}
}

// Process runs the pipeline for one request. It always returns a response;
// every failure mode maps to exactly one overall status. The response is
// reported to the metrics sink exactly once.
func (o *Orchestrator) Process(ctx context.Context, req *model.IncomingRequest) (resp *model.GatewayResponse) {
	requestID := uuid.NewString()
	start := time.Now()
	logger := o.logger.WithRequestID(requestID)

	// Unclassified failures must not leak internals to the caller
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panic recovered", "panic", r)
			resp = o.finish(requestID, start, &model.GatewayResponse{
				OverallStatus: model.StatusInternalError,
				ErrorDetails: &model.ErrorDetails{
					ErrorCode:    CodeInternalError,
					ErrorMessage: internalErrorMessage,
				},
			})
		}
	}()

	logger.Info("processing request",
		"source_id", req.SourceID,
		"service", req.TargetResource.Name,
		"intent", req.ActionRequest.Intent,
		"priority", string(req.ActionRequest.Priority))

	// Stage 1: validation
	if err := req.Validate(); err != nil {
		var verr *model.ValidationError
		code := CodeMissingField
		if errors.As(err, &verr) {
			code = validationCode(verr)
		}
		logger.Warn("request validation failed", "error", err.Error())
		return o.finish(requestID, start, &model.GatewayResponse{
			OverallStatus: model.StatusValidationError,
			ErrorDetails: &model.ErrorDetails{
				ErrorCode:    code,
				ErrorMessage: err.Error(),
			},
		})
	}

	// Stage 2: name resolution, fails closed on unknown names
	target, err := o.resolver.Resolve(req.TargetResource.Name)
	if err != nil {
		logger.Warn("service resolution failed", "service", req.TargetResource.Name)
		return o.finish(requestID, start, &model.GatewayResponse{
			OverallStatus: model.StatusValidationError,
			ErrorDetails: &model.ErrorDetails{
				ErrorCode:    CodeUnknownService,
				ErrorMessage: err.Error(),
			},
		})
	}

	// Stage 3: command generation including the safety gate
	cmd, err := o.generator.Generate(ctx, req.ActionRequest.Intent, req.ActionRequest.Context, target)
	if err != nil {
		o.metrics.RecordGeneration(false)
		code := CodeLLMError
		message := "command generation failed"
		var genErr *generator.GenerationError
		if errors.As(err, &genErr) {
			if genErr.Code != generator.CodeProviderError {
				code = genErr.Code
			}
			message = genErr.Message
		}
		logger.Warn("command generation failed", "code", code, "error", err.Error())
		return o.finish(requestID, start, &model.GatewayResponse{
			OverallStatus: model.StatusLLMGenerationFailed,
			ErrorDetails: &model.ErrorDetails{
				ErrorCode:    code,
				ErrorMessage: message,
			},
		})
	}
	o.metrics.RecordGeneration(true)

	// Stage 4: execution. Lifecycle commands are not safely abortable
	// mid-flight, so client disconnect does not cancel the command; the
	// execution deadline is the only bound.
	execCtx := context.WithoutCancel(ctx)
	result, execErr := o.executor.Execute(execCtx, cmd.Command, o.commandTimeout)

	response := &model.GatewayResponse{
		ExecutionDetails: &model.ExecutionDetails{
			Command:         cmd.Command,
			ExecutionResult: &result,
		},
	}

	if result.Status == model.ExecutionSuccess {
		response.OverallStatus = model.StatusCompletedSuccess
	} else {
		response.OverallStatus = model.StatusCompletedFailure
		response.ErrorDetails = executionError(result, execErr)
		logger.Warn("command execution did not succeed",
			"command", cmd.Command,
			"status", string(result.Status))
	}

	return o.finish(requestID, start, response)
}

// finish stamps identity and timing onto the response and reports the
// outcome once
func (o *Orchestrator) finish(requestID string, start time.Time, resp *model.GatewayResponse) *model.GatewayResponse {
	resp.RequestID = requestID
	resp.TimestampProcessedUTC = time.Now().UTC().Format(time.RFC3339)

	elapsed := time.Since(start)
	o.metrics.Report(resp.OverallStatus, elapsed)

	o.logger.WithRequestID(requestID).Info("request finished",
		"overall_status", string(resp.OverallStatus),
		"duration_ms", elapsed.Milliseconds())
	return resp
}

// validationCode picks the error code for a validation failure. Missing
// fields dominate a malformed priority.
func validationCode(verr *model.ValidationError) string {
	onlyPriority := true
	for _, f := range verr.Fields {
		if !strings.HasSuffix(f.Field, "priority") {
			onlyPriority = false
		}
	}
	if onlyPriority {
		return CodeInvalidPriority
	}
	return CodeMissingField
}

// executionError builds error_details for a command that ran but did not
// succeed. Transport failures of the remote strategy carry their own code.
func executionError(result model.ExecutionResult, execErr error) *model.ErrorDetails {
	var connErr *executor.ConnectionError
	if errors.As(execErr, &connErr) {
		return &model.ErrorDetails{
			ErrorCode:    CodeConnectionError,
			ErrorMessage: "could not reach the execution target",
		}
	}

	switch result.Status {
	case model.ExecutionTimeout:
		return &model.ErrorDetails{
			ErrorCode:    string(model.ExecutionTimeout),
			ErrorMessage: "command execution exceeded the configured timeout",
		}
	case model.ExecutionError:
		return &model.ErrorDetails{
			ErrorCode:    string(model.ExecutionError),
			ErrorMessage: "command execution failed before completion",
		}
	default:
		return &model.ErrorDetails{
			ErrorCode:    string(model.ExecutionFailure),
			ErrorMessage: "command executed but exited with a nonzero status",
		}
	}
}
