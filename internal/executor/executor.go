// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     executor
// Description: Pluggable command execution strategies (local, SSH remote)
// License:     MIT
// ============================================================================

package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/msto63/hermes/internal/config"
	"github.com/msto63/hermes/internal/model"
	"github.com/msto63/hermes/pkg/core/logging"
)

// Strategy runs a validated command against a target runtime. The result
// encodes every expected outcome; the error is non-nil only for transport
// failures that never reached the command (connection, auth).
type Strategy interface {
	// Name returns the strategy name
	Name() string

	// Execute runs the command with the given timeout
	Execute(ctx context.Context, command string, timeout time.Duration) (model.ExecutionResult, error)
}

// ConnectionError marks a transport-level failure of the remote strategy,
// distinct from a command that ran and exited nonzero
type ConnectionError struct {
	Host string
	Err  error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Host, e.Err)
}

// Unwrap returns the underlying error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// New selects the configured strategy once at startup. An unknown strategy
// or incomplete strategy-specific settings are fatal here, never a
// per-request fallback.
func New(cfg config.ExecutionConfig, logger *logging.Logger) (Strategy, error) {
	switch cfg.Strategy {
	case "local":
		return NewLocalExecutor(cfg.MaxOutputSize, logger), nil
	case "ssh":
		return NewRemoteExecutor(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown execution strategy %q", cfg.Strategy)
	}
}

// truncate bounds output to maxLen characters, appending a marker that
// records what was cut
func truncate(output string, maxLen int) string {
	if maxLen <= 0 || len(output) <= maxLen {
		return output
	}
	return output[:maxLen] +
		fmt.Sprintf("\n\n[OUTPUT TRUNCATED - %d total characters, showing first %d]", len(output), maxLen)
}
