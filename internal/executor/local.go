package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/msto63/hermes/internal/model"
	"github.com/msto63/hermes/pkg/core/logging"
)

// LocalExecutor runs commands as child processes on the local host.
// Commands reaching this point are single-line and metacharacter-free, so
// field splitting is sufficient; no shell is involved.
type LocalExecutor struct {
	maxOutputSize int
	logger        *logging.Logger
}

// NewLocalExecutor creates a LocalExecutor
func NewLocalExecutor(maxOutputSize int, logger *logging.Logger) *LocalExecutor {
	return &LocalExecutor{
		maxOutputSize: maxOutputSize,
		logger:        logger,
	}
}

// Name returns the strategy name
func (e *LocalExecutor) Name() string {
	return "local"
}

// Execute runs the command as a child process. Exit 0 within the timeout is
// SUCCESS, nonzero is FAILURE, exceeding the timeout kills the process and
// yields TIMEOUT, failure to start at all is ERROR.
func (e *LocalExecutor) Execute(ctx context.Context, command string, timeout time.Duration) (model.ExecutionResult, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return model.ExecutionResult{
			Status: model.ExecutionError,
			Stderr: "empty command",
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := model.ExecutionResult{
		Stdout:   truncate(stdout.String(), e.maxOutputSize),
		Stderr:   truncate(stderr.String(), e.maxOutputSize),
		Duration: elapsed,
	}

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		result.Status = model.ExecutionTimeout
		result.Stderr = fmt.Sprintf("command timed out after %s", timeout)
		e.logger.Warn("local command timed out", "command", command, "timeout", timeout.String())

	case err == nil:
		code := 0
		result.Status = model.ExecutionSuccess
		result.ExitCode = &code
		e.logger.Info("local command completed",
			"command", command, "exit_code", 0, "duration_ms", elapsed.Milliseconds())

	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			result.Status = model.ExecutionFailure
			result.ExitCode = &code
			e.logger.Info("local command completed",
				"command", command, "exit_code", code, "duration_ms", elapsed.Milliseconds())
		} else {
			// The process never started
			result.Status = model.ExecutionError
			result.Stderr = fmt.Sprintf("execution error: %v", err)
			e.logger.ErrorWithErr("local command failed to start", err, "command", command)
		}
	}

	return result, nil
}
