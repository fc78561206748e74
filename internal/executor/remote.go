package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/msto63/hermes/internal/config"
	"github.com/msto63/hermes/internal/model"
	"github.com/msto63/hermes/pkg/core/logging"
)

// RemoteExecutor runs commands over a key-authenticated SSH connection.
// Connections are opened and torn down per request, never pooled, so no
// connection state crosses request boundaries.
type RemoteExecutor struct {
	addr          string
	clientConfig  *ssh.ClientConfig
	maxOutputSize int
	logger        *logging.Logger
}

// NewRemoteExecutor creates a RemoteExecutor. The private key is read and
// parsed here so a bad key fails the process at startup.
func NewRemoteExecutor(cfg config.ExecutionConfig, logger *logging.Logger) (*RemoteExecutor, error) {
	keyData, err := os.ReadFile(cfg.SSH.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key %s: %w", cfg.SSH.KeyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH private key: %w", err)
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.SSH.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.SSH.ConnectTimeout.Duration,
	}

	return &RemoteExecutor{
		addr:          net.JoinHostPort(cfg.SSH.Host, strconv.Itoa(cfg.SSH.Port)),
		clientConfig:  clientConfig,
		maxOutputSize: cfg.MaxOutputSize,
		logger:        logger,
	}, nil
}

// Name returns the strategy name
func (e *RemoteExecutor) Name() string {
	return "ssh"
}

// Execute opens a connection, runs the command in one session, and tears
// the connection down on every exit path. Connection or auth failure is
// ERROR, a command that ran remotely and exited nonzero is FAILURE.
func (e *RemoteExecutor) Execute(ctx context.Context, command string, timeout time.Duration) (model.ExecutionResult, error) {
	start := time.Now()

	client, err := ssh.Dial("tcp", e.addr, e.clientConfig)
	if err != nil {
		connErr := &ConnectionError{Host: e.addr, Err: err}
		e.logger.ErrorWithErr("SSH connection failed", err, "host", e.addr)
		return model.ExecutionResult{
			Status:   model.ExecutionError,
			Stderr:   connErr.Error(),
			Duration: time.Since(start),
		}, connErr
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		connErr := &ConnectionError{Host: e.addr, Err: err}
		e.logger.ErrorWithErr("SSH session setup failed", err, "host", e.addr)
		return model.ExecutionResult{
			Status:   model.ExecutionError,
			Stderr:   connErr.Error(),
			Duration: time.Since(start),
		}, connErr
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start(command); err != nil {
		e.logger.ErrorWithErr("SSH command failed to start", err, "host", e.addr, "command", command)
		return model.ExecutionResult{
			Status:   model.ExecutionError,
			Stderr:   fmt.Sprintf("execution error: %v", err),
			Duration: time.Since(start),
		}, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-time.After(timeout):
		// Closing the session forces the remote side to terminate
		session.Close()
		<-done
		e.logger.Warn("SSH command timed out", "host", e.addr, "command", command, "timeout", timeout.String())
		return model.ExecutionResult{
			Status:   model.ExecutionTimeout,
			Stderr:   fmt.Sprintf("command timed out after %s", timeout),
			Duration: time.Since(start),
		}, nil
	case <-ctx.Done():
		session.Close()
		<-done
		return model.ExecutionResult{
			Status:   model.ExecutionTimeout,
			Stderr:   fmt.Sprintf("command canceled: %v", ctx.Err()),
			Duration: time.Since(start),
		}, nil
	}

	elapsed := time.Since(start)
	result := model.ExecutionResult{
		Stdout:   truncate(stdout.String(), e.maxOutputSize),
		Stderr:   truncate(stderr.String(), e.maxOutputSize),
		Duration: elapsed,
	}

	if waitErr == nil {
		code := 0
		result.Status = model.ExecutionSuccess
		result.ExitCode = &code
		e.logger.Info("remote command completed",
			"host", e.addr, "command", command, "exit_code", 0, "duration_ms", elapsed.Milliseconds())
		return result, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(waitErr, &exitErr) {
		code := exitErr.ExitStatus()
		result.Status = model.ExecutionFailure
		result.ExitCode = &code
		e.logger.Info("remote command completed",
			"host", e.addr, "command", command, "exit_code", code, "duration_ms", elapsed.Milliseconds())
		return result, nil
	}

	result.Status = model.ExecutionError
	result.Stderr = fmt.Sprintf("execution error: %v", waitErr)
	e.logger.ErrorWithErr("remote command failed", waitErr, "host", e.addr, "command", command)
	return result, nil
}
