// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     generator
// Description: Intent to docker command generation with safety gating
// License:     MIT
// ============================================================================

package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/msto63/hermes/internal/config"
	"github.com/msto63/hermes/internal/model"
	"github.com/msto63/hermes/internal/provider"
	"github.com/msto63/hermes/internal/safety"
	"github.com/msto63/hermes/pkg/core/logging"
)

// Generation error codes
const (
	CodeProviderError   = "LLM_PROVIDER_ERROR"
	CodeMalformedOutput = "LLM_MALFORMED_OUTPUT"
	CodeUnsafeCommand   = "LLM_UNSAFE_COMMAND"
)

// GenerationError classifies why command generation failed
type GenerationError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// systemPrompt is the fixed generation instruction. The provider must answer
// with exactly one literal command string, nothing else.
const systemPrompt = "You are an expert assistant that translates user intents for managing services " +
	"into precise Docker CLI commands. The user will provide an intent and a target " +
	"Docker container name. Respond ONLY with the Docker CLI command string. " +
	"Do not add any explanation or conversational fluff."

// commandExamples stabilize the provider output shape
const commandExamples = `
Intent: "restart the service"
Container: "my-app"
Response: docker restart my-app

Intent: "get the last 50 lines of logs"
Container: "my-app"
Response: docker logs --tail 50 my-app

Intent: "check if the container is running"
Container: "my-app"
Response: docker ps --filter name=my-app

Intent: "execute df -h command inside the container"
Container: "my-app"
Response: docker exec my-app df -h

Intent: "stop the service"
Container: "my-app"
Response: docker stop my-app

Intent: "start the service"
Container: "my-app"
Response: docker start my-app

Intent: "check container resource usage"
Container: "my-app"
Response: docker stats --no-stream my-app

Intent: "inspect the container configuration"
Container: "my-app"
Response: docker inspect my-app

Intent: "get container processes"
Container: "my-app"
Response: docker exec my-app ps aux
`

// verbPattern matches a plausible leading command word
var verbPattern = regexp.MustCompile(`^[a-z][a-z0-9._-]*$`)

// Generator turns a validated intent into a single safety-gated command.
// This is the trust boundary: everything downstream assumes the command is
// safe only because this stage asserts it.
type Generator struct {
	provider    provider.Provider
	validator   *safety.Validator
	logger      *logging.Logger
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// New creates a Generator
func New(p provider.Provider, v *safety.Validator, cfg config.LLMConfig, logger *logging.Logger) *Generator {
	return &Generator{
		provider:    p,
		validator:   v,
		logger:      logger,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout.Duration,
	}
}

// Generate produces a validated command for the given intent and target.
// Provider connectivity failures, malformed output, and unsafe commands
// each map to a distinct GenerationError code.
func (g *Generator) Generate(ctx context.Context, intent, intentContext string, target model.ResolvedTarget) (model.GeneratedCommand, error) {
	prompt := g.buildPrompt(intent, intentContext, target)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.Complete(ctx, &provider.CompletionRequest{
		System:      systemPrompt + "\n\nExamples:\n" + commandExamples,
		Prompt:      prompt,
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return model.GeneratedCommand{}, &GenerationError{
			Code:    CodeProviderError,
			Message: "command generation provider failed",
			Err:     err,
		}
	}

	command := sanitize(resp.Text)

	if err := classify(command); err != nil {
		g.logger.Warn("generated command is malformed",
			"raw", resp.Text, "intent", intent)
		return model.GeneratedCommand{Raw: resp.Text}, err
	}

	if err := g.validator.Validate(command, target); err != nil {
		g.logger.Warn("generated command rejected by safety gate",
			"command", command, "container", target.ContainerID, "reason", err.Error())
		return model.GeneratedCommand{Raw: resp.Text, Command: command}, &GenerationError{
			Code:    CodeUnsafeCommand,
			Message: "generated command failed safety validation",
			Err:     err,
		}
	}

	g.logger.Info("generated command accepted",
		"command", command, "container", target.ContainerID)

	return model.GeneratedCommand{Raw: resp.Text, Command: command, Safe: true}, nil
}

// buildPrompt assembles the user message
func (g *Generator) buildPrompt(intent, intentContext string, target model.ResolvedTarget) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intent: %s\nContainer: %s", intent, target.ContainerID)
	if intentContext != "" {
		fmt.Fprintf(&b, "\nContext: %s", intentContext)
	}
	return b.String()
}

// sanitize strips surrounding whitespace and markdown code fences from the
// provider output
func sanitize(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a language hint such as "bash" or "shell"
		if idx := strings.Index(text, "\n"); idx >= 0 {
			first := strings.TrimSpace(text[:idx])
			if first != "" && !strings.Contains(first, " ") {
				text = text[idx+1:]
			}
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	text = strings.Trim(text, "`")
	return strings.TrimSpace(text)
}

// classify rejects output that is not a single plausible command line
func classify(command string) error {
	if command == "" {
		return &GenerationError{
			Code:    CodeMalformedOutput,
			Message: "provider returned empty output",
		}
	}
	if strings.ContainsAny(command, "\n\r") {
		return &GenerationError{
			Code:    CodeMalformedOutput,
			Message: "provider returned multiple lines",
		}
	}
	fields := strings.Fields(command)
	if len(fields) == 0 || !verbPattern.MatchString(fields[0]) {
		return &GenerationError{
			Code:    CodeMalformedOutput,
			Message: "provider output contains no recognizable command verb",
		}
	}
	return nil
}
