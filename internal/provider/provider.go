// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     provider
// Description: Command generation provider abstraction
// License:     MIT
// ============================================================================

package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/msto63/hermes/internal/config"
)

// Provider is the single-shot text completion interface the generator
// consumes. Stateless per call.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete performs a single chat completion
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// HealthCheck checks if the provider is reachable
	HealthCheck(ctx context.Context) error
}

// CompletionRequest represents a completion request
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// CompletionResponse represents a completion response
type CompletionResponse struct {
	Text          string
	Model         string
	PromptTokens  int
	OutputTokens  int
	TotalDuration time.Duration
}

// ProviderError wraps a connectivity or API failure from the provider
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// New creates the configured provider. Unknown provider names are a
// startup error.
func New(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout.Duration,
		})
	case "ollama":
		return NewOllamaProvider(OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout.Duration,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
