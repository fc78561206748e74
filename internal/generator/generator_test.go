package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/msto63/hermes/internal/config"
	"github.com/msto63/hermes/internal/model"
	"github.com/msto63/hermes/internal/provider"
	"github.com/msto63/hermes/internal/safety"
	"github.com/msto63/hermes/pkg/core/logging"
)

var testTarget = model.ResolvedTarget{
	LogicalName: "market-predictor",
	ContainerID: "infrastructure-market-predictor",
}

// stubProvider returns a fixed completion or error
type stubProvider struct {
	text string
	err  error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &provider.CompletionResponse{Text: s.text}, nil
}

func (s *stubProvider) HealthCheck(ctx context.Context) error { return nil }

func newTestGenerator(p provider.Provider) *Generator {
	v := safety.New(map[string]string{
		"market-predictor": "infrastructure-market-predictor",
		"billing":          "infrastructure-billing",
	})
	cfg := config.LLMConfig{
		Model:       "test-model",
		Temperature: 0.1,
		MaxTokens:   150,
		Timeout:     config.Duration{Duration: 5 * time.Second},
	}
	return New(p, v, cfg, logging.New("generator-test"))
}

func TestGenerator_Generate_Success(t *testing.T) {
	g := newTestGenerator(&stubProvider{text: "docker restart infrastructure-market-predictor"})

	cmd, err := g.Generate(context.Background(), "restart the service", "", testTarget)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !cmd.Safe {
		t.Error("Safe = false, want true")
	}
	if cmd.Command != "docker restart infrastructure-market-predictor" {
		t.Errorf("Command = %v, want docker restart infrastructure-market-predictor", cmd.Command)
	}
}

func TestGenerator_Generate_StripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain fence", "```\ndocker restart infrastructure-market-predictor\n```"},
		{"bash fence", "```bash\ndocker restart infrastructure-market-predictor\n```"},
		{"inline backticks", "`docker restart infrastructure-market-predictor`"},
		{"surrounding whitespace", "  docker restart infrastructure-market-predictor \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(&stubProvider{text: tt.text})

			cmd, err := g.Generate(context.Background(), "restart the service", "", testTarget)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if cmd.Command != "docker restart infrastructure-market-predictor" {
				t.Errorf("Command = %q, want sanitized single line", cmd.Command)
			}
		})
	}
}

func TestGenerator_Generate_MalformedOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "   \n  "},
		{"multi-line", "docker restart infrastructure-market-predictor\ndocker ps"},
		{"no verb", "!! not a command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(&stubProvider{text: tt.text})

			_, err := g.Generate(context.Background(), "restart the service", "", testTarget)
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("Generate() error type = %T, want *GenerationError", err)
			}
			if genErr.Code != CodeMalformedOutput {
				t.Errorf("Code = %v, want %v", genErr.Code, CodeMalformedOutput)
			}
		})
	}
}

func TestGenerator_Generate_UnsafeCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"chained command", "docker restart infrastructure-market-predictor; rm -rf /"},
		{"denied verb", "docker rm infrastructure-market-predictor"},
		{"wrong container", "docker restart infrastructure-billing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(&stubProvider{text: tt.text})

			_, err := g.Generate(context.Background(), "restart the service", "", testTarget)
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("Generate() error type = %T, want *GenerationError", err)
			}
			if genErr.Code != CodeUnsafeCommand {
				t.Errorf("Code = %v, want %v", genErr.Code, CodeUnsafeCommand)
			}
		})
	}
}

func TestGenerator_Generate_ProviderError(t *testing.T) {
	g := newTestGenerator(&stubProvider{err: &provider.ProviderError{
		Provider: "stub", Err: errors.New("connection refused"),
	}})

	_, err := g.Generate(context.Background(), "restart the service", "", testTarget)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Generate() error type = %T, want *GenerationError", err)
	}
	if genErr.Code != CodeProviderError {
		t.Errorf("Code = %v, want %v", genErr.Code, CodeProviderError)
	}
}

func TestGenerator_buildPrompt(t *testing.T) {
	g := newTestGenerator(&stubProvider{})

	prompt := g.buildPrompt("check status", "", testTarget)
	if !strings.Contains(prompt, "Intent: check status") {
		t.Errorf("prompt = %q, want intent line", prompt)
	}
	if !strings.Contains(prompt, "Container: infrastructure-market-predictor") {
		t.Errorf("prompt = %q, want container line", prompt)
	}
	if strings.Contains(prompt, "Context:") {
		t.Errorf("prompt = %q, context line present without context", prompt)
	}

	withCtx := g.buildPrompt("check status", "service reported 502 errors", testTarget)
	if !strings.Contains(withCtx, "Context: service reported 502 errors") {
		t.Errorf("prompt = %q, want context line", withCtx)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "docker ps", "docker ps"},
		{"whitespace", "  docker ps\n", "docker ps"},
		{"fenced", "```\ndocker ps\n```", "docker ps"},
		{"fenced with lang", "```shell\ndocker ps\n```", "docker ps"},
		{"backtick wrapped", "`docker ps`", "docker ps"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize(tt.input); got != tt.want {
				t.Errorf("sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
