package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.General.Name != "hermes" {
		t.Errorf("General.Name = %v, want hermes", cfg.General.Name)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("General.LogLevel = %v, want info", cfg.General.LogLevel)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %v, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %v, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.ReadTimeout.Duration != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout.Duration)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("LLM.Provider = %v, want openai", cfg.LLM.Provider)
	}
	if cfg.LLM.Temperature != 0.1 {
		t.Errorf("LLM.Temperature = %v, want 0.1", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens != 150 {
		t.Errorf("LLM.MaxTokens = %v, want 150", cfg.LLM.MaxTokens)
	}

	if cfg.Execution.Strategy != "local" {
		t.Errorf("Execution.Strategy = %v, want local", cfg.Execution.Strategy)
	}
	if cfg.Execution.CommandTimeout.Duration != 60*time.Second {
		t.Errorf("Execution.CommandTimeout = %v, want 60s", cfg.Execution.CommandTimeout.Duration)
	}
	if cfg.Execution.MaxOutputSize != 10000 {
		t.Errorf("Execution.MaxOutputSize = %v, want 10000", cfg.Execution.MaxOutputSize)
	}
	if cfg.Execution.SSH.Port != 22 {
		t.Errorf("Execution.SSH.Port = %v, want 22", cfg.Execution.SSH.Port)
	}
}

func TestConfig_applyDefaults_OllamaBaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.Provider = "ollama"
	cfg.applyDefaults()

	if cfg.LLM.BaseURL != "http://localhost:11434" {
		t.Errorf("LLM.BaseURL = %v, want http://localhost:11434", cfg.LLM.BaseURL)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		cfg.LLM.APIKey = "sk-test"
		cfg.Services.Mapping = map[string]string{"market-predictor": "infrastructure-market-predictor"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid local", func(c *Config) {}, false},
		{"valid ollama without key", func(c *Config) {
			c.LLM.Provider = "ollama"
			c.LLM.APIKey = ""
		}, false},
		{"openai without key", func(c *Config) { c.LLM.APIKey = "" }, true},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "bedrock" }, true},
		{"unknown strategy", func(c *Config) { c.Execution.Strategy = "kubernetes" }, true},
		{"ssh missing host", func(c *Config) {
			c.Execution.Strategy = "ssh"
			c.Execution.SSH.User = "deploy"
			c.Execution.SSH.KeyPath = "/keys/id_ed25519"
		}, true},
		{"ssh missing user", func(c *Config) {
			c.Execution.Strategy = "ssh"
			c.Execution.SSH.Host = "10.0.0.5"
			c.Execution.SSH.KeyPath = "/keys/id_ed25519"
		}, true},
		{"ssh missing key path", func(c *Config) {
			c.Execution.Strategy = "ssh"
			c.Execution.SSH.Host = "10.0.0.5"
			c.Execution.SSH.User = "deploy"
		}, true},
		{"ssh complete", func(c *Config) {
			c.Execution.Strategy = "ssh"
			c.Execution.SSH.Host = "10.0.0.5"
			c.Execution.SSH.User = "deploy"
			c.Execution.SSH.KeyPath = "/keys/id_ed25519"
		}, false},
		{"empty mapping", func(c *Config) { c.Services.Mapping = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("Load() expected error for non-existent file")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[general]
name = "hermes-test"
environment = "test"

[server]
port = 9999
host = "127.0.0.1"

[llm]
provider = "ollama"
model = "mistral:7b"

[execution]
strategy = "local"
command_timeout = "45s"

[services.mapping]
market-predictor = "infrastructure-market-predictor"
billing = "infrastructure-billing"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.Name != "hermes-test" {
		t.Errorf("General.Name = %v, want hermes-test", cfg.General.Name)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %v, want 9999", cfg.Server.Port)
	}
	if cfg.Execution.CommandTimeout.Duration != 45*time.Second {
		t.Errorf("Execution.CommandTimeout = %v, want 45s", cfg.Execution.CommandTimeout.Duration)
	}
	if cfg.Services.Mapping["billing"] != "infrastructure-billing" {
		t.Errorf("mapping[billing] = %v, want infrastructure-billing", cfg.Services.Mapping["billing"])
	}
}

func TestLoad_ServiceMapFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")
	mapPath := filepath.Join(tmpDir, "services.yaml")

	mapContent := "market-predictor: infrastructure-market-predictor\nbilling: infrastructure-billing\n"
	if err := os.WriteFile(mapPath, []byte(mapContent), 0644); err != nil {
		t.Fatalf("Failed to write map file: %v", err)
	}

	configContent := `
[llm]
provider = "ollama"

[services]
map_file = "services.yaml"

[services.mapping]
billing = "override-billing"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Services.Mapping["market-predictor"] != "infrastructure-market-predictor" {
		t.Errorf("mapping[market-predictor] = %v, want infrastructure-market-predictor",
			cfg.Services.Mapping["market-predictor"])
	}
	// Inline entries win over the map file
	if cfg.Services.Mapping["billing"] != "override-billing" {
		t.Errorf("mapping[billing] = %v, want override-billing", cfg.Services.Mapping["billing"])
	}
}

func TestConfig_ServerAddress(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if got := cfg.ServerAddress(); got != "0.0.0.0:8080" {
		t.Errorf("ServerAddress() = %v, want 0.0.0.0:8080", got)
	}
}
