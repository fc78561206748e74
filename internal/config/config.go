// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     config
// Description: TOML configuration loading and startup validation
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete gateway configuration
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Server    ServerConfig    `toml:"server"`
	LLM       LLMConfig       `toml:"llm"`
	Execution ExecutionConfig `toml:"execution"`
	Services  ServicesConfig  `toml:"services"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string     `toml:"host"`
	Port         int        `toml:"port"`
	ReadTimeout  Duration   `toml:"read_timeout"`
	WriteTimeout Duration   `toml:"write_timeout"`
	CORS         CORSConfig `toml:"cors"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	Enabled        bool     `toml:"enabled"`
	AllowedOrigins []string `toml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods"`
}

// LLMConfig holds command-generation provider configuration
type LLMConfig struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	BaseURL     string   `toml:"base_url"`
	APIKey      string   `toml:"api_key"`
	Temperature float32  `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens"`
	Timeout     Duration `toml:"timeout"`
}

// ExecutionConfig holds command execution configuration
type ExecutionConfig struct {
	Strategy       string    `toml:"strategy"`
	CommandTimeout Duration  `toml:"command_timeout"`
	MaxOutputSize  int       `toml:"max_output_size"`
	SSH            SSHConfig `toml:"ssh"`
}

// SSHConfig holds remote execution settings, required when strategy is "ssh"
type SSHConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	User           string   `toml:"user"`
	KeyPath        string   `toml:"key_path"`
	ConnectTimeout Duration `toml:"connect_timeout"`
}

// ServicesConfig maps logical service names to container identifiers.
// The mapping can be given inline or in a separate YAML file; inline
// entries win on conflict.
type ServicesConfig struct {
	Mapping map[string]string `toml:"mapping"`
	MapFile string            `toml:"map_file"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in sensitive fields
	cfg.expandEnvVars()

	// Merge the external service map file, if configured
	if err := cfg.loadServiceMap(filepath.Dir(path)); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from the HERMES_CONFIG environment variable
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("HERMES_CONFIG")
	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"./configs/config.toml",
			"./config.toml",
			filepath.Join(os.Getenv("HOME"), ".config/hermes/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, fmt.Errorf("no config file found, set HERMES_CONFIG or create configs/config.toml")
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "hermes"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "json"
	}

	// Server
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 120 * time.Second
	}

	// LLM
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.BaseURL == "" {
		switch c.LLM.Provider {
		case "ollama":
			c.LLM.BaseURL = "http://localhost:11434"
		default:
			c.LLM.BaseURL = "https://api.openai.com/v1"
		}
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.1
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 150
	}
	if c.LLM.Timeout.Duration == 0 {
		c.LLM.Timeout.Duration = 30 * time.Second
	}

	// Execution
	if c.Execution.Strategy == "" {
		c.Execution.Strategy = "local"
	}
	if c.Execution.CommandTimeout.Duration == 0 {
		c.Execution.CommandTimeout.Duration = 60 * time.Second
	}
	if c.Execution.MaxOutputSize == 0 {
		c.Execution.MaxOutputSize = 10000
	}
	if c.Execution.SSH.Port == 0 {
		c.Execution.SSH.Port = 22
	}
	if c.Execution.SSH.ConnectTimeout.Duration == 0 {
		c.Execution.SSH.ConnectTimeout.Duration = 10 * time.Second
	}

	if c.Services.Mapping == nil {
		c.Services.Mapping = make(map[string]string)
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.LLM.APIKey = os.ExpandEnv(c.LLM.APIKey)
	c.LLM.BaseURL = os.ExpandEnv(c.LLM.BaseURL)
	c.Execution.SSH.KeyPath = os.ExpandEnv(c.Execution.SSH.KeyPath)
	c.Services.MapFile = os.ExpandEnv(c.Services.MapFile)
}

// loadServiceMap merges entries from the external YAML map file into the
// inline mapping. Relative paths resolve against the config file directory.
func (c *Config) loadServiceMap(baseDir string) error {
	if c.Services.MapFile == "" {
		return nil
	}

	path := c.Services.MapFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read service map file: %w", err)
	}

	var fileMapping map[string]string
	if err := yaml.Unmarshal(data, &fileMapping); err != nil {
		return fmt.Errorf("failed to parse service map file: %w", err)
	}

	for name, container := range fileMapping {
		if _, exists := c.Services.Mapping[name]; !exists {
			c.Services.Mapping[name] = container
		}
	}

	return nil
}

// Validate checks that all required settings are present. This runs once at
// startup; a failure here aborts the process, it is never a per-request error.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider %q", c.LLM.Provider)
		}
	case "ollama":
		// Local provider, no key required
	default:
		return fmt.Errorf("unknown llm.provider %q (must be openai or ollama)", c.LLM.Provider)
	}

	switch c.Execution.Strategy {
	case "local":
		// No additional settings
	case "ssh":
		if c.Execution.SSH.Host == "" {
			return fmt.Errorf("execution.ssh.host is required for strategy ssh")
		}
		if c.Execution.SSH.User == "" {
			return fmt.Errorf("execution.ssh.user is required for strategy ssh")
		}
		if c.Execution.SSH.KeyPath == "" {
			return fmt.Errorf("execution.ssh.key_path is required for strategy ssh")
		}
	default:
		return fmt.Errorf("unknown execution.strategy %q (must be local or ssh)", c.Execution.Strategy)
	}

	if len(c.Services.Mapping) == 0 {
		return fmt.Errorf("services.mapping is empty: at least one logical service is required")
	}

	return nil
}

// ServerAddress returns the listen address for the HTTP server
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
