// SPDX-License-Identifier: AGPL-3.0-only
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration for the agent service.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	AI        AIConfig
	Database  DatabaseConfig
	Retention RetentionConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name    string
	Version string
	Address string
	Port    int
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string
	FilePath string
}

// AIConfig holds LLM provider configuration.
type AIConfig struct {
	// Provider selects the chat backend: "openai" (default) or "anthropic".
	Provider string
	// APIKey is a generic fallback used when the provider-specific key is
	// not set.
	APIKey          string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	// BaseURL overrides the OpenAI endpoint, which allows pointing at any
	// OpenAI-compatible server (DIAL, Ollama, vLLM, LiteLLM, ...).
	BaseURL string
	Model   string
	// MaxTurns bounds the tool-calling loop for a single chat invocation.
	MaxTurns int
	// MCPConfigFilePath points at the mcpServers JSON file.
	MCPConfigFilePath string
}

// DatabaseConfig holds conversation persistence configuration.
type DatabaseConfig struct {
	Path string
}

// RetentionConfig controls the background sweep that deletes stale
// conversations.
type RetentionConfig struct {
	Enabled  bool
	Schedule string
	MaxAge   time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	baseDir := filepath.Join(home, ".ums-agent")

	return &Config{
		Server: ServerConfig{
			Name:    "ums-agent",
			Version: "1.0.0",
			Address: "0.0.0.0",
			Port:    8011,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		AI: AIConfig{
			Provider:          "openai",
			Model:             "gpt-4o",
			MaxTurns:          20,
			MCPConfigFilePath: filepath.Join(baseDir, "mcp.json"),
		},
		Database: DatabaseConfig{
			Path: filepath.Join(baseDir, "conversations.db"),
		},
		Retention: RetentionConfig{
			Enabled:  false,
			Schedule: "0 3 * * *",
			MaxAge:   30 * 24 * time.Hour,
		},
	}
}

// FromEnv overrides cfg fields from environment variables.
func FromEnv(cfg *Config) {
	setString(&cfg.Server.Address, "UMS_AGENT_ADDRESS")
	setInt(&cfg.Server.Port, "UMS_AGENT_PORT")

	setString(&cfg.Logging.Level, "UMS_AGENT_LOG_LEVEL")
	setString(&cfg.Logging.FilePath, "UMS_AGENT_LOG_FILE")

	setString(&cfg.AI.Provider, "AI_PROVIDER")
	setString(&cfg.AI.APIKey, "API_KEY")
	setString(&cfg.AI.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.AI.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.AI.BaseURL, "AI_BASE_URL")
	setString(&cfg.AI.Model, "AI_MODEL")
	setInt(&cfg.AI.MaxTurns, "AI_MAX_TURNS")
	setString(&cfg.AI.MCPConfigFilePath, "MCP_CONFIG_PATH")

	setString(&cfg.Database.Path, "UMS_AGENT_DB_PATH")

	if v := os.Getenv("UMS_AGENT_RETENTION_SCHEDULE"); v != "" {
		cfg.Retention.Schedule = v
		cfg.Retention.Enabled = true
	}
	if v := os.Getenv("UMS_AGENT_RETENTION_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retention.MaxAge = d
		}
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI model must not be empty")
	}
	if c.AI.MaxTurns <= 0 {
		return fmt.Errorf("AI max turns must be positive, got %d", c.AI.MaxTurns)
	}
	if c.Retention.Enabled && c.Retention.MaxAge <= 0 {
		return fmt.Errorf("retention max age must be positive, got %s", c.Retention.MaxAge)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
