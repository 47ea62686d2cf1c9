package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all watershed configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	LLM      LLMConfig      `toml:"llm"`
	Engine   EngineConfig   `toml:"engine"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LLMConfig struct {
	Provider     string `toml:"provider"` // "claude-cli", "anthropic", "ollama"
	Model        string `toml:"model"`    // e.g. "haiku", "sonnet"
	OllamaURL    string `toml:"ollama_url"`
	OllamaModel  string `toml:"ollama_model"` // e.g. "llama3.2"
	AnthropicKey string `toml:"anthropic_key"`
}

type EngineConfig struct {
	// Relationships at or above this confidence are approved; below it they
	// stay pending_review.
	ConfidenceThreshold float64 `toml:"confidence_threshold"`

	// Hot items older than this are compressed into the warm tier.
	HotRetentionHours int `toml:"hot_retention_hours"`

	// Maximum warm items consolidated into the graph per tick.
	WarmBatchSize int `toml:"warm_consolidation_batch_size"`

	// Cron expression driving lifecycle ticks.
	LifecycleCadence string `toml:"lifecycle_cadence"`

	// Minimum access count before a warm item is eligible for cold.
	// 0 disables the gate.
	MinAccessCount int `toml:"min_access_count"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37740,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		LLM: LLMConfig{
			Provider: "claude-cli",
			Model:    "haiku",
		},
		Engine: EngineConfig{
			ConfidenceThreshold: 0.6,
			HotRetentionHours:   24,
			WarmBatchSize:       20,
			LifecycleCadence:    "@hourly",
			MinAccessCount:      0,
		},
	}
}

// Load reads a TOML config file, layered over defaults. A missing file is not
// an error: defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
