package llm

import (
	"context"
	"fmt"

	"github.com/driftlake/watershed/internal/config"
)

// Request is a single completion request. System is optional; MaxTokens of 0
// means the provider default.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Client is the interface for completion providers. One round-trip per call,
// no retries here: retry/backoff belongs to the caller's resilience layer.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Response holds the result of a completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

// NewClient creates a completion client based on the config provider setting.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "claude-cli":
		model := cfg.Model
		if model == "" {
			model = "haiku"
		}
		return NewClaudeCLI(model), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY or config")
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return NewAnthropic(cfg.AnthropicKey, model), nil
	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.OllamaModel
		if model == "" {
			model = "llama3.2"
		}
		return NewOllama(url, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

// ModelID returns the model identifier a config resolves to, for stamping
// extraction proposals.
func ModelID(cfg config.LLMConfig) string {
	switch cfg.Provider {
	case "ollama":
		if cfg.OllamaModel != "" {
			return cfg.OllamaModel
		}
		return "llama3.2"
	default:
		if cfg.Model != "" {
			return cfg.Model
		}
		return cfg.Provider
	}
}
