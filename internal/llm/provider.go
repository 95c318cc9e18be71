// Package llm provides a provider-agnostic adapter for chat-completion
// APIs. The extraction, validation, and classification stages all talk to
// the model through the Provider interface so tests can substitute fixtures.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider is the interface for LLM completions.
type Provider interface {
	// Complete sends a prompt and returns the response text.
	Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error)
	// Name returns a human-readable provider name (e.g., "openai/gpt-4o-mini").
	Name() string
}

// CompletionOpts configures a single completion request.
type CompletionOpts struct {
	MaxTokens   int     // Max tokens to generate (0 = provider default)
	Temperature float64 // 0.0-2.0 (0 = deterministic)
	Format      string  // "json" to request a JSON object response
	System      string  // System prompt (optional)
}

// Config holds provider configuration.
type Config struct {
	Provider    string // "openai", "openrouter", "deepseek", "ollama", "custom"
	Model       string // e.g., "gpt-4o-mini"
	Endpoint    string // full chat-completions URL
	APIKey      string
	MaxRetries  int // default: 3
	TimeoutSecs int // per-request timeout (default: 60)
}

// ParseFlag parses "provider/model" notation into a Config, filling in
// provider defaults. Model names may themselves contain slashes
// ("openrouter/google/gemini-2.0-flash").
func ParseFlag(flag string) (Config, error) {
	if flag == "" {
		flag = "openai/gpt-4o-mini"
	}

	slashIdx := strings.Index(flag, "/")
	if slashIdx <= 0 || slashIdx == len(flag)-1 {
		return Config{}, fmt.Errorf("invalid model flag %q: expected provider/model", flag)
	}

	cfg := Config{
		Provider:    flag[:slashIdx],
		Model:       flag[slashIdx+1:],
		MaxRetries:  3,
		TimeoutSecs: 60,
	}

	switch cfg.Provider {
	case "openai":
		cfg.Endpoint = "https://api.openai.com/v1/chat/completions"
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	case "openrouter":
		cfg.Endpoint = "https://openrouter.ai/api/v1/chat/completions"
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	case "deepseek":
		cfg.Endpoint = "https://api.deepseek.com/v1/chat/completions"
		cfg.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	case "ollama":
		cfg.Endpoint = "http://localhost:11434/v1/chat/completions"
		// No API key needed for Ollama.
	case "custom":
		cfg.Endpoint = os.Getenv("SELLERCHAT_LLM_ENDPOINT")
		cfg.APIKey = os.Getenv("SELLERCHAT_LLM_API_KEY")
	default:
		return Config{}, fmt.Errorf("unknown provider %q (supported: openai, openrouter, deepseek, ollama, custom)", cfg.Provider)
	}

	if endpoint := os.Getenv("SELLERCHAT_LLM_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if key := os.Getenv("SELLERCHAT_LLM_API_KEY"); key != "" {
		cfg.APIKey = key
	}

	return cfg, nil
}

// Validate checks that the configuration is complete enough to make calls.
func (c Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.Provider != "ollama" && c.APIKey == "" {
		return fmt.Errorf("API key is required for provider %q", c.Provider)
	}
	return nil
}
