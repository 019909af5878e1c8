package llm

import (
	"context"
	"fmt"

	"github.com/RadieNoice/Namma-City/internal/config"
)

// Generation settings shared by both providers. Replies are either a
// four-line routing answer, a single category name, or a short status
// summary, so a small token budget and low temperature keep them
// parseable.
const (
	maxReplyTokens   = 1024
	replyTemperature = 0.3
)

// Provider defines the interface for chat completion
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
	Close() error
}

// NewProvider creates a chat provider based on config
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key not configured")
	}
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
