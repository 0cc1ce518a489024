// Package llm provides text generation for summary and title fallbacks.
package llm

import (
	"context"
	"fmt"

	"github.com/voxnotes/voxnotes/internal/config"
)

// Generator produces text from a prompt. Implementations hold no state
// between calls beyond their API client.
type Generator interface {
	// Generate returns the model output for the prompt, bounded by
	// maxTokens. An empty result is returned as-is; callers decide whether
	// that is an error.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Name returns the provider name.
	Name() string
}

// New creates a Generator based on configuration.
// The apiKey parameter is the resolved (decrypted) API key.
func New(provider string, cfg config.GenerationConfig, apiKey string) (Generator, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(cfg, apiKey)
	case "openai":
		return NewOpenAI(cfg, apiKey)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", provider)
	}
}
