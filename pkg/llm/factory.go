package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider identifies which completion service backs a model.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// ModelConfig describes one configured completion model. The classifier
// rotates through an ordered list of these on repeated failure.
type ModelConfig struct {
	Provider Provider
	Model    string
	Endpoint string // OpenAI-compatible base URL; ignored for Anthropic
	APIKey   string
}

// New creates a client for the given model configuration.
func New(cfg ModelConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.Endpoint, cfg.Model, cfg.APIKey, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.Model, cfg.APIKey, logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
