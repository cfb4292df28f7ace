package generator

import (
	"time"

	"brightpath/internal/config"
)

// Config enumerates the orchestrator settings for a single provider.
// An empty Provider selects the deterministic generator.
type Config struct {
	Provider         string // openai, cerebras, anthropic, gemini, or empty
	Credential       string
	Model            string
	Timeout          time.Duration
	MaxRetries       int
	LiveCallsEnabled bool
}

// ConfigFromApp selects the credential and model for the configured
// provider from the application AI settings.
func ConfigFromApp(ai config.AIConfig) Config {
	cfg := Config{
		Provider:         ai.Provider,
		Timeout:          ai.Timeout,
		MaxRetries:       ai.MaxRetries,
		LiveCallsEnabled: ai.LiveCallsEnabled,
	}

	switch ai.Provider {
	case "openai":
		cfg.Credential = ai.OpenAIAPIKey
		cfg.Model = ai.OpenAIModel
	case "cerebras":
		cfg.Credential = ai.CerebrasAPIKey
		cfg.Model = ai.CerebrasModel
	case "anthropic":
		cfg.Credential = ai.AnthropicAPIKey
		cfg.Model = ai.AnthropicModel
	case "gemini":
		cfg.Credential = ai.GeminiAPIKey
		cfg.Model = ai.GeminiModel
	}

	return cfg
}
