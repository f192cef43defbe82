package llm

import "fmt"

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// DefaultGemmaBaseURL is Google AI Studio's OpenAI-compatible endpoint.
	DefaultGemmaBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
)

// gemmaModels maps the instruct names used in the course material to the
// model IDs Google AI Studio serves.
var gemmaModels = map[string]string{
	"gemma-3-1b-instruct":  "gemma-3-1b-it",
	"gemma-3-4b-instruct":  "gemma-3-4b-it",
	"gemma-3-12b-instruct": "gemma-3-12b-it",
	"gemma-3-27b-instruct": "gemma-3-27b-it",
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// OpenRouter exposes an OpenAI-compatible API, so the underlying SDK is reused.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return newOpenAICompatible("openrouter", cfg.APIKey, baseURL, cfg.Model), nil
}

// NewGemmaProvider creates a provider for Gemma models behind Google's
// OpenAI-compatible chat completions endpoint.
func NewGemmaProvider(cfg GemmaConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemma API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGemmaBaseURL
	}
	return newOpenAICompatible("gemma", cfg.APIKey, baseURL, resolveModel(cfg.Model, gemmaModels)), nil
}
