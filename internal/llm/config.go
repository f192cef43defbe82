package llm

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/forgelabs/forgelabs/internal/envutil"
)

// Provider names accepted in Config.Provider and in "provider:model"
// candidate entries.
const (
	ProviderGemma      = "gemma"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
	ProviderOffline    = "offline"
)

// DefaultGemmaModels is the candidate order used when none is configured.
// The "-instruct" spellings are accepted as aliases for these IDs.
var DefaultGemmaModels = []string{
	"gemma-3-4b-it",
	"gemma-3-12b-it",
	"gemma-3-27b-it",
	"gemma-3-1b-it",
}

// Config holds all LLM provider configuration.
type Config struct {
	// Provider is the default provider for Models entries without a
	// "provider:" prefix.
	// Values: "gemma", "openai", "anthropic", "gemini", "openrouter",
	// "mock", "offline"
	Provider string

	// Models is the ordered candidate list. Entries are model names or
	// "provider:model". Empty means the provider's default model only,
	// or DefaultGemmaModels for gemma.
	Models []string

	Gemma      GemmaConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single candidate attempt, retries included.
	// Default: 15s.
	Timeout time.Duration

	// MaxTokens caps each reply. Default: 500.
	MaxTokens int

	// Temperature for chat replies. Default: 0.7.
	Temperature float64
}

// GemmaConfig holds configuration for Gemma on Google's OpenAI-compatible
// endpoint.
type GemmaConfig struct {
	APIKey  string
	BaseURL string // Default: DefaultGemmaBaseURL
	Model   string // Default: "gemma-3-4b-it"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemma-3-4b-it"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemma,
		Gemma: GemmaConfig{
			Model: DefaultGemmaModels[0],
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemma-3-4b-it",
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     2 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:     15 * time.Second,
		MaxTokens:   500,
		Temperature: 0.7,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Provider = envutil.String("FORGELABS_LLM_PROVIDER", cfg.Provider)
	cfg.Models = envutil.List("FORGELABS_LLM_MODELS", nil)
	cfg.Timeout = envutil.Duration("FORGELABS_LLM_TIMEOUT", cfg.Timeout)
	cfg.MaxTokens = envutil.Int("FORGELABS_LLM_MAX_TOKENS", cfg.MaxTokens)
	cfg.Retry.MaxAttempts = envutil.Int("FORGELABS_LLM_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)

	// GEMMA_API_KEY is the name the hosted chat function has always used.
	cfg.Gemma.APIKey = envutil.String("FORGELABS_GEMMA_API_KEY", os.Getenv("GEMMA_API_KEY"))
	cfg.Gemma.BaseURL = envutil.String("FORGELABS_GEMMA_BASE_URL", cfg.Gemma.BaseURL)

	cfg.Anthropic.APIKey = envutil.String("FORGELABS_ANTHROPIC_API_KEY", cfg.Anthropic.APIKey)
	cfg.Anthropic.Model = envutil.String("FORGELABS_ANTHROPIC_MODEL", cfg.Anthropic.Model)

	cfg.OpenAI.APIKey = envutil.String("FORGELABS_OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.Model = envutil.String("FORGELABS_OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.BaseURL = envutil.String("FORGELABS_OPENAI_BASE_URL", cfg.OpenAI.BaseURL)

	cfg.Gemini.APIKey = envutil.String("FORGELABS_GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.Model = envutil.String("FORGELABS_GEMINI_MODEL", cfg.Gemini.Model)

	cfg.OpenRouter.APIKey = envutil.String("FORGELABS_OPENROUTER_API_KEY", cfg.OpenRouter.APIKey)
	cfg.OpenRouter.Model = envutil.String("FORGELABS_OPENROUTER_MODEL", cfg.OpenRouter.Model)

	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemma → Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config
// for the first provider whose key is found. Returns (Config{}, false) if
// none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMMA_API_KEY"); k != "" {
		cfg.Provider = ProviderGemma
		cfg.Gemma.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Candidate is one resolved entry of the ordered model list.
type Candidate struct {
	Provider string
	Model    string
}

func (c Candidate) String() string {
	return c.Provider + ":" + c.Model
}

// Candidates expands Models into provider/model pairs in order.
func (c Config) Candidates() []Candidate {
	if c.Provider == ProviderOffline {
		return nil
	}

	models := c.Models
	if len(models) == 0 {
		if c.Provider == ProviderGemma {
			models = DefaultGemmaModels
		} else {
			models = []string{c.defaultModel(c.Provider)}
		}
	}

	out := make([]Candidate, 0, len(models))
	for _, m := range models {
		provider, model, ok := strings.Cut(m, ":")
		if !ok || !knownProvider(provider) {
			provider, model = c.Provider, m
		}
		out = append(out, Candidate{Provider: provider, Model: model})
	}
	return out
}

func (c Config) defaultModel(provider string) string {
	switch provider {
	case ProviderGemma:
		return c.Gemma.Model
	case ProviderAnthropic:
		return c.Anthropic.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderGemini:
		return c.Gemini.Model
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	default:
		return ProviderMock
	}
}

func knownProvider(name string) bool {
	switch name {
	case ProviderGemma, ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOpenRouter, ProviderMock:
		return true
	}
	return false
}

// Validate checks that every provider named by a candidate has its API key
// set.
func (c Config) Validate() error {
	if c.Provider == ProviderOffline {
		return nil
	}
	if !knownProvider(c.Provider) {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}

	seen := make(map[string]bool)
	for _, cand := range c.Candidates() {
		if seen[cand.Provider] {
			continue
		}
		seen[cand.Provider] = true

		switch cand.Provider {
		case ProviderGemma:
			if c.Gemma.APIKey == "" {
				return fmt.Errorf("GEMMA_API_KEY (or FORGELABS_GEMMA_API_KEY) is required for the gemma provider")
			}
		case ProviderAnthropic:
			if c.Anthropic.APIKey == "" {
				return fmt.Errorf("FORGELABS_ANTHROPIC_API_KEY is required for the anthropic provider")
			}
		case ProviderOpenAI:
			if c.OpenAI.APIKey == "" {
				return fmt.Errorf("FORGELABS_OPENAI_API_KEY is required for the openai provider")
			}
		case ProviderGemini:
			if c.Gemini.APIKey == "" {
				return fmt.Errorf("FORGELABS_GEMINI_API_KEY is required for the gemini provider")
			}
		case ProviderOpenRouter:
			if c.OpenRouter.APIKey == "" {
				return fmt.Errorf("FORGELABS_OPENROUTER_API_KEY is required for the openrouter provider")
			}
		case ProviderMock:
			// No API key needed.
		}
	}
	return nil
}
