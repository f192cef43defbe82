package llm

import (
	"context"
	"fmt"

	"github.com/forgelabs/forgelabs/internal/logger"
	"github.com/forgelabs/forgelabs/internal/store"
)

// NewProvider creates one candidate Provider.
// It returns the provider wrapped with retry and logging middleware.
// repo may be nil, in which case requests are only logged, not recorded.
func NewProvider(ctx context.Context, cfg Config, cand Candidate, repo store.EventRepo, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cand.Provider {
	case ProviderGemma:
		c := cfg.Gemma
		c.Model = cand.Model
		base, err = NewGemmaProvider(c)
	case ProviderAnthropic:
		c := cfg.Anthropic
		c.Model = cand.Model
		base, err = NewAnthropicProvider(c)
	case ProviderOpenAI:
		c := cfg.OpenAI
		c.Model = cand.Model
		base, err = NewOpenAIProvider(c)
	case ProviderGemini:
		c := cfg.Gemini
		c.Model = cand.Model
		base, err = NewGeminiProvider(ctx, c)
	case ProviderOpenRouter:
		c := cfg.OpenRouter
		c.Model = cand.Model
		base, err = NewOpenRouterProvider(c)
	case ProviderMock:
		return NewNamedMockProvider(cand.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cand.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cand.Provider, err)
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, cand.Provider, repo, log)
	retried := WithRetry(logged, cfg.Retry)

	return retried, nil
}

// NewProviders builds every candidate in cfg's order. An offline config
// yields an empty list.
func NewProviders(ctx context.Context, cfg Config, repo store.EventRepo, log *logger.Logger) ([]Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cands := cfg.Candidates()
	out := make([]Provider, 0, len(cands))
	for _, cand := range cands {
		p, err := NewProvider(ctx, cfg, cand, repo, log)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", cand, err)
		}
		out = append(out, p)
	}
	return out, nil
}
