package llm

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/forgelabs/forgelabs/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "first reply", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "second reply"},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != "first reply" {
		t.Fatalf("expected 'first reply', got %q", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "second reply" {
		t.Fatalf("expected 'second reply', got %q", resp2.Text)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_BlankTextIsInvalid(t *testing.T) {
	mock := NewMockProvider(MockResponse{})
	_, err := mock.Generate(context.Background(), Request{})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestMockProvider_BlockWaitsForContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Block: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := mock.Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got: %v", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "hi"})

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	if id := NewMockProvider().ModelID(); id != "mock" {
		t.Fatalf("expected 'mock', got %q", id)
	}
	if id := NewNamedMockProvider("gemma-3-4b-instruct").ModelID(); id != "gemma-3-4b-instruct" {
		t.Fatalf("expected named model, got %q", id)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "chat")
	if p := PurposeFrom(ctx); p != "chat" {
		t.Fatalf("expected 'chat', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "gemma without key",
			cfg:     Config{Provider: ProviderGemma},
			wantErr: true,
		},
		{
			name:    "gemma with key",
			cfg:     Config{Provider: ProviderGemma, Gemma: GemmaConfig{APIKey: "k"}},
			wantErr: false,
		},
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{Model: "claude-haiku"}},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test", Model: "claude-haiku"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: ProviderOpenAI},
			wantErr: true,
		},
		{
			name: "mixed candidates need every key",
			cfg: Config{
				Provider: ProviderGemma,
				Gemma:    GemmaConfig{APIKey: "k"},
				Models:   []string{"gemma-3-4b-instruct", "openai:gpt-4o-mini"},
			},
			wantErr: true,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: ProviderMock},
			wantErr: false,
		},
		{
			name:    "offline needs no key",
			cfg:     Config{Provider: ProviderOffline},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Candidates(t *testing.T) {
	t.Run("gemma defaults keep fallback order", func(t *testing.T) {
		got := DefaultConfig().Candidates()
		want := []string{
			"gemma:gemma-3-4b-it",
			"gemma:gemma-3-12b-it",
			"gemma:gemma-3-27b-it",
			"gemma:gemma-3-1b-it",
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d candidates, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i].String() != want[i] {
				t.Errorf("candidate %d = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("provider prefix overrides default", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Models = []string{"gemma-3-27b-instruct", "openrouter:google/gemma-3-4b-it", "mock:canned"}
		got := cfg.Candidates()
		if got[0] != (Candidate{Provider: ProviderGemma, Model: "gemma-3-27b-instruct"}) {
			t.Errorf("candidate 0 = %+v", got[0])
		}
		if got[1] != (Candidate{Provider: ProviderOpenRouter, Model: "google/gemma-3-4b-it"}) {
			t.Errorf("candidate 1 = %+v", got[1])
		}
		if got[2] != (Candidate{Provider: ProviderMock, Model: "canned"}) {
			t.Errorf("candidate 2 = %+v", got[2])
		}
	})

	t.Run("non-gemma provider uses its single model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = ProviderAnthropic
		got := cfg.Candidates()
		if len(got) != 1 || got[0].Model != "claude-haiku" {
			t.Fatalf("unexpected candidates %+v", got)
		}
	})

	t.Run("offline has none", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = ProviderOffline
		if got := cfg.Candidates(); len(got) != 0 {
			t.Fatalf("expected no candidates, got %+v", got)
		}
	})
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GEMMA_API_KEY", "legacy-key")
	t.Setenv("FORGELABS_LLM_MODELS", "gemma-3-27b-instruct, gemma-3-1b-instruct")
	t.Setenv("FORGELABS_LLM_TIMEOUT", "3s")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderGemma {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.Gemma.APIKey != "legacy-key" {
		t.Errorf("gemma key = %q, want legacy-key", cfg.Gemma.APIKey)
	}
	if len(cfg.Models) != 2 || cfg.Models[1] != "gemma-3-1b-instruct" {
		t.Errorf("models = %v", cfg.Models)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.MaxTokens != 500 {
		t.Errorf("max tokens = %d", cfg.MaxTokens)
	}

	t.Setenv("FORGELABS_GEMMA_API_KEY", "override")
	if got := ConfigFromEnv().Gemma.APIKey; got != "override" {
		t.Errorf("prefixed key should win, got %q", got)
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMMA_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no config without keys")
	}

	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GEMMA_API_KEY", "g-key")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderGemma || cfg.Gemma.APIKey != "g-key" {
		t.Fatalf("expected gemma to win, got %+v", cfg)
	}
}

func TestNewProviders(t *testing.T) {
	t.Run("offline", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = ProviderOffline
		ps, err := NewProviders(context.Background(), cfg, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ps) != 0 {
			t.Fatalf("expected no providers, got %d", len(ps))
		}
	})

	t.Run("gemma chain is wrapped in order", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Gemma.APIKey = "k"
		ps, err := NewProviders(context.Background(), cfg, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"gemma-3-4b-it", "gemma-3-12b-it", "gemma-3-27b-it", "gemma-3-1b-it"}
		if len(ps) != len(want) {
			t.Fatalf("expected %d providers, got %d", len(want), len(ps))
		}
		for i, p := range ps {
			if _, ok := p.(*RetryProvider); !ok {
				t.Errorf("provider %d is %T, want *RetryProvider", i, p)
			}
			if p.ModelID() != want[i] {
				t.Errorf("provider %d model = %q, want %q", i, p.ModelID(), want[i])
			}
		}
	})

	t.Run("missing key", func(t *testing.T) {
		if _, err := NewProviders(context.Background(), DefaultConfig(), nil, nil); err == nil {
			t.Fatal("expected error without a gemma key")
		}
	})
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	st, err := store.Open("file:llm_logging?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	repo := st.EventRepo()

	mock := NewNamedMockProvider("gemma-3-4b-it",
		MockResponse{Text: "Check the trig pin.", Usage: Usage{InputTokens: 30, OutputTokens: 6}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}},
	)
	p := WithLogging(mock, ProviderGemma, repo, nil)
	ctx := WithPurpose(context.Background(), "chat")

	req := Request{System: "sys prompt", Messages: []Message{{Role: RoleUser, Content: "sensor reads 0"}}}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected second call to fail")
	}

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	// Newest first.
	failed, ok := events[0], events[1]
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("expected failed event, got %+v", failed)
	}
	if !ok.Success || ok.Provider != ProviderGemma || ok.Model != "gemma-3-4b-it" || ok.Purpose != "chat" {
		t.Errorf("unexpected success event %+v", ok)
	}
	if ok.InputTokens != 30 || ok.OutputTokens != 6 {
		t.Errorf("unexpected tokens %d/%d", ok.InputTokens, ok.OutputTokens)
	}
	if ok.ResponseBody != "Check the trig pin." {
		t.Errorf("response body = %q", ok.ResponseBody)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nsys prompt") || !strings.Contains(ok.RequestBody, "[user]\nsensor reads 0") {
		t.Errorf("request body = %q", ok.RequestBody)
	}
}

func TestLoggingProvider_NilRepo(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), ProviderMock, nil, nil)
	resp, err := p.Generate(context.Background(), Request{})
	if err != nil || resp.Text != "ok" {
		t.Fatalf("unexpected result %v, %v", resp, err)
	}
}

func TestLookupCost(t *testing.T) {
	if c := LookupCost("gemma-3-4b-it"); c == nil || c.Cost(1000, 1000) != 0 {
		t.Fatalf("expected free gemma pricing, got %+v", c)
	}
	if c := LookupCost("gemma-3-27b-instruct"); c == nil {
		t.Fatal("expected instruct alias to resolve to gemma-3-27b-it pricing")
	}
	for _, cand := range DefaultConfig().Candidates() {
		if LookupCost(cand.Model) == nil {
			t.Errorf("default candidate %s has no pricing", cand)
		}
	}
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected gpt-4o-mini pricing")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("expected 0.75, got %v", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}
