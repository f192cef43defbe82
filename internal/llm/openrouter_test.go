package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "google/gemma-3-4b-it",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "google/gemma-3-4b-it" {
			t.Errorf("model = %q, want %q", p.ModelID(), "google/gemma-3-4b-it")
		}
		if p.Name() != "openrouter" {
			t.Errorf("name = %q, want openrouter", p.Name())
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{
			Model: "google/gemma-3-4b-it",
		})
		if err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("custom model pass-through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "anthropic/claude-3-haiku",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Model ID should be used as-is (no friendly-name mapping).
		if p.ModelID() != "anthropic/claude-3-haiku" {
			t.Errorf("model = %q, want %q", p.ModelID(), "anthropic/claude-3-haiku")
		}
	})
}

func TestNewGemmaProvider(t *testing.T) {
	t.Run("empty API key", func(t *testing.T) {
		if _, err := NewGemmaProvider(GemmaConfig{Model: "gemma-3-4b-instruct"}); err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("instruct names map to served IDs", func(t *testing.T) {
		tests := []struct {
			input    string
			expected string
		}{
			{"gemma-3-1b-instruct", "gemma-3-1b-it"},
			{"gemma-3-4b-instruct", "gemma-3-4b-it"},
			{"gemma-3-12b-instruct", "gemma-3-12b-it"},
			{"gemma-3-27b-instruct", "gemma-3-27b-it"},
			{"gemma-3n-e4b-it", "gemma-3n-e4b-it"}, // Pass-through
		}
		for _, tt := range tests {
			p, err := NewGemmaProvider(GemmaConfig{APIKey: "k", Model: tt.input})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ModelID() != tt.expected {
				t.Errorf("ModelID(%q) = %q, want %q", tt.input, p.ModelID(), tt.expected)
			}
		}
	})

	t.Run("talks to the compatible endpoint", func(t *testing.T) {
		var gotAuth, gotModel, gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			gotModel, _ = body["model"].(string)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(chatCompletion("Use a 5V rail.", "stop"))
		}))
		t.Cleanup(server.Close)

		p, err := NewGemmaProvider(GemmaConfig{
			APIKey:  "gemma-key",
			Model:   "gemma-3-12b-instruct",
			BaseURL: server.URL + "/v1beta/openai",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		resp, err := p.Generate(context.Background(), Request{
			Messages:  []Message{{Role: RoleUser, Content: "power?"}},
			MaxTokens: 500,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Text != "Use a 5V rail." {
			t.Errorf("text = %q", resp.Text)
		}
		if gotAuth != "Bearer gemma-key" {
			t.Errorf("authorization = %q", gotAuth)
		}
		if gotModel != "gemma-3-12b-it" {
			t.Errorf("model = %q, want gemma-3-12b-it", gotModel)
		}
		if gotPath != "/v1beta/openai/chat/completions" {
			t.Errorf("path = %q", gotPath)
		}
	})
}
