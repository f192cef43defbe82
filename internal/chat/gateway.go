// Package chat is the lesson assistant: it asks an ordered list of model
// candidates for a reply and falls back to a static knowledge base when
// none answers.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forgelabs/forgelabs/internal/llm"
	"github.com/forgelabs/forgelabs/internal/logger"
)

// Purpose labels chat requests in the LLM event log.
const Purpose = "chat"

// Source says where a reply came from.
type Source string

const (
	SourceModel         Source = "model"
	SourceKnowledgeBase Source = "knowledge-base"
)

// Reply is the outcome of one submission. Exactly one is produced per
// accepted message.
type Reply struct {
	Text   string `json:"reply"`
	Source Source `json:"source"`

	// Candidate is the model ID that answered. Empty for the knowledge base.
	Candidate string `json:"candidate,omitempty"`

	// Fallback is true when every candidate failed or none was configured.
	Fallback bool `json:"fallback"`

	// Failures holds one entry per candidate that was tried and failed.
	Failures []Failure `json:"failures,omitempty"`
}

// Failure records why a candidate was skipped.
type Failure struct {
	Candidate string `json:"candidate"`
	Error     string `json:"error"`
	TimedOut  bool   `json:"timedOut,omitempty"`
}

// Gateway composes requests and walks the candidate list.
type Gateway struct {
	candidates  []llm.Provider
	timeout     time.Duration
	maxTokens   int
	temperature float64
	log         *logger.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout sets the per-candidate budget.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

func WithMaxTokens(n int) Option {
	return func(g *Gateway) { g.maxTokens = n }
}

func WithTemperature(t float64) Option {
	return func(g *Gateway) { g.temperature = t }
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// DefaultTimeout is the per-candidate budget when none is set.
const DefaultTimeout = 15 * time.Second

// NewGateway builds a gateway over candidates, tried in slice order. An
// empty list is valid and always answers from the knowledge base.
func NewGateway(candidates []llm.Provider, opts ...Option) *Gateway {
	g := &Gateway{
		candidates:  candidates,
		timeout:     DefaultTimeout,
		maxTokens:   500,
		temperature: 0.7,
		log:         logger.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	g.log = g.log.With("component", "chat")
	return g
}

// NewGatewayFromConfig applies cfg's timeout and generation limits.
func NewGatewayFromConfig(cands []llm.Provider, cfg llm.Config, log *logger.Logger) *Gateway {
	return NewGateway(cands,
		WithTimeout(cfg.Timeout),
		WithMaxTokens(cfg.MaxTokens),
		WithTemperature(cfg.Temperature),
		WithLogger(log),
	)
}

// Candidates returns the model IDs in try order.
func (g *Gateway) Candidates() []string {
	out := make([]string, len(g.candidates))
	for i, c := range g.candidates {
		out[i] = c.ModelID()
	}
	return out
}

// Ask answers message for lessonID given the prior turns. It does not
// modify history. The only error is an *InputError for a blank message.
//
// Attempts ignore cancellation of ctx; each is bounded by its own timeout
// instead.
func (g *Gateway) Ask(ctx context.Context, lessonID string, history []Turn, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, &InputError{Field: "message", Message: "must not be empty", Err: ErrEmptyMessage}
	}
	if lessonID == "" {
		lessonID = GeneralLesson
	}

	req := llm.Request{
		System:      SystemPrompt(lessonID),
		Messages:    append(messages(history), llm.Message{Role: llm.RoleUser, Content: message}),
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	base := llm.WithPurpose(context.WithoutCancel(ctx), Purpose)

	var failures []Failure
	for _, c := range g.candidates {
		text, err := g.attempt(base, c, req)
		if err == nil {
			return Reply{
				Text:      text,
				Source:    SourceModel,
				Candidate: c.ModelID(),
				Failures:  failures,
			}, nil
		}

		f := Failure{
			Candidate: c.ModelID(),
			Error:     err.Error(),
			TimedOut:  errors.Is(err, context.DeadlineExceeded),
		}
		failures = append(failures, f)
		g.log.Warn("chat candidate failed", "candidate", f.Candidate, "timed_out", f.TimedOut, "error", err)
	}

	ctxName := DetectContext(lessonID)
	if len(g.candidates) > 0 {
		g.log.Info("all chat candidates failed, using knowledge base", "lesson", lessonID, "context", ctxName)
	}
	return Reply{
		Text:     Lookup(ctxName, message),
		Source:   SourceKnowledgeBase,
		Fallback: true,
		Failures: failures,
	}, nil
}

func (g *Gateway) attempt(ctx context.Context, c llm.Provider, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := c.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("empty reply")
	}
	return text, nil
}
