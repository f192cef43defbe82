package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/forgelabs/forgelabs/internal/llm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func TestSession_SecondCandidateAnswersAfterTimeout(t *testing.T) {
	slow := llm.NewNamedMockProvider("gemma-3-4b-it", llm.MockResponse{Block: true})
	fast := llm.NewNamedMockProvider("gemma-3-12b-it", llm.MockResponse{Text: "use a multimeter"})
	gw := NewGateway([]llm.Provider{slow, fast}, WithTimeout(20*time.Millisecond))

	s := NewSession("s1", gw, "m2s3-servo")
	before := len(s.History())

	reply, err := s.Send(context.Background(), "How do I check my wiring?")
	require.NoError(t, err)

	assert.Equal(t, "use a multimeter", reply.Text)
	assert.Equal(t, SourceModel, reply.Source)
	assert.Equal(t, "gemma-3-12b-it", reply.Candidate)
	assert.False(t, reply.Fallback)
	require.Len(t, reply.Failures, 1)
	assert.True(t, reply.Failures[0].TimedOut)

	hist := s.History()
	require.Len(t, hist, before+2)
	assert.Equal(t, Turn{Sender: SenderUser, Text: "How do I check my wiring?"}, hist[0])
	assert.Equal(t, Turn{Sender: SenderAI, Text: "use a multimeter"}, hist[1])
	assert.Equal(t, 1, slow.CallCount())
	assert.Equal(t, 1, fast.CallCount())
}

func TestSession_AllCandidatesFailUsesKnowledgeBase(t *testing.T) {
	gw := NewGateway([]llm.Provider{
		llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}}),
		llm.NewMockProvider(llm.MockResponse{Text: "   "}),
		llm.NewMockProvider(llm.MockResponse{Block: true}),
	}, WithTimeout(10*time.Millisecond))

	s := NewSession("s1", gw, "m3s1-servo-basics")
	require.Equal(t, ContextServo, s.Context())

	reply, err := s.Send(context.Background(), "My servo has JITTER when the arm moves")
	require.NoError(t, err)

	assert.Equal(t, "Servo jittering is commonly caused by unstable power or noisy PWM signals.", reply.Text)
	assert.Equal(t, SourceKnowledgeBase, reply.Source)
	assert.True(t, reply.Fallback)
	assert.Len(t, reply.Failures, 3)
	assert.Len(t, s.History(), 2)
}

func TestGateway_NoCandidates(t *testing.T) {
	gw := NewGateway(nil)
	reply, err := gw.Ask(context.Background(), "ros2-urdf-intro", nil, "what is a topic?")
	require.NoError(t, err)
	assert.Equal(t, "Topics are channels for communication via publish/subscribe.", reply.Text)
	assert.True(t, reply.Fallback)
	assert.Empty(t, reply.Failures)
}

func TestGateway_BlankMessage(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "unused"})
	s := NewSession("s1", NewGateway([]llm.Provider{mock}), "m1s1-intro")

	_, err := s.Send(context.Background(), "  \n ")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "message", inputErr.Field)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, mock.CallCount())
	assert.Empty(t, s.History())
}

func TestGateway_ComposesRequest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "ok"})
	gw := NewGateway([]llm.Provider{mock}, WithMaxTokens(500), WithTemperature(0.2))

	history := []Turn{
		{Sender: SenderUser, Text: "hi"},
		{Sender: SenderAI, Text: "hello"},
	}
	_, err := gw.Ask(context.Background(), "dxl-setup", history, " ID conflict? ")
	require.NoError(t, err)
	require.Equal(t, 1, mock.CallCount())

	req := mock.Calls[0]
	assert.Equal(t, SystemPrompt("dxl-setup"), req.System)
	assert.Contains(t, req.System, "Lesson context: dxl-setup.")
	assert.Equal(t, 500, req.MaxTokens)
	assert.Equal(t, 0.2, req.Temperature)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
		{Role: llm.RoleUser, Content: "ID conflict?"},
	}, req.Messages)
}

func TestGateway_CallerCancellationDoesNotAbortAttempt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "still answered"})
	gw := NewGateway([]llm.Provider{mock})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply, err := gw.Ask(ctx, "m1s1-intro", nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "still answered", reply.Text)
}

func TestGateway_PurposeAttached(t *testing.T) {
	var got string
	p := purposeProbe(func(ctx context.Context) { got = llm.PurposeFrom(ctx) })
	_, err := NewGateway([]llm.Provider{p}).Ask(context.Background(), "", nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, Purpose, got)
}

type purposeProbe func(ctx context.Context)

func (f purposeProbe) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	f(ctx)
	return &llm.Response{Text: "ok"}, nil
}

func (f purposeProbe) ModelID() string { return "probe" }

func TestSession_HistoryKeepsLastSixTurns(t *testing.T) {
	mock := llm.NewMockProvider()
	for i := range 5 {
		mock.AddResponse(llm.MockResponse{Text: fmt.Sprintf("answer %d", i)})
	}
	s := NewSession("s1", NewGateway([]llm.Provider{mock}), "m1s1-intro")

	for i := range 5 {
		_, err := s.Send(context.Background(), fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	hist := s.History()
	require.Len(t, hist, MaxTurns)
	assert.Equal(t, "question 2", hist[0].Text)
	assert.Equal(t, "answer 4", hist[5].Text)

	// The fifth request carried the six turns remembered before it.
	assert.Len(t, mock.Calls[4].Messages, MaxTurns+1)
}

func TestSession_SwitchLessonResetsHistory(t *testing.T) {
	s := NewSession("s1", NewGateway(nil), "m2s1-servo")
	_, err := s.Send(context.Background(), "jitter")
	require.NoError(t, err)
	require.Len(t, s.History(), 2)

	s.SwitchLesson("m2s1-servo")
	assert.Len(t, s.History(), 2)

	s.SwitchLesson("sensor-hcsr04")
	assert.Empty(t, s.History())
	assert.Equal(t, ContextUltrasonic, s.Context())
	assert.Equal(t, "Ask about wiring, echo issues, or range limitations.", s.Greeting())
}

func TestSessions_OpenAndEvict(t *testing.T) {
	reg := NewSessions(NewGateway(nil), 2)

	a, created := reg.Open("", "m1s1-intro")
	require.True(t, created)
	require.NotEmpty(t, a.ID)

	same, created := reg.Open(a.ID, "m1s1-intro")
	assert.False(t, created)
	assert.Same(t, a, same)

	unknown, created := reg.Open("no-such-session", "m1s1-intro")
	assert.True(t, created)
	assert.NotEqual(t, "no-such-session", unknown.ID)

	// Touching a leaves unknown as the least recently used.
	_, _ = reg.Get(a.ID)
	c, _ := reg.Open("", "m1s1-intro")

	assert.Equal(t, 2, reg.Len())
	_, ok := reg.Get(unknown.ID)
	assert.False(t, ok)
	_, ok = reg.Get(a.ID)
	assert.True(t, ok)
	_, ok = reg.Get(c.ID)
	assert.True(t, ok)
}
