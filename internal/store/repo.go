package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Activity kinds recorded by the progression controller.
const (
	ActivityLessonCompleted = "lesson_completed"
	ActivityQuizPassed      = "quiz_passed"
	ActivityQuizFailed      = "quiz_failed"
	ActivityAction          = "action"
)

// ActivityEventData describes one learner activity. A zero Timestamp means
// now.
type ActivityEventData struct {
	Kind      string
	LessonID  string
	Detail    string
	XP        int
	Aura      int
	Timestamp time.Time
}

// ActivityEventRecord is a stored activity event.
type ActivityEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Kind      string
	LessonID  string
	Detail    string
	XP        int
	Aura      int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStat aggregates LLM calls by purpose.
type LLMUsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM calls by model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendActivity records a learner activity event.
	AppendActivity(ctx context.Context, data ActivityEventData) error

	// QueryActivity returns activity events, newest first.
	QueryActivity(ctx context.Context, opts QueryOpts) ([]ActivityEventRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns a single LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStat, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
