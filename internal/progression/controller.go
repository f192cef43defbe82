package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/forgelabs/forgelabs/internal/catalog"
	"github.com/forgelabs/forgelabs/internal/learner"
	"github.com/forgelabs/forgelabs/internal/logger"
	"github.com/forgelabs/forgelabs/internal/store"
)

// Rewards for finishing a lesson the first time.
const (
	CompletionXP   = 25
	CompletionAura = 1
)

// ActivityLog is the slice of store.EventRepo the controller needs.
type ActivityLog interface {
	AppendActivity(ctx context.Context, data store.ActivityEventData) error
	QueryActivity(ctx context.Context, opts store.QueryOpts) ([]store.ActivityEventRecord, error)
}

// Controller applies learner-facing operations against the catalog and the
// learner store.
type Controller struct {
	cat      *catalog.Catalog
	learners *learner.Store
	activity ActivityLog
	log      *logger.Logger
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithActivityLog records completions, quiz attempts and actions to log.
func WithActivityLog(l ActivityLog) Option {
	return func(c *Controller) { c.activity = l }
}

// WithLogger sets the controller logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a Controller.
func NewController(cat *catalog.Catalog, learners *learner.Store, opts ...Option) *Controller {
	c := &Controller{
		cat:      cat,
		learners: learners,
		log:      logger.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "progression")
	return c
}

// Catalog returns the catalog the controller was built with.
func (c *Controller) Catalog() *catalog.Catalog { return c.cat }

// State returns the current learner record.
func (c *Controller) State(ctx context.Context) learner.State {
	return c.learners.Load(ctx)
}

// Subscribe forwards to the learner store.
func (c *Controller) Subscribe(fn func(learner.State)) func() {
	return c.learners.Subscribe(fn)
}

// Outcome describes the effect of CompleteLesson.
type Outcome struct {
	LessonID       string        `json:"lessonId"`
	Known          bool          `json:"known"`
	NewlyCompleted bool          `json:"newlyCompleted"`
	XPAwarded      int           `json:"xpAwarded"`
	AuraAwarded    int           `json:"auraAwarded"`
	State          learner.State `json:"state"`
}

// CompleteLesson marks id completed and moves the unlock cursor past it.
// Rewards are granted only the first time. Unknown ids change nothing and
// are not an error.
func (c *Controller) CompleteLesson(ctx context.Context, id string) (Outcome, error) {
	i, ok := c.cat.Position(id)
	if !ok {
		c.log.Debug("complete ignored for unknown lesson", "lesson", id)
		return Outcome{LessonID: id, State: c.learners.Load(ctx)}, nil
	}

	out := Outcome{LessonID: id, Known: true}
	st, err := c.learners.Mutate(ctx, func(st *learner.State) {
		if !st.IsCompleted(id) {
			st.CompletedLessons = append(st.CompletedLessons, id)
			st.XP += CompletionXP
			st.Aura += CompletionAura
			out.NewlyCompleted = true
			out.XPAwarded = CompletionXP
			out.AuraAwarded = CompletionAura
		}
		st.UnlockedIndex = max(st.UnlockedIndex, i+1)
	})
	if err != nil {
		return Outcome{LessonID: id, Known: true, State: st}, fmt.Errorf("complete lesson %q: %w", id, err)
	}
	out.State = st

	if out.NewlyCompleted {
		c.log.Info("lesson completed", "lesson", id, "xp", st.XP, "aura", st.Aura)
		c.record(ctx, store.ActivityEventData{
			Kind:     store.ActivityLessonCompleted,
			LessonID: id,
			XP:       CompletionXP,
			Aura:     CompletionAura,
		})
	}
	return out, nil
}

// QuizResult describes a graded quiz submission.
type QuizResult struct {
	LessonID   string   `json:"lessonId"`
	Known      bool     `json:"known"`
	Score      int      `json:"score"`
	Required   int      `json:"required"`
	Total      int      `json:"total"`
	Passed     bool     `json:"passed"`
	Completion *Outcome `json:"completion,omitempty"`
}

// SubmitQuiz grades answers against the lesson's quiz. A passing score
// completes the lesson; a failing score changes nothing in the learner
// record. Unknown ids are a no-op. A lesson without a quiz or an answer
// sheet of the wrong length is an *InputError.
func (c *Controller) SubmitQuiz(ctx context.Context, id string, answers []int) (QuizResult, error) {
	lesson, ok := c.cat.FindByID(id)
	if !ok {
		return QuizResult{LessonID: id}, nil
	}
	if !lesson.HasQuiz() {
		return QuizResult{LessonID: id, Known: true}, &InputError{Field: "lesson", Message: fmt.Sprintf("%q has no quiz", id), Err: ErrNoQuiz}
	}

	quiz := lesson.Quiz
	if len(answers) != len(quiz.Questions) {
		return QuizResult{LessonID: id, Known: true}, &InputError{
			Field:   "answers",
			Message: fmt.Sprintf("got %d answers for %d questions", len(answers), len(quiz.Questions)),
			Err:     ErrAnswerCount,
		}
	}

	res := QuizResult{
		LessonID: id,
		Known:    true,
		Score:    quiz.Score(answers),
		Required: quiz.PassScore,
		Total:    len(quiz.Questions),
	}
	res.Passed = res.Score >= res.Required
	detail := fmt.Sprintf("%d/%d", res.Score, res.Total)

	if !res.Passed {
		c.log.Info("quiz failed", "lesson", id, "score", res.Score, "required", res.Required)
		c.record(ctx, store.ActivityEventData{Kind: store.ActivityQuizFailed, LessonID: id, Detail: detail})
		return res, nil
	}

	c.record(ctx, store.ActivityEventData{Kind: store.ActivityQuizPassed, LessonID: id, Detail: detail})
	out, err := c.CompleteLesson(ctx, id)
	if err != nil {
		return res, err
	}
	res.Completion = &out
	return res, nil
}

// RequireUnlocked returns nil when id may be opened, a *LockedError naming
// the previous lesson when it may not, and ErrUnknownLesson for ids outside
// the catalog.
func (c *Controller) RequireUnlocked(ctx context.Context, id string) error {
	if _, ok := c.cat.Position(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLesson, id)
	}
	if IsUnlocked(id, c.learners.Load(ctx), c.cat) {
		return nil
	}
	prev, _ := c.cat.Adjacent(id)
	e := &LockedError{LessonID: id, Err: ErrLocked}
	if prev != nil {
		e.PreviousID = prev.ID
		e.PreviousTitle = prev.Title
	}
	return e
}

func (c *Controller) record(ctx context.Context, data store.ActivityEventData) {
	if c.activity == nil {
		return
	}
	if data.Timestamp.IsZero() {
		data.Timestamp = c.now()
	}
	if err := c.activity.AppendActivity(ctx, data); err != nil {
		c.log.Warn("record activity failed", "kind", data.Kind, "error", err)
	}
}
