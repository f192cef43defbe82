package lesson

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/catalog"
	"github.com/forgelabs/forgelabs/internal/chat"
	"github.com/forgelabs/forgelabs/internal/learner"
	"github.com/forgelabs/forgelabs/internal/progression"
	"github.com/forgelabs/forgelabs/internal/router"
	"github.com/forgelabs/forgelabs/internal/screen"
	"github.com/forgelabs/forgelabs/internal/screens/assistant"
	"github.com/forgelabs/forgelabs/internal/screens/quiz"
	"github.com/forgelabs/forgelabs/internal/ui/layout"
	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

type completedMsg struct {
	Outcome progression.Outcome
	Err     error
}

// LessonScreen shows one lesson's debugging tips, failure modes and
// resources, and completes it.
type LessonScreen struct {
	ctrl   *progression.Controller
	gw     *chat.Gateway
	lesson catalog.Lesson
	module string
	state  learner.State
	notice string
	flash  string
}

var _ screen.Screen = (*LessonScreen)(nil)
var _ screen.KeyHintProvider = (*LessonScreen)(nil)

// New creates a LessonScreen. The caller checks the lesson is unlocked.
func New(ctrl *progression.Controller, gw *chat.Gateway, l catalog.Lesson) *LessonScreen {
	return &LessonScreen{
		ctrl:   ctrl,
		gw:     gw,
		lesson: l,
		module: ctrl.Catalog().ModuleTitle(l.ID),
		state:  ctrl.State(context.Background()),
	}
}

func (s *LessonScreen) Init() tea.Cmd { return nil }
func (s *LessonScreen) Title() string { return s.lesson.Title }

// LessonID returns the id of the displayed lesson.
func (s *LessonScreen) LessonID() string { return s.lesson.ID }

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{}
	if s.lesson.HasQuiz() {
		hints = append(hints, layout.KeyHint{Key: "Q", Description: "Quiz"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "C", Description: "Complete"})
	}
	return append(hints,
		layout.KeyHint{Key: "A", Description: "Assistant"},
		layout.KeyHint{Key: "←→", Description: "Prev/Next"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateChangedMsg:
		s.state = msg.State
		return s, nil

	case completedMsg:
		switch {
		case msg.Err != nil:
			s.notice = msg.Err.Error()
		case msg.Outcome.NewlyCompleted:
			s.flash = fmt.Sprintf("Lesson complete! +%d XP, +%d aura", msg.Outcome.XPAwarded, msg.Outcome.AuraAwarded)
		default:
			s.flash = "Already completed."
		}
		return s, nil

	case tea.KeyMsg:
		s.notice = ""
		switch msg.String() {
		case "c":
			if s.lesson.HasQuiz() {
				s.notice = "Pass the quiz to complete this lesson."
				return s, nil
			}
			return s, s.complete()
		case "q":
			if !s.lesson.HasQuiz() {
				return s, nil
			}
			qs := quiz.New(s.ctrl, s.lesson)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: qs} }
		case "a":
			as := assistant.New(s.gw, s.lesson.ID)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: as} }
		case "right", "n":
			_, next := s.ctrl.Catalog().Adjacent(s.lesson.ID)
			return s, s.navigate(next)
		case "left", "p":
			prev, _ := s.ctrl.Catalog().Adjacent(s.lesson.ID)
			return s, s.navigate(prev)
		}
	}
	return s, nil
}

func (s *LessonScreen) complete() tea.Cmd {
	ctrl, id := s.ctrl, s.lesson.ID
	return func() tea.Msg {
		out, err := ctrl.CompleteLesson(context.Background(), id)
		return completedMsg{Outcome: out, Err: err}
	}
}

// navigate swaps this screen for an adjacent lesson when it is unlocked.
func (s *LessonScreen) navigate(to *catalog.Lesson) tea.Cmd {
	if to == nil {
		return nil
	}
	if err := s.ctrl.RequireUnlocked(context.Background(), to.ID); err != nil {
		s.notice = err.Error()
		return nil
	}
	next := New(s.ctrl, s.gw, *to)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *LessonScreen) View(width, height int) string {
	l := s.lesson
	contentWidth := width - 8
	st := progression.StatusOf(l.ID, s.state, s.ctrl.Catalog())

	var b strings.Builder

	b.WriteString(theme.Title.Render("  " + l.Title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %s · %s", s.module, st)))
	b.WriteString("\n\n")

	if s.flash != "" {
		b.WriteString(theme.Correct.Render("  " + s.flash))
		b.WriteString("\n\n")
	}
	if s.notice != "" {
		b.WriteString(theme.Notice.Render("  " + s.notice))
		b.WriteString("\n\n")
	}

	writeList(&b, "Debugging tips", l.Debugging, contentWidth)
	writeList(&b, "Failure modes", l.Failure, contentWidth)

	if l.Playground != "" {
		b.WriteString(theme.Section.Render("  Playground"))
		b.WriteString("\n")
		b.WriteString(layout.Wrap(l.Playground, contentWidth, theme.Body))
		b.WriteString("\n\n")
	}

	if len(l.Resources) > 0 {
		b.WriteString(theme.Section.Render("  Resources"))
		b.WriteString("\n")
		for _, r := range l.Resources {
			b.WriteString(theme.Body.Render("  • "+r.Name) + theme.Hint.Render("  "+r.URL))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if l.HasQuiz() {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  Quiz: %d questions, pass with %d correct.",
			len(l.Quiz.Questions), l.Quiz.PassScore)))
		b.WriteString("\n")
	}

	prev, next := s.ctrl.Catalog().Adjacent(l.ID)
	var nav []string
	if prev != nil {
		nav = append(nav, "← "+prev.Title)
	}
	if next != nil {
		nav = append(nav, next.Title+" →")
	}
	if len(nav) > 0 {
		b.WriteString(theme.Subtitle.Render("  " + strings.Join(nav, "   ")))
		b.WriteString("\n")
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}

func writeList(b *strings.Builder, title string, items []string, width int) {
	if len(items) == 0 {
		return
	}
	b.WriteString(theme.Section.Render("  " + title))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(layout.Wrap("• "+item, width, theme.Body))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
