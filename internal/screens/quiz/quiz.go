package quiz

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/catalog"
	"github.com/forgelabs/forgelabs/internal/progression"
	"github.com/forgelabs/forgelabs/internal/router"
	"github.com/forgelabs/forgelabs/internal/screen"
	"github.com/forgelabs/forgelabs/internal/ui/components"
	"github.com/forgelabs/forgelabs/internal/ui/layout"
	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

// gradedMsg carries the controller's verdict for a full set of answers.
type gradedMsg struct {
	Result progression.QuizResult
	Err    error
}

// QuizScreen runs a lesson's quiz one question at a time and submits the
// answers together.
type QuizScreen struct {
	ctrl    *progression.Controller
	lesson  catalog.Lesson
	index   int
	choice  components.MultiChoice
	answers []int
	result  *progression.QuizResult
	errMsg  string
	grading bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen for l, which must have a quiz.
func New(ctrl *progression.Controller, l catalog.Lesson) *QuizScreen {
	s := &QuizScreen{ctrl: ctrl, lesson: l}
	s.reset()
	return s
}

func (s *QuizScreen) reset() {
	s.index = 0
	s.answers = s.answers[:0]
	s.result = nil
	s.errMsg = ""
	s.choice = s.choiceFor(0)
}

func (s *QuizScreen) choiceFor(i int) components.MultiChoice {
	q := s.lesson.Quiz.Questions[i]
	return components.NewMultiChoice(q.Question, q.Options)
}

func (s *QuizScreen) Init() tea.Cmd { return nil }

func (s *QuizScreen) Title() string { return "Quiz: " + s.lesson.Title }

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		if s.result.Passed {
			return []layout.KeyHint{{Key: "Enter", Description: "Done"}}
		}
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Answer"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		s.grading = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.result = &msg.Result
		return s, nil

	case tea.KeyMsg:
		if s.grading {
			return s, nil
		}
		if s.result != nil || s.errMsg != "" {
			return s.handleResultKey(msg)
		}
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		if s.choice.Submitted {
			return s, s.advance()
		}
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleResultKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "r":
		if s.result == nil || !s.result.Passed {
			s.reset()
		}
	case "enter":
		if s.result != nil && s.result.Passed {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// advance records the current answer and either shows the next question or
// submits the set.
func (s *QuizScreen) advance() tea.Cmd {
	s.answers = append(s.answers, s.choice.ChosenIndex)
	s.index++
	if s.index < len(s.lesson.Quiz.Questions) {
		s.choice = s.choiceFor(s.index)
		return nil
	}

	s.grading = true
	ctrl, id := s.ctrl, s.lesson.ID
	answers := append([]int(nil), s.answers...)
	return func() tea.Msg {
		res, err := ctrl.SubmitQuiz(context.Background(), id, answers)
		return gradedMsg{Result: res, Err: err}
	}
}

func (s *QuizScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch {
	case s.errMsg != "":
		body = theme.Incorrect.Render(s.errMsg) + "\n\n" + theme.Hint.Render("Press R to retry.")
	case s.result != nil:
		body = s.renderResult()
	case s.grading:
		body = theme.Hint.Render("Checking your answers...")
	default:
		total := len(s.lesson.Quiz.Questions)
		header := theme.Subtitle.Render(fmt.Sprintf("Question %d of %d", s.index+1, total))
		body = header + "\n\n" + s.choice.View()
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.Card(body, cw))
}

func (s *QuizScreen) renderResult() string {
	r := s.result
	var b strings.Builder
	score := fmt.Sprintf("Score: %d / %d (need %d)", r.Score, r.Total, r.Required)
	if r.Passed {
		b.WriteString(theme.Correct.Render("Passed!"))
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite."))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(score))
	if c := r.Completion; c != nil && c.NewlyCompleted {
		b.WriteString("\n")
		b.WriteString(theme.Notice.Render(fmt.Sprintf("+%d XP, +%d aura", c.XPAwarded, c.AuraAwarded)))
	}
	if !r.Passed {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Review the lesson and press R to try again."))
	}
	return b.String()
}
