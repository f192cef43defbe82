package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/progression"
	"github.com/forgelabs/forgelabs/internal/router"
	"github.com/forgelabs/forgelabs/internal/screen"
	"github.com/forgelabs/forgelabs/internal/store"
	"github.com/forgelabs/forgelabs/internal/ui/layout"
	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

// Limit is how many recent events the screen shows.
const Limit = 50

type historyLoadedMsg struct {
	Events []store.ActivityEventRecord
	Err    error
}

// HistoryScreen lists recent learner activity, newest first.
type HistoryScreen struct {
	log      progression.ActivityLog
	events   []store.ActivityEventRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. log may be nil when nothing is recorded.
func New(log progression.ActivityLog) *HistoryScreen {
	return &HistoryScreen{
		log:      log,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	if s.log == nil {
		return func() tea.Msg { return historyLoadedMsg{} }
	}
	log := s.log
	return func() tea.Msg {
		events, err := log.QueryActivity(context.Background(), store.QueryOpts{Limit: Limit})
		return historyLoadedMsg{Events: events, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Activity"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
			s.selected = min(s.selected, max(len(s.events)-1, 0))
		}
		s.loaded = true
		return s, nil

	case screen.StateChangedMsg:
		return s, s.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading activity...")
	}
	if len(s.events) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No activity yet. Complete a lesson to get started!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, ev := range s.events {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-18s %s%s",
			prefix, ev.Timestamp.Format("Jan 02 15:04"), KindLabel(ev.Kind), ev.LessonID, RewardText(ev))

		style := theme.Unselected
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] && ev.Detail != "" {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				theme.Hint.Render("    "+ev.Detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// KindLabel returns the display name for an activity kind.
func KindLabel(kind string) string {
	switch kind {
	case store.ActivityLessonCompleted:
		return "Lesson completed"
	case store.ActivityQuizPassed:
		return "Quiz passed"
	case store.ActivityQuizFailed:
		return "Quiz failed"
	case store.ActivityAction:
		return "Community action"
	default:
		return kind
	}
}

// RewardText formats the XP and aura granted by ev.
func RewardText(ev store.ActivityEventRecord) string {
	var parts []string
	if ev.XP > 0 {
		parts = append(parts, fmt.Sprintf("+%d XP", ev.XP))
	}
	if ev.Aura > 0 {
		parts = append(parts, fmt.Sprintf("+%d aura", ev.Aura))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, " ")
}
