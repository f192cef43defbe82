package home

import (
	"context"
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
	"github.com/forgelabs/forgelabs/internal/screens/history"
	"github.com/forgelabs/forgelabs/internal/screens/lesson"
	"github.com/forgelabs/forgelabs/internal/screens/profile"
	"github.com/forgelabs/forgelabs/internal/screens/roadmap"
	"github.com/forgelabs/forgelabs/internal/ui/components"
)

// HomeScreen is the main menu.
type HomeScreen struct {
	ctrl     *progression.Controller
	gw       *chat.Gateway
	activity progression.ActivityLog
	menu     components.Menu
	profile  progression.Profile
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. activity may be nil.
func New(ctrl *progression.Controller, gw *chat.Gateway, activity progression.ActivityLog) *HomeScreen {
	h := &HomeScreen{ctrl: ctrl, gw: gw, activity: activity}
	h.rebuild(ctrl.State(context.Background()))
	return h
}

// nextLesson returns the first lesson that is open but not completed.
func nextLesson(st learner.State, cat *catalog.Catalog) (catalog.Lesson, bool) {
	for _, l := range cat.Flatten() {
		if progression.StatusOf(l.ID, st, cat) == progression.StatusAvailable {
			return l, true
		}
	}
	return catalog.Lesson{}, false
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) rebuild(st learner.State) {
	cat := h.ctrl.Catalog()
	h.profile = progression.Profile{
		XP:        st.XP,
		Aura:      st.Aura,
		Level:     progression.AuraLevel(st.Aura),
		Completed: progression.CompletedCount(st, cat),
		Total:     cat.Len(),
	}
	if h.profile.Total > 0 {
		h.profile.Progress = float64(h.profile.Completed) / float64(h.profile.Total)
	}

	next, ok := nextLesson(st, cat)
	continueItem := components.MenuItem{Label: "ALL LESSONS DONE", Disabled: true}
	if ok {
		continueItem = components.MenuItem{
			Label: "CONTINUE",
			Hint:  next.Title,
			Action: func() tea.Cmd {
				return push(lesson.New(h.ctrl, h.gw, next))
			},
		}
		if st.XP == 0 {
			continueItem.Label = "START"
		}
	}

	items := []components.MenuItem{
		continueItem,
		{Label: "ROADMAP", Action: func() tea.Cmd {
			return push(roadmap.New(h.ctrl, h.gw))
		}},
		{Label: "ASK THE ASSISTANT", Action: func() tea.Cmd {
			return push(assistant.New(h.gw, chat.GeneralLesson))
		}},
		{Label: "PROFILE", Action: func() tea.Cmd {
			return push(profile.New(h.ctrl))
		}},
		{Label: "ACTIVITY", Action: func() tea.Cmd {
			return push(history.New(h.activity))
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(screen.StateChangedMsg); ok {
		h.rebuild(m.State)
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 22 || width < 100
	cw := components.ContentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.profile, cw, compact),
		components.Card(strings.TrimRight(h.menu.View(), "\n"), cw),
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n\n"))
}

func (h *HomeScreen) Title() string {
	return "Home"
}
