package profile

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/progression"
	"github.com/forgelabs/forgelabs/internal/screen"
	"github.com/forgelabs/forgelabs/internal/ui/components"
	"github.com/forgelabs/forgelabs/internal/ui/layout"
	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

type profileLoadedMsg struct {
	Profile progression.Profile
	Err     error
}

type actionDoneMsg struct {
	Outcome progression.ActionOutcome
	Err     error
}

var actionLabels = map[progression.Action]string{
	progression.ActionHelpPeer:      "Helped a peer",
	progression.ActionShareSnapshot: "Shared a hardware snapshot",
	progression.ActionPublishCode:   "Published code",
}

// ProfileScreen shows XP, aura level, completion and the activity heatmap,
// and records community actions.
type ProfileScreen struct {
	ctrl    *progression.Controller
	profile progression.Profile
	loaded  bool
	errMsg  string
	flash   string
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)

// New creates a new ProfileScreen.
func New(ctrl *progression.Controller) *ProfileScreen {
	return &ProfileScreen{ctrl: ctrl}
}

func (s *ProfileScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ProfileScreen) load() tea.Cmd {
	ctrl := s.ctrl
	return func() tea.Msg {
		p, err := ctrl.Profile(context.Background())
		return profileLoadedMsg{Profile: p, Err: err}
	}
}

func (s *ProfileScreen) Title() string {
	return "Profile"
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	hints := make([]layout.KeyHint, 0, 4)
	for i, a := range progression.Actions() {
		hints = append(hints, layout.KeyHint{Key: fmt.Sprint(i + 1), Description: fmt.Sprintf("%s +%d", a, a.Aura())})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.profile = msg.Profile
			s.errMsg = ""
		}
		s.loaded = true
		return s, nil

	case screen.StateChangedMsg:
		return s, s.load()

	case actionDoneMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.flash = fmt.Sprintf("%s! +%d aura", actionLabels[msg.Outcome.Action], msg.Outcome.AuraAwarded)
		return s, nil

	case tea.KeyMsg:
		actions := progression.Actions()
		key := msg.String()
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(actions) {
			return s, s.record(actions[key[0]-'1'])
		}
	}
	return s, nil
}

func (s *ProfileScreen) record(a progression.Action) tea.Cmd {
	ctrl := s.ctrl
	return func() tea.Msg {
		out, err := ctrl.RecordAction(context.Background(), a)
		return actionDoneMsg{Outcome: out, Err: err}
	}
}

func (s *ProfileScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading profile...")
	}

	p := s.profile
	cw := components.ContentWidth(width)
	dim := theme.Subtitle
	val := theme.Body

	var b strings.Builder
	b.WriteString(theme.Title.Render(p.Level))
	if p.NextLevel != "" {
		b.WriteString(dim.Render(fmt.Sprintf("   %d aura to %s", p.AuraToNext, p.NextLevel)))
	}
	b.WriteString("\n\n")
	b.WriteString(dim.Render("XP           ") + val.Render(fmt.Sprint(p.XP)) + "\n")
	b.WriteString(dim.Render("Aura         ") + val.Render(fmt.Sprint(p.Aura)) + "\n")
	b.WriteString(dim.Render("Peers helped ") + val.Render(fmt.Sprint(p.HelpCount)) + "\n")
	b.WriteString(dim.Render("Day streak   ") + val.Render(fmt.Sprint(p.Streak)) + "\n\n")
	b.WriteString(components.NewProgressBar(p.ProgressText(), p.Progress, true, cw-4).View())

	stats := components.Card(b.String(), cw)

	levels := make([]int, len(p.Heatmap))
	for i, d := range p.Heatmap {
		levels[i] = d.Level
	}
	heat := theme.Section.Render(fmt.Sprintf("Last %d days", progression.HeatmapDays)) + "\n\n"
	if len(levels) == 0 {
		heat += theme.Hint.Render("No activity recorded yet.")
	} else {
		heat += components.Heatmap(levels)
	}

	sections := []string{stats, components.Card(heat, cw)}
	if s.flash != "" {
		sections = append(sections, theme.Notice.Render(s.flash))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		"\n"+lipgloss.JoinVertical(lipgloss.Center, sections...))
}
