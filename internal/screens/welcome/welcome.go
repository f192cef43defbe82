package welcome

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/learner"
	"github.com/forgelabs/forgelabs/internal/progression"
	"github.com/forgelabs/forgelabs/internal/router"
	"github.com/forgelabs/forgelabs/internal/screen"
	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bootStep     = 400 * time.Millisecond
)

const robotArt = `      ▄▄▄
     ▐◉ ◉▌
      ▀▀▀
   ╭──┴┴──╮
  ═╡ ▓▓▓▓ ╞═
   ╰──┬┬──╯
     ╱  ╲`

// Check is one line of the boot sequence printed under the robot.
type Check struct {
	Label  string
	Status string
}

type tickMsg time.Time

// WelcomeScreen plays a short boot sequence before handing over to the
// home screen.
type WelcomeScreen struct {
	next         func() screen.Screen
	checks       []Check
	greeting     string
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen for st that replaces itself with the screen
// produced by next. The assistant check reports whether any AI model is
// configured.
func New(st learner.State, total int, modelsOnline bool, next func() screen.Screen) *WelcomeScreen {
	assistant := "offline (knowledge base)"
	if modelsOnline {
		assistant = "online"
	}
	return &WelcomeScreen{
		next: next,
		checks: []Check{
			{Label: "power rail", Status: "5.0V ok"},
			{Label: "servo bus", Status: "ok"},
			{Label: "lesson catalog", Status: fmt.Sprintf("%d lessons", total)},
			{Label: "lab assistant", Status: assistant},
		},
		greeting: greeting(st, total),
	}
}

func greeting(st learner.State, total int) string {
	if st.XP == 0 && st.Aura == 0 {
		return "Build it. Break it. Debug it."
	}
	return fmt.Sprintf("Welcome back, %s. %d/%d lessons done.",
		progression.AuraLevel(st.Aura), len(st.CompletedLessons), total)
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// totalDur is when the last check has printed and the banner shows.
func (w *WelcomeScreen) totalDur() time.Duration {
	return time.Duration(len(w.checks)+1) * bootStep
}

// Done reports whether the boot sequence has finished.
func (w *WelcomeScreen) Done() bool {
	return w.elapsed >= w.totalDur()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if !w.Done() {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		// First key finishes the boot sequence, the next one moves on.
		if !w.Done() {
			w.elapsed = w.totalDur()
			return w, nil
		}
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, lipgloss.NewStyle().Foreground(theme.Primary).Render(robotArt), "")

	shown := min(int(w.elapsed/bootStep), len(w.checks))
	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	ok := lipgloss.NewStyle().Foreground(theme.Success)
	for _, c := range w.checks[:shown] {
		dots := strings.Repeat(".", max(2, 18-len(c.Label)))
		sections = append(sections, label.Render(c.Label+" "+dots+" ")+ok.Render(c.Status))
	}
	if !w.Done() && w.tickCount%4 < 2 {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Accent).Render("▌"))
	}

	if w.Done() {
		sections = append(sections, "", RenderBanner(width), "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render(w.greeting))
		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}
