// Package app hosts the terminal UI: a screen stack under a header showing
// the learner's XP and aura.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/chat"
	"github.com/forgelabs/forgelabs/internal/learner"
	"github.com/forgelabs/forgelabs/internal/logger"
	"github.com/forgelabs/forgelabs/internal/progression"
	"github.com/forgelabs/forgelabs/internal/router"
	"github.com/forgelabs/forgelabs/internal/screen"
	"github.com/forgelabs/forgelabs/internal/screens/home"
	"github.com/forgelabs/forgelabs/internal/screens/welcome"
	"github.com/forgelabs/forgelabs/internal/ui/layout"
)

// Deps are the services the screens run against.
type Deps struct {
	Controller *progression.Controller
	Gateway    *chat.Gateway
	Activity   progression.ActivityLog // optional
	Log        *logger.Logger          // optional

	// Splash starts on the boot animation instead of the home screen.
	Splash bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	state  learner.State
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(d Deps) AppModel {
	st := d.Controller.State(context.Background())
	newHome := func() screen.Screen {
		return home.New(d.Controller, d.Gateway, d.Activity)
	}

	first := newHome()
	if d.Splash {
		first = welcome.New(st, d.Controller.Catalog().Len(), len(d.Gateway.Candidates()) > 0, newHome)
	}
	return AppModel{
		router: router.New(first),
		state:  st,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.StateChangedMsg:
		m.state = msg.State

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes header, active screen and footer.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	title := ""
	if active := m.router.Active(); active != nil {
		title = active.Title()
	}
	// Untitled screens are full-screen splashes.
	if title == "" {
		return m.router.View(m.width, m.height)
	}

	header := layout.RenderHeader(title, m.state.XP, m.state.Aura, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled. Committed learner records are pushed to every open screen.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewNop()
	}

	p := tea.NewProgram(newAppModel(d), tea.WithContext(ctx))
	unsubscribe := d.Controller.Subscribe(func(st learner.State) {
		p.Send(screen.StateChangedMsg{State: st})
	})
	defer unsubscribe()

	log.Info("tui started", "lessons", d.Controller.Catalog().Len())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
