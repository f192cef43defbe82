// Package assistant is the chat panel: a running transcript with the
// gateway, one question in flight at a time.
package assistant

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/forgelabs/forgelabs/internal/chat"
	"github.com/forgelabs/forgelabs/internal/screen"
	"github.com/forgelabs/forgelabs/internal/ui/components"
	"github.com/forgelabs/forgelabs/internal/ui/layout"
	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

type replyMsg struct {
	Reply chat.Reply
	Err   error
}

// AssistantScreen is the chat panel for one lesson.
type AssistantScreen struct {
	session *chat.Session
	input   components.TextInput
	spinner spinner.Model
	pending string
	last    *chat.Reply
	errMsg  string
}

var _ screen.Screen = (*AssistantScreen)(nil)
var _ screen.KeyHintProvider = (*AssistantScreen)(nil)

// New opens a fresh chat session for lessonID.
func New(gw *chat.Gateway, lessonID string) *AssistantScreen {
	return &AssistantScreen{
		session: chat.NewSession(uuid.NewString(), gw, lessonID),
		input:   components.NewTextInput("Describe what your robot is doing...", 500),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
	}
}

func (s *AssistantScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *AssistantScreen) Title() string {
	return "Assistant"
}

func (s *AssistantScreen) KeyHints() []layout.KeyHint {
	if s.Pending() {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Back"},
	}
}

// Pending reports whether a reply is outstanding. The input is disabled
// meanwhile.
func (s *AssistantScreen) Pending() bool {
	return s.pending != ""
}

// Session returns the underlying chat session.
func (s *AssistantScreen) Session() *chat.Session {
	return s.session
}

func (s *AssistantScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		s.pending = ""
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.last = &msg.Reply
		}
		return s, s.input.Enable()

	case spinner.TickMsg:
		if !s.Pending() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.Pending() {
			return s, nil
		}
		if msg.String() == "enter" {
			return s, s.send()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *AssistantScreen) send() tea.Cmd {
	text := strings.TrimSpace(s.input.Value())
	if text == "" {
		return nil
	}
	s.pending = text
	s.errMsg = ""
	s.input.Clear()
	s.input.Disable()

	sess := s.session
	ask := func() tea.Msg {
		reply, err := sess.Send(context.Background(), text)
		return replyMsg{Reply: reply, Err: err}
	}
	return tea.Batch(ask, s.spinner.Tick)
}

func (s *AssistantScreen) View(width, height int) string {
	cw := width - 6
	var lines []string

	lines = append(lines, theme.AIBubble.Render(wrap("AI: "+s.session.Greeting(), cw)))
	for _, t := range s.session.History() {
		lines = append(lines, renderTurn(t, cw))
	}
	if s.Pending() {
		lines = append(lines, renderTurn(chat.Turn{Sender: chat.SenderUser, Text: s.pending}, cw))
		lines = append(lines, s.spinner.View()+theme.Hint.Render(" thinking..."))
	}

	var status string
	switch {
	case s.errMsg != "":
		status = theme.Incorrect.Render(s.errMsg)
	case s.last != nil && s.last.Fallback:
		status = theme.Hint.Render("offline answer from the knowledge base")
	case s.last != nil:
		status = theme.Hint.Render("answered by " + s.last.Candidate)
	}

	transcript := strings.Join(lines, "\n\n")
	footer := status + "\n" + s.input.View()

	// Keep the newest lines in view.
	room := height - lipgloss.Height(footer) - 2
	if tl := strings.Split(transcript, "\n"); room > 0 && len(tl) > room {
		transcript = strings.Join(tl[len(tl)-room:], "\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, transcript, "", footer))
}

func renderTurn(t chat.Turn, width int) string {
	if t.Sender == chat.SenderUser {
		return theme.UserBubble.Render(wrap("You: "+t.Text, width))
	}
	return theme.AIBubble.Render(wrap("AI: "+t.Text, width))
}

func wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(max(width, 20)).Render(text)
}
