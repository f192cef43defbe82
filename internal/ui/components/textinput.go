package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with ForgeLabs styling. A blurred input
// ignores key presses.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput creates a new focused text input. charLimit <= 0 means no
// limit.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.Focus()

	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input, dimmed while disabled.
func (t TextInput) View() string {
	if !t.Model.Focused() {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render(t.Model.View())
	}
	return t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetWidth sets the visible width of the input.
func (t *TextInput) SetWidth(w int) {
	t.Model.SetWidth(w)
}

// Disable blurs the input so it stops accepting keys.
func (t *TextInput) Disable() {
	t.Model.Blur()
}

// Enable focuses the input again.
func (t *TextInput) Enable() tea.Cmd {
	return t.Model.Focus()
}

// Enabled reports whether the input accepts keys.
func (t TextInput) Enabled() bool {
	return t.Model.Focused()
}

// Clear empties the input.
func (t *TextInput) Clear() {
	t.Model.Reset()
}
