package roadmap

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
	"github.com/forgelabs/forgelabs/internal/screens/lesson"
	"github.com/forgelabs/forgelabs/internal/ui/layout"
	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

type rowKind int

const (
	rowModuleHeader rowKind = iota
	rowLesson
)

type row struct {
	kind   rowKind
	module string
	lesson *catalog.Lesson
}

// RoadmapScreen lists every lesson grouped by module with its lock status.
type RoadmapScreen struct {
	ctrl         *progression.Controller
	gw           *chat.Gateway
	rows         []row
	cursor       int
	scrollOffset int
	state        learner.State
	notice       string
}

var _ screen.Screen = (*RoadmapScreen)(nil)
var _ screen.KeyHintProvider = (*RoadmapScreen)(nil)

// New creates a RoadmapScreen with the cursor on the first lesson that is
// not yet completed.
func New(ctrl *progression.Controller, gw *chat.Gateway) *RoadmapScreen {
	var rows []row
	for _, rm := range ctrl.Catalog().Roadmaps() {
		for _, mod := range rm.Modules {
			rows = append(rows, row{kind: rowModuleHeader, module: mod.Title})
			for i := range mod.Lessons {
				rows = append(rows, row{kind: rowLesson, module: mod.Title, lesson: &mod.Lessons[i]})
			}
		}
	}

	s := &RoadmapScreen{
		ctrl:  ctrl,
		gw:    gw,
		rows:  rows,
		state: ctrl.State(context.Background()),
	}
	s.cursor = s.firstOpenRow()
	return s
}

func (s *RoadmapScreen) Init() tea.Cmd {
	return nil
}

func (s *RoadmapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateChangedMsg:
		s.state = msg.State
		s.notice = ""
	case tea.KeyMsg:
		s.notice = ""
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextModule()
		case "shift+tab":
			s.prevModule()
		case "enter":
			return s, s.openLesson()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *RoadmapScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return ""
	}

	cat := s.ctrl.Catalog()
	progress := progression.Profile{
		Completed: progression.CompletedCount(s.state, cat),
		Total:     cat.Len(),
	}
	top := []string{theme.Subtitle.Render("  " + progress.ProgressText())}
	if s.notice != "" {
		top = append(top, theme.Notice.Render("  "+s.notice))
	}

	listHeight := height - len(top) - 1
	s.adjustScroll(listHeight)

	lines := append(top, "")
	visible := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if visible >= listHeight {
			break
		}
		switch r.kind {
		case rowModuleHeader:
			lines = append(lines, renderModuleHeader(r.module, width))
		case rowLesson:
			lines = append(lines, s.renderLessonRow(r, i == s.cursor, width))
		}
		visible++
	}

	return strings.Join(lines, "\n")
}

func (s *RoadmapScreen) Title() string {
	return "Roadmap"
}

// KeyHints returns the key binding hints for the footer.
func (s *RoadmapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Module"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

// Selected returns the lesson under the cursor.
func (s *RoadmapScreen) Selected() catalog.Lesson {
	return *s.rows[s.cursor].lesson
}

func (s *RoadmapScreen) firstOpenRow() int {
	first := -1
	for i, r := range s.rows {
		if r.kind != rowLesson {
			continue
		}
		if first < 0 {
			first = i
		}
		if progression.StatusOf(r.lesson.ID, s.state, s.ctrl.Catalog()) == progression.StatusAvailable {
			return i
		}
	}
	return max(first, 0)
}

// moveCursor moves the cursor by delta, skipping module headers.
func (s *RoadmapScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowLesson {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextModule jumps the cursor to the first lesson of the next module.
func (s *RoadmapScreen) nextModule() {
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowModuleHeader {
			s.cursor = i
			s.moveCursor(1)
			return
		}
	}
}

// prevModule jumps the cursor to the first lesson of the previous module, or
// of the current one when the cursor is mid-module.
func (s *RoadmapScreen) prevModule() {
	header := s.cursor - 1
	for header > 0 && s.rows[header].kind != rowModuleHeader {
		header--
	}
	if header+1 == s.cursor {
		header--
		for header > 0 && s.rows[header].kind != rowModuleHeader {
			header--
		}
	}
	if header < 0 {
		return
	}
	s.cursor = header
	s.moveCursor(1)
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *RoadmapScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowModuleHeader {
		headerRow--
	}

	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

// openLesson pushes the lesson screen, or shows the locked notice.
func (s *RoadmapScreen) openLesson() tea.Cmd {
	r := s.rows[s.cursor]
	if r.kind != rowLesson || r.lesson == nil {
		return nil
	}
	if err := s.ctrl.RequireUnlocked(context.Background(), r.lesson.ID); err != nil {
		s.notice = err.Error()
		return nil
	}

	detail := lesson.New(s.ctrl, s.gw, *r.lesson)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

func renderModuleHeader(title string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(title))
}

func statusIcon(st progression.Status) string {
	switch st {
	case progression.StatusCompleted:
		return "✔"
	case progression.StatusAvailable:
		return "○"
	default:
		return "🔒"
	}
}

func (s *RoadmapScreen) renderLessonRow(r row, selected bool, width int) string {
	st := progression.StatusOf(r.lesson.ID, s.state, s.ctrl.Catalog())

	labelWidth := 10
	nameWidth := width - 4 - 3 - labelWidth - 6
	if nameWidth < 10 {
		nameWidth = 10
	}
	name := r.lesson.Title
	if r.lesson.HasQuiz() && !layout.IsCompactWidth(width) {
		name += "  [quiz]"
	}
	if runes := []rune(name); len(runes) > nameWidth {
		name = string(runes[:nameWidth-1]) + "…"
	}

	var nameStyle, labelStyle lipgloss.Style
	switch {
	case selected:
		nameStyle, labelStyle = theme.Selected, theme.Selected
	case st == progression.StatusCompleted:
		nameStyle, labelStyle = theme.Completed, theme.Completed
	case st == progression.StatusAvailable:
		nameStyle = theme.Unselected
		labelStyle = lipgloss.NewStyle().Foreground(theme.Secondary)
	default:
		nameStyle, labelStyle = theme.Locked, theme.Locked
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	return fmt.Sprintf("  %s%s %s  %s",
		cursor,
		statusIcon(st),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		labelStyle.Render(fmt.Sprintf("%*s", labelWidth, st.String())),
	)
}
