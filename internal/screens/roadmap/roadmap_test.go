package roadmap

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/forgelabs/forgelabs/internal/chat"
	"github.com/forgelabs/forgelabs/internal/router"
	"github.com/forgelabs/forgelabs/internal/screen"
	"github.com/forgelabs/forgelabs/internal/screens/lesson"
	"github.com/forgelabs/forgelabs/internal/screens/screentest"
)

func TestCursorStartsOnFirstOpenLesson(t *testing.T) {
	ctrl := screentest.Controller(t)
	if _, err := ctrl.CompleteLesson(context.Background(), "servo-L0"); err != nil {
		t.Fatal(err)
	}

	s := New(ctrl, chat.NewGateway(nil))
	if got := s.Selected().ID; got != "L1" {
		t.Errorf("expected cursor on L1, got %q", got)
	}
}

func TestLockedLessonShowsNotice(t *testing.T) {
	s := New(screentest.Controller(t), chat.NewGateway(nil))

	s.Update(screentest.Special(tea.KeyDown))
	if got := s.Selected().ID; got != "L1" {
		t.Fatalf("expected L1 selected, got %q", got)
	}

	_, cmd := s.Update(screentest.Special(tea.KeyEnter))
	if cmd != nil {
		t.Fatal("locked lesson should not open")
	}
	want := `Locked — complete "Zero" to unlock this lesson.`
	if !strings.Contains(s.View(100, 30), want) {
		t.Errorf("expected notice %q in view", want)
	}
}

func TestOpenAvailableLesson(t *testing.T) {
	s := New(screentest.Controller(t), chat.NewGateway(nil))

	_, cmd := s.Update(screentest.Special(tea.KeyEnter))
	msgs := screentest.Run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	push, ok := msgs[0].(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msgs[0])
	}
	ls, ok := push.Screen.(*lesson.LessonScreen)
	if !ok || ls.LessonID() != "servo-L0" {
		t.Fatalf("expected lesson screen for servo-L0, got %#v", push.Screen)
	}
}

func TestTabJumpsModules(t *testing.T) {
	s := New(screentest.Controller(t), chat.NewGateway(nil))

	s.Update(screentest.Special(tea.KeyTab))
	if got := s.Selected().ID; got != "L2" {
		t.Errorf("expected L2 after tab, got %q", got)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if got := s.Selected().ID; got != "servo-L0" {
		t.Errorf("expected servo-L0 after shift+tab, got %q", got)
	}
}

func TestStateChangeRefreshesStatuses(t *testing.T) {
	ctrl := screentest.Controller(t)
	s := New(ctrl, chat.NewGateway(nil))

	if !strings.Contains(s.View(100, 30), "Progress: 0/3 lessons completed") {
		t.Fatal("expected empty progress")
	}

	out, err := ctrl.CompleteLesson(context.Background(), "servo-L0")
	if err != nil {
		t.Fatal(err)
	}
	s.Update(screen.StateChangedMsg{State: out.State})

	view := s.View(100, 30)
	if !strings.Contains(view, "Progress: 1/3 lessons completed") {
		t.Errorf("expected progress to update, got:\n%s", view)
	}
	if !strings.Contains(view, "✔") {
		t.Error("expected a completed row")
	}
}
