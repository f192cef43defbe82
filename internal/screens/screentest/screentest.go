// Package screentest has fixtures shared by the screen tests.
package screentest

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/forgelabs/forgelabs/internal/catalog"
	"github.com/forgelabs/forgelabs/internal/learner"
	"github.com/forgelabs/forgelabs/internal/progression"
)

// Catalog is three lessons in two modules; "L1" carries a two-question quiz
// answered 1, 2.
func Catalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Roadmap{{
		ID: "arm",
		Modules: []catalog.Module{
			{Title: "Basics", Lessons: []catalog.Lesson{
				{ID: "servo-L0", Title: "Zero", Debugging: []string{"Check the ground"}},
				{ID: "L1", Title: "One", Quiz: &catalog.Quiz{
					PassScore: 2,
					Questions: []catalog.Question{
						{Question: "a?", Options: []string{"x", "y"}, CorrectIndex: 1},
						{Question: "b?", Options: []string{"x", "y", "z"}, CorrectIndex: 2},
					},
				}},
			}},
			{Title: "Advanced", Lessons: []catalog.Lesson{
				{ID: "L2", Title: "Two"},
			}},
		},
	}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

// Controller returns a controller over Catalog with an in-memory record.
func Controller(t *testing.T) *progression.Controller {
	t.Helper()
	return progression.NewController(Catalog(t), learner.NewStore(learner.NewMemoryBackend(), nil))
}

// Key builds a printable key press.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special builds a non-printable key press such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Run executes cmd and returns every message it yields, expanding batches.
func Run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
