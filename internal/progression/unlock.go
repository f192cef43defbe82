// Package progression decides which lessons a learner may open and applies
// the rewards for completing lessons, passing quizzes and community actions.
package progression

import (
	"github.com/forgelabs/forgelabs/internal/catalog"
	"github.com/forgelabs/forgelabs/internal/learner"
)

// IsUnlocked reports whether the lesson may be opened. Unknown ids are never
// unlocked; the first lesson always is.
func IsUnlocked(lessonID string, st learner.State, cat *catalog.Catalog) bool {
	i, ok := cat.Position(lessonID)
	if !ok {
		return false
	}
	return i == 0 || i <= st.UnlockedIndex
}

// Status is the per-lesson state shown by the views.
type Status int

const (
	StatusLocked Status = iota
	StatusAvailable
	StatusCompleted
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusCompleted:
		return "completed"
	default:
		return "locked"
	}
}

// MarshalText lets Status render as its name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusOf classifies a lesson. Completion wins over the cursor so that a
// record completed before a catalog change still shows as done.
func StatusOf(lessonID string, st learner.State, cat *catalog.Catalog) Status {
	if st.IsCompleted(lessonID) {
		return StatusCompleted
	}
	if IsUnlocked(lessonID, st, cat) {
		return StatusAvailable
	}
	return StatusLocked
}

// LessonView pairs a lesson with its status for list rendering.
type LessonView struct {
	Lesson catalog.Lesson `json:"lesson"`
	Module string         `json:"module"`
	Status Status         `json:"status"`
}

// Views returns every lesson in flattened order with its status.
func Views(st learner.State, cat *catalog.Catalog) []LessonView {
	lessons := cat.Flatten()
	out := make([]LessonView, len(lessons))
	for i, l := range lessons {
		out[i] = LessonView{
			Lesson: l,
			Module: cat.ModuleTitle(l.ID),
			Status: StatusOf(l.ID, st, cat),
		}
	}
	return out
}

// CompletedCount counts completed lessons that are still in the catalog.
func CompletedCount(st learner.State, cat *catalog.Catalog) int {
	n := 0
	for _, id := range st.CompletedLessons {
		if _, ok := cat.Position(id); ok {
			n++
		}
	}
	return n
}
