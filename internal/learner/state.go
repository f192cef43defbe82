// Package learner owns the single durable learner record and the only path
// for changing it.
package learner

import "slices"

// StorageKey is the key the learner record is persisted under.
const StorageKey = "robotics-learner-state"

// State is the learner record. Its JSON shape is the persisted format.
type State struct {
	XP               int      `json:"xp"`
	Aura             int      `json:"aura"`
	CompletedLessons []string `json:"completedLessons"`
	HelpCount        int      `json:"helpCount"`
	UnlockedIndex    int      `json:"unlockedIndex"`
}

// Default returns the record a new learner starts with.
func Default() State {
	return State{CompletedLessons: []string{}}
}

// IsCompleted reports whether id is in the completed set.
func (s State) IsCompleted(id string) bool {
	return slices.Contains(s.CompletedLessons, id)
}

// Clone returns a deep copy so callers can mutate freely.
func (s State) Clone() State {
	c := s
	c.CompletedLessons = slices.Clone(s.CompletedLessons)
	if c.CompletedLessons == nil {
		c.CompletedLessons = []string{}
	}
	return c
}

// normalize repairs values that a hand-edited or older record may carry.
func (s *State) normalize() {
	if s.CompletedLessons == nil {
		s.CompletedLessons = []string{}
	}
	if s.UnlockedIndex < 0 {
		s.UnlockedIndex = 0
	}
}
