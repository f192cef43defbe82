package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/forgelabs/forgelabs/internal/store"
)

// HeatmapDays is the length of the activity heatmap window.
const HeatmapDays = 28

type auraLevel struct {
	below int
	name  string
}

var auraLevels = []auraLevel{
	{50, "Novice"},
	{150, "Builder"},
	{300, "Debugger"},
	{600, "Architect"},
}

const topAuraLevel = "Robotics Sage"

// AuraLevel names the rank for an aura total.
func AuraLevel(aura int) string {
	for _, l := range auraLevels {
		if aura < l.below {
			return l.name
		}
	}
	return topAuraLevel
}

// NextAuraLevel returns the next rank and the aura needed to reach it. At
// the top rank it returns "" and 0.
func NextAuraLevel(aura int) (string, int) {
	for i, l := range auraLevels {
		if aura < l.below {
			next := topAuraLevel
			if i+1 < len(auraLevels) {
				next = auraLevels[i+1].name
			}
			return next, l.below - aura
		}
	}
	return "", 0
}

// HeatLevel buckets a daily activity count into 0..4.
func HeatLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count < 2:
		return 1
	case count < 4:
		return 2
	case count < 6:
		return 3
	default:
		return 4
	}
}

// HeatmapDay is one cell of the activity heatmap.
type HeatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Profile summarizes the learner for the profile views.
type Profile struct {
	XP            int          `json:"xp"`
	Aura          int          `json:"aura"`
	Level         string       `json:"level"`
	NextLevel     string       `json:"nextLevel,omitempty"`
	AuraToNext    int          `json:"auraToNext,omitempty"`
	HelpCount     int          `json:"helpCount"`
	Completed     int          `json:"completed"`
	Total         int          `json:"total"`
	Progress      float64      `json:"progress"`
	UnlockedIndex int          `json:"unlockedIndex"`
	Streak        int          `json:"streak"`
	Heatmap       []HeatmapDay `json:"heatmap"`
}

// ProgressText is the "Progress: done/total lessons completed" line.
func (p Profile) ProgressText() string {
	return fmt.Sprintf("Progress: %d/%d lessons completed", p.Completed, p.Total)
}

// Profile builds the learner profile. The heatmap is empty when no activity
// log is configured.
func (c *Controller) Profile(ctx context.Context) (Profile, error) {
	st := c.learners.Load(ctx)
	p := Profile{
		XP:            st.XP,
		Aura:          st.Aura,
		Level:         AuraLevel(st.Aura),
		HelpCount:     st.HelpCount,
		Completed:     CompletedCount(st, c.cat),
		Total:         c.cat.Len(),
		UnlockedIndex: st.UnlockedIndex,
	}
	p.NextLevel, p.AuraToNext = NextAuraLevel(st.Aura)
	if p.Total > 0 {
		p.Progress = float64(p.Completed) / float64(p.Total)
	}

	heat, err := c.heatmap(ctx)
	if err != nil {
		return p, err
	}
	p.Heatmap = heat
	p.Streak = Streak(heat)
	return p, nil
}

// Streak counts consecutive active days at the end of days. A quiet today
// does not break the streak until the day is over.
func Streak(days []HeatmapDay) int {
	end := len(days)
	if end > 0 && days[end-1].Count == 0 {
		end--
	}
	n := 0
	for i := end - 1; i >= 0 && days[i].Count > 0; i-- {
		n++
	}
	return n
}

// heatmap counts activity per local calendar day over the last HeatmapDays
// days, oldest first and ending today.
func (c *Controller) heatmap(ctx context.Context) ([]HeatmapDay, error) {
	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -(HeatmapDays - 1))

	days := make([]HeatmapDay, HeatmapDays)
	index := make(map[string]int, HeatmapDays)
	for i := range days {
		d := start.AddDate(0, 0, i).Format(time.DateOnly)
		days[i].Date = d
		index[d] = i
	}

	if c.activity == nil {
		return days, nil
	}

	events, err := c.activity.QueryActivity(ctx, store.QueryOpts{From: start})
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	for _, e := range events {
		d := e.Timestamp.In(now.Location()).Format(time.DateOnly)
		if i, ok := index[d]; ok {
			days[i].Count++
		}
	}
	for i := range days {
		days[i].Level = HeatLevel(days[i].Count)
	}
	return days, nil
}
