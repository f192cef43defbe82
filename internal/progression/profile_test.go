package progression

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/forgelabs/internal/learner"
	"github.com/forgelabs/forgelabs/internal/store"
)

func TestAuraLevel(t *testing.T) {
	tests := []struct {
		aura int
		want string
	}{
		{0, "Novice"},
		{49, "Novice"},
		{50, "Builder"},
		{149, "Builder"},
		{150, "Debugger"},
		{299, "Debugger"},
		{300, "Architect"},
		{599, "Architect"},
		{600, "Robotics Sage"},
		{10000, "Robotics Sage"},
	}
	for _, tt := range tests {
		if got := AuraLevel(tt.aura); got != tt.want {
			t.Errorf("AuraLevel(%d) = %q, want %q", tt.aura, got, tt.want)
		}
	}
}

func TestNextAuraLevel(t *testing.T) {
	tests := []struct {
		aura     int
		wantName string
		wantNeed int
	}{
		{0, "Builder", 50},
		{140, "Debugger", 10},
		{599, "Robotics Sage", 1},
		{600, "", 0},
	}
	for _, tt := range tests {
		name, need := NextAuraLevel(tt.aura)
		if name != tt.wantName || need != tt.wantNeed {
			t.Errorf("NextAuraLevel(%d) = %q, %d; want %q, %d", tt.aura, name, need, tt.wantName, tt.wantNeed)
		}
	}
}

func TestHeatLevel(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {5, 3}, {6, 4}, {40, 4},
	}
	for _, tt := range tests {
		if got := HeatLevel(tt.count); got != tt.want {
			t.Errorf("HeatLevel(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestProfile(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	cat := threeLessons(t)
	activity := &memoryActivity{}
	ctl := NewController(cat, learner.NewStore(learner.NewMemoryBackend(), nil),
		WithActivityLog(activity),
		WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	_, err := ctl.CompleteLesson(ctx, "L0")
	require.NoError(t, err)
	_, err = ctl.RecordAction(ctx, ActionPublishCode)
	require.NoError(t, err)

	// Older activity: three events two days ago, one outside the window.
	for i := 0; i < 3; i++ {
		require.NoError(t, activity.AppendActivity(ctx, store.ActivityEventData{
			Kind: store.ActivityAction, Timestamp: now.AddDate(0, 0, -2),
		}))
	}
	require.NoError(t, activity.AppendActivity(ctx, store.ActivityEventData{
		Kind: store.ActivityAction, Timestamp: now.AddDate(0, 0, -40),
	}))

	p, err := ctl.Profile(ctx)
	require.NoError(t, err)

	assert.Equal(t, 25, p.XP)
	assert.Equal(t, 31, p.Aura)
	assert.Equal(t, "Novice", p.Level)
	assert.Equal(t, "Builder", p.NextLevel)
	assert.Equal(t, 19, p.AuraToNext)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 3, p.Total)
	assert.InDelta(t, 1.0/3.0, p.Progress, 1e-9)
	assert.Equal(t, "Progress: 1/3 lessons completed", p.ProgressText())

	require.Len(t, p.Heatmap, HeatmapDays)
	assert.Equal(t, "2026-02-11", p.Heatmap[0].Date)
	last := p.Heatmap[HeatmapDays-1]
	assert.Equal(t, "2026-03-10", last.Date)
	assert.Equal(t, 2, last.Count)
	assert.Equal(t, 2, last.Level)

	twoDaysAgo := p.Heatmap[HeatmapDays-3]
	assert.Equal(t, "2026-03-08", twoDaysAgo.Date)
	assert.Equal(t, 3, twoDaysAgo.Count)
	assert.Equal(t, 2, twoDaysAgo.Level)

	total := 0
	for _, d := range p.Heatmap {
		total += d.Count
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 1, p.Streak, "the gap yesterday ends the streak")
}

func TestStreak(t *testing.T) {
	days := func(counts ...int) []HeatmapDay {
		out := make([]HeatmapDay, len(counts))
		for i, c := range counts {
			out[i].Count = c
		}
		return out
	}
	tests := []struct {
		name string
		days []HeatmapDay
		want int
	}{
		{"empty", nil, 0},
		{"no activity", days(0, 0, 0), 0},
		{"active through today", days(0, 1, 3, 2), 3},
		{"quiet today keeps yesterday's streak", days(1, 1, 0), 2},
		{"two quiet days", days(1, 1, 0, 0), 0},
		{"gap", days(4, 0, 1), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Streak(tt.days), tt.name)
	}
}

func TestProfile_NoActivityLog(t *testing.T) {
	ctl := NewController(threeLessons(t), learner.NewStore(learner.NewMemoryBackend(), nil))
	p, err := ctl.Profile(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Heatmap, HeatmapDays)
	for _, d := range p.Heatmap {
		assert.Zero(t, d.Level)
	}
}
