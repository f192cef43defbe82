package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/progression"
	"github.com/forgelabs/forgelabs/internal/ui/components"
	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

const titleFull = `╔═╗╔═╗╦═╗╔═╗╔═╗  ╦  ╔═╗╔╗ ╔═╗
╠╣ ║ ║╠╦╝║ ╦║╣   ║  ╠═╣╠╩╗╚═╗
╚  ╚═╝╩╚═╚═╝╚═╝  ╩═╝╩ ╩╚═╝╚═╝`

const titleCompact = "F O R G E  L A B S"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title) + "\n" + theme.Subtitle.Render("robotics roadmap"))
}

// renderStatsBar renders level, XP, aura and completion in a box matching
// the content width.
func renderStatsBar(p progression.Profile, cw int, compact bool) string {
	levelStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	xpStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	auraStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			levelStyle.Render(p.Level),
			xpStyle.Render(fmt.Sprintf("⚡%d", p.XP)),
			auraStyle.Render(fmt.Sprintf("✦%d", p.Aura)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			levelStyle.Render(p.Level),
			xpStyle.Render(fmt.Sprintf("⚡ %d XP", p.XP)),
			auraStyle.Render(fmt.Sprintf("✦ %d AURA", p.Aura)),
		)
	}

	bar := components.NewProgressBar(fmt.Sprintf("%d/%d", p.Completed, p.Total), p.Progress, true, cw-6).View()

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats + "\n" + bar)
}
