package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for card sections so
// stacked boxes line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return theme.Card.Width(cw).Render(content)
}

// Heatmap renders heat levels (0-4) as rows of seven cells, oldest first.
func Heatmap(levels []int) string {
	var rows []string
	var row strings.Builder
	for i, lvl := range levels {
		lvl = max(0, min(lvl, len(theme.Heat)-1))
		row.WriteString(theme.Heat[lvl].Render("■"))
		if (i+1)%7 == 0 || i == len(levels)-1 {
			rows = append(rows, row.String())
			row.Reset()
		} else {
			row.WriteString(" ")
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
