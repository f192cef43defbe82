package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/forgelabs/forgelabs/internal/ui/theme"
)

const bannerArt = `
 ███████╗ ██████╗ ██████╗  ██████╗ ███████╗    ██╗      █████╗ ██████╗ ███████╗
 ██╔════╝██╔═══██╗██╔══██╗██╔════╝ ██╔════╝    ██║     ██╔══██╗██╔══██╗██╔════╝
 █████╗  ██║   ██║██████╔╝██║  ███╗█████╗      ██║     ███████║██████╔╝███████╗
 ██╔══╝  ██║   ██║██╔══██╗██║   ██║██╔══╝      ██║     ██╔══██║██╔══██╗╚════██║
 ██║     ╚██████╔╝██║  ██║╚██████╔╝███████╗    ███████╗██║  ██║██████╔╝███████║
 ╚═╝      ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝    ╚══════╝╚═╝  ╚═╝╚═════╝ ╚══════╝`

const bannerCompact = "F O R G E   L A B S"

// bannerWidth is the widest line of bannerArt plus a margin.
const bannerWidth = 82

// RenderBanner returns the FORGE LABS banner styled in the primary color.
// Uses a compact fallback for terminals narrower than the block letters.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
