package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/arcade-verifier/internal/core"
)

// palette holds the terminal color for each core.Color role, indexed by
// value. An empty entry renders unstyled.
var palette = [...]lipgloss.Color{
	core.ColorDefault:    "",
	core.ColorGround:     "245",
	core.ColorCactus:     "2",
	core.ColorBird:       "3",
	core.ColorCoin:       "11",
	core.ColorPlayer:     "14",
	core.ColorPlayerDead: "9",
	core.ColorHUD:        "15",
	core.ColorMuted:      "241",
}

var cellStyles = func() []lipgloss.Style {
	styles := make([]lipgloss.Style, len(palette))
	for i, c := range palette {
		styles[i] = lipgloss.NewStyle()
		if c != "" {
			styles[i] = styles[i].Foreground(c)
		}
	}
	return styles
}()

func styleFor(c core.Color) lipgloss.Style {
	if int(c) < len(cellStyles) {
		return cellStyles[c]
	}
	return cellStyles[core.ColorDefault]
}

// RenderScreen converts a Screen buffer to a styled string. Runs of cells
// sharing a color are styled together to keep escape sequences short.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		run.Reset()
		runColor := s.GetCell(0, y).Color
		for x := range s.Width() {
			cell := s.GetCell(x, y)
			if cell.Color != runColor {
				sb.WriteString(styleFor(runColor).Render(run.String()))
				run.Reset()
				runColor = cell.Color
			}
			run.WriteRune(cell.Rune)
		}
		if run.Len() > 0 {
			sb.WriteString(styleFor(runColor).Render(run.String()))
		}
	}
	return sb.String()
}
