package runner

import (
	"fmt"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/core"
)

// Visual characters for rendering
const (
	PlayerBody = '█'
	PlayerHead = '◆'
	CactusChar = '▓'
	BirdChar   = '▼'
	CoinChar   = '●'
	GroundChar = '═'
)

// playerColumn is the screen column of the player's left edge.
const playerColumn = 8

// Render draws st into dst. The camera follows the player; one cell of
// world space is one screen cell. Row 0 is the HUD, ground sits two rows
// above the bottom.
func Render(dst *core.Screen, st *State, cfg *config.Runner) {
	dst.Clear()
	groundY := dst.Height() - 2

	toScreenX := func(worldX core.Fixed) int {
		return (worldX - st.X).Floor() + playerColumn
	}
	toScreenY := func(height core.Fixed) int {
		return groundY - 1 - height.Floor()
	}

	// Ground, with gaps over pits
	dst.DrawHLine(0, groundY, dst.Width(), GroundChar, core.ColorGround)
	for _, o := range st.Obstacles {
		if o.Kind != KindPit {
			continue
		}
		x0 := toScreenX(o.X)
		for dx := 0; dx < o.Width.ToCell(); dx++ {
			dst.Set(x0+dx, groundY, ' ')
		}
	}

	for _, o := range st.Obstacles {
		x0 := toScreenX(o.X)
		switch o.Kind {
		case KindCactus:
			for dy := 0; dy < o.Height.ToCell(); dy++ {
				for dx := 0; dx < o.Width.ToCell(); dx++ {
					dst.SetColored(x0+dx, groundY-1-dy, CactusChar, core.ColorCactus)
				}
			}
		case KindBird:
			for dx := 0; dx < o.Width.ToCell(); dx++ {
				dst.SetColored(x0+dx, toScreenY(o.Altitude), BirdChar, core.ColorBird)
			}
		}
	}

	for _, c := range st.Coins {
		if !c.Collected {
			dst.SetColored(toScreenX(c.X), toScreenY(c.Y), CoinChar, core.ColorCoin)
		}
	}

	drawPlayer(dst, st, cfg, toScreenY(st.Y))

	dst.DrawTextColored(2, 0, fmt.Sprintf(" Score: %d ", st.Score), core.ColorHUD)
	speed := fmt.Sprintf(" Spd: %d.%02d ", st.Speed.ToCell(), int(st.Speed)%core.Scale/10)
	dst.DrawTextColored(dst.Width()-len(speed)-2, 0, speed, core.ColorMuted)
}

// drawPlayer renders the runner with its feet on row feetY.
func drawPlayer(dst *core.Screen, st *State, cfg *config.Runner, feetY int) {
	h := cfg.Player.Height
	if st.Ducking {
		h = cfg.Player.DuckHeight
	}
	color := core.ColorPlayer
	if st.Dead {
		color = core.ColorPlayerDead
	}

	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < cfg.Player.Width; dx++ {
			r := PlayerBody
			if dy == h-1 && dx == cfg.Player.Width-1 {
				r = PlayerHead
			}
			dst.SetColored(playerColumn+dx, feetY-dy, r, color)
		}
	}
}

// DrawMessage draws a message box in the center of the screen.
func DrawMessage(dst *core.Screen, title, subtitle string) {
	boxW := max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	boxX := (dst.Width() - boxW) / 2
	boxY := (dst.Height() - boxH) / 2

	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))
	dst.DrawText(boxX+(boxW-len([]rune(title)))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len([]rune(subtitle)))/2, boxY+3, subtitle)
}
