package core

// Color is the role of a screen cell. The terminal layer decides what each
// role looks like, so the simulation view never names concrete colors.
type Color uint8

const (
	ColorDefault Color = iota
	ColorGround
	ColorCactus
	ColorBird
	ColorCoin
	ColorPlayer
	ColorPlayerDead
	ColorHUD
	ColorMuted
)
