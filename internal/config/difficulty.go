package config

import "github.com/vovakirdan/arcade-verifier/internal/core"

// LevelMax is the difficulty level at full progression (permille).
const LevelMax = 1000

// DifficultyManager calculates dynamic game parameters from distance or time.
// All arithmetic is integer so the curve is identical on every platform.
type DifficultyManager struct {
	cfg Difficulty
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg Difficulty) *DifficultyManager {
	cfg.InitialLevel = core.Clamp(cfg.InitialLevel, 0, LevelMax)
	return &DifficultyManager{cfg: cfg}
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != "none"
}

// Level returns the current difficulty level in [0, LevelMax].
// distance is in cells, ticks is the elapsed tick count.
func (d *DifficultyManager) Level(distance, ticks int) int {
	if !d.IsEnabled() {
		return d.cfg.InitialLevel
	}

	maxAt := d.cfg.Progression.MaxAt
	if maxAt <= 0 {
		maxAt = 1
	}

	var progress int
	switch d.cfg.Progression.Type {
	case "distance":
		progress = distance
	case "time":
		progress = ticks
	default:
		return d.cfg.InitialLevel
	}
	progress = core.Clamp(progress, 0, maxAt)

	// Interpolate from initial level to LevelMax
	return d.cfg.InitialLevel + (LevelMax-d.cfg.InitialLevel)*progress/maxAt
}

// Speed returns the scaled running speed for the current level.
func (d *DifficultyManager) Speed(base core.Fixed, distance, ticks int) core.Fixed {
	level := d.Level(distance, ticks)
	bonus := level * d.cfg.Scaling.SpeedMultiplier / LevelMax
	return base.MulRatio(LevelMax+bonus, LevelMax)
}

// Spacing returns the maximum obstacle spacing (cells) for the current level,
// never below minSpacing.
func (d *DifficultyManager) Spacing(maxSpacing, minSpacing, distance, ticks int) int {
	level := d.Level(distance, ticks)
	reduction := level * d.cfg.Scaling.SpacingReduction / LevelMax
	return max(maxSpacing-reduction, minSpacing)
}
