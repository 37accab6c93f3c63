// Package config provides YAML-based configuration for the runner
// simulation and the published verification rules, plus environment-based
// server settings.
//
// Every value that a client and the verifier must agree on bit-for-bit is
// an integer. Physics constants are expressed in thousandths of a cell.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/arcade-verifier/internal/core"
	"github.com/vovakirdan/arcade-verifier/internal/prng"
)

// Rules contains the published constants of the verification protocol.
type Rules struct {
	TickRate          int    `yaml:"tick_rate" json:"tickRate"`                    // Simulation ticks per second
	MaxInputEvents    int    `yaml:"max_input_events" json:"maxInputEvents"`       // Ceiling on events per submission
	MaxTick           int    `yaml:"max_tick" json:"maxTick"`                      // Largest tick an event may carry
	SessionExpiryMs   int64  `yaml:"session_expiry_ms" json:"sessionExpiryMs"`     // Submission window after session creation
	TimingToleranceMs int64  `yaml:"timing_tolerance_ms" json:"timingToleranceMs"` // Allowance for latency in the wall-clock check
	MaxScore          int    `yaml:"max_score" json:"maxScore"`                    // Inclusive upper score bound
	MaxNameLength     int    `yaml:"max_name_length" json:"maxNameLength"`         // In runes, after sanitizing
	MaxBodyBytes      int64  `yaml:"max_body_bytes" json:"maxBodyBytes"`           // Submission request body cap
	PRNG              string `yaml:"prng" json:"prng"`                             // Generator algorithm name
}

// SessionExpiry returns the expiry window as a duration.
func (r Rules) SessionExpiry() time.Duration {
	return time.Duration(r.SessionExpiryMs) * time.Millisecond
}

// TimingTolerance returns the timing tolerance as a duration.
func (r Rules) TimingTolerance() time.Duration {
	return time.Duration(r.TimingToleranceMs) * time.Millisecond
}

// TicksToMillis converts a simulated tick count to game-time milliseconds.
func (r Rules) TicksToMillis(ticks int) int64 {
	if r.TickRate <= 0 {
		return 0
	}
	return int64(ticks) * 1000 / int64(r.TickRate)
}

// Validate checks that the rules are internally consistent.
func (r Rules) Validate() error {
	var errs []error
	if r.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %d", r.TickRate))
	}
	if r.MaxInputEvents <= 0 {
		errs = append(errs, fmt.Errorf("max_input_events must be positive, got %d", r.MaxInputEvents))
	}
	if r.MaxTick <= 0 {
		errs = append(errs, fmt.Errorf("max_tick must be positive, got %d", r.MaxTick))
	}
	if r.SessionExpiryMs <= 0 {
		errs = append(errs, fmt.Errorf("session_expiry_ms must be positive, got %d", r.SessionExpiryMs))
	}
	if r.TimingToleranceMs < 0 {
		errs = append(errs, fmt.Errorf("timing_tolerance_ms must not be negative, got %d", r.TimingToleranceMs))
	}
	if r.MaxScore <= 0 {
		errs = append(errs, fmt.Errorf("max_score must be positive, got %d", r.MaxScore))
	}
	if r.MaxNameLength <= 0 {
		errs = append(errs, fmt.Errorf("max_name_length must be positive, got %d", r.MaxNameLength))
	}
	if r.PRNG != prng.Algorithm {
		errs = append(errs, fmt.Errorf("prng must be %q, got %q", prng.Algorithm, r.PRNG))
	}
	return errors.Join(errs...)
}

// Runner contains all configuration for the runner simulation.
type Runner struct {
	Physics    Physics    `yaml:"physics" json:"physics"`
	Player     Player     `yaml:"player" json:"player"`
	Obstacles  Obstacles  `yaml:"obstacles" json:"obstacles"`
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"`
}

// Physics defines movement constants in thousandths of a cell per tick.
type Physics struct {
	Gravity        core.Fixed `yaml:"gravity" json:"gravity"`
	JumpImpulse    core.Fixed `yaml:"jump_impulse" json:"jumpImpulse"`
	MaxFallSpeed   core.Fixed `yaml:"max_fall_speed" json:"maxFallSpeed"`
	FastFallFactor int        `yaml:"fast_fall_factor" json:"fastFallFactor"`
	BaseSpeed      core.Fixed `yaml:"base_speed" json:"baseSpeed"`
	BoostSpeed     core.Fixed `yaml:"boost_speed" json:"boostSpeed"`
	BrakeSpeed     core.Fixed `yaml:"brake_speed" json:"brakeSpeed"`
	Acceleration   core.Fixed `yaml:"acceleration" json:"acceleration"`
	PitDepth       core.Fixed `yaml:"pit_depth" json:"pitDepth"`
}

// Player defines the player's hitbox in cells.
type Player struct {
	Width      int `yaml:"width" json:"width"`
	Height     int `yaml:"height" json:"height"`
	DuckHeight int `yaml:"duck_height" json:"duckHeight"`
}

// Obstacles defines procedural generation parameters, in cells and permille.
type Obstacles struct {
	StartClearance  int `yaml:"start_clearance" json:"startClearance"`
	SpawnAhead      int `yaml:"spawn_ahead" json:"spawnAhead"`
	MinSpacing      int `yaml:"min_spacing" json:"minSpacing"`
	MaxSpacing      int `yaml:"max_spacing" json:"maxSpacing"`
	MinWidth        int `yaml:"min_width" json:"minWidth"`
	MaxWidth        int `yaml:"max_width" json:"maxWidth"`
	MinHeight       int `yaml:"min_height" json:"minHeight"`
	MaxHeight       int `yaml:"max_height" json:"maxHeight"`
	BirdChance      int `yaml:"bird_chance" json:"birdChance"`
	MinBirdAltitude int `yaml:"min_bird_altitude" json:"minBirdAltitude"`
	MaxBirdAltitude int `yaml:"max_bird_altitude" json:"maxBirdAltitude"`
	PitChance       int `yaml:"pit_chance" json:"pitChance"`
	MinPitWidth     int `yaml:"min_pit_width" json:"minPitWidth"`
	MaxPitWidth     int `yaml:"max_pit_width" json:"maxPitWidth"`
	CoinChance      int `yaml:"coin_chance" json:"coinChance"`
	CoinAltitude    int `yaml:"coin_altitude" json:"coinAltitude"`
}

// Scoring defines how distance and pickups turn into points.
type Scoring struct {
	CellsPerPoint int `yaml:"cells_per_point" json:"cellsPerPoint"`
	CoinValue     int `yaml:"coin_value" json:"coinValue"`
}

// Difficulty defines the difficulty progression system.
type Difficulty struct {
	Enabled      bool        `yaml:"enabled" json:"enabled"`
	InitialLevel int         `yaml:"initial_level" json:"initialLevel"` // permille: 0 = easy, 1000 = hard
	Progression  Progression `yaml:"progression" json:"progression"`
	Scaling      Scaling     `yaml:"scaling" json:"scaling"`
}

// Progression defines how difficulty increases over time.
type Progression struct {
	Type  string `yaml:"type" json:"type"`    // "distance", "time", or "none"
	MaxAt int    `yaml:"max_at" json:"maxAt"` // Cells or ticks at which max difficulty is reached
}

// Scaling defines the magnitude of difficulty changes.
type Scaling struct {
	SpeedMultiplier  int `yaml:"speed_multiplier" json:"speedMultiplier"`   // permille added to speed at max difficulty
	SpacingReduction int `yaml:"spacing_reduction" json:"spacingReduction"` // cells removed from max spacing at max difficulty
}

// Validate checks the runner configuration for values the simulation cannot handle.
func (c Runner) Validate() error {
	var errs []error
	if c.Physics.Gravity <= 0 {
		errs = append(errs, errors.New("physics.gravity must be positive"))
	}
	if c.Physics.BaseSpeed <= 0 {
		errs = append(errs, errors.New("physics.base_speed must be positive"))
	}
	if c.Physics.PitDepth <= 0 {
		errs = append(errs, errors.New("physics.pit_depth must be positive"))
	}
	if c.Player.Width <= 0 || c.Player.Height <= 0 || c.Player.DuckHeight <= 0 {
		errs = append(errs, errors.New("player dimensions must be positive"))
	}
	if c.Obstacles.MinSpacing <= 0 || c.Obstacles.MaxSpacing < c.Obstacles.MinSpacing {
		errs = append(errs, errors.New("obstacles spacing range is invalid"))
	}
	if c.Obstacles.MinWidth <= 0 || c.Obstacles.MaxWidth < c.Obstacles.MinWidth {
		errs = append(errs, errors.New("obstacles width range is invalid"))
	}
	if c.Obstacles.MinPitWidth <= 0 || c.Obstacles.MaxPitWidth < c.Obstacles.MinPitWidth {
		errs = append(errs, errors.New("obstacles pit width range is invalid"))
	}
	if c.Scoring.CellsPerPoint <= 0 {
		errs = append(errs, errors.New("scoring.cells_per_point must be positive"))
	}
	return errors.Join(errs...)
}

// Fingerprint returns a short hash of the rules and runner configuration.
// Clients compare it with the server's to detect configuration drift.
func Fingerprint(rules Rules, runner Runner) string {
	data, err := json.Marshal(struct {
		Rules  Rules  `json:"rules"`
		Runner Runner `json:"runner"`
	}{rules, runner})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
