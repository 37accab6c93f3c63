// Package runner implements the deterministic side-scrolling runner that
// both the client and the verifier simulate. The player runs to the right,
// jumps cacti and pits, ducks under birds and collects coins.
//
// All state is integer fixed-point (core.Fixed), the only source of
// randomness is the seeded prng stream, and nothing reads the wall clock,
// so the same seed and input log always produce the same run.
package runner

import (
	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/core"
)

// ObstacleKind distinguishes the hazards placed along the track.
type ObstacleKind int

const (
	KindCactus ObstacleKind = iota // Ground hazard, jump over it
	KindBird                       // Airborne hazard, duck under or jump over it
	KindPit                        // Gap in the ground, jump across it
)

// String returns a human-readable name for the kind.
func (k ObstacleKind) String() string {
	switch k {
	case KindCactus:
		return "cactus"
	case KindBird:
		return "bird"
	case KindPit:
		return "pit"
	default:
		return "unknown"
	}
}

// Death causes reported in State.DeathCause.
const (
	CauseCactus  = "cactus"
	CauseBird    = "bird"
	CausePitWall = "pit wall"
	CauseFell    = "fell"
)

// Obstacle is a hazard in world space. X is the left edge.
type Obstacle struct {
	Kind     ObstacleKind
	X        core.Fixed
	Width    core.Fixed
	Height   core.Fixed // Cactus height or bird body height
	Altitude core.Fixed // Bird bottom edge above the ground
}

// Rect returns the collision rectangle. Pits have none; they are handled
// as missing ground support.
func (o Obstacle) Rect() core.Rect {
	switch o.Kind {
	case KindCactus:
		return core.FixedRect(o.X, 0, o.Width, o.Height)
	case KindBird:
		return core.FixedRect(o.X, o.Altitude, o.Width, o.Height)
	default:
		return core.Rect{}
	}
}

// Coin is a pickup worth Scoring.CoinValue points.
type Coin struct {
	X, Y      core.Fixed
	Collected bool
}

// Rect returns the pickup rectangle (one cell).
func (c Coin) Rect() core.Rect {
	return core.FixedRect(c.X, c.Y, core.ToFixed(1), core.ToFixed(1))
}

// State is the complete simulation frame. It is owned by a single replay
// or client and never shared.
type State struct {
	Tick      int        // Ticks advanced so far
	X         core.Fixed // Player left edge (distance travelled)
	Y         core.Fixed // Player feet above ground level (negative inside a pit)
	VelY      core.Fixed // Vertical velocity, positive = up
	Speed     core.Fixed // Horizontal speed per tick
	Grounded  bool
	Ducking   bool
	Obstacles []Obstacle
	Coins     []Coin

	NextSpawnX     core.Fixed // World X of the next obstacle
	CoinsCollected int
	Score          int
	Dead           bool
	DeathCause     string
	DeathTick      int
}

// NewState returns the initial frame for a run.
func NewState(cfg *config.Runner) *State {
	return &State{
		Speed:      cfg.Physics.BaseSpeed,
		Grounded:   true,
		Obstacles:  make([]Obstacle, 0, 16),
		Coins:      make([]Coin, 0, 8),
		NextSpawnX: core.ToFixed(cfg.Obstacles.StartClearance),
	}
}

// Distance returns the whole cells travelled.
func (s *State) Distance() int {
	return s.X.ToCell()
}

// playerRect returns the player's hitbox in world space.
func (s *State) playerRect(cfg *config.Runner) core.Rect {
	h := cfg.Player.Height
	if s.Ducking {
		h = cfg.Player.DuckHeight
	}
	return core.FixedRect(s.X, s.Y, core.ToFixed(cfg.Player.Width), core.ToFixed(h))
}

// pitUnder returns the pit that fully contains the player's footprint, if any.
func (s *State) pitUnder(cfg *config.Runner) *Obstacle {
	w := int(core.ToFixed(cfg.Player.Width))
	for i := range s.Obstacles {
		o := &s.Obstacles[i]
		if o.Kind != KindPit {
			continue
		}
		if core.FixedRect(o.X, 0, o.Width, 0).SpanWithin(int(s.X), w) {
			return o
		}
	}
	return nil
}
