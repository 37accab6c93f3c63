package runner

import (
	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/core"
	"github.com/vovakirdan/arcade-verifier/internal/prng"
)

// AdvanceTick advances st by one fixed tick given the keys held during that
// tick. Once the player is dead further calls are no-ops.
//
// Order within a tick: horizontal speed and movement, ground support,
// jump and gravity, landing or falling, track generation, despawn,
// collisions, score.
func AdvanceTick(st *State, keys core.KeyState, rng *prng.Rand, cfg *config.Runner) {
	if st.Dead {
		return
	}

	st.Tick++
	p := cfg.Physics
	diff := config.NewDifficultyManager(cfg.Difficulty)

	// Horizontal movement
	target := diff.Speed(p.BaseSpeed, st.Distance(), st.Tick)
	if keys.Has(core.ActionRight) {
		target += p.BoostSpeed
	}
	if keys.Has(core.ActionLeft) {
		target -= p.BrakeSpeed
	}
	if target < 0 {
		target = 0
	}
	st.Speed = st.Speed.Approach(target, p.Acceleration)
	st.X += st.Speed

	// Walking onto a pit removes ground support
	pit := st.pitUnder(cfg)
	if st.Grounded && pit != nil {
		st.Grounded = false
		st.VelY = 0
	}

	// Jump only from solid ground; ducking only while grounded
	if st.Grounded && keys.Has(core.ActionJump) {
		st.VelY = p.JumpImpulse
		st.Grounded = false
	}
	st.Ducking = st.Grounded && keys.Has(core.ActionDuck)

	prevY := st.Y
	if !st.Grounded {
		gravity := p.Gravity
		if keys.Has(core.ActionDuck) && p.FastFallFactor > 1 {
			gravity *= core.Fixed(p.FastFallFactor)
		}
		st.VelY -= gravity
		if st.VelY < -p.MaxFallSpeed {
			st.VelY = -p.MaxFallSpeed
		}
		st.Y += st.VelY

		if st.Y <= 0 {
			switch {
			case pit == nil && prevY >= 0:
				st.Y = 0
				st.VelY = 0
				st.Grounded = true
			case pit == nil:
				// Moved sideways out of a pit below ground level
				st.die(CausePitWall)
			case st.Y <= -p.PitDepth:
				st.die(CauseFell)
			}
		}
	}

	spawnAhead(st, rng, cfg, diff)
	despawn(st)

	if !st.Dead {
		checkCollisions(st, cfg)
	}

	st.Score = st.Distance()/cfg.Scoring.CellsPerPoint + st.CoinsCollected*cfg.Scoring.CoinValue
}

// die marks the run finished. The first cause wins.
func (s *State) die(cause string) {
	if s.Dead {
		return
	}
	s.Dead = true
	s.DeathCause = cause
	s.DeathTick = s.Tick
}

// Sim bundles a state, its PRNG stream and the configuration. The terminal
// client drives one Sim per play session.
type Sim struct {
	cfg   config.Runner
	rng   *prng.Rand
	state *State
	seed  int64
}

// New creates a simulation for seed.
func New(cfg config.Runner, seed int64) *Sim {
	s := &Sim{cfg: cfg}
	s.Reset(seed)
	return s
}

// Reset restarts the run with a new seed.
func (s *Sim) Reset(seed int64) {
	s.seed = seed
	s.rng = prng.New(seed)
	s.state = NewState(&s.cfg)
}

// Step advances the simulation by one tick.
func (s *Sim) Step(keys core.KeyState) {
	AdvanceTick(s.state, keys, s.rng, &s.cfg)
}

// State returns the live simulation state. Callers must not modify it.
func (s *Sim) State() *State {
	return s.state
}

// Seed returns the seed of the current run.
func (s *Sim) Seed() int64 {
	return s.seed
}

// Config returns the runner configuration in use.
func (s *Sim) Config() config.Runner {
	return s.cfg
}
