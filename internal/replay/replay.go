// Package replay re-simulates a recorded run from its seed and input log.
// The verifier trusts nothing the client reports except this log; the
// score, tick count and death all come from the replay.
package replay

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/core"
	"github.com/vovakirdan/arcade-verifier/internal/games/runner"
	"github.com/vovakirdan/arcade-verifier/internal/prng"
)

var (
	// ErrTooManyEvents is returned when the log exceeds Rules.MaxInputEvents.
	ErrTooManyEvents = errors.New("replay: too many input events")
	// ErrTickOutOfRange is returned when an event tick is negative or beyond Rules.MaxTick.
	ErrTickOutOfRange = errors.New("replay: event tick out of range")
)

// Result is the outcome of a replay.
type Result struct {
	Score          int
	TotalTicks     int
	IsDead         bool
	DeathCause     string
	Distance       int
	CoinsCollected int
}

// DurationMs returns the simulated play time in milliseconds.
func (r Result) DurationMs(rules config.Rules) int64 {
	return rules.TicksToMillis(r.TotalTicks)
}

// Check validates the log against the ceilings without simulating.
func Check(rules config.Rules, events []core.InputEvent) error {
	if len(events) > rules.MaxInputEvents {
		return fmt.Errorf("%w: %d > %d", ErrTooManyEvents, len(events), rules.MaxInputEvents)
	}
	for i, ev := range events {
		if ev.Tick < 0 || ev.Tick > rules.MaxTick {
			return fmt.Errorf("%w: event %d at tick %d", ErrTickOutOfRange, i, ev.Tick)
		}
	}
	return nil
}

// Run replays events against a fresh simulation seeded with seed.
//
// Events are consumed in slice order. Before tick t is advanced every
// pending event with Tick <= t is applied; the cursor stops at the first
// event with a later tick, so an out-of-order event takes effect once the
// cursor reaches it. Several events for one key at one tick resolve to the
// last one.
//
// The replay stops when the player dies, or once every event has been
// applied and t reaches the largest event tick. Events at that final tick
// describe the key state at the end of the run and are not simulated.
func Run(rules config.Rules, cfg config.Runner, seed int64, events []core.InputEvent) (Result, error) {
	if err := Check(rules, events); err != nil {
		return Result{}, err
	}

	lastTick := 0
	for _, ev := range events {
		lastTick = max(lastTick, ev.Tick)
	}

	st := runner.NewState(&cfg)
	rng := prng.New(seed)
	var keys core.KeyState
	cursor := 0

	for t := 0; !st.Dead; t++ {
		for cursor < len(events) && events[cursor].Tick <= t {
			keys.Apply(events[cursor])
			cursor++
		}
		if cursor == len(events) && t >= lastTick {
			break
		}
		runner.AdvanceTick(st, keys, rng, &cfg)
	}

	return Result{
		Score:          st.Score,
		TotalTicks:     st.Tick,
		IsDead:         st.Dead,
		DeathCause:     st.DeathCause,
		Distance:       st.Distance(),
		CoinsCollected: st.CoinsCollected,
	}, nil
}
