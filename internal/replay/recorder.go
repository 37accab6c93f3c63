package replay

import "github.com/vovakirdan/arcade-verifier/internal/core"

// Recorder builds an input log while a run is played live. Events are
// stamped with the number of ticks already advanced, which is the tick
// Run applies them before.
type Recorder struct {
	events []core.InputEvent
	keys   core.KeyState
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{events: make([]core.InputEvent, 0, 256)}
}

// Record logs a key edge at tick. Edges that do not change the held state
// (unknown keys, repeated presses, stray releases) are dropped.
func (r *Recorder) Record(tick int, key string, pressed bool) bool {
	if core.ActionForKey(key) == core.ActionNone || r.keys.Held(key) == pressed {
		return false
	}
	ev := core.InputEvent{Tick: tick, Key: key, Pressed: pressed}
	r.keys.Apply(ev)
	r.events = append(r.events, ev)
	return true
}

// Keys returns the currently held keys, to feed the live simulation.
func (r *Recorder) Keys() core.KeyState {
	return r.keys
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Finish terminates the log at endTick by releasing every held key. When
// nothing is held a release of an unheld key marks the end tick.
func (r *Recorder) Finish(endTick int) []core.InputEvent {
	held := r.keys.HeldKeys()
	if len(held) == 0 {
		held = []string{core.KeyArrowUp}
	}
	for _, k := range held {
		r.events = append(r.events, core.InputEvent{Tick: endTick, Key: k, Pressed: false})
	}
	r.keys.ReleaseAll()

	out := make([]core.InputEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Reset discards the log.
func (r *Recorder) Reset() {
	r.events = r.events[:0]
	r.keys.ReleaseAll()
}
