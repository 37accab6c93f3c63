package core

// Action represents a semantic game action, abstracted from physical key
// identifiers. The simulation only ever looks at actions.
type Action int

const (
	ActionNone  Action = iota
	ActionJump         // ArrowUp, Space, KeyW
	ActionDuck         // ArrowDown, KeyS - duck on the ground, fast-fall in the air
	ActionRight        // ArrowRight, KeyD - run faster
	ActionLeft         // ArrowLeft, KeyA - brake
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionJump:
		return "Jump"
	case ActionDuck:
		return "Duck"
	case ActionRight:
		return "Right"
	case ActionLeft:
		return "Left"
	default:
		return "Unknown"
	}
}

// Wire key identifiers. These follow the browser KeyboardEvent.code names
// so a web client can record events without translation.
const (
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeySpace      = "Space"
	KeyW          = "KeyW"
	KeyS          = "KeyS"
	KeyA          = "KeyA"
	KeyD          = "KeyD"
)

// knownKeys is indexed by KeyState slot. Order is fixed so that key state
// never depends on map iteration.
var knownKeys = [...]struct {
	key    string
	action Action
}{
	{KeyArrowUp, ActionJump},
	{KeySpace, ActionJump},
	{KeyW, ActionJump},
	{KeyArrowDown, ActionDuck},
	{KeyS, ActionDuck},
	{KeyArrowRight, ActionRight},
	{KeyD, ActionRight},
	{KeyArrowLeft, ActionLeft},
	{KeyA, ActionLeft},
}

// MaxKeyLength is the longest key identifier accepted on the wire.
const MaxKeyLength = 20

// keySlot returns the KeyState slot for key, or -1 for unknown keys.
func keySlot(key string) int {
	for i, k := range knownKeys {
		if k.key == key {
			return i
		}
	}
	return -1
}

// ActionForKey returns the action bound to a key identifier.
// Unknown keys map to ActionNone.
func ActionForKey(key string) Action {
	if i := keySlot(key); i >= 0 {
		return knownKeys[i].action
	}
	return ActionNone
}

// InputEvent is a single key edge recorded by the client at a simulated tick.
type InputEvent struct {
	Tick    int    `json:"tick"`
	Key     string `json:"key"`
	Pressed bool   `json:"pressed"`
}

// KeyState tracks which known keys are currently held.
// The zero value has nothing held.
type KeyState struct {
	held [len(knownKeys)]bool
}

// Apply records a key edge. Unknown keys are ignored, pressing a held key
// is idempotent and releasing a key that was never pressed is a no-op.
// Reports whether the event referred to a known key.
func (s *KeyState) Apply(ev InputEvent) bool {
	i := keySlot(ev.Key)
	if i < 0 {
		return false
	}
	s.held[i] = ev.Pressed
	return true
}

// Held returns true if the given key identifier is currently held.
func (s KeyState) Held(key string) bool {
	i := keySlot(key)
	return i >= 0 && s.held[i]
}

// Has returns true if any key bound to the action is held.
func (s KeyState) Has(a Action) bool {
	for i, k := range knownKeys {
		if k.action == a && s.held[i] {
			return true
		}
	}
	return false
}

// HeldKeys returns the identifiers of all held keys in slot order.
func (s KeyState) HeldKeys() []string {
	var keys []string
	for i, k := range knownKeys {
		if s.held[i] {
			keys = append(keys, k.key)
		}
	}
	return keys
}

// ReleaseAll clears every held key.
func (s *KeyState) ReleaseAll() {
	s.held = [len(knownKeys)]bool{}
}
