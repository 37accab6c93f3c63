package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-verifier/internal/core"
)

// KeyMap holds the play screen bindings. Game bindings are translated to
// wire key identifiers so the recorded log matches what a browser client
// would send for the same keys.
type KeyMap struct {
	Jump    key.Binding
	Duck    key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Restart key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Jump, k.Duck, k.Faster, k.Slower, k.Restart, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Jump, k.Duck, k.Faster, k.Slower},
		{k.Restart, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Jump: key.NewBinding(
			key.WithKeys("up", "w", " "),
			key.WithHelp("up/w/space", "jump"),
		),
		Duck: key.NewBinding(
			key.WithKeys("down", "s"),
			key.WithHelp("down/s", "duck"),
		),
		Faster: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("right/d", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("left/a", "brake"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "new run"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// terminalKeys maps terminal key names to wire identifiers.
var terminalKeys = map[string]string{
	"up":    core.KeyArrowUp,
	" ":     core.KeySpace,
	"w":     core.KeyW,
	"down":  core.KeyArrowDown,
	"s":     core.KeyS,
	"right": core.KeyArrowRight,
	"d":     core.KeyD,
	"left":  core.KeyArrowLeft,
	"a":     core.KeyA,
}

// WireKey returns the wire key identifier for a terminal key message.
// Keys that do not drive the runner report false.
func WireKey(msg tea.KeyMsg) (string, bool) {
	k, ok := terminalKeys[msg.String()]
	return k, ok
}
