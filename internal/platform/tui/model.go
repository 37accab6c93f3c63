package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/arcade-verifier/internal/client"
	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/core"
	"github.com/vovakirdan/arcade-verifier/internal/games/runner"
	"github.com/vovakirdan/arcade-verifier/internal/replay"
)

// Backend issues sessions and judges finished runs. *client.Client is the
// remote implementation; LocalBackend verifies in process.
type Backend interface {
	StartSession(ctx context.Context) (client.Session, error)
	Submit(ctx context.Context, sessionID, name string, events []core.InputEvent, claimed int) (client.Verdict, error)
}

// DefaultHold is how long a terminal key press counts as held. Terminals
// report presses and auto-repeats but never releases.
const DefaultHold = 150 * time.Millisecond

// Options configures the play screen.
type Options struct {
	Rules   config.Rules
	Runner  config.Runner
	Player  string
	Hold    time.Duration
	Width   int
	Height  int
	Timeout time.Duration // Per backend call
}

type phase int

const (
	phaseConnecting phase = iota
	phasePlaying
	phaseSubmitting
	phaseResult
)

type sessionMsg struct {
	sess client.Session
	err  error
}

type verdictMsg struct {
	verdict client.Verdict
	err     error
}

// Model is the Bubble Tea model for a verified run.
type Model struct {
	backend Backend
	opts    Options
	keys    KeyMap
	help    help.Model

	phase     phase
	sess      client.Session
	sim       *runner.Sim
	rec       *replay.Recorder
	holdTicks int
	releaseAt map[string]int // Wire key -> tick at which it is released

	screen   *core.Screen
	verdict  client.Verdict
	err      error
	quitting bool
}

// NewModel creates the play screen.
func NewModel(backend Backend, opts Options) Model {
	if opts.Hold <= 0 {
		opts.Hold = DefaultHold
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 80, 24
	}

	hold := int(opts.Hold * time.Duration(opts.Rules.TickRate) / time.Second)
	if hold < 1 {
		hold = 1
	}

	return Model{
		backend:   backend,
		opts:      opts,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		rec:       replay.NewRecorder(),
		holdTicks: hold,
		releaseAt: make(map[string]int),
		screen:    core.NewScreen(playArea(opts.Width, opts.Height)),
	}
}

// playArea is the screen size left after the help line.
func playArea(width, height int) (int, int) {
	return max(width, 1), max(height-1, 1)
}

// Init requests the first session.
func (m Model) Init() tea.Cmd {
	return m.startSession()
}

func (m Model) startSession() tea.Cmd {
	backend, timeout := m.backend, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sess, err := backend.StartSession(ctx)
		return sessionMsg{sess: sess, err: err}
	}
}

func (m Model) submit(events []core.InputEvent) tea.Cmd {
	backend, timeout := m.backend, m.opts.Timeout
	id, name, claimed := m.sess.ID, m.opts.Player, m.sim.State().Score
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		v, err := backend.Submit(ctx, id, name, events, claimed)
		return verdictMsg{verdict: v, err: err}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Width, m.opts.Height = msg.Width, msg.Height
		m.screen.Resize(playArea(msg.Width, msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
			m.phase = phaseResult
			return m, nil
		}
		m.begin(msg.sess)
		return m, tickCmd(m.opts.Rules.TickRate)

	case TickMsg:
		if m.phase != phasePlaying {
			return m, nil
		}
		return m.handleTick()

	case verdictMsg:
		m.verdict, m.err = msg.verdict, msg.err
		m.phase = phaseResult
		return m, nil
	}

	return m, nil
}

// begin starts a fresh run on sess.
func (m *Model) begin(sess client.Session) {
	m.sess = sess
	m.sim = runner.New(m.opts.Runner, sess.Seed)
	m.rec.Reset()
	clear(m.releaseAt)
	m.verdict, m.err = client.Verdict{}, nil
	m.phase = phasePlaying
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart) && m.phase == phaseResult:
		m.phase = phaseConnecting
		return m, m.startSession()
	}

	if m.phase != phasePlaying {
		return m, nil
	}
	wire, ok := WireKey(msg)
	if !ok {
		return m, nil
	}

	// Auto-repeat extends the hold instead of producing new presses.
	tick := m.sim.State().Tick
	m.rec.Record(tick, wire, true)
	m.releaseAt[wire] = tick + m.holdTicks
	return m, nil
}

// handleTick releases expired holds, advances the simulation and submits
// once the runner dies.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	tick := m.sim.State().Tick
	for wire, at := range m.releaseAt {
		if at <= tick {
			m.rec.Record(tick, wire, false)
			delete(m.releaseAt, wire)
		}
	}

	m.sim.Step(m.rec.Keys())

	st := m.sim.State()
	if st.Dead {
		events := m.rec.Finish(st.Tick)
		clear(m.releaseAt)
		m.phase = phaseSubmitting
		return m, m.submit(events)
	}
	return m, tickCmd(m.opts.Rules.TickRate)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.sim != nil {
		runner.Render(m.screen, m.sim.State(), &m.opts.Runner)
	} else {
		m.screen.Clear()
	}

	switch m.phase {
	case phaseConnecting:
		runner.DrawMessage(m.screen, "CONNECTING", "requesting a session")
	case phaseSubmitting:
		runner.DrawMessage(m.screen, "GAME OVER", "verifying run...")
	case phaseResult:
		title, subtitle := m.resultText()
		runner.DrawMessage(m.screen, title, subtitle)
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

func (m Model) resultText() (string, string) {
	switch {
	case m.err != nil:
		return "ERROR", m.err.Error()
	case m.verdict.Success && m.verdict.Score != nil:
		return fmt.Sprintf("VERIFIED: %d", *m.verdict.Score), "press r for a new run"
	default:
		return "REJECTED", m.verdict.Error
	}
}

// Verdict returns the last verdict and backend error.
func (m Model) Verdict() (client.Verdict, error) {
	return m.verdict, m.err
}

// Run starts the Bubble Tea program with the given backend.
func Run(backend Backend, opts Options) error {
	p := tea.NewProgram(
		NewModel(backend, opts),
		tea.WithAltScreen(), // Use alternate screen buffer
	)
	_, err := p.Run()
	return err
}
