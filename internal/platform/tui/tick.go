// Package tui is the terminal client: it plays runs live, records the
// input log, submits it for verification and shows the leaderboard.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger one simulation tick.
type TickMsg time.Time

// tickCmd schedules the next tick. tea.Tick never fires early, so a live
// run cannot take less wall time than its replay.
func tickCmd(tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
