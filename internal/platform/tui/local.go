package tui

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/arcade-verifier/internal/client"
	"github.com/vovakirdan/arcade-verifier/internal/core"
	"github.com/vovakirdan/arcade-verifier/internal/session"
	"github.com/vovakirdan/arcade-verifier/internal/verify"
)

// LocalBackend runs the verifier in process, for offline play against a
// local database. Runs go through the same pipeline as remote ones.
type LocalBackend struct {
	Sessions *session.Manager
	Pipeline *verify.Pipeline
}

// StartSession creates a session in the local store.
func (b LocalBackend) StartSession(ctx context.Context) (client.Session, error) {
	s, err := b.Sessions.Create(ctx)
	if err != nil {
		return client.Session{}, err
	}
	return client.Session{ID: s.ID, Seed: s.Seed}, nil
}

// Submit verifies a run locally. Rejections become unsuccessful verdicts.
func (b LocalBackend) Submit(ctx context.Context, sessionID, name string, events []core.InputEvent, claimed int) (client.Verdict, error) {
	raw, err := json.Marshal(events)
	if err != nil {
		return client.Verdict{}, fmt.Errorf("tui: encode events: %w", err)
	}

	out, err := b.Pipeline.Submit(ctx, verify.Submission{
		SessionID:   sessionID,
		PlayerName:  name,
		InputEvents: raw,
		Score:       &claimed,
	})
	if err != nil {
		if rej, ok := verify.AsRejection(err); ok {
			return client.Verdict{Error: rej.Public()}, nil
		}
		return client.Verdict{}, err
	}
	score := out.Entry.Score
	return client.Verdict{Success: true, Score: &score}, nil
}
