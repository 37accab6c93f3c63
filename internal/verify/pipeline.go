// Package verify decides whether a submitted run is genuine and, if so,
// records it on the leaderboard. The client's claimed score is never
// trusted; the recorded score is the one the server replay produces.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/replay"
	"github.com/vovakirdan/arcade-verifier/internal/session"
	"github.com/vovakirdan/arcade-verifier/internal/storage"
)

// Submission is a client's claim that it finished a session.
type Submission struct {
	SessionID   string          `json:"sessionId"`
	PlayerName  string          `json:"playerName"`
	InputEvents json.RawMessage `json:"inputEvents"`
	// Score is what the client believes it scored. It is only logged.
	Score *int `json:"score,omitempty"`
}

// Outcome describes an accepted submission.
type Outcome struct {
	Entry  storage.ScoreEntry
	Replay replay.Result
}

// Pipeline runs the verification gate.
type Pipeline struct {
	sessions *session.Manager
	scores   storage.ScoreStore
	rules    config.Rules
	runner   config.Runner
	logger   *log.Logger
}

// NewPipeline creates a pipeline. The rules come from the session manager
// so that expiry and replay limits always agree.
func NewPipeline(sessions *session.Manager, scores storage.ScoreStore, runner config.Runner, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		sessions: sessions,
		scores:   scores,
		rules:    sessions.Rules(),
		runner:   runner,
		logger:   logger,
	}
}

// Submit verifies sub and records it. Checks run in a fixed order and the
// first failure returns a *Rejection with nothing written. Errors that are
// not a *Rejection are infrastructure failures.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (Outcome, error) {
	out, err := p.submit(ctx, sub)
	if err != nil {
		if r, ok := AsRejection(err); ok {
			p.logger.Warn("submission rejected",
				"session", sub.SessionID,
				"kind", r.Kind,
				"reason", r.Err,
				"detail", r.Detail,
			)
		} else {
			p.logger.Error("submission failed", "session", sub.SessionID, "error", err)
		}
		return Outcome{}, err
	}

	p.logger.Info("score recorded",
		"session", sub.SessionID,
		"player", out.Entry.PlayerName,
		"score", out.Entry.Score,
		"ticks", out.Replay.TotalTicks,
	)
	return out, nil
}

func (p *Pipeline) submit(ctx context.Context, sub Submission) (Outcome, error) {
	// 1-2: shape of the request
	name, err := SanitizeName(sub.PlayerName, p.rules.MaxNameLength)
	if err != nil {
		return Outcome{}, err
	}
	events, err := ParseEvents(sub.InputEvents, p.rules)
	if err != nil {
		return Outcome{}, err
	}

	// 3-5: session state
	sess, err := p.sessions.Get(ctx, sub.SessionID)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return Outcome{}, reject(KindSession, ErrInvalidSession, "unknown id %q", sub.SessionID)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("verify: load session: %w", err)
	}
	if sess.Completed {
		return Outcome{}, reject(KindSession, ErrAlreadySubmitted, "")
	}
	now := p.sessions.Now()
	if p.sessions.Expired(sess, now) {
		return Outcome{}, reject(KindSession, ErrSessionExpired, "created %s ago", p.sessions.Elapsed(sess, now))
	}

	// 6: replay with the server's seed
	res, err := replay.Run(p.rules, p.runner, sess.Seed, events)
	switch {
	case errors.Is(err, replay.ErrTooManyEvents):
		return Outcome{}, reject(KindValidation, ErrTooManyEvents, "%v", err)
	case errors.Is(err, replay.ErrTickOutOfRange):
		return Outcome{}, reject(KindValidation, ErrInvalidEvents, "%v", err)
	case err != nil:
		return Outcome{}, fmt.Errorf("verify: replay: %w", err)
	}

	// 7-9: plausibility
	if !res.IsDead {
		return Outcome{}, reject(KindImplausible, ErrNotDead, "stopped alive after %d ticks", res.TotalTicks)
	}
	elapsedMs := p.sessions.Elapsed(sess, now).Milliseconds()
	if durationMs := res.DurationMs(p.rules); durationMs > elapsedMs+p.rules.TimingToleranceMs {
		return Outcome{}, reject(KindImplausible, ErrInvalidTiming,
			"replay %dms, elapsed %dms, tolerance %dms", durationMs, elapsedMs, p.rules.TimingToleranceMs)
	}
	if res.Score < 0 || res.Score > p.rules.MaxScore {
		return Outcome{}, reject(KindImplausible, ErrScoreOutOfBounds, "score %d, max %d", res.Score, p.rules.MaxScore)
	}

	if sub.Score != nil && *sub.Score != res.Score {
		p.logger.Info("claimed score differs from replay",
			"session", sess.ID,
			"claimed", *sub.Score,
			"verified", res.Score,
		)
	}

	// 10: commit
	entry, err := p.sessions.Commit(ctx, sess.ID, p.scores, storage.ScoreEntry{
		PlayerName: name,
		Score:      res.Score,
		CreatedAt:  now,
	})
	switch {
	case errors.Is(err, storage.ErrAlreadyCompleted):
		return Outcome{}, reject(KindSession, ErrAlreadySubmitted, "lost completion race")
	case errors.Is(err, storage.ErrSessionNotFound):
		return Outcome{}, reject(KindSession, ErrInvalidSession, "session vanished before completion")
	case err != nil:
		return Outcome{}, fmt.Errorf("verify: commit: %w", err)
	}

	return Outcome{Entry: entry, Replay: res}, nil
}
