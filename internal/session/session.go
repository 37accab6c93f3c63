// Package session issues play sessions and enforces their lifecycle:
// each session carries a server-chosen seed, may be submitted once, and
// only within the expiry window.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/prng"
	"github.com/vovakirdan/arcade-verifier/internal/storage"
)

// Manager creates sessions and guards their completion.
type Manager struct {
	store  storage.SessionStore
	rules  config.Rules
	logger *log.Logger

	now     func() time.Time
	newSeed func() (int64, error)
	newID   func() string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithSeedSource replaces the crypto/rand seed source.
func WithSeedSource(seed func() (int64, error)) Option {
	return func(m *Manager) { m.newSeed = seed }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a Manager over store.
func NewManager(store storage.SessionStore, rules config.Rules, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		rules:   rules,
		logger:  log.Default(),
		now:     time.Now,
		newSeed: prng.RandomSeed,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Rules returns the rules the manager enforces.
func (m *Manager) Rules() config.Rules {
	return m.rules
}

// Create starts a new session with a fresh seed.
func (m *Manager) Create(ctx context.Context) (storage.Session, error) {
	seed, err := m.newSeed()
	if err != nil {
		return storage.Session{}, fmt.Errorf("session: cannot draw seed: %w", err)
	}

	s := storage.Session{
		ID:        m.newID(),
		Seed:      seed,
		CreatedAt: m.now(),
	}
	if err := m.store.CreateSession(ctx, s); err != nil {
		return storage.Session{}, fmt.Errorf("session: %w", err)
	}

	m.logger.Debug("session created", "id", s.ID)
	return s, nil
}

// Get loads a session. Unknown ids return storage.ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, id string) (storage.Session, error) {
	s, err := m.store.Session(ctx, id)
	if err != nil {
		return storage.Session{}, fmt.Errorf("session: %w", err)
	}
	return s, nil
}

// Expired reports whether more than the expiry window has passed between
// the session's creation and now.
func (m *Manager) Expired(s storage.Session, now time.Time) bool {
	return now.Sub(s.CreatedAt) > m.rules.SessionExpiry()
}

// Elapsed returns the wall-clock time since the session was created.
func (m *Manager) Elapsed(s storage.Session, now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// MarkCompleted flips the session to completed. Exactly one caller wins;
// the rest get storage.ErrAlreadyCompleted.
func (m *Manager) MarkCompleted(ctx context.Context, id string) error {
	if err := m.store.MarkCompleted(ctx, id); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// Commit completes session id and saves e to scores. When scores is the
// session store itself and implements storage.Committer, both writes
// share a transaction. Otherwise the session is completed first, so a
// failed save leaves it consumed but never scorable twice.
func (m *Manager) Commit(ctx context.Context, id string, scores storage.ScoreStore, e storage.ScoreEntry) (storage.ScoreEntry, error) {
	if c, ok := m.committer(scores); ok {
		saved, err := c.CompleteAndSave(ctx, id, e)
		if err != nil {
			return storage.ScoreEntry{}, fmt.Errorf("session: %w", err)
		}
		return saved, nil
	}

	if err := m.MarkCompleted(ctx, id); err != nil {
		return storage.ScoreEntry{}, err
	}
	e.SessionID = id
	saved, err := scores.SaveEntry(ctx, e)
	if err != nil {
		m.logger.Error("session completed but score not saved", "id", id, "error", err)
		return storage.ScoreEntry{}, fmt.Errorf("session: %w", err)
	}
	return saved, nil
}

func (m *Manager) committer(scores storage.ScoreStore) (storage.Committer, bool) {
	sc, ok := scores.(storage.Committer)
	if !ok {
		return nil, false
	}
	mc, ok := m.store.(storage.Committer)
	return sc, ok && mc == sc
}

// Purge deletes uncompleted sessions older than olderThan.
func (m *Manager) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := m.store.PurgeSessions(ctx, m.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("session: %w", err)
	}
	if n > 0 {
		m.logger.Info("purged stale sessions", "count", n)
	}
	return n, nil
}

// RunJanitor purges sessions older than twice the expiry window every
// interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Purge(ctx, 2*m.rules.SessionExpiry()); err != nil {
				m.logger.Warn("session purge failed", "error", err)
			}
		}
	}
}
