package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory keeps sessions and scores in process memory. It backs tests and
// single-process deployments that do not need durability.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]Session
	scores   []ScoreEntry
	nextID   int64
}

var (
	_ SessionStore = (*Memory)(nil)
	_ ScoreStore   = (*Memory)(nil)
	_ Committer    = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]Session)}
}

// CreateSession stores a new session. Duplicate ids are rejected.
func (m *Memory) CreateSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("storage: cannot create session: duplicate id %s", s.ID)
	}
	m.sessions[s.ID] = s
	return nil
}

// Session loads a session by id.
func (m *Memory) Session(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// MarkCompleted flips completed under the store lock.
func (m *Memory) MarkCompleted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if s.Completed {
		return ErrAlreadyCompleted
	}
	s.Completed = true
	m.sessions[id] = s
	return nil
}

// PurgeSessions deletes uncompleted sessions created before cutoff.
func (m *Memory) PurgeSessions(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if !s.Completed && s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// SaveEntry appends a leaderboard entry.
func (m *Memory) SaveEntry(_ context.Context, e ScoreEntry) (ScoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.scores {
		if existing.SessionID == e.SessionID {
			return ScoreEntry{}, fmt.Errorf("storage: cannot save score: session %s already scored", e.SessionID)
		}
	}

	m.nextID++
	e.ID = m.nextID
	m.scores = append(m.scores, e)
	return e, nil
}

// CompleteAndSave completes the session and appends its entry under one
// lock hold, checking both writes before making either.
func (m *Memory) CompleteAndSave(_ context.Context, sessionID string, e ScoreEntry) (ScoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return ScoreEntry{}, ErrSessionNotFound
	}
	if s.Completed {
		return ScoreEntry{}, ErrAlreadyCompleted
	}
	for _, existing := range m.scores {
		if existing.SessionID == sessionID {
			return ScoreEntry{}, fmt.Errorf("storage: cannot save score: session %s already scored", sessionID)
		}
	}

	s.Completed = true
	m.sessions[sessionID] = s
	m.nextID++
	e.ID = m.nextID
	e.SessionID = sessionID
	m.scores = append(m.scores, e)
	return e, nil
}

// TopScores returns the best entries, earlier entries first on ties.
func (m *Memory) TopScores(_ context.Context, limit int) ([]ScoreEntry, error) {
	m.mu.Lock()
	sorted := make([]ScoreEntry, len(m.scores))
	copy(sorted, m.scores)
	m.mu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if limit = ClampLimit(limit); len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// Stats returns aggregated leaderboard statistics.
func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var st Stats
	var total int
	for _, e := range m.scores {
		st.Entries++
		total += e.Score
		st.HighScore = max(st.HighScore, e.Score)
		if e.CreatedAt.After(st.LastPlayed) {
			st.LastPlayed = e.CreatedAt
		}
	}
	if st.Entries > 0 {
		st.AvgScore = float64(total) / float64(st.Entries)
	}
	return st, nil
}
