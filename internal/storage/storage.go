// Package storage persists play sessions and verified leaderboard entries.
//
// Sessions can live in SQLite, Redis or process memory; the leaderboard
// lives in SQLite (or memory for tests). Every backend implements session
// completion as a single conditional write so that one session can never
// be scored twice.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("storage: session not found")
	// ErrAlreadyCompleted is returned by MarkCompleted when the session was
	// already completed, including by a concurrent caller.
	ErrAlreadyCompleted = errors.New("storage: session already completed")
)

// Leaderboard query limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Session is a single play attempt. It is created completed=false and
// flips to true exactly once.
type Session struct {
	ID        string
	Seed      int64
	CreatedAt time.Time
	Completed bool
}

// ScoreEntry is a verified leaderboard record.
type ScoreEntry struct {
	ID         int64
	PlayerName string
	Score      int
	SessionID  string
	CreatedAt  time.Time
}

// Stats summarizes the leaderboard.
type Stats struct {
	Entries    int
	HighScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// SessionStore persists sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error
	Session(ctx context.Context, id string) (Session, error)
	// MarkCompleted atomically flips completed from false to true.
	MarkCompleted(ctx context.Context, id string) error
	// PurgeSessions deletes uncompleted sessions created before cutoff.
	PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// ScoreStore persists leaderboard entries.
type ScoreStore interface {
	SaveEntry(ctx context.Context, e ScoreEntry) (ScoreEntry, error)
	// TopScores returns entries by score descending; ties go to the
	// earlier entry.
	TopScores(ctx context.Context, limit int) ([]ScoreEntry, error)
	Stats(ctx context.Context) (Stats, error)
}

// Committer is implemented by stores that hold both sessions and scores.
// CompleteAndSave flips the session to completed and records e in one
// transaction: on any error neither write is visible. It reports
// ErrSessionNotFound and ErrAlreadyCompleted like MarkCompleted.
type Committer interface {
	CompleteAndSave(ctx context.Context, sessionID string, e ScoreEntry) (ScoreEntry, error)
}

// ClampLimit maps a requested leaderboard size into [1, MaxLimit],
// using DefaultLimit for non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
