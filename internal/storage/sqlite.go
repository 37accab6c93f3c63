package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store is the SQLite backend for sessions and the leaderboard.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
type Store struct {
	db *sql.DB
}

var (
	_ SessionStore = (*Store)(nil)
	_ ScoreStore   = (*Store)(nil)
	_ Committer    = (*Store)(nil)
)

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := ExpandPath(dbPath)
	if err != nil {
		return nil, err
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// A single connection serializes writers; SQLite allows only one
	// at a time anyway and this avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
// Timestamps are unix milliseconds.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(completed, created_at);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			session_id TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC, created_at ASC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSession inserts a new session.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, seed, created_at, completed) VALUES (?, ?, ?, ?)",
		sess.ID, sess.Seed, sess.CreatedAt.UnixMilli(), sess.Completed,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot create session: %w", err)
	}
	return nil
}

// Session loads a session by id.
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	var sess Session
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, seed, created_at, completed FROM sessions WHERE id = ?",
		id,
	).Scan(&sess.ID, &sess.Seed, &createdAt, &sess.Completed)

	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("storage: cannot query session: %w", err)
	}

	sess.CreatedAt = time.UnixMilli(createdAt)
	return sess, nil
}

// MarkCompleted flips completed with a conditional update. Zero affected
// rows means the session is missing or another caller got there first.
func (s *Store) MarkCompleted(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET completed = 1 WHERE id = ? AND completed = 0",
		id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot complete session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	if _, err := s.Session(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyCompleted
}

// PurgeSessions deletes uncompleted sessions created before cutoff.
// Completed sessions are kept so that late resubmissions still read as
// already submitted.
func (s *Store) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE completed = 0 AND created_at < ?",
		cutoff.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// SaveEntry records a verified score and returns it with its ID set.
func (s *Store) SaveEntry(ctx context.Context, e ScoreEntry) (ScoreEntry, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO scores (player_name, score, session_id, created_at) VALUES (?, ?, ?, ?)",
		e.PlayerName, e.Score, e.SessionID, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	e.ID = id
	return e, nil
}

// CompleteAndSave completes the session and inserts its score in one
// transaction. All statements go through tx: the pool has one connection.
func (s *Store) CompleteAndSave(ctx context.Context, sessionID string, e ScoreEntry) (ScoreEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE sessions SET completed = 1 WHERE id = ? AND completed = 0",
		sessionID,
	)
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot complete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n != 1 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", sessionID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ScoreEntry{}, ErrSessionNotFound
		}
		if err != nil {
			return ScoreEntry{}, fmt.Errorf("storage: cannot query session: %w", err)
		}
		return ScoreEntry{}, ErrAlreadyCompleted
	}

	e.SessionID = sessionID
	result, err := tx.ExecContext(ctx,
		"INSERT INTO scores (player_name, score, session_id, created_at) VALUES (?, ?, ?, ?)",
		e.PlayerName, e.Score, e.SessionID, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot save score: %w", err)
	}
	if e.ID, err = result.LastInsertId(); err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ScoreEntry{}, fmt.Errorf("storage: cannot commit: %w", err)
	}
	return e, nil
}

// TopScores retrieves the top N entries.
func (s *Store) TopScores(ctx context.Context, limit int) ([]ScoreEntry, error) {
	limit = ClampLimit(limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_name, score, session_id, created_at
		 FROM scores
		 ORDER BY score DESC, created_at ASC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	entries := make([]ScoreEntry, 0, limit)
	for rows.Next() {
		var e ScoreEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.PlayerName, &e.Score, &e.SessionID, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Stats returns aggregated leaderboard statistics.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var lastPlayed int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(MAX(created_at), 0)
		 FROM scores`,
	).Scan(&st.Entries, &st.HighScore, &st.AvgScore, &lastPlayed)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot get stats: %w", err)
	}

	if lastPlayed > 0 {
		st.LastPlayed = time.UnixMilli(lastPlayed)
	}
	return st, nil
}
