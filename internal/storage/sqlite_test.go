package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	created := time.UnixMilli(1700000000123)

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.CreateSession(ctx, Session{ID: "s1", Seed: 77, CreatedAt: created}); err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	if _, err := store.SaveEntry(ctx, ScoreEntry{PlayerName: "ada", Score: 5, SessionID: "s1", CreatedAt: created}); err != nil {
		t.Fatalf("SaveEntry() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	sess, err := store.Session(ctx, "s1")
	if err != nil {
		t.Fatalf("Session() failed: %v", err)
	}
	if sess.Seed != 77 || !sess.CreatedAt.Equal(created) {
		t.Errorf("Session not persisted intact: %+v", sess)
	}

	scores, err := store.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 1 || scores[0].PlayerName != "ada" {
		t.Errorf("Expected persisted entry, got %v", scores)
	}
}

func TestStoreRejectsDuplicateSessionScore(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now()

	if _, err := store.SaveEntry(ctx, ScoreEntry{PlayerName: "a", Score: 1, SessionID: "s", CreatedAt: now}); err != nil {
		t.Fatalf("SaveEntry() failed: %v", err)
	}
	if _, err := store.SaveEntry(ctx, ScoreEntry{PlayerName: "b", Score: 2, SessionID: "s", CreatedAt: now}); err == nil {
		t.Error("Expected second entry for one session to fail")
	}
}
