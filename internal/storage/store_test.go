package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// backends returns every store that implements both interfaces.
func backends(t *testing.T) map[string]interface {
	SessionStore
	ScoreStore
} {
	return map[string]interface {
		SessionStore
		ScoreStore
	}{
		"sqlite": openTestStore(t),
		"memory": NewMemory(),
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	created := time.UnixMilli(1700000000000)

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Session(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}

			if err := store.CreateSession(ctx, Session{ID: "abc", Seed: 12345, CreatedAt: created}); err != nil {
				t.Fatalf("CreateSession() failed: %v", err)
			}

			sess, err := store.Session(ctx, "abc")
			if err != nil {
				t.Fatalf("Session() failed: %v", err)
			}
			if sess.Seed != 12345 || sess.Completed || !sess.CreatedAt.Equal(created) {
				t.Errorf("Unexpected session: %+v", sess)
			}

			if err := store.MarkCompleted(ctx, "abc"); err != nil {
				t.Fatalf("MarkCompleted() failed: %v", err)
			}
			if err := store.MarkCompleted(ctx, "abc"); !errors.Is(err, ErrAlreadyCompleted) {
				t.Errorf("Expected ErrAlreadyCompleted, got %v", err)
			}
			if err := store.MarkCompleted(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}

			sess, err = store.Session(ctx, "abc")
			if err != nil {
				t.Fatalf("Session() failed: %v", err)
			}
			if !sess.Completed {
				t.Error("Expected session to be completed")
			}
		})
	}
}

func TestMarkCompletedConcurrent(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.CreateSession(ctx, Session{ID: "race", Seed: 1, CreatedAt: time.Now()}); err != nil {
				t.Fatalf("CreateSession() failed: %v", err)
			}

			const workers = 16
			var wg sync.WaitGroup
			var mu sync.Mutex
			wins, losses := 0, 0

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := store.MarkCompleted(ctx, "race")
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						wins++
					case errors.Is(err, ErrAlreadyCompleted):
						losses++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			if wins != 1 || losses != workers-1 {
				t.Errorf("Expected exactly one winner, got wins=%d losses=%d", wins, losses)
			}
		})
	}
}

func TestPurgeSessions(t *testing.T) {
	ctx := context.Background()
	base := time.UnixMilli(1700000000000)

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			sessions := []Session{
				{ID: "old-open", CreatedAt: base},
				{ID: "old-done", CreatedAt: base},
				{ID: "fresh", CreatedAt: base.Add(time.Hour)},
			}
			for _, s := range sessions {
				if err := store.CreateSession(ctx, s); err != nil {
					t.Fatalf("CreateSession() failed: %v", err)
				}
			}
			if err := store.MarkCompleted(ctx, "old-done"); err != nil {
				t.Fatalf("MarkCompleted() failed: %v", err)
			}

			n, err := store.PurgeSessions(ctx, base.Add(time.Minute))
			if err != nil {
				t.Fatalf("PurgeSessions() failed: %v", err)
			}
			if n != 1 {
				t.Errorf("Expected 1 purged session, got %d", n)
			}

			if _, err := store.Session(ctx, "old-open"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected stale session to be gone, got %v", err)
			}
			for _, id := range []string{"old-done", "fresh"} {
				if _, err := store.Session(ctx, id); err != nil {
					t.Errorf("Expected %s to survive, got %v", id, err)
				}
			}
		})
	}
}

func TestTopScores(t *testing.T) {
	ctx := context.Background()
	base := time.UnixMilli(1700000000000)

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			entries := []ScoreEntry{
				{PlayerName: "first", Score: 100, CreatedAt: base},
				{PlayerName: "low", Score: 50, CreatedAt: base.Add(1 * time.Second)},
				{PlayerName: "high", Score: 200, CreatedAt: base.Add(2 * time.Second)},
				{PlayerName: "second", Score: 100, CreatedAt: base.Add(3 * time.Second)},
			}
			for i, e := range entries {
				e.SessionID = fmt.Sprintf("s%d", i)
				saved, err := store.SaveEntry(ctx, e)
				if err != nil {
					t.Fatalf("SaveEntry() failed: %v", err)
				}
				if saved.ID == 0 {
					t.Error("Expected saved entry to carry an ID")
				}
			}

			scores, err := store.TopScores(ctx, 10)
			if err != nil {
				t.Fatalf("TopScores() failed: %v", err)
			}

			want := []string{"high", "first", "second", "low"}
			if len(scores) != len(want) {
				t.Fatalf("Expected %d scores, got %d", len(want), len(scores))
			}
			for i, name := range want {
				if scores[i].PlayerName != name {
					t.Errorf("Position %d: expected %s, got %s", i, name, scores[i].PlayerName)
				}
			}

			top, err := store.TopScores(ctx, 2)
			if err != nil {
				t.Fatalf("TopScores() failed: %v", err)
			}
			if len(top) != 2 || top[0].Score != 200 || top[1].Score != 100 {
				t.Errorf("Scores not in expected order: %v", top)
			}

			stats, err := store.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats() failed: %v", err)
			}
			if stats.Entries != 4 || stats.HighScore != 200 || stats.AvgScore != 112.5 {
				t.Errorf("Unexpected stats: %+v", stats)
			}
			if !stats.LastPlayed.Equal(base.Add(3 * time.Second)) {
				t.Errorf("Expected last played %v, got %v", base.Add(3*time.Second), stats.LastPlayed)
			}
		})
	}
}

func TestEmptyStats(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			stats, err := store.Stats(context.Background())
			if err != nil {
				t.Fatalf("Stats() failed: %v", err)
			}
			if stats.Entries != 0 || stats.HighScore != 0 || !stats.LastPlayed.IsZero() {
				t.Errorf("Expected empty stats, got %+v", stats)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, DefaultLimit},
		{0, DefaultLimit},
		{1, 1},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}

	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCompleteAndSave(t *testing.T) {
	ctx := context.Background()
	created := time.UnixMilli(1700000000000)

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c, ok := store.(Committer)
			if !ok {
				t.Fatalf("%s store does not implement Committer", name)
			}
			for _, id := range []string{"ok", "taken"} {
				if err := store.CreateSession(ctx, Session{ID: id, Seed: 1, CreatedAt: created}); err != nil {
					t.Fatalf("CreateSession(%s) failed: %v", id, err)
				}
			}

			saved, err := c.CompleteAndSave(ctx, "ok", ScoreEntry{PlayerName: "ada", Score: 42, CreatedAt: created})
			if err != nil {
				t.Fatalf("CompleteAndSave() failed: %v", err)
			}
			if saved.ID == 0 || saved.SessionID != "ok" {
				t.Errorf("Unexpected entry %+v", saved)
			}
			if _, err := c.CompleteAndSave(ctx, "ok", ScoreEntry{PlayerName: "ada", Score: 99, CreatedAt: created}); !errors.Is(err, ErrAlreadyCompleted) {
				t.Errorf("Expected ErrAlreadyCompleted, got %v", err)
			}
			if _, err := c.CompleteAndSave(ctx, "missing", ScoreEntry{PlayerName: "ada", CreatedAt: created}); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}

			// A failing insert must leave the session open.
			if _, err := store.SaveEntry(ctx, ScoreEntry{PlayerName: "bob", Score: 7, SessionID: "taken", CreatedAt: created}); err != nil {
				t.Fatalf("SaveEntry() failed: %v", err)
			}
			if _, err := c.CompleteAndSave(ctx, "taken", ScoreEntry{PlayerName: "bob", Score: 8, CreatedAt: created}); err == nil {
				t.Fatal("Expected an error for a session that already has a score")
			}
			sess, err := store.Session(ctx, "taken")
			if err != nil {
				t.Fatalf("Session() failed: %v", err)
			}
			if sess.Completed {
				t.Error("Session was completed although its score was not saved")
			}

			top, err := store.TopScores(ctx, 10)
			if err != nil {
				t.Fatalf("TopScores() failed: %v", err)
			}
			if len(top) != 2 {
				t.Errorf("Expected 2 entries, got %d", len(top))
			}
		})
	}
}
