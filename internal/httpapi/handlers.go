package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/storage"
	"github.com/vovakirdan/arcade-verifier/internal/verify"
)

type sessionRes struct {
	SessionID string `json:"sessionId"`
	Seed      int64  `json:"seed"`
}

type submitRes struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Score   *int   `json:"score,omitempty"`
}

type entryRes struct {
	ID         int64     `json:"id"`
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
}

type rulesRes struct {
	Rules       config.Rules  `json:"rules"`
	Runner      config.Runner `json:"runner"`
	Fingerprint string        `json:"fingerprint"`
}

// handleCreateSession issues a session id and seed.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.cfg.Sessions.Create(r.Context())
	if err != nil {
		s.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, sessionRes{SessionID: sess.ID, Seed: sess.Seed})
}

// handleSubmitScore runs the verification pipeline. The body is capped at
// rules.MaxBodyBytes before it is decoded.
func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.rules.MaxBodyBytes)

	var sub verify.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, submitRes{Error: "request too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, submitRes{Error: "invalid request"})
		return
	}

	out, err := s.cfg.Pipeline.Submit(r.Context(), sub)
	if err != nil {
		if rej, ok := verify.AsRejection(err); ok {
			writeJSON(w, rejectionStatus(rej), submitRes{Error: rej.Public()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, submitRes{Error: "internal error"})
		return
	}

	score := out.Entry.Score
	writeJSON(w, http.StatusOK, submitRes{Success: true, Score: &score})
}

// rejectionStatus maps a rejection kind to an HTTP status.
func rejectionStatus(rej *verify.Rejection) int {
	switch rej.Kind {
	case verify.KindValidation:
		return http.StatusBadRequest
	case verify.KindSession:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

// handleLeaderboard returns the top entries.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := storage.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = storage.ClampLimit(n)
	}

	entries, err := s.cfg.Scores.TopScores(r.Context(), limit)
	if err != nil {
		s.logger.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]entryRes, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryRes{
			ID:         e.ID,
			PlayerName: e.PlayerName,
			Score:      e.Score,
			CreatedAt:  e.CreatedAt.UTC(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRules publishes everything a client needs to simulate identically.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rulesRes{
		Rules:       s.rules,
		Runner:      s.cfg.Runner,
		Fingerprint: config.Fingerprint(s.rules, s.cfg.Runner),
	})
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// clientKey identifies the caller for rate limiting. RealIP has already
// replaced RemoteAddr with the forwarded address when present.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
