// Package client talks to a verifier server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/core"
	"github.com/vovakirdan/arcade-verifier/internal/storage"
)

// ErrRateLimited is returned when the server refuses a new session.
var ErrRateLimited = errors.New("client: too many sessions, try again later")

// Client is a small API client. The zero value is not usable; call New.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: invalid server url %q", baseURL)
	}
	return &Client{
		base: strings.TrimRight(u.String(), "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Session is a started run.
type Session struct {
	ID   string `json:"sessionId"`
	Seed int64  `json:"seed"`
}

// Verdict is the server's answer to a submission.
type Verdict struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Score   *int   `json:"score,omitempty"`
}

// Rules is the published configuration.
type Rules struct {
	Rules       config.Rules  `json:"rules"`
	Runner      config.Runner `json:"runner"`
	Fingerprint string        `json:"fingerprint"`
}

type submitReq struct {
	SessionID   string            `json:"sessionId"`
	PlayerName  string            `json:"playerName"`
	InputEvents []core.InputEvent `json:"inputEvents"`
	Score       *int              `json:"score,omitempty"`
}

type entryRes struct {
	ID         int64     `json:"id"`
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StartSession asks the server for a session id and seed.
func (c *Client) StartSession(ctx context.Context) (Session, error) {
	var s Session
	status, err := c.do(ctx, http.MethodPost, "/api/sessions", nil, &s)
	if err != nil {
		return Session{}, err
	}
	switch {
	case status == http.StatusTooManyRequests:
		return Session{}, ErrRateLimited
	case status != http.StatusOK:
		return Session{}, fmt.Errorf("client: start session: status %d", status)
	}
	return s, nil
}

// Submit sends a finished run. A rejected run is not an error: it comes
// back as a Verdict with Success false and the server's reason.
func (c *Client) Submit(ctx context.Context, sessionID, name string, events []core.InputEvent, claimed int) (Verdict, error) {
	req := submitReq{
		SessionID:   sessionID,
		PlayerName:  name,
		InputEvents: events,
		Score:       &claimed,
	}
	var v Verdict
	status, err := c.do(ctx, http.MethodPost, "/api/scores", req, &v)
	if err != nil {
		return Verdict{}, err
	}
	if status >= 500 {
		return Verdict{}, fmt.Errorf("client: submit: status %d: %s", status, v.Error)
	}
	return v, nil
}

// Leaderboard fetches the top limit entries.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]storage.ScoreEntry, error) {
	var rows []entryRes
	status, err := c.do(ctx, http.MethodGet, "/api/leaderboard?limit="+strconv.Itoa(limit), nil, &rows)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("client: leaderboard: status %d", status)
	}
	out := make([]storage.ScoreEntry, len(rows))
	for i, r := range rows {
		out[i] = storage.ScoreEntry{
			ID:         r.ID,
			PlayerName: r.PlayerName,
			Score:      r.Score,
			CreatedAt:  r.CreatedAt,
		}
	}
	return out, nil
}

// Rules fetches the server's published configuration.
func (c *Client) Rules(ctx context.Context) (Rules, error) {
	var r Rules
	status, err := c.do(ctx, http.MethodGet, "/api/rules", nil, &r)
	if err != nil {
		return Rules{}, err
	}
	if status != http.StatusOK {
		return Rules{}, fmt.Errorf("client: rules: status %d", status)
	}
	return r, nil
}

// do sends body as JSON and decodes the response into out. The status is
// returned so callers can decide which codes carry a usable body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("client: encode: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return 0, fmt.Errorf("client: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.StatusCode == http.StatusOK {
		return resp.StatusCode, fmt.Errorf("client: decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}
