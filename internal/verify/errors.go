package verify

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected submission.
type Kind int

const (
	// KindValidation covers malformed names and input logs.
	KindValidation Kind = iota + 1
	// KindSession covers unknown, expired and already used sessions.
	KindSession
	// KindImplausible covers replays that do not describe a real run.
	KindImplausible
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSession:
		return "session"
	case KindImplausible:
		return "implausible"
	default:
		return "unknown"
	}
}

// PublicImplausible is the only message clients see for implausible runs.
const PublicImplausible = "score could not be verified"

// Validation failures.
var (
	ErrInvalidName   = errors.New("invalid player name")
	ErrInvalidEvents = errors.New("invalid input events")
	ErrTooManyEvents = errors.New("too many input events")
)

// Session failures.
var (
	ErrInvalidSession   = errors.New("invalid session")
	ErrAlreadySubmitted = errors.New("already submitted")
	ErrSessionExpired   = errors.New("session expired")
)

// Implausibility failures. These are logged, never shown to clients.
var (
	ErrNotDead          = errors.New("run did not end in death")
	ErrInvalidTiming    = errors.New("replay duration exceeds elapsed time")
	ErrScoreOutOfBounds = errors.New("score out of bounds")
)

// Rejection is a submission refused for a reason attributable to the
// client. Any other error from Submit is an infrastructure failure.
type Rejection struct {
	Kind   Kind
	Err    error  // One of the sentinels above
	Detail string // Server-side context, never sent to clients
}

func reject(kind Kind, err error, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Err: err, Detail: fmt.Sprintf(format, args...)}
}

// Error implements error.
func (r *Rejection) Error() string {
	if r.Detail == "" {
		return "verify: " + r.Err.Error()
	}
	return fmt.Sprintf("verify: %v: %s", r.Err, r.Detail)
}

// Unwrap returns the sentinel.
func (r *Rejection) Unwrap() error {
	return r.Err
}

// Public returns the message safe to send to the client.
func (r *Rejection) Public() string {
	if r.Kind == KindImplausible {
		return PublicImplausible
	}
	return r.Err.Error()
}

// AsRejection unwraps err into a *Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	ok := errors.As(err, &r)
	return r, ok
}
