package session

import (
	"errors"
	"log/slog"
	"time"
)

// Errors
var (
	ErrTimeout        = errors.New("timed out awaiting response")
	ErrSessionExpired = errors.New("session expired")
	ErrClosed         = errors.New("session closed")
	ErrNoRecipients   = errors.New("no eligible recipients")
)

// DefaultAskTimeout bounds how long Ask waits for a human answer when
// no explicit timeout is given.
const DefaultAskTimeout = 5 * time.Minute

// Option configures a Session at construction.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSenderID sets the agent identity stamped on outbound messages.
func WithSenderID(id string) Option {
	return func(s *Session) { s.senderID = id }
}

// WithAskTimeout sets the default deadline for Ask calls.
func WithAskTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.askTimeout = d
		}
	}
}

// WithRecipients records the conversation's eligible recipient count.
// Sessions built without it skip the recipient check.
func WithRecipients(n int) Option {
	return func(s *Session) { s.recipients = n }
}

type callSettings struct {
	persist bool
	timeout time.Duration
}

// CallOption configures a single Log or Ask call.
type CallOption func(*callSettings)

// WithPersist controls whether the server stores the message. Defaults
// to true.
func WithPersist(p bool) CallOption {
	return func(cs *callSettings) { cs.persist = p }
}

// WithTimeout overrides the deadline for one Ask call. Log ignores it.
func WithTimeout(d time.Duration) CallOption {
	return func(cs *callSettings) {
		if d > 0 {
			cs.timeout = d
		}
	}
}

// Stats reports outstanding correlation state.
type Stats struct {
	PendingAcks      int
	PendingQuestions int
}
