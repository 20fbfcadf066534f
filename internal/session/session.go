// Package session persists the signed-in admin between runs.
//
// A session is two independent entries, the user profile and the bearer
// token, each with its own expiry. A session only exists while both
// entries are present and unexpired.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
)

// DefaultTTL is how long a freshly stored session stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// ErrNoSession is returned by Store.Get when no valid session exists.
var ErrNoSession = errors.New("no session")

// Session is the authenticated identity of the current operator.
type Session struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// New creates a session expiring ttl after now.
func New(user domain.User, token string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		User:      user,
		Token:     token,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store is the injectable accessor for the persisted session.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the current session or ErrNoSession.
	Get(ctx context.Context) (*Session, error)

	// Set replaces the persisted session.
	Set(ctx context.Context, s *Session) error

	// Clear removes the persisted session. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Token returns the bearer token of the current session, or "" when
// there is none. Requests still go out without a token; the route guard
// is the only gate.
func Token(ctx context.Context, store Store) string {
	s, err := store.Get(ctx)
	if err != nil {
		return ""
	}
	return s.Token
}
