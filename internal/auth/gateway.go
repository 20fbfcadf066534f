// Package auth implements login and logout against the admin API and the
// route guard that keeps protected views behind a persisted session.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/felixgeelhaar/rezai-admin/internal/api"
	"github.com/felixgeelhaar/rezai-admin/internal/cache"
	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/log"
	"github.com/felixgeelhaar/rezai-admin/internal/notify"
	"github.com/felixgeelhaar/rezai-admin/internal/session"
)

const (
	MsgLoginSuccess  = "Login successful!"
	MsgLogoutSuccess = "Logged out successfully."
)

// Credentials are the email and password submitted on login.
type Credentials struct {
	Email    string
	Password string
}

// Validate checks that both fields are present.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return errors.NewValidationError(errors.ErrCodeValidationFailed, "Email is required")
	}
	if c.Password == "" {
		return errors.NewValidationError(errors.ErrCodeValidationFailed, "Password is required")
	}
	return nil
}

// LoginClient is the part of the API client the gateway needs.
type LoginClient interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
}

// Gateway wraps login and logout and drives the guard.
type Gateway struct {
	client   LoginClient
	store    session.Store
	cache    *cache.Cache
	guard    *Guard
	notifier notify.Notifier
	logger   *log.Logger
	ttl      time.Duration
	now      func() time.Time
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithNotifier sets where login/logout toasts go.
func WithNotifier(n notify.Notifier) GatewayOption {
	return func(g *Gateway) { g.notifier = n }
}

// WithLogger sets the gateway logger.
func WithLogger(l *log.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

// WithClock overrides the time source used to stamp session expiry.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) GatewayOption {
	return func(g *Gateway) { g.ttl = ttl }
}

// NewGateway creates a gateway. c may be nil when nothing is cached.
func NewGateway(client LoginClient, store session.Store, c *cache.Cache, guard *Guard, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client: client,
		store:  store,
		cache:  c,
		guard:  guard,
		logger: log.Discard(),
		ttl:    session.DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Guard returns the guard this gateway drives.
func (g *Gateway) Guard() *Guard {
	return g.guard
}

// Login submits the credentials and persists the resulting session.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (*session.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	resp, err := g.client.Login(ctx, strings.TrimSpace(creds.Email), creds.Password)
	if err != nil {
		authErr := errors.NewAuthError(api.ServerMessage(err), err)
		g.logger.WithError(authErr).Warn("login failed")
		notify.Error(g.notifier, authErr.Message)
		return nil, authErr
	}
	if resp == nil || resp.User == nil || resp.Token == "" {
		authErr := errors.NewInvalidLoginResponseError()
		notify.Error(g.notifier, authErr.Message)
		return nil, authErr
	}

	s := session.New(*resp.User, resp.Token, g.now(), g.ttl)
	if err := g.store.Set(ctx, s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuthSessionCorrupt, "failed to persist session", err)
	}

	g.guard.set(Authenticated)
	g.logger.Info("logged in", "user_id", s.User.ID, "role", s.User.Role)
	notify.Success(g.notifier, MsgLoginSuccess)
	return s, nil
}

// Logout clears the persisted session and all cached resource data.
func (g *Gateway) Logout(ctx context.Context) error {
	err := g.store.Clear(ctx)
	if g.cache != nil {
		g.cache.Clear()
	}
	g.guard.set(Unauthenticated)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAuthSessionCorrupt, "failed to clear session", err)
	}

	g.logger.Info("logged out")
	notify.Success(g.notifier, MsgLogoutSuccess)
	return nil
}

// CurrentUser returns the persisted user, if any.
func (g *Gateway) CurrentUser(ctx context.Context) (*domain.User, bool) {
	s, err := g.store.Get(ctx)
	if err != nil || s == nil {
		return nil, false
	}
	u := s.User
	return &u, true
}

// RequireSession refreshes the guard and fails when no session is present.
func (g *Gateway) RequireSession(ctx context.Context) (*session.Session, error) {
	if g.guard.Refresh(ctx) != Authenticated {
		return nil, errors.NewNotLoggedInError()
	}
	s, err := g.store.Get(ctx)
	if err != nil {
		return nil, errors.NewNotLoggedInError()
	}
	return s, nil
}
