package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rezai-admin/internal/api"
	"github.com/felixgeelhaar/rezai-admin/internal/cache"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/notify"
	"github.com/felixgeelhaar/rezai-admin/internal/session"
)

type fixture struct {
	gateway  *Gateway
	store    *session.MemoryStore
	cache    *cache.Cache
	notifier *notify.Recorder
}

func newFixture(t *testing.T, handler http.HandlerFunc) fixture {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	store := session.NewMemoryStore()
	c := cache.New(nil)
	rec := &notify.Recorder{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	gw := NewGateway(api.NewClient(srv.URL), store, c, NewGuard(ctx, store),
		WithNotifier(rec),
		WithClock(func() time.Time { return now }),
	)
	return fixture{gateway: gw, store: store, cache: c, notifier: rec}
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		respond(http.StatusOK, `{"data":{"user":{"_id":"u1","name":"Ada","email":"ada@example.com","role":"admin"},"token":"tok"}}`)(w, r)
	})
	ctx := context.Background()

	s, err := f.gateway.Login(ctx, Credentials{Email: " ada@example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "u1", s.User.ID)
	assert.Equal(t, time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), s.ExpiresAt)

	assert.Equal(t, Authenticated, f.gateway.Guard().State())
	assert.Equal(t, []string{MsgLoginSuccess}, f.notifier.Messages())

	u, ok := f.gateway.CurrentUser(ctx)
	require.True(t, ok)
	assert.Equal(t, "Ada", u.Name)
}

func TestLoginServerMessage(t *testing.T) {
	f := newFixture(t, respond(http.StatusUnauthorized, `{"message":"Invalid credentials"}`))

	_, err := f.gateway.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAuthLoginFailed))
	assert.Equal(t, "Invalid credentials", errors.UserMessage(err))
	assert.Equal(t, Unauthenticated, f.gateway.Guard().State())
	assert.Equal(t, []string{"Invalid credentials"}, f.notifier.Messages())
}

func TestLoginDefaultMessage(t *testing.T) {
	f := newFixture(t, respond(http.StatusInternalServerError, `oops`))

	_, err := f.gateway.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "Login failed", errors.UserMessage(err))
}

func TestLoginInvalidResponse(t *testing.T) {
	tests := map[string]string{
		"missing token": `{"data":{"user":{"_id":"u1"}}}`,
		"missing user":  `{"data":{"token":"tok"}}`,
		"empty data":    `{"data":{}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, respond(http.StatusOK, body))

			_, err := f.gateway.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeAuthInvalidResponse))
			assert.Equal(t, "Invalid login response.", errors.UserMessage(err))

			_, getErr := f.store.Get(context.Background())
			assert.ErrorIs(t, getErr, session.ErrNoSession)
		})
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	called := false
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := f.gateway.Login(context.Background(), Credentials{Email: "  ", Password: "x"})
	assert.Error(t, err)
	_, err = f.gateway.Login(context.Background(), Credentials{Email: "a@b.c"})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestLogoutClearsSessionAndCache(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{"data":{"user":{"_id":"u1"},"token":"tok"}}`))
	ctx := context.Background()

	_, err := f.gateway.Login(ctx, Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)

	key := cache.Key{Resource: "users"}
	_, err = cache.Fetch(ctx, f.cache, key, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	require.NoError(t, f.gateway.Logout(ctx))

	_, ok := f.cache.Peek(key)
	assert.False(t, ok)
	_, ok = f.gateway.CurrentUser(ctx)
	assert.False(t, ok)
	assert.Equal(t, Unauthenticated, f.gateway.Guard().State())
	assert.Equal(t, MsgLogoutSuccess, f.notifier.Messages()[1])
}

func TestRequireSession(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{"data":{"user":{"_id":"u1"},"token":"tok"}}`))
	ctx := context.Background()

	_, err := f.gateway.RequireSession(ctx)
	assert.True(t, errors.Is(err, errors.ErrCodeAuthNotLoggedIn))

	_, err = f.gateway.Login(ctx, Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)

	s, err := f.gateway.RequireSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
}
