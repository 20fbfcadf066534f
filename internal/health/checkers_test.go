package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rezai-admin/internal/config"
	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/session"
	"github.com/felixgeelhaar/rezai-admin/internal/upload"
)

func TestConfigChecker(t *testing.T) {
	ctx := context.Background()

	ok := NewConfigChecker(&config.Config{API: config.APIConfig{BaseURL: "https://api.example.com"}})
	assert.Equal(t, StatusHealthy, ok.Check(ctx).Status)

	missing := NewConfigChecker(&config.Config{})
	r := missing.Check(ctx)
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, "api.base_url is not set", r.Message)
}

func TestAPIChecker(t *testing.T) {
	ctx := context.Background()

	t.Run("any response is reachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		r := NewAPIChecker(srv.URL, srv.Client()).Check(ctx)
		assert.Equal(t, StatusHealthy, r.Status)
		assert.Equal(t, http.StatusNotFound, r.Details["status"])
	})

	t.Run("server errors degrade", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		r := NewAPIChecker(srv.URL, nil).Check(ctx)
		assert.Equal(t, StatusDegraded, r.Status)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		r := NewAPIChecker(url, nil).Check(ctx)
		assert.Equal(t, StatusUnhealthy, r.Status)
	})

	t.Run("unset", func(t *testing.T) {
		assert.Equal(t, StatusUnhealthy, NewAPIChecker("", nil).Check(ctx).Status)
	})
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestSessionChecker(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	user := domain.User{ID: "u1", Email: "ada@example.com"}

	tests := []struct {
		name    string
		session *session.Session
		want    Status
		message string
	}{
		{"no session", nil, StatusDegraded, "not logged in"},
		{"valid", session.New(user, signedToken(t, now.Add(48*time.Hour)), now, session.DefaultTTL), StatusHealthy, "logged in as ada@example.com"},
		{"expiring soon", session.New(user, "opaque", now, time.Hour), StatusDegraded, "session expires within a day"},
		{"token expired", session.New(user, signedToken(t, now.Add(-time.Minute)), now, session.DefaultTTL), StatusDegraded, "token has expired; log in again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			if tt.session != nil {
				require.NoError(t, store.Set(ctx, tt.session))
			}

			r := NewSessionChecker(store).WithClock(func() time.Time { return now }).Check(ctx)
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, tt.message, r.Message)
		})
	}
}

func TestUploadChecker(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StatusHealthy, NewUploadChecker(upload.Config{CloudName: "demo", Preset: "p"}).Check(ctx).Status)
	assert.Equal(t, StatusDegraded, NewUploadChecker(upload.Config{CloudName: "demo"}).Check(ctx).Status)
	assert.Equal(t, StatusDegraded, NewUploadChecker(upload.Config{Preset: "p"}).Check(ctx).Status)
}

func TestHomeChecker(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")

	r := NewHomeChecker(dir).Check(ctx)
	assert.Equal(t, StatusHealthy, r.Status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
