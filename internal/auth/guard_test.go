package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/session"
)

func TestGuardInitialState(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	assert.Equal(t, Unauthenticated, NewGuard(ctx, store).State())

	require.NoError(t, store.Set(ctx, session.New(domain.User{ID: "u1"}, "tok", time.Now(), session.DefaultTTL)))
	assert.Equal(t, Authenticated, NewGuard(ctx, store).State())
}

func TestGuardResolve(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	g := NewGuard(ctx, store)

	for _, r := range ProtectedRoutes {
		assert.Equal(t, RouteLogin, g.Resolve(r), r)
		assert.False(t, g.Allowed(r))
	}
	assert.Equal(t, RouteLogin, g.Resolve(RouteLogin))
	assert.True(t, g.Allowed(RouteLogin))

	require.NoError(t, store.Set(ctx, session.New(domain.User{ID: "u1"}, "tok", time.Now(), session.DefaultTTL)))
	assert.Equal(t, Authenticated, g.Refresh(ctx))

	for _, r := range ProtectedRoutes {
		assert.Equal(t, r, g.Resolve(r))
	}
	assert.Equal(t, RouteDashboard, g.Resolve(RouteLogin))
}

func TestGuardRefreshObservesVanishedSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, session.New(domain.User{ID: "u1"}, "tok", time.Now(), session.DefaultTTL)))

	g := NewGuard(ctx, store)
	require.Equal(t, Authenticated, g.State())

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, Authenticated, g.State())
	assert.Equal(t, Unauthenticated, g.Refresh(ctx))
	assert.Equal(t, RouteLogin, g.Resolve(RouteUsers))
}

func TestRouteTitle(t *testing.T) {
	assert.Equal(t, "Questions", RouteQuestions.Title())
	assert.Equal(t, "authenticated", Authenticated.String())
}
