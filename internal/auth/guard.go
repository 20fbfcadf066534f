package auth

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/rezai-admin/internal/session"
)

// State is the guard's authentication state.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Route names a view of the admin console.
type Route string

const (
	RouteLogin     Route = "login"
	RouteDashboard Route = "dashboard"
	RouteUsers     Route = "users"
	RouteRecipes   Route = "recipes"
	RouteQuestions Route = "questions"
	RouteAnswers   Route = "answers"
)

// ProtectedRoutes lists every route that requires a session, in navigation order.
var ProtectedRoutes = []Route{RouteDashboard, RouteUsers, RouteRecipes, RouteQuestions, RouteAnswers}

// Protected reports whether the route requires a session.
func (r Route) Protected() bool {
	return r != RouteLogin
}

// Title is the navigation label of the route.
func (r Route) Title() string {
	switch r {
	case RouteLogin:
		return "Login"
	case RouteDashboard:
		return "Dashboard"
	case RouteUsers:
		return "Users"
	case RouteRecipes:
		return "Recipes"
	case RouteQuestions:
		return "Questions"
	case RouteAnswers:
		return "Answers"
	default:
		return string(r)
	}
}

// Guard gates protected routes on the presence of a persisted session.
// It checks presence only; token freshness is never validated.
type Guard struct {
	mu    sync.RWMutex
	state State
	store session.Store
}

// NewGuard derives the initial state from the store.
func NewGuard(ctx context.Context, store session.Store) *Guard {
	g := &Guard{store: store}
	g.Refresh(ctx)
	return g
}

// Refresh re-derives the state from the store and returns it. A session
// that vanished from the store moves the guard back to unauthenticated.
func (g *Guard) Refresh(ctx context.Context) State {
	state := Unauthenticated
	if s, err := g.store.Get(ctx); err == nil && s != nil {
		state = Authenticated
	}

	g.mu.Lock()
	g.state = state
	g.mu.Unlock()
	return state
}

// State returns the current state without consulting the store.
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Allowed reports whether route may be rendered in the current state.
func (g *Guard) Allowed(route Route) bool {
	return !route.Protected() || g.State() == Authenticated
}

// Resolve returns the route that should actually be rendered for a
// navigation to route.
func (g *Guard) Resolve(route Route) Route {
	authenticated := g.State() == Authenticated
	switch {
	case route.Protected() && !authenticated:
		return RouteLogin
	case route == RouteLogin && authenticated:
		return RouteDashboard
	default:
		return route
	}
}

func (g *Guard) set(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}
