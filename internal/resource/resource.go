// Package resource fetches admin resources through the shared cache and
// runs the mutations that change them.
package resource

import (
	"context"
	"slices"
	"sync"

	"github.com/felixgeelhaar/rezai-admin/internal/api"
	"github.com/felixgeelhaar/rezai-admin/internal/cache"
	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/log"
	"github.com/felixgeelhaar/rezai-admin/internal/metrics"
	"github.com/felixgeelhaar/rezai-admin/internal/notify"
)

// Resource names used as cache keys and metric labels.
const (
	Users     = "users"
	Recipes   = "recipes"
	Questions = "questions"
	Answers   = "answers"
	Dashboard = "dashboard"
)

// Toast texts for mutations.
const (
	MsgQuestionAdded    = "Question Added Successfully"
	MsgQuestionUpdated  = "Question Updated Successfully"
	MsgQuestionDeleted  = "Question Deleted Successfully"
	MsgUserDeleted      = "User deleted"
	MsgDeleteUserFailed = "Could not delete user"
	MsgSaveFailed       = "Could not save question"
	MsgDeleteFailed     = "Could not delete question"
)

// Client is the subset of the API client the service calls.
type Client interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListRecipes(ctx context.Context) ([]domain.Recipe, error)
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
	ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error)
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, in domain.QuestionInput) (*domain.Question, error)
	UpdateQuestion(ctx context.Context, id string, in domain.QuestionInput) (*domain.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

var _ Client = (*api.Client)(nil)

// Service is the per-process resource layer.
type Service struct {
	client   Client
	cache    *cache.Cache
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *log.Logger

	mu      sync.Mutex
	pending *PendingDelete
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets where mutation toasts go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics records mutation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service reading through c.
func NewService(client Client, c *cache.Cache, opts ...Option) *Service {
	s := &Service{
		client: client,
		cache:  c,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the underlying cache.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// Users returns the user list.
func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	return cache.Fetch(ctx, s.cache, cache.Key{Resource: Users}, s.client.ListUsers)
}

// Recipes returns the recipe list.
func (s *Service) Recipes(ctx context.Context) ([]domain.Recipe, error) {
	return cache.Fetch(ctx, s.cache, cache.Key{Resource: Recipes}, s.client.ListRecipes)
}

// Questions returns the question list.
func (s *Service) Questions(ctx context.Context) ([]domain.Question, error) {
	return cache.Fetch(ctx, s.cache, cache.Key{Resource: Questions}, s.client.ListQuestions)
}

// Answers returns answers, restricted to one question when questionID is set.
// Each question id is cached under its own key.
func (s *Service) Answers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	key := cache.Key{Resource: Answers, Params: questionID}
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]domain.Answer, error) {
		return s.client.ListAnswers(ctx, questionID)
	})
}

// Dashboard returns the aggregate counters.
func (s *Service) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	return cache.Fetch(ctx, s.cache, cache.Key{Resource: Dashboard}, s.client.DashboardStats)
}

// Refetch marks resource stale so the next read goes to the server.
func (s *Service) Refetch(resource string) {
	s.cache.Invalidate(resource)
}

// CreateQuestion creates a question and invalidates the question list.
func (s *Service) CreateQuestion(ctx context.Context, in domain.QuestionInput) error {
	_, err := s.client.CreateQuestion(ctx, in)
	if err != nil {
		return s.failed(Questions, "create", MsgSaveFailed, err)
	}
	s.succeeded(Questions, "create", MsgQuestionAdded, Dashboard)
	return nil
}

// UpdateQuestion replaces the question's fields with in.
func (s *Service) UpdateQuestion(ctx context.Context, id string, in domain.QuestionInput) error {
	_, err := s.client.UpdateQuestion(ctx, id, in)
	if err != nil {
		return s.failed(Questions, "update", MsgSaveFailed, err)
	}
	s.succeeded(Questions, "update", MsgQuestionUpdated, Answers)
	return nil
}

// DeleteQuestion deletes a question and drops it from cached lists.
func (s *Service) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.client.DeleteQuestion(ctx, id); err != nil {
		return s.failed(Questions, "delete", MsgDeleteFailed, err)
	}
	cache.Update(s.cache, Questions, func(qs []domain.Question) []domain.Question {
		return slices.DeleteFunc(slices.Clone(qs), func(q domain.Question) bool { return q.ID == id })
	})
	s.succeeded(Questions, "delete", MsgQuestionDeleted, Answers, Dashboard)
	return nil
}

// DeleteUser deletes a user account and drops it from cached lists.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.client.DeleteUser(ctx, id); err != nil {
		return s.failed(Users, "delete", MsgDeleteUserFailed, err)
	}
	cache.Update(s.cache, Users, func(us []domain.User) []domain.User {
		return slices.DeleteFunc(slices.Clone(us), func(u domain.User) bool { return u.ID == id })
	})
	s.succeeded(Users, "delete", MsgUserDeleted, Dashboard)
	return nil
}

func (s *Service) succeeded(resource, action, msg string, related ...string) {
	s.cache.Invalidate(resource)
	for _, r := range related {
		s.cache.Invalidate(r)
	}
	s.metrics.ObserveMutation(resource, action, true)
	s.logger.Info("mutation succeeded", "resource", resource, "action", action)
	notify.Success(s.notifier, msg)
}

func (s *Service) failed(resource, action, fallback string, cause error) error {
	err := errors.NewMutationError(api.ServerMessage(cause), fallback, cause)
	s.metrics.ObserveMutation(resource, action, false)
	s.metrics.ObserveError(string(err.Code))
	s.logger.WithError(err).Warn("mutation failed", "resource", resource, "action", action)
	notify.Error(s.notifier, err.Message)
	return err
}
