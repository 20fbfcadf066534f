package api

import (
	"context"
	"net/url"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
)

// ListQuestions returns every survey question.
func (c *Client) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	var questions []domain.Question
	err := c.do(ctx, request{method: "GET", route: "/questions", path: "/questions", auth: true}, &questions)
	return questions, err
}

// CreateQuestion creates a question. The returned question is nil when
// the server answers without echoing the record.
func (c *Client) CreateQuestion(ctx context.Context, in domain.QuestionInput) (*domain.Question, error) {
	var created *domain.Question
	err := c.do(ctx, request{method: "POST", route: "/questions", path: "/questions", body: in, auth: true}, &created)
	return created, err
}

// UpdateQuestion replaces every field of the question.
func (c *Client) UpdateQuestion(ctx context.Context, id string, in domain.QuestionInput) (*domain.Question, error) {
	var updated *domain.Question
	err := c.do(ctx, request{
		method: "PUT",
		route:  "/questions/:id",
		path:   "/questions/" + url.PathEscape(id),
		body:   in,
		auth:   true,
	}, &updated)
	return updated, err
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return c.do(ctx, request{
		method: "DELETE",
		route:  "/questions/:id",
		path:   "/questions/" + url.PathEscape(id),
		auth:   true,
	}, nil)
}
