package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
)

// ListUsers returns every app user.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := c.do(ctx, request{method: "GET", route: "/admin/users", path: "/admin/users", auth: true}, &users)
	return users, err
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, request{
		method: "DELETE",
		route:  "/auth/:id",
		path:   "/auth/" + url.PathEscape(id),
		auth:   true,
	}, nil)
}

// ListRecipes returns every saved recipe.
func (c *Client) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	err := c.do(ctx, request{method: "GET", route: "/admin/recipes", path: "/admin/recipes", auth: true}, &recipes)
	return recipes, err
}

// DashboardStats returns the aggregate counters.
func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	err := c.do(ctx, request{method: "GET", route: "/admin/dashboard", path: "/admin/dashboard", auth: true}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// answersLimit is the page size requested from the server; tables page locally.
const answersLimit = 1000

// ListAnswers returns answers, optionally restricted to one question.
func (c *Client) ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(answersLimit))
	q.Set("questionId", questionID)

	var answers []domain.Answer
	err := c.do(ctx, request{
		method: "GET",
		route:  "/admin/answers",
		path:   "/admin/answers?" + q.Encode(),
		auth:   true,
	}, &answers)
	return answers, err
}
