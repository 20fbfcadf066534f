package api

import (
	"context"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the data of a login response. Either field may be
// missing on a malformed answer; callers must check.
type LoginResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Login posts credentials. It is the only call made without a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, request{
		method: "POST",
		route:  "/auth/login",
		path:   "/auth/login",
		body:   LoginRequest{Email: email, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
