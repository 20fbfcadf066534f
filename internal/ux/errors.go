package ux

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a recovery hint to transport and permission failures
// that carry no suggestion of their own.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	if strings.Contains(msg, "Suggestions:") {
		return err
	}

	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"),
		strings.Contains(msg, "no route to host"):
		return NewErrorWithSuggestion(err,
			"Check that api.base_url is correct and the API is reachable ('rezai-admin config view')")
	case strings.Contains(msg, "status 401"), strings.Contains(msg, "Unauthorized"),
		strings.Contains(msg, "jwt expired"):
		return NewErrorWithSuggestion(err,
			"Your session may have expired. Run 'rezai-admin auth login --email <email>'")
	case strings.Contains(msg, "status 403"), strings.Contains(msg, "Forbidden"):
		return NewErrorWithSuggestion(err,
			"This account is not an admin. Log in with an admin account")
	case strings.Contains(msg, "permission denied"):
		return NewErrorWithSuggestion(err,
			"Check permissions on the rezai-admin home directory (--home)")
	case strings.Contains(msg, "context deadline exceeded"):
		return NewErrorWithSuggestion(err,
			"The API did not answer in time. Raise api.timeout or retry")
	}
	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
