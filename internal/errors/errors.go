package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthLoginFailed     ErrorCode = "AUTH-001"
	ErrCodeAuthInvalidResponse ErrorCode = "AUTH-002"
	ErrCodeAuthNotLoggedIn     ErrorCode = "AUTH-003"
	ErrCodeAuthSessionCorrupt  ErrorCode = "AUTH-004"

	// Fetch errors (FETCH-001 to FETCH-099)
	ErrCodeFetchFailed    ErrorCode = "FETCH-001"
	ErrCodeFetchNetwork   ErrorCode = "FETCH-002"
	ErrCodeFetchMalformed ErrorCode = "FETCH-003"

	// Mutation errors (MUTATION-001 to MUTATION-099)
	ErrCodeMutationFailed    ErrorCode = "MUTATION-001"
	ErrCodeMutationNotFound  ErrorCode = "MUTATION-002"
	ErrCodeMutationNoPending ErrorCode = "MUTATION-003"

	// Validation errors (VALIDATION-001 to VALIDATION-099)
	ErrCodeValidationFailed      ErrorCode = "VALIDATION-001"
	ErrCodeValidationTextMissing ErrorCode = "VALIDATION-002"
	ErrCodeValidationOptions     ErrorCode = "VALIDATION-003"
	ErrCodeValidationUploading   ErrorCode = "VALIDATION-004"
	ErrCodeValidationType        ErrorCode = "VALIDATION-005"

	// Upload errors (UPLOAD-001 to UPLOAD-099)
	ErrCodeUploadFailed        ErrorCode = "UPLOAD-001"
	ErrCodeUploadNotConfigured ErrorCode = "UPLOAD-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigMissing ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
)

// Category groups error codes into the families surfaced to users.
type Category string

const (
	CategoryUnknown    Category = ""
	CategoryAuth       Category = "AUTH"
	CategoryFetch      Category = "FETCH"
	CategoryMutation   Category = "MUTATION"
	CategoryValidation Category = "VALIDATION"
	CategoryUpload     Category = "UPLOAD"
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
)

// Category returns the family prefix of the code.
func (c ErrorCode) Category() Category {
	prefix, _, ok := strings.Cut(string(c), "-")
	if !ok {
		return CategoryUnknown
	}
	return Category(prefix)
}

// AdminError represents an error with code, user-facing message, and suggestions
type AdminError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *AdminError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AdminError) Unwrap() error {
	return e.Cause
}

// New creates a new AdminError
func New(code ErrorCode, message string) *AdminError {
	return &AdminError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AdminError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *AdminError {
	return &AdminError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *AdminError) WithSuggestion(suggestion string) *AdminError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *AdminError) WithSuggestions(suggestions ...string) *AdminError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// CategoryOf classifies err by the first AdminError found in its chain.
func CategoryOf(err error) Category {
	var ae *AdminError
	if errors.As(err, &ae) {
		return ae.Code.Category()
	}
	return CategoryUnknown
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	var ae *AdminError
	for err != nil {
		if !errors.As(err, &ae) {
			return false
		}
		if ae.Code == code {
			return true
		}
		err = ae.Cause
	}
	return false
}

// UserMessage returns the text shown in a notification: the AdminError
// message without code, cause, or suggestions.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AdminError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// Common error constructors for frequently used errors

// NewAuthError creates a login failure carrying the server message.
func NewAuthError(message string, cause error) *AdminError {
	if message == "" {
		message = "Login failed"
	}
	return Wrap(ErrCodeAuthLoginFailed, message, cause)
}

// NewInvalidLoginResponseError is returned when a login response lacks user or token.
func NewInvalidLoginResponseError() *AdminError {
	return New(ErrCodeAuthInvalidResponse, "Invalid login response.").
		WithSuggestion("Check that api.base_url points at the admin API")
}

// NewNotLoggedInError is returned when a protected operation runs without a session.
func NewNotLoggedInError() *AdminError {
	return New(ErrCodeAuthNotLoggedIn, "not logged in").
		WithSuggestion("Run 'rezai-admin auth login --email <email>' first")
}

// NewFetchError wraps a failed resource read.
func NewFetchError(resource string, cause error) *AdminError {
	return Wrap(ErrCodeFetchFailed, fmt.Sprintf("failed to fetch %s", resource), cause)
}

// NewMutationError wraps a failed create/update/delete. message is the
// server-provided text, or fallback when the server gave none.
func NewMutationError(message, fallback string, cause error) *AdminError {
	if message == "" {
		message = fallback
	}
	return Wrap(ErrCodeMutationFailed, message, cause)
}

// NewValidationError creates a form validation failure.
func NewValidationError(code ErrorCode, message string) *AdminError {
	return New(code, message)
}

// NewUploadError wraps a failed icon upload.
func NewUploadError(cause error) *AdminError {
	return Wrap(ErrCodeUploadFailed, "Upload failed", cause)
}

// NewConfigError creates a configuration error for key.
func NewConfigError(key, details string) *AdminError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration for %s: %s", key, details)).
		WithSuggestion("Run 'rezai-admin config view' to inspect the effective configuration")
}

// NewFileWriteError wraps a failed file write.
func NewFileWriteError(path string, cause error) *AdminError {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", path), cause).
		WithSuggestion("Verify you have write permissions for the directory")
}
