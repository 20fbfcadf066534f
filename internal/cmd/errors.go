package cmd

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
)

// QuestionNotFoundError creates a helpful error when a question id is unknown
func QuestionNotFoundError(id string) error {
	return errors.New(errors.ErrCodeMutationNotFound, fmt.Sprintf("Question %q not found", id)).
		WithSuggestions(
			"List questions: rezai-admin questions list",
			"Search by text: rezai-admin questions list --search <term>",
		)
}

// MissingFlagError creates a helpful error for a required flag left empty
func MissingFlagError(flag string, suggestions ...string) error {
	return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("--%s is required", flag)).
		WithSuggestions(suggestions...).
		WithSuggestion("Run with --help to see all available options")
}

// InvalidQuestionTypeError creates a helpful error for an unknown question type
func InvalidQuestionTypeError(value string) error {
	valid := make([]string, len(domain.QuestionTypes))
	for i, t := range domain.QuestionTypes {
		valid[i] = string(t)
	}
	return errors.New(errors.ErrCodeValidationType, fmt.Sprintf("Invalid value for --type: %q", value)).
		WithSuggestion(fmt.Sprintf("Valid values: %s", strings.Join(valid, ", ")))
}

// UploadNotConfiguredError is returned under --strict-icons when icon files
// are given but no image host is configured.
func UploadNotConfiguredError() error {
	return errors.New(errors.ErrCodeUploadNotConfigured, "No image host configured for icon uploads").
		WithSuggestions(
			"Set upload.cloud_name and upload.preset in the config file",
			"Or set REZAI_UPLOAD_CLOUD_NAME and REZAI_UPLOAD_PRESET",
			"Use a hosted icon URL instead: --option 'Label=https://...'",
		)
}

// UploadFailedError is returned under --strict-icons when some icon uploads
// failed and the question was not saved.
func UploadFailedError(failed int) error {
	return errors.New(errors.ErrCodeUploadFailed, fmt.Sprintf("%d icon upload(s) failed; question not saved", failed)).
		WithSuggestions(
			"Check the icon paths exist and are images",
			"Verify upload.cloud_name and upload.preset: rezai-admin config view",
			"Drop --strict-icons to save without the failed icons",
		)
}

// NonInteractiveError is returned when a command needs a prompt but stdin
// is not a terminal.
func NonInteractiveError(what string, suggestions ...string) error {
	return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("%s requires an interactive terminal", what)).
		WithSuggestions(suggestions...)
}
