package domain

import (
	"fmt"
	"strings"
)

// QuestionType is the answer cardinality of a survey question.
// This is a value object that enforces valid type values.
type QuestionType string

// Valid question types
const (
	QuestionTypeSingle   QuestionType = "SINGLE"
	QuestionTypeMultiple QuestionType = "MULTIPLE"
)

// QuestionTypes lists every valid type in display order.
var QuestionTypes = []QuestionType{QuestionTypeSingle, QuestionTypeMultiple}

// NewQuestionType creates a QuestionType with validation. Input is
// case-insensitive so CLI flags like "single" are accepted.
func NewQuestionType(value string) (QuestionType, error) {
	qt := QuestionType(strings.ToUpper(strings.TrimSpace(value)))
	if err := qt.Validate(); err != nil {
		return "", err
	}
	return qt, nil
}

// Validate checks if the question type is valid
func (q QuestionType) Validate() error {
	switch q {
	case QuestionTypeSingle, QuestionTypeMultiple:
		return nil
	default:
		return fmt.Errorf("invalid question type %q: must be SINGLE or MULTIPLE", string(q))
	}
}

// String returns the string representation
func (q QuestionType) String() string {
	return string(q)
}

// Label is the badge text shown next to a question.
func (q QuestionType) Label() string {
	switch q {
	case QuestionTypeSingle:
		return "Single Choice"
	case QuestionTypeMultiple:
		return "Multiple Choice"
	default:
		return string(q)
	}
}
