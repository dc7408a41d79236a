package errors

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/salmonumbrella/rstgrid/internal/gridtable"
)

// ValidationError represents an input validation failure
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UserError represents an error caused by user input or configuration.
// Suggestion can provide a concrete fix for the user.
type UserError struct {
	Message    string
	Suggestion string
	Err        error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a UserError with a message and optional suggestion.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion}
}

// WrapUserError wraps an underlying error with a user-facing message and suggestion.
func WrapUserError(err error, message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion, Err: err}
}

// InputError reports a table document that could not be read.
// Source is a file path or "stdin".
type InputError struct {
	Source string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Source, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Type checkers
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

func IsInputError(err error) bool {
	var e *InputError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is an InputError for a missing file.
func IsNotFound(err error) bool {
	var e *InputError
	return errors.As(err, &e) && errors.Is(e.Err, fs.ErrNotExist)
}

// UserSuggestion returns a suggestion string if err carries one.
func UserSuggestion(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Suggestion
	}
	var ie *InputError
	if errors.As(err, &ie) {
		if errors.Is(ie.Err, fs.ErrNotExist) {
			return fmt.Sprintf("Check the path %q, or pass - to read the document from stdin", ie.Source)
		}
		return "Pass a file path, or pipe a YAML/JSON table document on stdin"
	}
	return layoutHint(err)
}

// layoutHint suggests a fix for the grid table errors whose cause is not
// obvious from the message alone.
func layoutHint(err error) string {
	switch {
	case errors.Is(err, gridtable.ErrWidthRequired):
		return "Set the column width under 'widths:' (for example widths: {0: 20})"
	case errors.Is(err, gridtable.ErrColumnTooNarrow):
		return "Widen the column or reduce the cell padding"
	case errors.Is(err, gridtable.ErrOverlappingSpan):
		return "Leave the slots covered by a rowspan out of the following rows"
	}
	return ""
}
