package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used throughout tracktable
var (
	ErrUnknownFormat   = errors.New("unknown dataset format")
	ErrEmptyDataset    = errors.New("dataset has no rows")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrInvalidPageSize = errors.New("invalid page size")
)

// Error is a structured error with context and suggestions
type Error struct {
	Title       string   // Short error title
	Message     string   // Detailed message
	Context     string   // What was being attempted
	Causes      []string // Possible causes
	Suggestions []string // Actionable suggestions with commands
	Err         error    // Wrapped error
}

func (e *Error) Error() string {
	return e.Title
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Format returns a nicely formatted error message
func (e *Error) Format() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Title))

	if e.Message != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Message))
	}
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Context))
	}

	if len(e.Causes) > 0 {
		sb.WriteString("\n  Possible causes:\n")
		for _, cause := range e.Causes {
			sb.WriteString(fmt.Sprintf("    • %s\n", cause))
		}
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n  Try:\n")
		for _, sug := range e.Suggestions {
			sb.WriteString(fmt.Sprintf("    $ %s\n", sug))
		}
	}

	return sb.String()
}

// NewError creates a new Error
func NewError(title string) *Error {
	return &Error{Title: title}
}

// WithMessage adds a detailed message
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithContext adds context about what was being attempted
func (e *Error) WithContext(ctx string) *Error {
	e.Context = ctx
	return e
}

// WithCauses adds possible causes
func (e *Error) WithCauses(causes ...string) *Error {
	e.Causes = append(e.Causes, causes...)
	return e
}

// WithSuggestions adds actionable suggestions
func (e *Error) WithSuggestions(sugs ...string) *Error {
	e.Suggestions = append(e.Suggestions, sugs...)
	return e
}

// Wrap wraps an underlying error
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// ══════════════════════════════════════════════════════════════════════════
// Pre-built error constructors for common cases
// ══════════════════════════════════════════════════════════════════════════

// DatasetLoadError returns a structured error for an unreadable dataset
func DatasetLoadError(path string, err error) *Error {
	return NewError("Cannot load dataset").
		WithContext(path).
		WithCauses(
			"The file does not exist or is not readable",
			"The file is not a JSON array of objects or a CSV with a header row",
		).
		WithSuggestions(
			"tracktable view data.json",
			"tracktable view --format csv export.txt",
		).
		Wrap(err)
}

// UnknownColumnError returns a structured error for a column flag naming
// something outside the schema
func UnknownColumnError(name string, known []string) *Error {
	return NewError(fmt.Sprintf("Unknown column '%s'", name)).
		WithMessage("Known columns: " + strings.Join(known, ", ")).
		WithSuggestions("tracktable config --list   # Show the configured schema").
		Wrap(ErrUnknownColumn)
}

// InvalidPageSizeError returns an error for a page size outside the allowed options
func InvalidPageSizeError(size int, allowed []int) *Error {
	opts := make([]string, len(allowed))
	for i, n := range allowed {
		opts[i] = fmt.Sprint(n)
	}
	return NewError(fmt.Sprintf("Invalid page size %d", size)).
		WithMessage("Allowed page sizes: " + strings.Join(opts, ", ")).
		Wrap(ErrInvalidPageSize)
}

// ConfigLoadError returns a structured error for a broken config file
func ConfigLoadError(path string, err error) *Error {
	return NewError("Cannot read config file").
		WithContext(path).
		WithSuggestions(
			"tracktable config --path   # Show which file is read",
		).
		Wrap(err)
}
