package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies generation failures.
type ErrorKind string

const (
	// KindPrecondition marks an invalid parameter set rejected before any geometry is generated.
	KindPrecondition ErrorKind = "PRECONDITION"
	// KindInternalConsistency marks a scan whose occupancy count contradicts the scanned window.
	KindInternalConsistency ErrorKind = "INTERNAL_CONSISTENCY"
	// KindUnknownShape marks an unrecognised particle-type selector. Recoverable.
	KindUnknownShape ErrorKind = "UNKNOWN_SHAPE"
	// KindStorage marks a failure writing artifacts or run records.
	KindStorage ErrorKind = "STORAGE"
)

// Sentinel values for errors.Is checks against a GenerationError of the same kind.
var (
	ErrPrecondition        = &GenerationError{Kind: KindPrecondition}
	ErrInternalConsistency = &GenerationError{Kind: KindInternalConsistency}
	ErrUnknownShape        = &GenerationError{Kind: KindUnknownShape}
	ErrStorage             = &GenerationError{Kind: KindStorage}
)

// GenerationError describes why a run did not produce geometry.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
	Cause   error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, " "))
		b.WriteString("]")
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error { return e.Cause }

// Is matches any GenerationError with the same kind, so callers can compare
// against the package sentinels.
func (e *GenerationError) Is(target error) bool {
	var other *GenerationError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Fatal reports whether the error must abort the run without publishing artifacts.
func (e *GenerationError) Fatal() bool {
	return e.Kind != KindUnknownShape
}

func newPreconditionError(violations []string) *GenerationError {
	return &GenerationError{
		Kind:    KindPrecondition,
		Message: strings.Join(violations, "; "),
	}
}

func newConsistencyError(message string, details map[string]any) *GenerationError {
	return &GenerationError{Kind: KindInternalConsistency, Message: message, Details: details}
}

func newStorageError(message string, cause error) *GenerationError {
	return &GenerationError{Kind: KindStorage, Message: message, Cause: cause}
}
