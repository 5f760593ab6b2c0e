// Package fault defines the error taxonomy used while building, signing and
// encoding a micro block. Every failure that leaves the pipeline carries one
// of these kinds so callers can react without parsing error strings.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

// Set of failure kinds.
const (
	Unknown Kind = iota
	Validation
	Encoding
	UnsupportedFork
	Signing
)

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Encoding:
		return "encoding"
	case UnsupportedFork:
		return "unsupported fork"
	case Signing:
		return "signing"
	}

	return "unknown"
}

// =============================================================================

// Error carries the kind of failure along with the stage of the pipeline and
// the input field that caused it.
type Error struct {
	Kind  Kind
	Stage string
	Field string
	Err   error
}

// New constructs an error of the specified kind.
func New(kind Kind, stage string, field string, err error) error {
	return &Error{
		Kind:  kind,
		Stage: stage,
		Field: field,
		Err:   err,
	}
}

// Newf constructs an error of the specified kind using a formatted message.
func Newf(kind Kind, stage string, field string, format string, args ...any) error {
	return New(kind, stage, field, fmt.Errorf(format, args...))
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s error: %s", e.Stage, e.Kind, e.Err)
	}

	return fmt.Sprintf("%s: %s error: field %q: %s", e.Stage, e.Kind, e.Field, e.Err)
}

// Unwrap provides access to the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// =============================================================================

// Get returns the first fault in the error chain, nil when there is none.
func Get(err error) *Error {
	var fe *Error
	if !errors.As(err, &fe) {
		return nil
	}
	return fe
}

// KindOf returns the kind of the first fault in the error chain.
func KindOf(err error) Kind {
	fe := Get(err)
	if fe == nil {
		return Unknown
	}
	return fe.Kind
}

// Is checks if the error chain contains a fault of the specified kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
