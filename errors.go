package chronoval

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the chronoval package.
var (
	// ErrNullValue is returned when a null scalar is assigned to a versioned value.
	ErrNullValue = errors.New("null value not allowed")

	// ErrMissingField is returned when a structured query argument lacks a required field.
	ErrMissingField = errors.New("missing required query field")

	// ErrTextInput is returned when constructing a versioned value from text.
	// A scalar string cannot reproduce the value's history, so text input is
	// permanently unsupported.
	ErrTextInput = errors.New("cannot construct versioned value from text")

	// ErrBufferTooLarge is returned when history growth would exceed the
	// configured maximum buffer size.
	ErrBufferTooLarge = errors.New("history buffer exceeds maximum size")

	// ErrEmptyUnion is returned when a rectangle union is requested over no inputs.
	ErrEmptyUnion = errors.New("rectangle union over empty input")

	// ErrEmptyHistory is returned when an operation requires at least one entry.
	ErrEmptyHistory = errors.New("history is empty")

	// ErrClosed is returned when operations are attempted on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("value not found")
)

// ValueErrorKind categorizes value errors.
type ValueErrorKind int

const (
	// KindUnknown is an unclassified error.
	KindUnknown ValueErrorKind = iota
	// KindNullValue indicates a null scalar where a value is mandatory.
	KindNullValue
	// KindMissingField indicates a malformed structured query argument.
	KindMissingField
	// KindTextInput indicates an attempt to build a versioned value from text.
	KindTextInput
	// KindTooLarge indicates buffer growth beyond the configured ceiling.
	KindTooLarge
	// KindEmptyUnion indicates a rectangle union over an empty set.
	KindEmptyUnion
)

// ValueError provides detailed information about failed value operations.
// Operations never return partial results alongside a ValueError; the prior
// value, if any, remains fully valid.
type ValueError struct {
	Kind    ValueErrorKind
	Message string
	Cause   error
}

func (e *ValueError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ValueError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for ValueError.
func (e *ValueError) Is(target error) bool {
	switch e.Kind {
	case KindNullValue:
		return target == ErrNullValue
	case KindMissingField:
		return target == ErrMissingField
	case KindTextInput:
		return target == ErrTextInput
	case KindTooLarge:
		return target == ErrBufferTooLarge
	case KindEmptyUnion:
		return target == ErrEmptyUnion
	}
	return false
}

// newValueError creates a new ValueError.
func newValueError(kind ValueErrorKind, message string, cause error) *ValueError {
	return &ValueError{Kind: kind, Message: message, Cause: cause}
}
