package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrInvalidIdentity   = errors.New("invalid tax id")
	ErrItemUnavailable   = errors.New("item is not available")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrUnavailable       = errors.New("storage unavailable")
	ErrValidation        = errors.New("validation failed")
)

// Kind is the stable error code handed to transports.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindDuplicateKey      Kind = "DUPLICATE_KEY"
	KindInvalidIdentity   Kind = "INVALID_IDENTITY"
	KindItemUnavailable   Kind = "ITEM_UNAVAILABLE"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindConflict          Kind = "CONFLICT"
	KindUnavailable       Kind = "UNAVAILABLE"
	KindValidation        Kind = "VALIDATION"
	KindInternal          Kind = "INTERNAL"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrValidation, KindValidation},
	{ErrInvalidIdentity, KindInvalidIdentity},
	{ErrNotFound, KindNotFound},
	{ErrDuplicateKey, KindDuplicateKey},
	{ErrItemUnavailable, KindItemUnavailable},
	{ErrInvalidTransition, KindInvalidTransition},
	{ErrConflict, KindConflict},
	{ErrUnavailable, KindUnavailable},
}

// KindOf extracts the error kind. Errors that wrap none of the domain
// sentinels are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsRetryable reports whether the operation may succeed if run again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// ValidationError lists the offending fields of a rejected command.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records another field failure and returns the receiver.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
