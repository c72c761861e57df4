// Package apperr defines the error taxonomy shared by the stores, the order
// workflow and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicate is returned by repositories when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate key value")

	// ErrNotFound is the sentinel every NotFound error matches with errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrStale is returned when a conditional write finds the row already changed.
	ErrStale = errors.New("record changed concurrently")
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is an expected failure that maps onto a client-facing response.
// Fields carries per-field messages for validation and auth failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *Error) Is(target error) bool {
	return e.Kind == KindNotFound && target == ErrNotFound
}

// Validation builds a validation error from collected field messages.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: fields}
}

func Field(field, msg string) *Error {
	return Validation(map[string][]string{field: {msg}})
}

// Auth reports a credential check that failed inside an authenticated request,
// e.g. a wrong old password. It is a client error, not a 401.
func Auth(field, msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg, Fields: map[string][]string{field: {msg}}}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Fields collects messages per field while validating a request.
type Fields map[string][]string

func (f Fields) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f Fields) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.Add(field, "This field is required.")
	}
}

// Err returns nil when nothing was collected.
func (f Fields) Err() error {
	if len(f) == 0 {
		return nil
	}
	return Validation(f)
}
