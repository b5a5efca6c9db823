// Package errs defines the error taxonomy surfaced by every component.
//
// Errors carry a Kind, a message, a redacted copy of the offending input and
// a trace id. Match kinds with errors.Is against the sentinel values:
//
//	if errors.Is(err, errs.ErrNotFound) { ... }
package errs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind classifies a failure.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindEphemeris         Kind = "ephemeris_error"
	KindInconsistentChart Kind = "inconsistent_chart"
	KindCancelled         Kind = "cancelled"
	KindNotFound          Kind = "not_found"
)

// Sentinels for errors.Is.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrEphemeris         = &Error{Kind: KindEphemeris}
	ErrInconsistentChart = &Error{Kind: KindInconsistentChart}
	ErrCancelled         = &Error{Kind: KindCancelled}
	ErrNotFound          = &Error{Kind: KindNotFound}
)

// Error is the single user-visible error object.
type Error struct {
	Kind           Kind   `json:"kind"`
	Message        string `json:"message"`
	OffendingInput string `json:"offending_input,omitempty"`
	TraceID        string `json:"trace_id"`
	Err            error  `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.OffendingInput != "" {
		b.WriteString(" (input: ")
		b.WriteString(e.OffendingInput)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New builds an error of the given kind with a fresh trace id.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), TraceID: uuid.NewString()}
}

// Wrap attaches a kind to an underlying error. An *Error already in the
// chain is returned unchanged so the innermost kind and trace id survive.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), TraceID: uuid.NewString(), Err: err}
}

// Invalid reports a caller error with the offending input redacted.
func Invalid(input, format string, args ...any) *Error {
	e := New(KindInvalidInput, format, args...)
	e.OffendingInput = Redact(input)
	return e
}

// NotFound reports an unsupported division or unknown system name.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// Inconsistent reports a violated chart invariant with a diagnostic dump.
func Inconsistent(dump, format string, args ...any) *Error {
	e := New(KindInconsistentChart, format, args...)
	e.OffendingInput = dump
	return e
}

// Cancelled converts a context error into the Cancelled kind.
func Cancelled(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return &Error{Kind: KindCancelled, Message: "operation cancelled", TraceID: uuid.NewString(), Err: ctx.Err()}
}

// KindOf returns the kind of the first *Error in the chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Redact masks digits so dates, times and coordinates never reach logs,
// keeping the shape of the value for diagnosis.
func Redact(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte('#')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
