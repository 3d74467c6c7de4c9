// Package apperr carries the error taxonomy shared by services and handlers.
// Services classify every business failure as validation, not-found or
// conflict; anything the store reports outside of business rules surfaces
// as upstream, verbatim and unretried.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a store failure without hiding the original error.
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindUpstream, Err: err}
}

// KindOf classifies any error; non-taxonomy errors count as upstream.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
