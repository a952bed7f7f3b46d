package dto

import (
	"github.com/turtacn/cyberrisk/pkg/errors"
)

// Result is the uniform outcome of every client operation: either
// Success with Data, or a human-readable Error. Err keeps the typed cause for
// programmatic inspection and is never serialized.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

// Ok wraps data in a successful Result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail converts err into a failed Result whose message is the server's, or
// fallback when the server supplied none.
func Fail[T any](err error, fallback string) Result[T] {
	return Result[T]{
		Error: errors.MessageOr(err, fallback),
		Err:   err,
	}
}

// FailMessage is a failed Result without an underlying error.
func FailMessage[T any](message string) Result[T] {
	return Result[T]{Error: message}
}

// Unwrap returns Data and Err in the usual Go shape. A failure without an
// underlying error yields a validation error carrying the message.
func (r Result[T]) Unwrap() (T, error) {
	if r.Success {
		return r.Data, nil
	}
	if r.Err != nil {
		return r.Data, r.Err
	}
	return r.Data, errors.ErrValidation(r.Error)
}
