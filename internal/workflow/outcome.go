package workflow

import (
	errs "lead-pipeline/internal/common/errors"
)

// Outcome is the result of one stage boundary: either Ok with a value or Err
// with a kind and a message. The zero value is an internal Err.
type Outcome[T any] struct {
	ok      bool
	value   T
	kind    errs.Kind
	message string
	cause   error
}

func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{ok: true, value: value}
}

// Err builds a failed outcome, classifying cause with the shared taxonomy.
func Err[T any](cause error) Outcome[T] {
	if cause == nil {
		return Outcome[T]{kind: errs.KindInternal, message: "unknown failure"}
	}
	return Outcome[T]{kind: errs.KindOf(cause), message: cause.Error(), cause: cause}
}

func (o Outcome[T]) IsOk() bool { return o.ok }

// Value returns the Ok payload, or the zero value for Err.
func (o Outcome[T]) Value() T { return o.value }

// Kind is empty for Ok.
func (o Outcome[T]) Kind() errs.Kind {
	if o.ok {
		return ""
	}
	if o.kind == "" {
		return errs.KindInternal
	}
	return o.kind
}

func (o Outcome[T]) Message() string {
	if o.ok {
		return ""
	}
	if o.message == "" {
		return "unknown failure"
	}
	return o.message
}

func (o Outcome[T]) Unwrap() error { return o.cause }

// Match forces both branches to be handled.
func Match[T, R any](o Outcome[T], onOk func(T) R, onErr func(errs.Kind, string) R) R {
	if o.ok {
		return onOk(o.value)
	}
	return onErr(o.Kind(), o.Message())
}

// attempt runs fn and folds its error return into an Outcome.
func attempt[T any](fn func() (T, error)) Outcome[T] {
	v, err := fn()
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}
