package pram

import (
	"errors"
	"fmt"
	"time"
)

// ErrIndexOutOfBounds reports an invalid index. No function in this
// package returns it.
var ErrIndexOutOfBounds = errors.New("pram: index out of bounds")

// UsageError reports invalid CLI arguments or invalid configuration supplied
// by a caller. It is always the caller's fault and never indicates an
// internal invariant failure.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "usage error: " + e.Msg
}

// NewUsageError builds a UsageError with a formatted message.
func NewUsageError(format string, args ...any) *UsageError {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// InvariantViolation reports a failed correctness assertion: a sortedness
// check, a BST predicate, a BFS distance mismatch, a linearizability
// witness, or a harness postcondition. It carries the offending component
// and, where available, the concrete values that disagreed.
type InvariantViolation struct {
	Component string
	Msg       string
	Details   any
	Err       error
	Timestamp time.Time
}

func (e *InvariantViolation) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Details != nil {
		return fmt.Sprintf("%s: invariant violated: %s (%v)", e.Component, e.Msg, e.Details)
	}
	return fmt.Sprintf("%s: invariant violated: %s", e.Component, e.Msg)
}

// Unwrap supports errors.Is/errors.As against a wrapped cause.
func (e *InvariantViolation) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewInvariantViolation builds an InvariantViolation tagged with the
// originating component.
func NewInvariantViolation(component, msg string, details any) *InvariantViolation {
	return &InvariantViolation{Component: component, Msg: msg, Details: details, Timestamp: time.Now()}
}
