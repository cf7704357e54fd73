// Package errs defines the recoverable error kinds shared by every
// component of the feature-construction and data-grid-optimizer core.
//
// Only ErrInvariantViolation is fatal: it marks a programming bug and is
// meant to be raised through Check/Must helpers, never returned to a
// caller expecting a recoverable error. Every other kind is a normal
// Go error value, safe to test with Is/As from the standard errors
// package; within this module only ErrInvalidParameter is actually
// returned (by the parameter setters).
package errs

import (
	"github.com/pkg/errors"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrInterrupted is the kind for a Progress hook requesting
	// interruption. The generator and the optimizer do not return it:
	// on interruption they return their best-so-far result with no error.
	ErrInterrupted = goerrors.NewKind("operation interrupted")

	// ErrMemoryExhausted is the kind for the heuristic
	// 3 * nProduced * meanPerItem crossing MemoryProbe.RemainingAvailable.
	// No code in this module performs that check or returns this kind.
	ErrMemoryExhausted = goerrors.NewKind("memory budget exhausted: %s")

	// ErrInvalidParameter is returned by setters that reject an
	// out-of-domain value (e.g. selectionCriterion not in {CMA,MA,MAP}).
	ErrInvalidParameter = goerrors.NewKind("invalid parameter %s: %s")

	// ErrNumericEdge is the kind for a drawing number overflowing the
	// 1e100 ceiling. The enumeration loop stops there and returns what it
	// has without an error; this kind is not returned.
	ErrNumericEdge = goerrors.NewKind("numeric edge reached: %s")

	// ErrInvariantViolation marks a programming bug: an invariant the
	// model guarantees (e.g. DataGrid.Check) no longer holds. It is
	// raised with Must, which panics with a stack trace attached.
	ErrInvariantViolation = goerrors.NewKind("invariant violation: %s")
)

// Must panics with a stack-annotated ErrInvariantViolation if err is
// non-nil. Use only for conditions the model guarantees can't happen;
// never for recoverable paths.
func Must(err error) {
	if err != nil {
		panic(errors.WithStack(ErrInvariantViolation.New(err.Error())))
	}
}

// Invariant is a convenience wrapper around Must for a boolean condition.
func Invariant(cond bool, format string, args ...interface{}) {
	if !cond {
		Must(ErrInvariantViolation.New(format, args...))
	}
}
