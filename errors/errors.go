// Package errors provides error handling for dynasty.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints attached to generator diagnostics
//
// Usage:
//
//	// Wrap with context
//	if err := gen.Process(name, src); err != nil {
//	    return errors.Wrapf(err, "failed to process %s", name)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "parents are embedded by value; drop the '*'")
//
//	// Check errors
//	if errors.Is(err, errors.ErrUnsupportedShape) {
//	    // report the declaration
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
	Join          = crdb.Join
)

// Generator diagnostics. Every error returned while processing an
// annotated declaration is marked with one of these.
var (
	// ErrBadDirective indicates a malformed dynasty directive comment
	ErrBadDirective = New("malformed directive")

	// ErrInvalidParent indicates the inherit argument is not a type expression
	ErrInvalidParent = New("invalid parent type")

	// ErrUnsupportedShape indicates a directive on something other than a plain struct
	ErrUnsupportedShape = New("unsupported declaration shape")

	// ErrBaseConflict indicates the struct already declares the base field differently
	ErrBaseConflict = New("base field conflict")

	// ErrInheritanceCycle indicates a type (transitively) inherits from itself
	ErrInheritanceCycle = New("inheritance cycle")

	// ErrMethodConflict indicates a hand-written method shadows a generated one
	ErrMethodConflict = New("method conflict")
)

// Registry errors.
var (
	// ErrNotFound indicates the requested class is not registered
	ErrNotFound = New("not found")

	// ErrConflict indicates a different class record is already registered
	// for the same type or name
	ErrConflict = New("class conflict")

	// ErrInvalidInfo indicates a class record without type identity or id
	ErrInvalidInfo = New("invalid class info")
)

// Diagnosticf creates an error marked with the given sentinel, prefixed
// with a source position ("file:line:col").
func Diagnosticf(sentinel error, pos string, format string, args ...interface{}) error {
	err := Newf(format, args...)
	if pos != "" {
		err = Wrap(err, pos)
	}
	return Mark(err, sentinel)
}

// IsDiagnostic reports whether err is, or joins, a generator diagnostic.
func IsDiagnostic(err error) bool {
	if err == nil {
		return false
	}
	for _, sentinel := range diagnostics {
		if Is(err, sentinel) {
			return true
		}
	}
	return false
}

var diagnostics = []error{
	ErrBadDirective,
	ErrInvalidParent,
	ErrUnsupportedShape,
	ErrBaseConflict,
	ErrInheritanceCycle,
	ErrMethodConflict,
}
