/*
 * Tessera
 *
 * Copyright 2024 The Tessera Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package gerr models the error taxonomy surfaced to a Tessera client.

Every error the query pipeline or the store can produce is a Kind plus a
human-readable message. Kind is the machine code; Message is the human text.
Both fields travel together in the host's error frame.
*/
package gerr

import "fmt"

// Kind identifies a category of error from the taxonomy below.
type Kind int

// The error kinds surfaced to the user. Only SyntaxError and SemanticError
// are guaranteed to carry no partial write; every other kind may leave the
// graph modified by earlier writes within the same query.
const (
	SyntaxError Kind = iota
	SemanticError
	RuntimeTypeError
	IndexOutOfBounds
	ConstraintViolation
	IndexError
	OutOfMemory
	QueryTimedOut
	ReadonlyViolation
	InternalInvariant
)

var kindNames = [...]string{
	"SyntaxError",
	"SemanticError",
	"RuntimeTypeError",
	"IndexOutOfBounds",
	"ConstraintViolation",
	"IndexError",
	"OutOfMemory",
	"QueryTimedOut",
	"ReadonlyViolation",
	"InternalInvariant",
}

// String returns the machine code name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UnknownError"
	}
	return kindNames[k]
}

// Error is a graph-related error. Errors of this type are what every
// operator's Next and every store mutation returns. Programmer-error
// assertions (errorutil.AssertTrue in store and attr) panic instead of
// returning an *Error, and nothing in this module recovers those panics.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is itself a *Error of the given kind; an error that
// wraps a *Error is not unwrapped and does not match.
func Is(err error, kind Kind) bool {
	ge, ok := err.(*Error)
	return ok && ge.Kind == kind
}

// UnsynchronizedMatrix is returned by matrix operations that require a
// Synchronized matrix (multiply, transpose) when Δ⁺/Δ⁻ are non-empty.
func UnsynchronizedMatrix(op string) *Error {
	return New(InternalInvariant, "%s requires a flushed matrix", op)
}
