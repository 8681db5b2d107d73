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
Package exec implements the physical plan: a tree of pull-based operators,
each exposing Init/Next/Reset/Free, evaluated over a QueryCtx.

Next returns (nil, Done) on exhaustion rather than a sentinel tuple, the
same empty-return convention the host codebase's own LOOKUP runtime uses
for its nextStartKey generator (lookup.go) to signal "no more start keys" -
generalized here to every operator rather than one ad hoc closure.
*/
package exec

import (
	"errors"

	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/query/ctx"
	"github.com/tesseradb/tessera/value"
)

// Done is returned by Next when an operator has no more rows.
var Done = errors.New("exec: operator exhausted")

// Row is one tuple flowing through the plan: a binding from pattern/
// projection variable name to value. A bound node or edge travels as a
// value.Ref(EntityRef) cell; ResolveNode/ResolveEdge (see bindings.go) turn that back into
// a store record on demand.
type Row map[string]value.Value

// Clone returns a shallow copy of r, so an operator can extend a row
// without mutating the one its child produced.
func (r Row) Clone() Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Operator is one node of the physical plan tree.
type Operator interface {
	// Init prepares the operator to produce rows; called once before the
	// first Next.
	Init() error

	// Next produces the next row, or (nil, Done) on exhaustion, or
	// (nil, err) on failure. err is always a *gerr.Error.
	Next() (Row, error)

	// Reset rewinds the operator to produce its rows again from the start.
	Reset() error

	// Free releases any resources Init acquired.
	Free()
}

// checkCanceled is the cancellation poll the scan and traversal operators
// make at the top of Next; a nil QueryCtx disables it.
func checkCanceled(q *ctx.QueryCtx) error {
	if q == nil {
		return nil
	}
	return q.CheckCanceled()
}

func typeError(format string, args ...interface{}) error {
	return gerr.New(gerr.RuntimeTypeError, format, args...)
}
