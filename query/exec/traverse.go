/*
 * Tessera
 *
 * Copyright 2024 The Tessera Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package exec

import (
	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/query/ctx"
	"github.com/tesseradb/tessera/query/plan"
	"github.com/tesseradb/tessera/store"
)

// ConditionalTraverse pulls a row from Child, algebraically expands its
// FromVar binding through Expr, and emits one row per reached node bound to
// ToVar. Rows stream lazily: a single Child row can fan out into many
// output rows before the next Child pull happens.
type ConditionalTraverse struct {
	Ctx     *ctx.QueryCtx
	Child   Operator
	FromVar string
	ToVar   string
	Expr    *plan.Expr

	cur     Row
	reached []int
	pos     int
}

func (t *ConditionalTraverse) Init() error {
	return t.Child.Init()
}

func (t *ConditionalTraverse) Next() (Row, error) {
	for {
		if err := checkCanceled(t.Ctx); err != nil {
			return nil, err
		}

		if t.pos < len(t.reached) {
			id := t.reached[t.pos]
			t.pos++
			out := t.cur.Clone()
			out[t.ToVar] = NodeBinding(store.NodeID(id))
			return out, nil
		}

		row, err := t.Child.Next()
		if err != nil {
			return nil, err
		}

		fromNode, ok := ResolveNode(t.Ctx.Graph, row, t.FromVar)
		if !ok {
			return nil, typeError("exec: %q is not bound to a node", t.FromVar)
		}

		reached, err := t.Expr.Expand(int(fromNode.ID))
		if err != nil {
			return nil, gerr.New(gerr.InternalInvariant, "exec: traversal expand failed: %v", err)
		}

		t.cur = row
		t.reached = reached
		t.pos = 0
	}
}

func (t *ConditionalTraverse) Reset() error {
	t.cur, t.reached, t.pos = nil, nil, 0
	return t.Child.Reset()
}

func (t *ConditionalTraverse) Free() {
	t.Child.Free()
	t.cur, t.reached = nil, nil
}

// ExpandInto filters rows whose FromVar/ToVar pair is already bound by
// checking that ToVar's node is among the nodes Expr reaches from FromVar -
// used when a pattern revisits a node already bound earlier in the same
// MATCH clause, rather than expanding it again.
type ExpandInto struct {
	Ctx     *ctx.QueryCtx
	Child   Operator
	FromVar string
	ToVar   string
	Expr    *plan.Expr
}

func (e *ExpandInto) Init() error { return e.Child.Init() }

func (e *ExpandInto) Next() (Row, error) {
	for {
		if err := checkCanceled(e.Ctx); err != nil {
			return nil, err
		}

		row, err := e.Child.Next()
		if err != nil {
			return nil, err
		}

		fromNode, ok := ResolveNode(e.Ctx.Graph, row, e.FromVar)
		if !ok {
			return nil, typeError("exec: %q is not bound to a node", e.FromVar)
		}
		toNode, ok := ResolveNode(e.Ctx.Graph, row, e.ToVar)
		if !ok {
			return nil, typeError("exec: %q is not bound to a node", e.ToVar)
		}

		reached, err := e.Expr.Expand(int(fromNode.ID))
		if err != nil {
			return nil, gerr.New(gerr.InternalInvariant, "exec: expand-into failed: %v", err)
		}

		for _, id := range reached {
			if store.NodeID(id) == toNode.ID {
				return row, nil
			}
		}
	}
}

func (e *ExpandInto) Reset() error { return e.Child.Reset() }
func (e *ExpandInto) Free()        { e.Child.Free() }
