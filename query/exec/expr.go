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
	"regexp"
	"strings"

	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/store"
	"github.com/tesseradb/tessera/value"
)

// Expr is a scalar expression evaluated against one Row - the generalized,
// row-at-a-time counterpart of the host codebase's CondRuntime tree
// (eql/interpreter/where.go): one interface method instead of one Go type
// per operator, dispatched by the concrete node's own Eval.
type Expr interface {
	Eval(g *store.Graph, row Row) (value.Value, error)
}

// Lit is a constant literal.
type Lit struct{ Val value.Value }

func (l Lit) Eval(_ *store.Graph, _ Row) (value.Value, error) { return l.Val, nil }

// ColumnRef reads a whole bound variable's value straight out of the row
// (used for a plain identifier projected bare, e.g. `RETURN n`).
type ColumnRef struct{ Name string }

func (c ColumnRef) Eval(_ *store.Graph, row Row) (value.Value, error) {
	if v, ok := row[c.Name]; ok {
		return v, nil
	}
	return value.Null, nil
}

// Prop reads property Prop off the node or edge bound to Entity.
type Prop struct {
	Entity string
	Prop   string
}

func (p Prop) Eval(g *store.Graph, row Row) (value.Value, error) {
	if n, ok := ResolveNode(g, row, p.Entity); ok {
		id, ok := g.Attrs.Lookup(p.Prop)
		if !ok {
			return value.Null, nil
		}
		if v, ok := n.Attrs[id]; ok {
			return v, nil
		}
		return value.Null, nil
	}
	if e, ok := ResolveEdge(g, row, p.Entity); ok {
		id, ok := g.Attrs.Lookup(p.Prop)
		if !ok {
			return value.Null, nil
		}
		if v, ok := e.Attrs[id]; ok {
			return v, nil
		}
		return value.Null, nil
	}
	return value.Null, typeError("exec: %q is not bound to a node or edge", p.Entity)
}

// Unary applies Op ("NOT", "-") to Operand.
type Unary struct {
	Op      string
	Operand Expr
}

func (u Unary) Eval(g *store.Graph, row Row) (value.Value, error) {
	v, err := u.Operand.Eval(g, row)
	if err != nil {
		return value.Null, err
	}
	switch u.Op {
	case "NOT":
		return value.Bool(!toBool(v)), nil
	case "-":
		if f, ok := v.AsFloat(); ok {
			return value.Float(-f), nil
		}
		return value.Null, typeError("exec: operand of unary '-' is not a number")
	}
	return value.Null, typeError("exec: unknown unary operator %q", u.Op)
}

// Binary applies Op to Left and Right. Op is one of:
// = != < <= > >= AND OR + - * / % IN NOT_IN LIKE CONTAINS BEGINS_WITH ENDS_WITH
type Binary struct {
	Op          string
	Left, Right Expr
}

func (b Binary) Eval(g *store.Graph, row Row) (value.Value, error) {
	switch b.Op {
	case "AND":
		return b.boolOp(g, row, func(x, y bool) bool { return x && y }, func(x bool) (bool, bool) {
			if !x {
				return false, true
			}
			return false, false
		})
	case "OR":
		return b.boolOp(g, row, func(x, y bool) bool { return x || y }, func(x bool) (bool, bool) {
			if x {
				return true, true
			}
			return false, false
		})
	}

	left, err := b.Left.Eval(g, row)
	if err != nil {
		return value.Null, err
	}
	right, err := b.Right.Eval(g, row)
	if err != nil {
		return value.Null, err
	}

	switch b.Op {
	case "=":
		return value.Bool(value.Equal(left, right)), nil
	case "!=":
		return value.Bool(!value.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		return compareOp(b.Op, left, right)
	case "+", "-", "*", "/", "%":
		return numOp(b.Op, left, right)
	case "IN", "NOT_IN":
		return inOp(b.Op, left, right)
	case "LIKE":
		return stringOp(b.Op, left, right)
	case "CONTAINS", "BEGINS_WITH", "ENDS_WITH":
		return stringOp(b.Op, left, right)
	}
	return value.Null, typeError("exec: unknown binary operator %q", b.Op)
}

func (b Binary) boolOp(g *store.Graph, row Row, op func(x, y bool) bool, shortCircuit func(bool) (bool, bool)) (value.Value, error) {
	left, err := b.Left.Eval(g, row)
	if err != nil {
		return value.Null, err
	}
	leftBool := toBool(left)
	if v, short := shortCircuit(leftBool); short {
		return value.Bool(v), nil
	}
	right, err := b.Right.Eval(g, row)
	if err != nil {
		return value.Null, err
	}
	return value.Bool(op(leftBool, toBool(right))), nil
}

func toBool(v value.Value) bool {
	switch v.Tag() {
	case value.TagBool:
		b, _ := v.AsBool()
		return b
	case value.TagInt64:
		i, _ := v.AsInt()
		return i != 0
	case value.TagDouble:
		f, _ := v.AsFloat()
		return f != 0
	case value.TagString:
		s, _ := v.AsString()
		return s != ""
	case value.TagNull:
		return false
	}
	return true
}

func compareOp(op string, left, right value.Value) (value.Value, error) {
	cmp, ok := value.Compare(left, right)
	if !ok {
		return value.Null, typeError("exec: %v and %v are not order-comparable", left, right)
	}
	switch op {
	case "<":
		return value.Bool(cmp < 0), nil
	case "<=":
		return value.Bool(cmp <= 0), nil
	case ">":
		return value.Bool(cmp > 0), nil
	case ">=":
		return value.Bool(cmp >= 0), nil
	}
	return value.Null, gerr.New(gerr.InternalInvariant, "exec: unreachable comparison operator %q", op)
}

func numOp(op string, left, right value.Value) (value.Value, error) {
	lf, lok := left.AsFloat()
	rf, rok := right.AsFloat()
	if !lok || !rok {
		return value.Null, typeError("exec: arithmetic operand is not a number")
	}
	switch op {
	case "+":
		return value.Float(lf + rf), nil
	case "-":
		return value.Float(lf - rf), nil
	case "*":
		return value.Float(lf * rf), nil
	case "/":
		if rf == 0 {
			return value.Null, typeError("exec: division by zero")
		}
		return value.Float(lf / rf), nil
	case "%":
		if rf == 0 {
			return value.Null, typeError("exec: modulo by zero")
		}
		return value.Int(int64(lf) % int64(rf)), nil
	}
	return value.Null, gerr.New(gerr.InternalInvariant, "exec: unreachable arithmetic operator %q", op)
}

func inOp(op string, left, right value.Value) (value.Value, error) {
	list, ok := right.AsArray()
	if !ok {
		return value.Null, typeError("exec: right operand of %s is not a list", op)
	}
	found := false
	for _, item := range list {
		if value.Equal(left, item) {
			found = true
			break
		}
	}
	if op == "NOT_IN" {
		found = !found
	}
	return value.Bool(found), nil
}

func stringOp(op string, left, right value.Value) (value.Value, error) {
	ls, lok := left.AsString()
	rs, rok := right.AsString()
	if !lok || !rok {
		return value.Null, typeError("exec: %s operand is not a string", op)
	}
	switch op {
	case "LIKE":
		re, err := regexp.Compile(rs)
		if err != nil {
			return value.Null, gerr.New(gerr.RuntimeTypeError, "exec: %q is not a valid regular expression", rs)
		}
		return value.Bool(re.MatchString(ls)), nil
	case "CONTAINS":
		return value.Bool(strings.Contains(ls, rs)), nil
	case "BEGINS_WITH":
		return value.Bool(strings.HasPrefix(ls, rs)), nil
	case "ENDS_WITH":
		return value.Bool(strings.HasSuffix(ls, rs)), nil
	}
	return value.Null, gerr.New(gerr.InternalInvariant, "exec: unreachable string operator %q", op)
}

// Filter passes rows from Child matching Cond; Next skips non-matching rows
// and keeps pulling until a row matches or Child is exhausted.
type Filter struct {
	Graph *store.Graph
	Child Operator
	Cond  Expr
}

func (f *Filter) Init() error { return f.Child.Init() }

func (f *Filter) Next() (Row, error) {
	for {
		row, err := f.Child.Next()
		if err != nil {
			return nil, err
		}
		v, err := f.Cond.Eval(f.Graph, row)
		if err != nil {
			return nil, err
		}
		if toBool(v) {
			return row, nil
		}
	}
}

func (f *Filter) Reset() error { return f.Child.Reset() }
func (f *Filter) Free()        { f.Child.Free() }
