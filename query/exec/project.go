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
	"github.com/tesseradb/tessera/store"
	"github.com/tesseradb/tessera/value"
)

// Column names one projected output column.
type Column struct {
	Name string
	Expr Expr
}

// Project reshapes each row from Child into one new Row keyed by Columns'
// names.
type Project struct {
	Graph   *store.Graph
	Child   Operator
	Columns []Column
}

func (p *Project) Init() error { return p.Child.Init() }

func (p *Project) Next() (Row, error) {
	row, err := p.Child.Next()
	if err != nil {
		return nil, err
	}
	out := make(Row, len(p.Columns))
	for _, c := range p.Columns {
		v, err := c.Expr.Eval(p.Graph, row)
		if err != nil {
			return nil, err
		}
		out[c.Name] = v
	}
	return out, nil
}

func (p *Project) Reset() error { return p.Child.Reset() }
func (p *Project) Free()        { p.Child.Free() }

// AggState is one aggregate's progress through its state machine.
type AggState int

const (
	// AggInit: the aggregate has seen no input yet and holds its identity
	// element (0 for sum/count, true for every()/min-over-bool's top).
	AggInit AggState = iota
	// AggAccumulating: at least one input row has been folded in.
	AggAccumulating
	// AggTerminal: a monoid with a known terminal value reached it early
	// (e.g. any() saw true, every() saw false) and ignores further input.
	AggTerminal
	// AggFinalized: Finalize has been called; Value is the output.
	AggFinalized
)

// Aggregator folds a stream of values into one result.
type Aggregator interface {
	// Fold incorporates v, returning the state after folding.
	Fold(v value.Value) AggState
	// State returns the aggregate's current state without folding.
	State() AggState
	// Finalize returns the aggregate's output value and moves it to
	// AggFinalized.
	Finalize() value.Value
}

// CountAgg counts non-null input values (or every row, if CountAll is set).
type CountAgg struct {
	CountAll bool
	n        int64
	state    AggState
}

func (a *CountAgg) Fold(v value.Value) AggState {
	if a.CountAll || !v.IsNull() {
		a.n++
	}
	a.state = AggAccumulating
	return a.state
}
func (a *CountAgg) State() AggState      { return a.state }
func (a *CountAgg) Finalize() value.Value { a.state = AggFinalized; return value.Int(a.n) }

// SumAgg sums numeric input values.
type SumAgg struct {
	sum   float64
	state AggState
}

func (a *SumAgg) Fold(v value.Value) AggState {
	if f, ok := v.AsFloat(); ok {
		a.sum += f
	}
	a.state = AggAccumulating
	return a.state
}
func (a *SumAgg) State() AggState      { return a.state }
func (a *SumAgg) Finalize() value.Value { a.state = AggFinalized; return value.Float(a.sum) }

// MinAgg/MaxAgg track a running extremum over order-comparable values.
type MinAgg struct {
	cur   value.Value
	seen  bool
	state AggState
}

func (a *MinAgg) Fold(v value.Value) AggState {
	if !a.seen {
		a.cur, a.seen = v, true
	} else if cmp, ok := value.Compare(v, a.cur); ok && cmp < 0 {
		a.cur = v
	}
	a.state = AggAccumulating
	return a.state
}
func (a *MinAgg) State() AggState      { return a.state }
func (a *MinAgg) Finalize() value.Value { a.state = AggFinalized; return a.cur }

type MaxAgg struct {
	cur   value.Value
	seen  bool
	state AggState
}

func (a *MaxAgg) Fold(v value.Value) AggState {
	if !a.seen {
		a.cur, a.seen = v, true
	} else if cmp, ok := value.Compare(v, a.cur); ok && cmp > 0 {
		a.cur = v
	}
	a.state = AggAccumulating
	return a.state
}
func (a *MaxAgg) State() AggState      { return a.state }
func (a *MaxAgg) Finalize() value.Value { a.state = AggFinalized; return a.cur }

// AnyAgg is true if any folded value is true; it is the monoid with a known
// terminal value (true) SPEC_FULL.md's aggregate state machine calls out -
// Fold moves straight to AggTerminal the moment it sees true and ignores
// every row after.
type AnyAgg struct {
	cur   bool
	state AggState
}

func (a *AnyAgg) Fold(v value.Value) AggState {
	if a.state == AggTerminal {
		return a.state
	}
	if toBool(v) {
		a.cur = true
		a.state = AggTerminal
	} else {
		a.state = AggAccumulating
	}
	return a.state
}
func (a *AnyAgg) State() AggState      { return a.state }
func (a *AnyAgg) Finalize() value.Value { a.state = AggFinalized; return value.Bool(a.cur) }

// EveryAgg is the dual of AnyAgg: terminal the moment it sees false.
type EveryAgg struct {
	cur   bool
	state AggState
}

// NewEveryAgg returns an EveryAgg at its identity element (true), since
// vacuous truth is every()'s Init state.
func NewEveryAgg() *EveryAgg { return &EveryAgg{cur: true} }

func (a *EveryAgg) Fold(v value.Value) AggState {
	if a.state == AggTerminal {
		return a.state
	}
	if !toBool(v) {
		a.cur = false
		a.state = AggTerminal
	} else {
		a.state = AggAccumulating
	}
	return a.state
}
func (a *EveryAgg) State() AggState      { return a.state }
func (a *EveryAgg) Finalize() value.Value { a.state = AggFinalized; return value.Bool(a.cur) }

// AggColumn names one aggregate output column and the expression folded
// into it.
type AggColumn struct {
	Name string
	Expr Expr
	New  func() Aggregator
}

// Aggregate is a blocking operator: it drains Child entirely before
// producing its single output row (or one row per distinct GroupBy key
// tuple, when GroupBy is non-empty).
type Aggregate struct {
	Graph   *store.Graph
	Child   Operator
	GroupBy []Column
	Aggs    []AggColumn

	rows    []Row
	pos     int
	drained bool
}

func (a *Aggregate) Init() error { return a.Child.Init() }

func (a *Aggregate) drain() error {
	order := make([]string, 0)
	keyVals := make(map[string][]value.Value)
	aggsByKey := make(map[string][]Aggregator)

	for {
		row, err := a.Child.Next()
		if err == Done {
			break
		}
		if err != nil {
			return err
		}

		key, vals, err := a.groupKey(row)
		if err != nil {
			return err
		}

		aggs, ok := aggsByKey[key]
		if !ok {
			order = append(order, key)
			keyVals[key] = vals
			aggs = make([]Aggregator, len(a.Aggs))
			for i, ac := range a.Aggs {
				aggs[i] = ac.New()
			}
			aggsByKey[key] = aggs
		}

		for i, ac := range a.Aggs {
			v, err := ac.Expr.Eval(a.Graph, row)
			if err != nil {
				return err
			}
			aggs[i].Fold(v)
		}
	}

	if len(order) == 0 && len(a.GroupBy) == 0 {
		order = append(order, "")
		aggsByKey[""] = make([]Aggregator, len(a.Aggs))
		for i, ac := range a.Aggs {
			aggsByKey[""][i] = ac.New()
		}
	}

	a.rows = make([]Row, 0, len(order))
	for _, key := range order {
		out := make(Row, len(a.GroupBy)+len(a.Aggs))
		for i, gb := range a.GroupBy {
			out[gb.Name] = keyVals[key][i]
		}
		for i, ac := range a.Aggs {
			out[ac.Name] = aggsByKey[key][i].Finalize()
		}
		a.rows = append(a.rows, out)
	}

	a.drained = true
	return nil
}

func (a *Aggregate) groupKey(row Row) (string, []value.Value, error) {
	vals := make([]value.Value, len(a.GroupBy))
	key := ""
	for i, gb := range a.GroupBy {
		v, err := gb.Expr.Eval(a.Graph, row)
		if err != nil {
			return "", nil, err
		}
		vals[i] = v
		key += v.String() + "\x1f"
	}
	return key, vals, nil
}

func (a *Aggregate) Next() (Row, error) {
	if !a.drained {
		if err := a.drain(); err != nil {
			return nil, err
		}
	}
	if a.pos >= len(a.rows) {
		return nil, Done
	}
	row := a.rows[a.pos]
	a.pos++
	return row, nil
}

func (a *Aggregate) Reset() error {
	a.rows, a.pos, a.drained = nil, 0, false
	return a.Child.Reset()
}

func (a *Aggregate) Free() {
	a.Child.Free()
	a.rows = nil
}
