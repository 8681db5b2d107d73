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
Package plan turns an enriched AST pattern into the algebraic expression
SPEC_FULL.md §4.6.2 describes - a chain of terms built from A_r/L_l matrices
- and builds the physical operator tree (query/exec) that evaluates it.

Building never materializes a dense product: Expr.Expand streams one
frontier at a time through the term chain, the row-at-a-time evaluation
style the traversal section calls for, grounded on the host codebase's own
traversalRuntime (eql/interpreter/traversal.go) resolving one traversal spec
at a time rather than compiling a whole pattern into one join plan upfront.
*/
package plan

import (
	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/matrix"
)

// TermKind identifies what an algebraic Term does to a frontier.
type TermKind int

const (
	// TermRelation fans a node out along A_r (or its transpose).
	TermRelation TermKind = iota
	// TermLabel filters a node by membership in L_l, never expanding it.
	TermLabel
	// TermUnion ORs the results of its sub-terms - the undirected-edge
	// expansion A_r ∪ A_rᵀ is a TermUnion of two TermRelation terms.
	TermUnion
	// TermVarLength expands its Inner term repeatedly, from Min to Max
	// hops, deduplicating the frontier at every hop.
	TermVarLength
)

// Term is one factor in an algebraic expression chain.
type Term struct {
	Kind      TermKind
	Matrix    *matrix.DeltaMatrix
	Transpose bool

	Union []Term

	Inner    *Term
	Min, Max int
}

// Relation builds a TermRelation over m, in or against its stored
// direction.
func Relation(m *matrix.DeltaMatrix, transpose bool) Term {
	return Term{Kind: TermRelation, Matrix: m, Transpose: transpose}
}

// Label builds a TermLabel that filters a frontier node by membership in m.
func Label(m *matrix.DeltaMatrix) Term {
	return Term{Kind: TermLabel, Matrix: m}
}

// Undirected builds the A_r ∪ A_rᵀ expansion SPEC_FULL.md §4.6.2 names.
func Undirected(m *matrix.DeltaMatrix) Term {
	return Term{Kind: TermUnion, Union: []Term{Relation(m, false), Relation(m, true)}}
}

// VarLength builds the masked-powers-of-matrix expansion for a *min..max
// pattern hop.
func VarLength(inner Term, min, max int) Term {
	return Term{Kind: TermVarLength, Inner: &inner, Min: min, Max: max}
}

// Expr is a sequence of terms applied left to right: `result = α·T1·T2·…·Tk`.
type Expr struct {
	Terms []Term
}

// Expand streams src through every term in e, returning the deduplicated
// set of node indices the whole chain reaches.
func (e *Expr) Expand(src int) ([]int, error) {
	frontier := []int{src}
	for _, t := range e.Terms {
		next := make(map[int]bool)
		for _, f := range frontier {
			reached, err := stepTerm(t, f)
			if err != nil {
				return nil, err
			}
			for _, n := range reached {
				next[n] = true
			}
		}
		frontier = setToSlice(next)
		if len(frontier) == 0 {
			break
		}
	}
	return frontier, nil
}

func stepTerm(t Term, i int) ([]int, error) {
	switch t.Kind {
	case TermLabel:
		if _, ok := t.Matrix.Get(i, i); ok {
			return []int{i}, nil
		}
		return nil, nil

	case TermRelation:
		m := t.Matrix
		if !t.Transpose {
			return colsOf(m.Iter(i)), nil
		}
		tr, err := m.Transpose()
		if err != nil {
			return nil, gerr.New(gerr.InternalInvariant, "plan: transpose step failed: %v", err)
		}
		return colsOf(tr.Iter(i)), nil

	case TermUnion:
		seen := make(map[int]bool)
		var out []int
		for _, sub := range t.Union {
			reached, err := stepTerm(sub, i)
			if err != nil {
				return nil, err
			}
			for _, n := range reached {
				if !seen[n] {
					seen[n] = true
					out = append(out, n)
				}
			}
		}
		return out, nil

	case TermVarLength:
		return expandVarLength(t, i)
	}
	return nil, nil
}

func expandVarLength(t Term, src int) ([]int, error) {
	visited := map[int]bool{src: true}
	result := make(map[int]bool)
	frontier := []int{src}

	for depth := 1; depth <= t.Max && len(frontier) > 0; depth++ {
		var next []int
		for _, f := range frontier {
			reached, err := stepTerm(*t.Inner, f)
			if err != nil {
				return nil, err
			}
			for _, n := range reached {
				if !visited[n] {
					visited[n] = true
					next = append(next, n)
				}
			}
		}
		frontier = next
		if depth >= t.Min {
			for _, n := range frontier {
				result[n] = true
			}
		}
	}
	return setToSlice(result), nil
}

func colsOf(entries []matrix.Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Col
	}
	return out
}

func setToSlice(s map[int]bool) []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	return out
}
