/*
 * Tessera
 *
 * Copyright 2024 The Tessera Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package plan

import (
	"strconv"
	"strings"

	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/matrix"
	"github.com/tesseradb/tessera/query/ast"
	"github.com/tesseradb/tessera/store"
)

// Hop is one NODE_PATTERN-REL_PATTERN-NODE_PATTERN step of a pattern path,
// algebrized into the Expr that ConditionalTraverse (query/exec) streams a
// source row through.
//
// A REL_PATTERN's Val encodes "<direction>" or "<direction>*<min>..<max>"
// (e.g. "OUT", "BOTH*1..3") - the opaque AST contract names only the node
// kinds, not a field layout, so this is this module's own convention for
// what a REL_PATTERN carries, analogous to the host codebase's own
// colon-joined traversal spec strings (eql/interpreter/traversal.go's
// "kind:role:role:kind").
type Hop struct {
	FromVar, ToVar string
	Expr           *Expr
}

// BuildPath algebrizes every hop of a PATTERN_PATH's NODE_PATTERN/
// REL_PATTERN sequence against g's current label/relation matrices.
func BuildPath(path *ast.Node, g *store.Graph) ([]Hop, error) {
	var hops []Hop

	for i := 0; i+2 < len(path.Children); i += 2 {
		fromNode := path.Children[i]
		rel := path.Children[i+1]
		toNode := path.Children[i+2]

		if fromNode.Kind != ast.NODE_PATTERN || rel.Kind != ast.REL_PATTERN || toNode.Kind != ast.NODE_PATTERN {
			return nil, gerr.New(gerr.SemanticError, "plan: malformed pattern path at hop %d", i/2)
		}

		expr, err := buildHopExpr(rel, toNode, g)
		if err != nil {
			return nil, err
		}

		hops = append(hops, Hop{
			FromVar: mustIdentifier(fromNode),
			ToVar:   mustIdentifier(toNode),
			Expr:    expr,
		})
	}

	return hops, nil
}

func buildHopExpr(rel, toNode *ast.Node, g *store.Graph) (*Expr, error) {
	direction, min, max, err := parseRelSpec(rel.Val)
	if err != nil {
		return nil, err
	}

	var relTerm Term
	relTypes := relTypeNames(rel)

	switch {
	case len(relTypes) == 0:
		relTerm = relationTerm(g.AdjMatrix(), direction)
	case len(relTypes) == 1:
		relTerm = relationTerm(g.RelationMatrix(relTypes[0]), direction)
	default:
		union := make([]Term, 0, len(relTypes))
		for _, rt := range relTypes {
			union = append(union, relationTerm(g.RelationMatrix(rt), direction))
		}
		relTerm = Term{Kind: TermUnion, Union: union}
	}

	if min != 1 || max != 1 {
		relTerm = VarLength(relTerm, min, max)
	}

	terms := []Term{relTerm}
	for _, label := range labelNames(toNode) {
		terms = append(terms, Label(g.LabelMatrix(label)))
	}

	return &Expr{Terms: terms}, nil
}

// relationTerm builds the Term for one relation matrix under direction
// "OUT" (forward), "IN" (transposed), or "BOTH" (the A_r ∪ A_rᵀ union).
func relationTerm(m *matrix.DeltaMatrix, direction string) Term {
	switch direction {
	case "IN":
		return Relation(m, true)
	case "BOTH":
		return Undirected(m)
	default:
		return Relation(m, false)
	}
}

func labelNames(node *ast.Node) []string {
	var out []string
	for _, c := range node.Children {
		if c.Kind == ast.LABEL {
			out = append(out, c.Val)
		}
	}
	return out
}

func relTypeNames(rel *ast.Node) []string {
	var out []string
	for _, c := range rel.Children {
		if c.Kind == ast.REL_TYPE {
			out = append(out, c.Val)
		}
	}
	return out
}

func mustIdentifier(n *ast.Node) string {
	if id := identifierChild(n); id != nil {
		return id.Val
	}
	return ""
}

// parseRelSpec parses a REL_PATTERN's Val ("OUT", "IN", "BOTH",
// "OUT*1..3", ...) into a direction keyword and a hop range. A bare
// direction (no "*") means exactly one hop.
func parseRelSpec(val string) (direction string, min, max int, err error) {
	parts := strings.SplitN(val, "*", 2)
	direction = parts[0]
	if direction == "" {
		direction = "OUT"
	}
	if len(parts) == 1 {
		return direction, 1, 1, nil
	}

	rng := strings.SplitN(parts[1], "..", 2)
	min, err = strconv.Atoi(rng[0])
	if err != nil {
		return "", 0, 0, gerr.New(gerr.SyntaxError, "plan: invalid variable-length hop range %q", val)
	}
	if len(rng) == 1 {
		max = min
		return direction, min, max, nil
	}
	max, err = strconv.Atoi(rng[1])
	if err != nil {
		return "", 0, 0, gerr.New(gerr.SyntaxError, "plan: invalid variable-length hop range %q", val)
	}
	return direction, min, max, nil
}
