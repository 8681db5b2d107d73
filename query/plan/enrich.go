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
	"fmt"

	"github.com/tesseradb/tessera/query/ast"
)

// AssignSyntheticIDs walks a MATCH clause's patterns and gives every
// NODE_PATTERN/REL_PATTERN lacking an explicit IDENTIFIER child a stable
// synthetic one, so every pattern element has a name later stages (and
// EXPLAIN output) can refer to. counter is threaded across a whole
// statement so synthetic names never collide across multiple patterns.
func AssignSyntheticIDs(n *ast.Node, counter *int) {
	if n == nil {
		return
	}
	if n.Kind == ast.NODE_PATTERN || n.Kind == ast.REL_PATTERN {
		if identifierChild(n) == nil {
			name := fmt.Sprintf("_anon%d", *counter)
			*counter++
			n.Children = append([]*ast.Node{{Kind: ast.IDENTIFIER, Val: name, Synthetic: true}}, n.Children...)
		}
	}
	for _, c := range n.Children {
		AssignSyntheticIDs(c, counter)
	}
}

func identifierChild(n *ast.Node) *ast.Node {
	for _, c := range n.Children {
		if c.Kind == ast.IDENTIFIER {
			return c
		}
	}
	return nil
}

// NamedPath annotates one PATTERN_PATH bound to a name via a WITH/RETURN
// projection (`path = (a)-[]->(b)`): the path's own identifier plus every
// node/relationship identifier along it, in order.
type NamedPath struct {
	Name     string
	Elements []string
}

// AnnotateNamedPaths scans match's PATTERN_PATH children for a leading
// Val (the bound path name, empty if the pattern is not path-bound) and
// returns one NamedPath per bound pattern, in source order.
func AnnotateNamedPaths(match *ast.Node) []NamedPath {
	var out []NamedPath
	for _, pattern := range match.Children {
		if pattern.Kind != ast.PATTERN {
			continue
		}
		for _, path := range pattern.Children {
			if path.Kind != ast.PATTERN_PATH || path.Val == "" {
				continue
			}
			var elems []string
			for _, el := range path.Children {
				if id := identifierChild(el); id != nil {
					elems = append(elems, id.Val)
				}
			}
			out = append(out, NamedPath{Name: path.Val, Elements: elems})
		}
	}
	return out
}

// Scope resolves an identifier to its column index in a projection's output
// tuple.
type Scope struct {
	columns []string
	index   map[string]int
}

// ResolveIdentifiers walks projection's PROJECTION children in order,
// assigning each a column index. An IDENTIFIER projected bare keeps its own
// name as the column name; any other expression kind is named by its
// position (`col0`, `col1`, ...) unless renamed by a following AS node - AS
// handling is left to the caller, since SPEC_FULL.md's AST contract does not
// fix how AS attaches to a PROJECTION child.
func ResolveIdentifiers(projection *ast.Node) *Scope {
	s := &Scope{index: make(map[string]int)}
	for _, col := range projection.Children {
		name := col.Val
		if name == "" || col.Kind != ast.IDENTIFIER {
			name = fmt.Sprintf("col%d", len(s.columns))
		}
		s.index[name] = len(s.columns)
		s.columns = append(s.columns, name)
	}
	return s
}

// ColumnIndex returns the column index bound to name, or ok=false.
func (s *Scope) ColumnIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Columns returns the projection's column names in order.
func (s *Scope) Columns() []string {
	return append([]string{}, s.columns...)
}
