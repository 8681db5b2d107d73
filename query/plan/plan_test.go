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
	"testing"

	"github.com/tesseradb/tessera/query/ast"
	"github.com/tesseradb/tessera/store"
)

func nodePattern(varName string, labels ...string) *ast.Node {
	n := &ast.Node{Kind: ast.NODE_PATTERN}
	n.Add(&ast.Node{Kind: ast.IDENTIFIER, Val: varName})
	for _, l := range labels {
		n.Add(&ast.Node{Kind: ast.LABEL, Val: l})
	}
	return n
}

func relPattern(direction string, relType string) *ast.Node {
	n := &ast.Node{Kind: ast.REL_PATTERN, Val: direction}
	n.Add(&ast.Node{Kind: ast.IDENTIFIER, Val: "r"})
	if relType != "" {
		n.Add(&ast.Node{Kind: ast.REL_TYPE, Val: relType})
	}
	return n
}

func TestBuildPathSingleHop(t *testing.T) {
	g := store.New()
	a, _ := g.CreateNode([]string{"Person"}, nil)
	b, _ := g.CreateNode([]string{"Person"}, nil)
	g.CreateEdge(a, b, "KNOWS", nil)

	path := &ast.Node{Kind: ast.PATTERN_PATH}
	path.Add(nodePattern("a"), relPattern("OUT", "KNOWS"), nodePattern("b", "Person"))

	hops, err := BuildPath(path, g)
	if err != nil {
		t.Fatal(err)
	}
	if len(hops) != 1 {
		t.Fatalf("expected 1 hop, got %d", len(hops))
	}

	reached, err := hops[0].Expr.Expand(int(a))
	if err != nil {
		t.Fatal(err)
	}
	if len(reached) != 1 || reached[0] != int(b) {
		t.Fatalf("expected [%d], got %v", b, reached)
	}
}

func TestBuildPathVariableLength(t *testing.T) {
	g := store.New()
	a, _ := g.CreateNode(nil, nil)
	b, _ := g.CreateNode(nil, nil)
	c, _ := g.CreateNode(nil, nil)
	g.CreateEdge(a, b, "KNOWS", nil)
	g.CreateEdge(b, c, "KNOWS", nil)

	path := &ast.Node{Kind: ast.PATTERN_PATH}
	path.Add(nodePattern("a"), relPattern("OUT*1..2", "KNOWS"), nodePattern("x"))

	hops, err := BuildPath(path, g)
	if err != nil {
		t.Fatal(err)
	}

	reached, err := hops[0].Expr.Expand(int(a))
	if err != nil {
		t.Fatal(err)
	}
	if len(reached) != 2 {
		t.Fatalf("expected both b and c reachable within 2 hops, got %v", reached)
	}
}

func TestAssignSyntheticIDsSkipsNamedPatterns(t *testing.T) {
	named := nodePattern("a")
	anon := &ast.Node{Kind: ast.NODE_PATTERN}

	match := &ast.Node{Kind: ast.MATCH}
	match.Add(named, anon)

	counter := 0
	AssignSyntheticIDs(match, &counter)

	if identifierChild(named).Val != "a" {
		t.Fatal("expected named pattern's identifier to survive untouched")
	}
	if id := identifierChild(anon); id == nil || !id.Synthetic {
		t.Fatal("expected anonymous pattern to get a synthetic identifier")
	}
}

func TestResolveIdentifiersAssignsColumns(t *testing.T) {
	proj := &ast.Node{Kind: ast.PROJECTION}
	proj.Add(&ast.Node{Kind: ast.IDENTIFIER, Val: "name"}, &ast.Node{Kind: ast.INTEGER, Val: "1"})

	scope := ResolveIdentifiers(proj)
	if idx, ok := scope.ColumnIndex("name"); !ok || idx != 0 {
		t.Fatalf("expected name at column 0, got %v/%v", idx, ok)
	}
	if idx, ok := scope.ColumnIndex("col1"); !ok || idx != 1 {
		t.Fatalf("expected col1 at column 1, got %v/%v", idx, ok)
	}
}
