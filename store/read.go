/*
 * Tessera
 *
 * Copyright 2024 The Tessera Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package store

import (
	"sort"

	"github.com/tesseradb/tessera/attr"
	"github.com/tesseradb/tessera/matrix"
)

// Direction selects which side of an edge Traverse follows.
type Direction int

const (
	// Outgoing follows edges where the given node is the source.
	Outgoing Direction = iota
	// Incoming follows edges where the given node is the destination.
	Incoming
)

// FetchNode returns node's record, or ok=false if it does not exist (e.g.
// deleted, or never created). The returned *Node is the store's own record;
// callers that need to retain it past the query that fetched it must copy
// what they need, per the borrowed-reference ownership rule.
func (g *Graph) FetchNode(id NodeID) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// FetchEdge returns edge's record, or ok=false if it does not exist.
func (g *Graph) FetchEdge(id EdgeID) (*Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	return e, ok
}

// Traverse returns every node reachable from node by a single edge of
// relation in the given direction. It reads the store's node-keyed edge
// lists rather than the relation matrix directly, since a single matrix
// cell only records presence and the multi-edge tag, not which relation or
// endpoint it belongs to - the per-node edge lists are the O(1)-per-hop path
// to that information.
func (g *Graph) Traverse(node NodeID, relation string, dir Direction) ([]NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	relID, ok := g.Relations.Lookup(relation)
	if !ok {
		return nil, nil
	}

	var candidates []EdgeID
	if dir == Outgoing {
		candidates = g.outEdges[node]
	} else {
		candidates = g.inEdges[node]
	}

	var out []NodeID
	for _, eid := range candidates {
		e := g.edges[eid]
		if e == nil || e.Relation != relID {
			continue
		}
		if dir == Outgoing {
			out = append(out, e.Dst)
		} else {
			out = append(out, e.Src)
		}
	}
	return out, nil
}

// LiveNodeIDs returns every currently allocated NodeID, ascending. AllNodeScan
// (query/exec) uses this for a stable, single-query ordering.
func (g *Graph) LiveNodeIDs() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LiveEdgeIDs returns every currently allocated EdgeID, ascending. Package
// snapshot uses this to walk the EDGES phase in a stable order.
func (g *Graph) LiveEdgeIDs() []EdgeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]EdgeID, 0, len(g.edges))
	for id := range g.edges {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NodesWithLabel returns every live NodeID carrying labelID, ascending.
func (g *Graph) NodesWithLabel(labelID attr.ID) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]NodeID, 0)
	for id, n := range g.nodes {
		if n.HasLabel(labelID) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NodeCount returns the number of live nodes carrying label.
func (g *Graph) NodeCount(label string) uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	lid, ok := g.Labels.Lookup(label)
	if !ok {
		return 0
	}
	if n := g.nodeCountByLabel[lid]; n > 0 {
		return uint64(n)
	}
	return 0
}

// EdgeCount returns the number of live edges of relation.
func (g *Graph) EdgeCount(relation string) uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rid, ok := g.Relations.Lookup(relation)
	if !ok {
		return 0
	}
	if n := g.edgeCountByRelation[rid]; n > 0 {
		return uint64(n)
	}
	return 0
}

// AdjMatrix returns the ADJ matrix (the logical OR of every A_r), for the
// query planner's algebraic expression building.
func (g *Graph) AdjMatrix() *matrix.DeltaMatrix {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj
}

// RelationMatrix returns A_rel, creating it empty if relation has never
// been used, so the planner can build an expression over a relation with no
// edges yet.
func (g *Graph) RelationMatrix(relation string) *matrix.DeltaMatrix {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.relMatrixLocked(g.Relations.Intern(relation))
}

// LabelMatrix returns L_label the same way RelationMatrix returns A_rel.
func (g *Graph) LabelMatrix(label string) *matrix.DeltaMatrix {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.labelMatrixLocked(g.Labels.Intern(label))
}
