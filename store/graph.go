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
	"github.com/krotik/common/errorutil"

	"github.com/tesseradb/tessera/attr"
	"github.com/tesseradb/tessera/constraint"
	"github.com/tesseradb/tessera/index"
	"github.com/tesseradb/tessera/matrix"
	"github.com/tesseradb/tessera/value"

	"sync"
)

// initialDim is the starting node-id capacity of a fresh Graph's matrices;
// ensureCapacityLocked doubles from here as nodes are created.
const initialDim = 16

// Graph is a single property graph: its attribute/label/relation pools, its
// node and edge records, and the ADJ/A_r/L_l delta-matrix family that
// encodes its adjacency. A Graph is the one partition Tessera supports -
// SPEC_FULL.md's "partitions()" generalization over multiple named graphs is
// the embedding host's job (one Graph per name), not something a single
// Graph needs to model internally.
type Graph struct {
	mu sync.RWMutex

	Labels    *attr.Pool
	Relations *attr.Pool
	Attrs     *attr.Pool

	nodes map[NodeID]*Node
	edges map[EdgeID]*Edge

	nextNodeID  NodeID
	freeNodeIDs []NodeID // reusable now (post-flush)
	freedThisTx []NodeID // freed since the last flush, not yet reusable

	nextEdgeID     EdgeID
	freeEdgeIDs    []EdgeID
	edgesFreedThisTx []EdgeID

	dim int // current node-id capacity shared by every matrix

	adj           *matrix.DeltaMatrix
	adjRefCount   map[pairKey]int
	relMatrices   map[attr.ID]*matrix.DeltaMatrix
	labelMatrices map[attr.ID]*matrix.DeltaMatrix

	// edgesBetween is the multi-edge side table SPEC_FULL.md §3 describes:
	// (relation, src, dst) -> every EdgeID currently connecting that
	// ordered pair under that relation, in creation order.
	edgesBetween map[multiKey][]EdgeID

	outEdges map[NodeID][]EdgeID
	inEdges  map[NodeID][]EdgeID

	nodeCountByLabel    map[attr.ID]int
	edgeCountByRelation map[attr.ID]int

	nodeIndexes map[attr.ID][]index.Shadow
	edgeIndexes map[attr.ID][]index.Shadow

	nodeConstraints *constraint.Registry
	edgeConstraints *constraint.Registry
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		Labels:    attr.NewPool(),
		Relations: attr.NewPool(),
		Attrs:     attr.NewPool(),

		nodes: make(map[NodeID]*Node),
		edges: make(map[EdgeID]*Edge),

		dim: initialDim,

		adj:           matrix.New(initialDim),
		adjRefCount:   make(map[pairKey]int),
		relMatrices:   make(map[attr.ID]*matrix.DeltaMatrix),
		labelMatrices: make(map[attr.ID]*matrix.DeltaMatrix),

		edgesBetween: make(map[multiKey][]EdgeID),
		outEdges:     make(map[NodeID][]EdgeID),
		inEdges:      make(map[NodeID][]EdgeID),

		nodeCountByLabel:    make(map[attr.ID]int),
		edgeCountByRelation: make(map[attr.ID]int),

		nodeIndexes: make(map[attr.ID][]index.Shadow),
		edgeIndexes: make(map[attr.ID][]index.Shadow),

		nodeConstraints: constraint.NewRegistry(),
		edgeConstraints: constraint.NewRegistry(),
	}
}

// RegisterNodeIndex attaches shadow to every create/update/delete of a node
// carrying label. Registration is a schema-setup operation, not itself
// concurrency-guarded against simultaneous writes - callers register
// indexes before opening the graph to traffic.
func (g *Graph) RegisterNodeIndex(label string, shadow index.Shadow) {
	id := g.Labels.Intern(label)
	g.nodeIndexes[id] = append(g.nodeIndexes[id], shadow)
}

// RegisterEdgeIndex attaches shadow to every create/update/delete of an edge
// of relation.
func (g *Graph) RegisterEdgeIndex(relation string, shadow index.Shadow) {
	id := g.Relations.Intern(relation)
	g.edgeIndexes[id] = append(g.edgeIndexes[id], shadow)
}

// NodeConstraints returns the registry enforced on every node create/update.
// Callers Add constraints to it and Activate them before relying on
// enforcement.
func (g *Graph) NodeConstraints() *constraint.Registry { return g.nodeConstraints }

// EdgeConstraints returns the registry enforced on every edge create/update.
func (g *Graph) EdgeConstraints() *constraint.Registry { return g.edgeConstraints }

// attrsView flattens a typed attribute map into the string-keyed,
// string-valued view package index and package constraint consume. Strings
// render without the quoting value.Value.String adds for debug output, so a
// plain string attribute indexes/matches under its literal contents.
func (g *Graph) attrsView(attrs map[attr.ID]value.Value) index.Attrs {
	view := make(index.Attrs, len(attrs))
	for id, v := range attrs {
		name := g.Attrs.NameOf(id)
		if s, ok := v.AsString(); ok {
			view[name] = s
		} else {
			view[name] = v.String()
		}
	}
	return view
}

func (g *Graph) allocNodeIDLocked() NodeID {
	if n := len(g.freeNodeIDs); n > 0 {
		id := g.freeNodeIDs[n-1]
		g.freeNodeIDs = g.freeNodeIDs[:n-1]
		return id
	}
	id := g.nextNodeID
	g.nextNodeID++
	return id
}

// releaseNodeIDLocked undoes allocNodeIDLocked for a create that failed
// before it was ever made visible, keeping a failed create from burning an
// ID (all-or-nothing within a single operation).
func (g *Graph) releaseNodeIDLocked(id NodeID) {
	if id == g.nextNodeID-1 {
		g.nextNodeID--
		return
	}
	g.freeNodeIDs = append(g.freeNodeIDs, id)
}

func (g *Graph) allocEdgeIDLocked() EdgeID {
	if n := len(g.freeEdgeIDs); n > 0 {
		id := g.freeEdgeIDs[n-1]
		g.freeEdgeIDs = g.freeEdgeIDs[:n-1]
		return id
	}
	id := g.nextEdgeID
	g.nextEdgeID++
	return id
}

func (g *Graph) releaseEdgeIDLocked(id EdgeID) {
	if id == g.nextEdgeID-1 {
		g.nextEdgeID--
		return
	}
	g.freeEdgeIDs = append(g.freeEdgeIDs, id)
}

// ensureCapacityLocked grows every matrix so that index n is addressable,
// doubling geometrically from the current dimension. An allocation failure
// inside Resize is not possible for the in-memory map-backed DeltaMatrix, so
// this never needs to unwind a partial grow - OOM during growth is a
// property of the matrix's own growth path (see matrix.DeltaMatrix.Resize),
// not something store layers on top.
func (g *Graph) ensureCapacityLocked(n int) {
	if n <= g.dim {
		return
	}
	newDim := g.dim
	for newDim < n {
		newDim *= 2
	}
	g.dim = newDim

	g.adj.Resize(newDim)
	for _, m := range g.relMatrices {
		m.Resize(newDim)
	}
	for _, m := range g.labelMatrices {
		m.Resize(newDim)
	}
}

func (g *Graph) labelMatrixLocked(id attr.ID) *matrix.DeltaMatrix {
	m, ok := g.labelMatrices[id]
	if !ok {
		m = matrix.New(g.dim)
		g.labelMatrices[id] = m
	}
	return m
}

func (g *Graph) relMatrixLocked(id attr.ID) *matrix.DeltaMatrix {
	m, ok := g.relMatrices[id]
	if !ok {
		m = matrix.New(g.dim)
		g.relMatrices[id] = m
	}
	return m
}

// requireNodeLocked resolves id to its record. A missing node is a
// programmer error per SPEC_FULL.md §4.3 ("dangling src/dst ... treated as
// programmer errors").
func (g *Graph) requireNodeLocked(id NodeID) *Node {
	n, ok := g.nodes[id]
	errorutil.AssertTrue(ok, "store: unknown node id")
	return n
}

func (g *Graph) requireEdgeLocked(id EdgeID) *Edge {
	e, ok := g.edges[id]
	errorutil.AssertTrue(ok, "store: unknown edge id")
	return e
}

// internToAttrs interns every property name in props and returns the
// resulting AttributeID-keyed copy a Node/Edge record stores.
func internToAttrs(pool *attr.Pool, props map[string]value.Value) map[attr.ID]value.Value {
	out := make(map[attr.ID]value.Value, len(props))
	for name, v := range props {
		out[pool.Intern(name)] = v
	}
	return out
}
