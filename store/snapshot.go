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
	"github.com/tesseradb/tessera/attr"
	"github.com/tesseradb/tessera/index"
	"github.com/tesseradb/tessera/matrix"
	"github.com/tesseradb/tessera/value"
)

// RestoreNode installs a node record under an explicit id, bypassing the
// allocator, constraints, and indexes. Package snapshot uses this while
// reloading a graph: node/edge data is replayed first, and indexes and
// constraints are rebuilt afterward from the fully-populated store, rather
// than re-checked write by write as the original creates were.
func (g *Graph) RestoreNode(id NodeID, labels []string, attrs map[string]value.Value) {
	g.mu.Lock()
	defer g.mu.Unlock()

	labelIDs := make([]attr.ID, 0, len(labels))
	for _, l := range labels {
		labelIDs = append(labelIDs, g.Labels.Intern(l))
	}
	labelSet := make(map[attr.ID]bool, len(labelIDs))
	for _, lid := range labelIDs {
		labelSet[lid] = true
	}

	node := &Node{ID: id, Labels: labelSet, Attrs: internToAttrs(g.Attrs, attrs)}

	g.ensureCapacityLocked(int(id) + 1)
	g.nodes[id] = node

	for _, lid := range labelIDs {
		g.labelMatrixLocked(lid).Set(int(id), int(id), matrix.CellSingle)
		g.nodeCountByLabel[lid]++
	}
}

// RestoreEdge installs an edge record under an explicit id the same way
// RestoreNode does for a node. src and dst must already have been restored.
func (g *Graph) RestoreEdge(id EdgeID, src, dst NodeID, relation string, attrs map[string]value.Value) {
	g.mu.Lock()
	defer g.mu.Unlock()

	relID := g.Relations.Intern(relation)
	edge := &Edge{ID: id, Src: src, Dst: dst, Relation: relID, Attrs: internToAttrs(g.Attrs, attrs)}
	g.edges[id] = edge

	key := multiKey{rel: relID, src: src, dst: dst}
	g.edgesBetween[key] = append(g.edgesBetween[key], id)

	rm := g.relMatrixLocked(relID)
	if len(g.edgesBetween[key]) == 1 {
		rm.Set(int(src), int(dst), matrix.CellSingle)
	} else {
		rm.Set(int(src), int(dst), matrix.CellMulti)
	}

	pk := pairKey{src: src, dst: dst}
	if g.adjRefCount[pk] == 0 {
		g.adj.Set(int(src), int(dst), matrix.CellSingle)
	}
	g.adjRefCount[pk]++

	g.outEdges[src] = append(g.outEdges[src], id)
	g.inEdges[dst] = append(g.inEdges[dst], id)
	g.edgeCountByRelation[relID]++
}

// NodeAllocState returns the node-id allocator's current high-water mark and
// reusable free list, for package snapshot to persist alongside DELETED_NODES.
func (g *Graph) NodeAllocState() (next NodeID, free []NodeID) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nextNodeID, append([]NodeID{}, g.freeNodeIDs...)
}

// EdgeAllocState is NodeAllocState's edge counterpart.
func (g *Graph) EdgeAllocState() (next EdgeID, free []EdgeID) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nextEdgeID, append([]EdgeID{}, g.freeEdgeIDs...)
}

// SetNodeAllocState restores the node-id allocator's high-water mark and
// immediately-reusable free list, so that the first CreateNode after a
// snapshot load picks up exactly where the snapshotted graph left off.
func (g *Graph) SetNodeAllocState(next NodeID, free []NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextNodeID = next
	g.freeNodeIDs = append([]NodeID{}, free...)
}

// SetEdgeAllocState is SetNodeAllocState's edge-id counterpart.
func (g *Graph) SetEdgeAllocState(next EdgeID, free []EdgeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextEdgeID = next
	g.freeEdgeIDs = append([]EdgeID{}, free...)
}

// NodeIndexes returns the shadows registered for label, for package
// snapshot to describe in GRAPH_SCHEMA.
func (g *Graph) NodeIndexes(label string) []index.Shadow {
	g.mu.RLock()
	defer g.mu.RUnlock()
	lid, ok := g.Labels.Lookup(label)
	if !ok {
		return nil
	}
	return append([]index.Shadow{}, g.nodeIndexes[lid]...)
}

// EdgeIndexes is NodeIndexes' relation counterpart.
func (g *Graph) EdgeIndexes(relation string) []index.Shadow {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rid, ok := g.Relations.Lookup(relation)
	if !ok {
		return nil
	}
	return append([]index.Shadow{}, g.edgeIndexes[rid]...)
}

// RebuildNodeIndex hands shadow every currently live node carrying label so
// it can repopulate itself after a snapshot load bypassed the normal
// Index/Unindex write path, and registers it for label's later writes.
func (g *Graph) RebuildNodeIndex(label string, shadow index.Shadow) error {
	g.mu.RLock()
	lid, ok := g.Labels.Lookup(label)
	if !ok {
		g.mu.RUnlock()
		return shadow.Rebuild(nil)
	}
	var entities []index.Entity
	for id, n := range g.nodes {
		if n.HasLabel(lid) {
			entities = append(entities, index.Entity{ID: uint64(id), Attrs: g.attrsView(n.Attrs)})
		}
	}
	g.mu.RUnlock()

	g.RegisterNodeIndex(label, shadow)
	return shadow.Rebuild(entities)
}

// RebuildEdgeIndex is RebuildNodeIndex's edge counterpart.
func (g *Graph) RebuildEdgeIndex(relation string, shadow index.Shadow) error {
	g.mu.RLock()
	rid, ok := g.Relations.Lookup(relation)
	if !ok {
		g.mu.RUnlock()
		return shadow.Rebuild(nil)
	}
	var entities []index.Entity
	for id, e := range g.edges {
		if e.Relation == rid {
			entities = append(entities, index.Entity{ID: uint64(id), Attrs: g.attrsView(e.Attrs)})
		}
	}
	g.mu.RUnlock()

	g.RegisterEdgeIndex(relation, shadow)
	return shadow.Rebuild(entities)
}

// NodeEntities returns every live node carrying label as an index.Entity,
// for activating a Mandatory/Unique constraint against the store's current
// contents (see constraint.Constraint.Activate).
func (g *Graph) NodeEntities(label string) []index.Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()

	lid, ok := g.Labels.Lookup(label)
	if !ok {
		return nil
	}
	var out []index.Entity
	for id, n := range g.nodes {
		if n.HasLabel(lid) {
			out = append(out, index.Entity{ID: uint64(id), Attrs: g.attrsView(n.Attrs)})
		}
	}
	return out
}

// EdgeEntities is NodeEntities' edge counterpart.
func (g *Graph) EdgeEntities(relation string) []index.Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rid, ok := g.Relations.Lookup(relation)
	if !ok {
		return nil
	}
	var out []index.Entity
	for id, e := range g.edges {
		if e.Relation == rid {
			out = append(out, index.Entity{ID: uint64(id), Attrs: g.attrsView(e.Attrs)})
		}
	}
	return out
}
