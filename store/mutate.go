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
	"github.com/tesseradb/tessera/matrix"
	"github.com/tesseradb/tessera/value"
)

// CreateNode allocates a NodeID (reusing a freed one if available), writes
// the node record, marks it present in every relevant L_l, and broadcasts
// it to every index and constraint registered on its labels.
//
// A Mandatory/Unique violation on any label aborts the create entirely: no
// node record is installed, no matrix cell is set, and the allocated ID is
// released rather than burned, matching the "OOM/violation leaves the store
// untouched" all-or-nothing contract.
func (g *Graph) CreateNode(labels []string, props map[string]value.Value) (NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.allocNodeIDLocked()

	attrs := internToAttrs(g.Attrs, props)
	view := g.attrsView(attrs)

	labelIDs := make([]attr.ID, 0, len(labels))
	for _, l := range labels {
		labelIDs = append(labelIDs, g.Labels.Intern(l))
	}

	for _, lid := range labelIDs {
		lname := g.Labels.NameOf(lid)
		if err := g.nodeConstraints.CheckCreate(lname, uint64(id), view); err != nil {
			g.releaseNodeIDLocked(id)
			return 0, err
		}
	}

	labelSet := make(map[attr.ID]bool, len(labelIDs))
	for _, lid := range labelIDs {
		labelSet[lid] = true
	}

	node := &Node{ID: id, Labels: labelSet, Attrs: attrs}

	g.ensureCapacityLocked(int(id) + 1)
	g.nodes[id] = node

	for _, lid := range labelIDs {
		g.labelMatrixLocked(lid).Set(int(id), int(id), matrix.CellSingle)
		g.nodeCountByLabel[lid]++
	}

	for _, lid := range labelIDs {
		lname := g.Labels.NameOf(lid)
		for _, shadow := range g.nodeIndexes[lid] {
			shadow.Index(uint64(id), view)
		}
		g.nodeConstraints.Observe(lname, uint64(id), nil, view)
	}

	return id, nil
}

// DeleteNode removes id's incident edges (both directions), clears it from
// every label matrix, removes the node record, and schedules the NodeID for
// reuse once the next flush completes.
func (g *Graph) DeleteNode(id NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.requireNodeLocked(id)

	incident := make(map[EdgeID]bool)
	for _, e := range g.outEdges[id] {
		incident[e] = true
	}
	for _, e := range g.inEdges[id] {
		incident[e] = true
	}
	for e := range incident {
		g.deleteEdgeLocked(e)
	}

	view := g.attrsView(node.Attrs)
	for lid := range node.Labels {
		g.labelMatrixLocked(lid).Clear(int(id), int(id))
		g.nodeCountByLabel[lid]--

		lname := g.Labels.NameOf(lid)
		for _, shadow := range g.nodeIndexes[lid] {
			shadow.Unindex(uint64(id), view)
		}
		g.nodeConstraints.Forget(lname, uint64(id), view)
	}

	delete(g.nodes, id)
	g.freedThisTx = append(g.freedThisTx, id)
}

// CreateEdge writes the edge record and inserts (src, dst) into A_rel,
// upgrading the cell to the multi-edge tag when a second parallel edge of
// the same relation joins the same ordered pair, and maintaining the
// (relation, src, dst) -> []EdgeID side table that backs that tag.
func (g *Graph) CreateEdge(src, dst NodeID, relation string, props map[string]value.Value) (EdgeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requireNodeLocked(src)
	g.requireNodeLocked(dst)

	relID := g.Relations.Intern(relation)
	id := g.allocEdgeIDLocked()

	attrs := internToAttrs(g.Attrs, props)
	view := g.attrsView(attrs)

	if err := g.edgeConstraints.CheckCreate(relation, uint64(id), view); err != nil {
		g.releaseEdgeIDLocked(id)
		return 0, err
	}

	edge := &Edge{ID: id, Src: src, Dst: dst, Relation: relID, Attrs: attrs}
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

	for _, shadow := range g.edgeIndexes[relID] {
		shadow.Index(uint64(id), view)
	}
	g.edgeConstraints.Observe(relation, uint64(id), nil, view)

	return id, nil
}

// DeleteEdge removes id from A_rel and the multi-edge side table, downgrading
// the cell's tag when only one parallel edge remains, and clears ADJ[src,dst]
// once no relation at all still connects the pair.
func (g *Graph) DeleteEdge(id EdgeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleteEdgeLocked(id)
}

func (g *Graph) deleteEdgeLocked(id EdgeID) {
	edge := g.requireEdgeLocked(id)

	view := g.attrsView(edge.Attrs)
	relName := g.Relations.NameOf(edge.Relation)

	key := multiKey{rel: edge.Relation, src: edge.Src, dst: edge.Dst}
	list := removeEdgeID(g.edgesBetween[key], id)

	rm := g.relMatrixLocked(edge.Relation)
	switch len(list) {
	case 0:
		delete(g.edgesBetween, key)
		rm.Clear(int(edge.Src), int(edge.Dst))
	case 1:
		g.edgesBetween[key] = list
		rm.Set(int(edge.Src), int(edge.Dst), matrix.CellSingle)
	default:
		g.edgesBetween[key] = list
		rm.Set(int(edge.Src), int(edge.Dst), matrix.CellMulti)
	}

	pk := pairKey{src: edge.Src, dst: edge.Dst}
	g.adjRefCount[pk]--
	if g.adjRefCount[pk] <= 0 {
		delete(g.adjRefCount, pk)
		g.adj.Clear(int(edge.Src), int(edge.Dst))
	}

	g.outEdges[edge.Src] = removeEdgeID(g.outEdges[edge.Src], id)
	g.inEdges[edge.Dst] = removeEdgeID(g.inEdges[edge.Dst], id)

	g.edgeCountByRelation[edge.Relation]--

	for _, shadow := range g.edgeIndexes[edge.Relation] {
		shadow.Unindex(uint64(id), view)
	}
	g.edgeConstraints.Forget(relName, uint64(id), view)

	delete(g.edges, id)
	g.edgesFreedThisTx = append(g.edgesFreedThisTx, id)
}

func removeEdgeID(list []EdgeID, id EdgeID) []EdgeID {
	for i, e := range list {
		if e == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// UpdateNodeProps applies set and remove to id's attribute map, checking
// every Active constraint on its labels against the new attribute view
// before committing. A rejected update leaves the node's attributes
// untouched.
func (g *Graph) UpdateNodeProps(id NodeID, set map[string]value.Value, remove []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.requireNodeLocked(id)
	oldAttrs := node.Attrs
	oldView := g.attrsView(oldAttrs)

	newAttrs := applyPropChanges(g.Attrs, oldAttrs, set, remove)
	newView := g.attrsView(newAttrs)

	for lid := range node.Labels {
		lname := g.Labels.NameOf(lid)
		if err := g.nodeConstraints.CheckUpdate(lname, uint64(id), oldView, newView); err != nil {
			return err
		}
	}

	node.Attrs = newAttrs

	for lid := range node.Labels {
		lname := g.Labels.NameOf(lid)
		for _, shadow := range g.nodeIndexes[lid] {
			shadow.Reindex(uint64(id), oldView, newView)
		}
		g.nodeConstraints.Observe(lname, uint64(id), oldView, newView)
	}
	return nil
}

// UpdateEdgeProps applies set and remove to id's attribute map the same way
// UpdateNodeProps does for a node.
func (g *Graph) UpdateEdgeProps(id EdgeID, set map[string]value.Value, remove []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	edge := g.requireEdgeLocked(id)
	oldAttrs := edge.Attrs
	oldView := g.attrsView(oldAttrs)

	newAttrs := applyPropChanges(g.Attrs, oldAttrs, set, remove)
	newView := g.attrsView(newAttrs)

	relName := g.Relations.NameOf(edge.Relation)
	if err := g.edgeConstraints.CheckUpdate(relName, uint64(id), oldView, newView); err != nil {
		return err
	}

	edge.Attrs = newAttrs

	for _, shadow := range g.edgeIndexes[edge.Relation] {
		shadow.Reindex(uint64(id), oldView, newView)
	}
	g.edgeConstraints.Observe(relName, uint64(id), oldView, newView)
	return nil
}

// applyPropChanges returns a new attribute map with remove's names deleted
// and set's entries applied on top, leaving old untouched.
func applyPropChanges(pool *attr.Pool, old map[attr.ID]value.Value, set map[string]value.Value, remove []string) map[attr.ID]value.Value {
	out := make(map[attr.ID]value.Value, len(old)+len(set))
	for id, v := range old {
		out[id] = v
	}
	for _, name := range remove {
		if id, ok := pool.Lookup(name); ok {
			delete(out, id)
		}
	}
	for name, v := range set {
		out[pool.Intern(name)] = v
	}
	return out
}

// Flush folds every matrix's pending deltas into its synchronized layer and
// makes every NodeID/EdgeID freed since the last flush eligible for reuse.
func (g *Graph) Flush() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.adj.Flush()
	for _, m := range g.relMatrices {
		m.Flush()
	}
	for _, m := range g.labelMatrices {
		m.Flush()
	}

	g.freeNodeIDs = append(g.freeNodeIDs, g.freedThisTx...)
	g.freedThisTx = g.freedThisTx[:0]

	g.freeEdgeIDs = append(g.freeEdgeIDs, g.edgesFreedThisTx...)
	g.edgesFreedThisTx = g.edgesFreedThisTx[:0]
}
