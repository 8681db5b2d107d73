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
Package store implements the graph store façade: node and edge records,
label/relation schemas, the ADJ/A_r/L_l delta-matrix family, and the
create/delete/update/flush mutation API the query operators drive.

This generalizes the host codebase's graphmanager_nodes.go/
graphmanager_edges.go HTree-keyed entity storage - attributes packed into a
per-kind HTree record, relationships resolved through a separate edge-spec
table - onto SPEC_FULL.md's matrix-based adjacency model: nodes and edges
live as plain in-process records, and the entire shape of the graph lives in
the A_r/L_l/ADJ matrices built on package matrix instead of in any
per-kind storage tree.
*/
package store

import "github.com/tesseradb/tessera/attr"
import "github.com/tesseradb/tessera/value"

// NodeID identifies a node. Values are dense and reused from a free-list
// once their owning node is deleted and flushed.
type NodeID uint64

// EdgeID identifies an edge, reused the same way as NodeID.
type EdgeID uint64

// Node is a store-owned record: a set of labels and an attribute map, both
// keyed by the dense IDs the attribute pool hands out.
type Node struct {
	ID     NodeID
	Labels map[attr.ID]bool
	Attrs  map[attr.ID]value.Value
}

// HasLabel reports whether n carries label.
func (n *Node) HasLabel(label attr.ID) bool {
	return n.Labels[label]
}

// Edge is a store-owned record: a directed relation between two nodes plus
// an attribute map.
type Edge struct {
	ID       EdgeID
	Src, Dst NodeID
	Relation attr.ID
	Attrs    map[attr.ID]value.Value
}

// pairKey identifies an ordered (src, dst) node pair for the ADJ reference
// count that tracks when no relation at all still connects them.
type pairKey struct {
	src, dst NodeID
}

// multiKey identifies one (relation, src, dst) adjacency cell, the unit the
// store's multi-edge side table is keyed by.
type multiKey struct {
	rel      attr.ID
	src, dst NodeID
}
