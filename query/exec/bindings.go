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

// NodeBinding builds the Row cell for a bound node variable.
func NodeBinding(id store.NodeID) value.Value {
	return value.Ref(value.EntityRef{IsEdge: false, ID: uint64(id)})
}

// EdgeBinding builds the Row cell for a bound edge variable.
func EdgeBinding(id store.EdgeID) value.Value {
	return value.Ref(value.EntityRef{IsEdge: true, ID: uint64(id)})
}

// ResolveNode returns the store.Node a row variable is bound to, or
// ok=false if name is unbound or bound to something other than a node.
func ResolveNode(g *store.Graph, row Row, name string) (*store.Node, bool) {
	v, present := row[name]
	if !present {
		return nil, false
	}
	ref, ok := v.AsRef()
	if !ok || ref.IsEdge {
		return nil, false
	}
	return g.FetchNode(store.NodeID(ref.ID))
}

// ResolveEdge returns the store.Edge a row variable is bound to, or
// ok=false if name is unbound or bound to something other than an edge.
func ResolveEdge(g *store.Graph, row Row, name string) (*store.Edge, bool) {
	v, present := row[name]
	if !present {
		return nil, false
	}
	ref, ok := v.AsRef()
	if !ok || !ref.IsEdge {
		return nil, false
	}
	return g.FetchEdge(store.EdgeID(ref.ID))
}
