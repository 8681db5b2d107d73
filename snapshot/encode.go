/*
 * Tessera
 *
 * Copyright 2024 The Tessera Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package snapshot

import (
	"io"
	"sort"

	"github.com/tesseradb/tessera/attr"
	"github.com/tesseradb/tessera/constraint"
	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/index"
	"github.com/tesseradb/tessera/store"
	"github.com/tesseradb/tessera/value"
)

// Encode writes the full state of g - its pools, index and constraint
// schemas, live nodes and edges, and freed-id lists - to out as one named
// graph. The graph should be flushed (store.Graph.Flush) before Encode so
// the snapshot reflects synchronized matrix state; Encode itself does not
// flush, since a caller taking a snapshot mid-transaction may want the
// pending state reflected too (the delta layers contribute nothing to the
// node/edge records Encode actually walks).
func Encode(out io.Writer, name string, g *store.Graph) error {
	bw := &w{out: out}

	bw.u32(Version)
	bw.str(name)

	encodeSchema(bw, g)
	encodeNodes(bw, g)
	encodeDeletedNodes(bw, g)
	encodeEdges(bw, g)
	encodeDeletedEdges(bw, g)

	return bw.err
}

func encodeSchema(bw *w, g *store.Graph) {
	bw.u8(byte(phaseGraphSchema))

	bw.strs(g.Attrs.Names())
	labels := g.Labels.Names()
	relations := g.Relations.Names()
	bw.strs(labels)
	bw.strs(relations)

	for _, label := range labels {
		encodeIndexes(bw, g.NodeIndexes(label))
		encodeConstraints(bw, g.NodeConstraints().Constraints(label))
	}
	for _, relation := range relations {
		encodeIndexes(bw, g.EdgeIndexes(relation))
		encodeConstraints(bw, g.EdgeConstraints().Constraints(relation))
	}
}

func encodeIndexes(bw *w, shadows []index.Shadow) {
	bw.u32(uint32(len(shadows)))
	for _, s := range shadows {
		switch idx := s.(type) {
		case *index.ExactMatch:
			bw.u8(byte(indexKindExact))
			bw.strs(idx.CoveredAttrs())
		case *index.FullText:
			bw.u8(byte(indexKindFullText))
			bw.strs(idx.CoveredAttrs())
		default:
			if bw.err == nil {
				bw.err = unknownShadowError(s)
			}
		}
	}
}

func unknownShadowError(s index.Shadow) error {
	return gerr.New(gerr.InternalInvariant, "snapshot: unrecognized index type %T", s)
}

// onlyActive keeps the schema payload limited to constraints actually
// enforcing on the live graph; a Pending or Failed constraint carries no
// query-visible state worth reloading - see DESIGN.md.
func onlyActive(cs []*constraint.Constraint) []*constraint.Constraint {
	out := make([]*constraint.Constraint, 0, len(cs))
	for _, c := range cs {
		if c.Status() == constraint.Active {
			out = append(out, c)
		}
	}
	return out
}

func encodeConstraints(bw *w, cs []*constraint.Constraint) {
	active := onlyActive(cs)
	bw.u32(uint32(len(active)))
	for _, c := range active {
		bw.str(c.Name())
		if c.Kind() == constraint.Unique {
			bw.u8(byte(constraintKindUnique))
		} else {
			bw.u8(byte(constraintKindMandatory))
		}
		bw.strs(c.Attrs())
	}
}

func encodeNodes(bw *w, g *store.Graph) {
	bw.u8(byte(phaseNodes))

	ids := g.LiveNodeIDs()
	bw.u64(uint64(len(ids)))
	for _, id := range ids {
		n, ok := g.FetchNode(id)
		if !ok {
			continue
		}
		bw.u64(uint64(id))

		labelIDs := sortedAttrIDs(n.Labels)
		bw.u32(uint32(len(labelIDs)))
		for _, lid := range labelIDs {
			bw.u32(uint32(lid))
		}

		encodeAttrs(bw, n.Attrs)
	}
}

func encodeDeletedNodes(bw *w, g *store.Graph) {
	bw.u8(byte(phaseDeletedNodes))

	next, free := g.NodeAllocState()
	bw.u64(uint64(len(free)))
	for _, id := range free {
		bw.u64(uint64(id))
	}
	bw.u64(uint64(next))
}

func encodeEdges(bw *w, g *store.Graph) {
	bw.u8(byte(phaseEdges))

	ids := g.LiveEdgeIDs()
	bw.u64(uint64(len(ids)))
	for _, id := range ids {
		e, ok := g.FetchEdge(id)
		if !ok {
			continue
		}
		bw.u64(uint64(id))
		bw.u64(uint64(e.Src))
		bw.u64(uint64(e.Dst))
		bw.u32(uint32(e.Relation))
		encodeAttrs(bw, e.Attrs)
	}
}

func encodeDeletedEdges(bw *w, g *store.Graph) {
	bw.u8(byte(phaseDeletedEdges))

	next, free := g.EdgeAllocState()
	bw.u64(uint64(len(free)))
	for _, id := range free {
		bw.u64(uint64(id))
	}
	bw.u64(uint64(next))
}

func encodeAttrs(bw *w, attrs map[attr.ID]value.Value) {
	ids := make([]attr.ID, 0, len(attrs))
	for id := range attrs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bw.u32(uint32(len(ids)))
	for _, id := range ids {
		bw.u32(uint32(id))
		bw.value(attrs[id])
	}
}

func sortedAttrIDs(set map[attr.ID]bool) []attr.ID {
	out := make([]attr.ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
