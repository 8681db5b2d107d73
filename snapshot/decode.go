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

	"github.com/tesseradb/tessera/attr"
	"github.com/tesseradb/tessera/constraint"
	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/index"
	"github.com/tesseradb/tessera/storage"
	"github.com/tesseradb/tessera/store"
	"github.com/tesseradb/tessera/value"
)

// indexDesc, constraintDesc and schemaEntry hold one GRAPH_SCHEMA entry's index/constraint
// configuration until enough of the store exists (after NODES/EDGES replay)
// to register and populate them against.
type indexDesc struct {
	kind  indexKind
	attrs []string
}

type constraintDesc struct {
	name  string
	kind  constraintKind
	attrs []string
}

type schemaEntry struct {
	name        string
	indexes     []indexDesc
	constraints []constraintDesc
}

// Decode reads a stream Encode produced and returns the graph name and a
// freshly built *store.Graph with identical nodes, edges, schema, indexes,
// and constraints (allocator state included, so the first create after
// Decode picks up exactly where the encoded graph left off).
func Decode(in io.Reader) (string, *store.Graph, error) {
	br := &r{in: in}

	if v := br.u32(); br.err == nil && v != Version {
		return "", nil, gerr.New(gerr.InternalInvariant, "snapshot: unsupported version %d", v)
	}
	name := br.str()
	if br.err != nil {
		return "", nil, br.err
	}

	g := store.New()

	nodeSchemas, relSchemas, err := decodeSchema(br, g)
	if err != nil {
		return "", nil, err
	}
	if err := decodeNodes(br, g); err != nil {
		return "", nil, err
	}
	if err := decodeDeletedNodes(br, g); err != nil {
		return "", nil, err
	}
	if err := decodeEdges(br, g); err != nil {
		return "", nil, err
	}
	if err := decodeDeletedEdges(br, g); err != nil {
		return "", nil, err
	}

	if err := rebuildNodeSchemas(g, nodeSchemas); err != nil {
		return "", nil, err
	}
	if err := rebuildRelSchemas(g, relSchemas); err != nil {
		return "", nil, err
	}

	g.Flush()
	return name, g, nil
}

func decodeSchema(br *r, g *store.Graph) ([]schemaEntry, []schemaEntry, error) {
	if tag := phase(br.u8()); br.err == nil && tag != phaseGraphSchema {
		return nil, nil, gerr.New(gerr.InternalInvariant, "snapshot: expected GRAPH_SCHEMA phase, got %d", tag)
	}

	for _, name := range br.strs() {
		g.Attrs.Intern(name)
	}
	labels := br.strs()
	for _, name := range labels {
		g.Labels.Intern(name)
	}
	relations := br.strs()
	for _, name := range relations {
		g.Relations.Intern(name)
	}
	if br.err != nil {
		return nil, nil, br.err
	}

	nodeSchemas := make([]schemaEntry, len(labels))
	for i, label := range labels {
		nodeSchemas[i] = schemaEntry{name: label, indexes: decodeIndexes(br), constraints: decodeConstraints(br)}
	}
	relSchemas := make([]schemaEntry, len(relations))
	for i, rel := range relations {
		relSchemas[i] = schemaEntry{name: rel, indexes: decodeIndexes(br), constraints: decodeConstraints(br)}
	}

	return nodeSchemas, relSchemas, br.err
}

func decodeIndexes(br *r) []indexDesc {
	n := br.u32()
	out := make([]indexDesc, 0, n)
	for i := uint32(0); i < n && br.err == nil; i++ {
		out = append(out, indexDesc{kind: indexKind(br.u8()), attrs: br.strs()})
	}
	return out
}

func decodeConstraints(br *r) []constraintDesc {
	n := br.u32()
	out := make([]constraintDesc, 0, n)
	for i := uint32(0); i < n && br.err == nil; i++ {
		out = append(out, constraintDesc{name: br.str(), kind: constraintKind(br.u8()), attrs: br.strs()})
	}
	return out
}

func decodeNodes(br *r, g *store.Graph) error {
	if tag := phase(br.u8()); br.err == nil && tag != phaseNodes {
		return gerr.New(gerr.InternalInvariant, "snapshot: expected NODES phase, got %d", tag)
	}

	count := br.u64()
	for i := uint64(0); i < count && br.err == nil; i++ {
		id := store.NodeID(br.u64())

		labelCount := br.u32()
		labels := make([]string, 0, labelCount)
		for j := uint32(0); j < labelCount && br.err == nil; j++ {
			labels = append(labels, g.Labels.NameOf(attr.ID(br.u32())))
		}

		attrs := decodeAttrs(br, g)
		if br.err != nil {
			break
		}
		g.RestoreNode(id, labels, attrs)
	}
	return br.err
}

func decodeDeletedNodes(br *r, g *store.Graph) error {
	if tag := phase(br.u8()); br.err == nil && tag != phaseDeletedNodes {
		return gerr.New(gerr.InternalInvariant, "snapshot: expected DELETED_NODES phase, got %d", tag)
	}

	count := br.u64()
	free := make([]store.NodeID, 0, count)
	for i := uint64(0); i < count && br.err == nil; i++ {
		free = append(free, store.NodeID(br.u64()))
	}
	next := store.NodeID(br.u64())
	if br.err != nil {
		return br.err
	}
	g.SetNodeAllocState(next, free)
	return nil
}

func decodeEdges(br *r, g *store.Graph) error {
	if tag := phase(br.u8()); br.err == nil && tag != phaseEdges {
		return gerr.New(gerr.InternalInvariant, "snapshot: expected EDGES phase, got %d", tag)
	}

	count := br.u64()
	for i := uint64(0); i < count && br.err == nil; i++ {
		id := store.EdgeID(br.u64())
		src := store.NodeID(br.u64())
		dst := store.NodeID(br.u64())
		relName := g.Relations.NameOf(attr.ID(br.u32()))
		attrs := decodeAttrs(br, g)
		if br.err != nil {
			break
		}
		g.RestoreEdge(id, src, dst, relName, attrs)
	}
	return br.err
}

func decodeDeletedEdges(br *r, g *store.Graph) error {
	if tag := phase(br.u8()); br.err == nil && tag != phaseDeletedEdges {
		return gerr.New(gerr.InternalInvariant, "snapshot: expected DELETED_EDGES phase, got %d", tag)
	}

	count := br.u64()
	free := make([]store.EdgeID, 0, count)
	for i := uint64(0); i < count && br.err == nil; i++ {
		free = append(free, store.EdgeID(br.u64()))
	}
	next := store.EdgeID(br.u64())
	if br.err != nil {
		return br.err
	}
	g.SetEdgeAllocState(next, free)
	return nil
}

func decodeAttrs(br *r, g *store.Graph) map[string]value.Value {
	n := br.u32()
	out := make(map[string]value.Value, n)
	for i := uint32(0); i < n && br.err == nil; i++ {
		id := attr.ID(br.u32())
		v := br.value()
		out[g.Attrs.NameOf(id)] = v
	}
	return out
}

func rebuildNodeSchemas(g *store.Graph, schemas []schemaEntry) error {
	for _, s := range schemas {
		for _, idx := range s.indexes {
			shadow, err := newShadow(idx, s.name+"#node")
			if err != nil {
				return err
			}
			if err := g.RebuildNodeIndex(s.name, shadow); err != nil {
				return err
			}
		}
		for _, cd := range s.constraints {
			kind := constraint.Mandatory
			if cd.kind == constraintKindUnique {
				kind = constraint.Unique
			}
			c := constraint.New(cd.name, kind, s.name, cd.attrs)
			g.NodeConstraints().Add(c)
			if err := c.Activate(g.NodeEntities(s.name)); err != nil {
				return gerr.New(gerr.InternalInvariant, "snapshot: constraint %q failed to reactivate: %v", cd.name, err)
			}
		}
	}
	return nil
}

func rebuildRelSchemas(g *store.Graph, schemas []schemaEntry) error {
	for _, s := range schemas {
		for _, idx := range s.indexes {
			shadow, err := newShadow(idx, s.name+"#edge")
			if err != nil {
				return err
			}
			if err := g.RebuildEdgeIndex(s.name, shadow); err != nil {
				return err
			}
		}
		for _, cd := range s.constraints {
			kind := constraint.Mandatory
			if cd.kind == constraintKindUnique {
				kind = constraint.Unique
			}
			c := constraint.New(cd.name, kind, s.name, cd.attrs)
			g.EdgeConstraints().Add(c)
			if err := c.Activate(g.EdgeEntities(s.name)); err != nil {
				return gerr.New(gerr.InternalInvariant, "snapshot: constraint %q failed to reactivate: %v", cd.name, err)
			}
		}
	}
	return nil
}

// newShadow rebuilds an empty index of the described kind, backed by its
// own in-memory storage manager - the posting lists themselves are not
// persisted; RebuildNodeIndex/RebuildEdgeIndex repopulate them from the
// just-restored node/edge data instead of carrying index internals on the
// wire.
func newShadow(d indexDesc, smName string) (index.Shadow, error) {
	sm := storage.NewMemoryManager(smName)
	switch d.kind {
	case indexKindExact:
		return index.NewExactMatch(sm, d.attrs...)
	case indexKindFullText:
		return index.NewFullText(sm, d.attrs...)
	}
	return nil, gerr.New(gerr.InternalInvariant, "snapshot: unknown index kind %d", d.kind)
}
