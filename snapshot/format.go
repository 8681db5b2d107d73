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
Package snapshot implements the versioned, phase-tagged binary encoding of a
graph's full state: attribute/label/relation pools, index and constraint
schemas, live nodes and edges, and the freed-id lists the allocator needs to
pick up where it left off.

This generalizes the host codebase's graph/import_export.go, which walks
nodes, then their incident edges, then (implicitly, through the graph
manager it is handed) the kind/attribute schema in a single JSON-producing
pass. Tessera's matrix-backed store has no per-kind HTree to drive that
walk, so Encode instead iterates the store's own live-id lists, and the
wire format is the distilled binary, versioned, phase-tagged stream rather
than the host's JSON document - everything else about the shape of the
walk (nodes before edges, schema information carried alongside) follows the
host's lead.
*/
package snapshot

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/value"
)

// Version is the wire format version written at the start of every
// snapshot. Decode refuses anything else.
const Version uint32 = 1

// phase tags a block of the snapshot stream. Encode always writes GRAPH_SCHEMA
// first (the pools it carries assign the ids every later phase's payload
// references), then NODES, DELETED_NODES, EDGES, DELETED_EDGES - a fixed
// dependency order rather than the unordered set the phase name listing
// enumerates.
type phase byte

const (
	phaseGraphSchema phase = iota
	phaseNodes
	phaseDeletedNodes
	phaseEdges
	phaseDeletedEdges
)

// indexKind identifies which concrete index.Shadow a GRAPH_SCHEMA index
// entry describes.
type indexKind byte

const (
	indexKindExact indexKind = iota
	indexKindFullText
)

// constraintKind mirrors constraint.Kind on the wire; it is re-derived here
// rather than imported so this package's wire format does not change shape
// if constraint.Kind ever grows new non-serializable variants.
type constraintKind byte

const (
	constraintKindMandatory constraintKind = iota
	constraintKindUnique
)

// w wraps an io.Writer with a sticky first error, so a long sequence of
// writeX calls in Encode can skip per-call error checks and be checked once
// at the end.
type w struct {
	out io.Writer
	err error
}

func (b *w) bytes(p []byte) {
	if b.err != nil {
		return
	}
	_, b.err = b.out.Write(p)
}

func (b *w) u8(v byte)   { b.bytes([]byte{v}) }
func (b *w) u32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.bytes(buf[:])
}
func (b *w) u64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	b.bytes(buf[:])
}
func (b *w) i64(v int64)   { b.u64(uint64(v)) }
func (b *w) f64(v float64) { b.u64(math.Float64bits(v)) }
func (b *w) str(s string) {
	b.u32(uint32(len(s)))
	b.bytes([]byte(s))
}
func (b *w) strs(ss []string) {
	b.u32(uint32(len(ss)))
	for _, s := range ss {
		b.str(s)
	}
}

func (b *w) value(v value.Value) {
	if b.err != nil {
		return
	}
	tag := v.Tag()
	if tag == value.TagEntityRef {
		b.err = gerr.New(gerr.InternalInvariant, "snapshot: cannot persist an entity reference")
		return
	}

	b.u8(byte(tag))
	switch tag {
	case value.TagNull:
	case value.TagInt64:
		i, _ := v.AsInt()
		b.i64(i)
	case value.TagDouble:
		f, _ := v.AsFloat()
		b.f64(f)
	case value.TagString:
		s, _ := v.AsString()
		b.str(s)
	case value.TagBool:
		bv, _ := v.AsBool()
		if bv {
			b.u8(1)
		} else {
			b.u8(0)
		}
	case value.TagPoint:
		p, _ := v.AsPoint()
		b.f64(p.Lon)
		b.f64(p.Lat)
	case value.TagArray:
		arr, _ := v.AsArray()
		b.u32(uint32(len(arr)))
		for _, e := range arr {
			b.value(e)
		}
	}
}

// r is w's read-side counterpart.
type r struct {
	in  io.Reader
	err error
}

func (b *r) bytes(n int) []byte {
	if b.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.in, buf); err != nil {
		b.err = gerr.New(gerr.InternalInvariant, "snapshot: truncated stream: %v", err)
		return nil
	}
	return buf
}

func (b *r) u8() byte {
	buf := b.bytes(1)
	if buf == nil {
		return 0
	}
	return buf[0]
}
func (b *r) u32() uint32 {
	buf := b.bytes(4)
	if buf == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(buf)
}
func (b *r) u64() uint64 {
	buf := b.bytes(8)
	if buf == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(buf)
}
func (b *r) i64() int64   { return int64(b.u64()) }
func (b *r) f64() float64 { return math.Float64frombits(b.u64()) }
func (b *r) str() string {
	n := b.u32()
	if b.err != nil {
		return ""
	}
	buf := b.bytes(int(n))
	if buf == nil {
		return ""
	}
	return string(buf)
}
func (b *r) strs() []string {
	n := b.u32()
	out := make([]string, 0, n)
	for i := uint32(0); i < n && b.err == nil; i++ {
		out = append(out, b.str())
	}
	return out
}

func (b *r) value() value.Value {
	if b.err != nil {
		return value.Null
	}
	tag := value.Tag(b.u8())
	switch tag {
	case value.TagNull:
		return value.Null
	case value.TagInt64:
		return value.Int(b.i64())
	case value.TagDouble:
		return value.Float(b.f64())
	case value.TagString:
		return value.Str(b.str())
	case value.TagBool:
		return value.Bool(b.u8() != 0)
	case value.TagPoint:
		lon := b.f64()
		lat := b.f64()
		return value.GeoPoint(value.Point{Lon: lon, Lat: lat})
	case value.TagArray:
		n := b.u32()
		arr := make([]value.Value, 0, n)
		for i := uint32(0); i < n && b.err == nil; i++ {
			arr = append(arr, b.value())
		}
		return value.Array(arr)
	}
	b.err = gerr.New(gerr.InternalInvariant, "snapshot: unknown type tag %d", tag)
	return value.Null
}
