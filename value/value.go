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
Package value implements the tagged value union stored in node and edge
attribute maps, and carried through the query pipeline as tuple cells.

Rather than macro-generating one code path per primitive type (the approach
the host codebase's upstream C implementation takes), Tessera uses a single
tagged struct with generic arithmetic/comparison helpers; only the innermost
comparison loops are type-switched by hand.
*/
package value

import (
	"fmt"
	"math"
)

// Tag identifies the dynamic type carried by a Value.
type Tag byte

// Tag values, matching the snapshot wire encoding of SPEC_FULL.md §6.3.
const (
	TagNull Tag = iota
	TagInt64
	TagDouble
	TagString
	TagBool
	TagArray
	TagPoint
	// TagEntityRef marks a sub-entity reference: a node or edge record that
	// flows through the query pipeline as a path value. It is never
	// persisted - the snapshot encoder rejects it.
	TagEntityRef
)

// Point is a 2-D geographic point (longitude, latitude).
type Point struct {
	Lon float64
	Lat float64
}

// EntityRef is an opaque reference to a node or edge carried by a path
// value. It is resolved by the executor against the owning store and never
// leaves the query that produced it.
type EntityRef struct {
	IsEdge bool
	ID     uint64
}

// Value is the tagged union stored for every attribute.
type Value struct {
	tag   Tag
	i     int64
	f     float64
	s     string
	b     bool
	pt    Point
	arr   []Value
	ref   EntityRef
}

// Null is the singleton null value.
var Null = Value{tag: TagNull}

// Int wraps an int64.
func Int(i int64) Value { return Value{tag: TagInt64, i: i} }

// Float wraps a float64.
func Float(f float64) Value { return Value{tag: TagDouble, f: f} }

// Str wraps a string.
func Str(s string) Value { return Value{tag: TagString, s: s} }

// Bool wraps a bool.
func Bool(b bool) Value { return Value{tag: TagBool, b: b} }

// GeoPoint wraps a Point.
func GeoPoint(p Point) Value { return Value{tag: TagPoint, pt: p} }

// Array wraps a (possibly heterogeneous) slice of values.
func Array(vs []Value) Value { return Value{tag: TagArray, arr: vs} }

// Ref wraps a sub-entity reference.
func Ref(r EntityRef) Value { return Value{tag: TagEntityRef, ref: r} }

// Tag returns the dynamic type of v.
func (v Value) Tag() Tag { return v.tag }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.tag == TagNull }

// AsInt returns the wrapped int64 and whether v actually carries TagInt64.
func (v Value) AsInt() (int64, bool) { return v.i, v.tag == TagInt64 }

// AsFloat returns the wrapped float64 and whether v carries TagDouble or
// TagInt64 (ints widen to float for arithmetic comparisons).
func (v Value) AsFloat() (float64, bool) {
	switch v.tag {
	case TagDouble:
		return v.f, true
	case TagInt64:
		return float64(v.i), true
	}
	return 0, false
}

// AsString returns the wrapped string and whether v carries TagString.
func (v Value) AsString() (string, bool) { return v.s, v.tag == TagString }

// AsBool returns the wrapped bool and whether v carries TagBool.
func (v Value) AsBool() (bool, bool) { return v.b, v.tag == TagBool }

// AsPoint returns the wrapped Point and whether v carries TagPoint.
func (v Value) AsPoint() (Point, bool) { return v.pt, v.tag == TagPoint }

// AsArray returns the wrapped slice and whether v carries TagArray.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.tag == TagArray }

// AsRef returns the wrapped EntityRef and whether v carries TagEntityRef.
func (v Value) AsRef() (EntityRef, bool) { return v.ref, v.tag == TagEntityRef }

// Equal reports whether a and b are the same value under RuntimeTypeError
// semantics: comparing across incompatible types returns false rather than
// erroring, mirroring a WHERE clause's "never equal" treatment of
// mismatched types.
func Equal(a, b Value) bool {
	if a.tag != b.tag {
		af, aok := a.AsFloat()
		bf, bok := b.AsFloat()
		if aok && bok {
			return af == bf
		}
		return false
	}

	switch a.tag {
	case TagNull:
		return true
	case TagInt64:
		return a.i == b.i
	case TagDouble:
		return a.f == b.f
	case TagString:
		return a.s == b.s
	case TagBool:
		return a.b == b.b
	case TagPoint:
		return a.pt == b.pt
	case TagEntityRef:
		return a.ref == b.ref
	case TagArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders a and b for ORDER BY / range predicates. ok is false when
// the two values are not order-comparable (different, non-numeric tags).
func Compare(a, b Value) (cmp int, ok bool) {
	if af, aok := a.AsFloat(); aok {
		if bf, bok := b.AsFloat(); bok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
	}

	if a.tag != b.tag {
		return 0, false
	}

	switch a.tag {
	case TagString:
		switch {
		case a.s < b.s:
			return -1, true
		case a.s > b.s:
			return 1, true
		default:
			return 0, true
		}
	case TagBool:
		if a.b == b.b {
			return 0, true
		}
		if !a.b {
			return -1, true
		}
		return 1, true
	}

	return 0, false
}

// String renders v for debug/EXPLAIN output.
func (v Value) String() string {
	switch v.tag {
	case TagNull:
		return "null"
	case TagInt64:
		return fmt.Sprintf("%d", v.i)
	case TagDouble:
		if math.IsInf(v.f, 1) {
			return "+inf"
		}
		if math.IsInf(v.f, -1) {
			return "-inf"
		}
		return fmt.Sprintf("%g", v.f)
	case TagString:
		return fmt.Sprintf("%q", v.s)
	case TagBool:
		return fmt.Sprintf("%t", v.b)
	case TagPoint:
		return fmt.Sprintf("point(%g,%g)", v.pt.Lon, v.pt.Lat)
	case TagArray:
		return fmt.Sprintf("%v", v.arr)
	case TagEntityRef:
		if v.ref.IsEdge {
			return fmt.Sprintf("edge(%d)", v.ref.ID)
		}
		return fmt.Sprintf("node(%d)", v.ref.ID)
	}
	return "<unknown>"
}
