/*
 * Tessera
 *
 * Copyright 2024 The Tessera Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package hash

import "errors"

// ErrNoMoreItems is assigned to LastError once an Iterator is exhausted.
var ErrNoMoreItems = errors.New("hash: no more items to iterate")

// Iterator walks every key/value pair currently stored in an HTree, bucket
// by bucket in root-table order. Buckets are pulled from storage lazily as
// the iterator reaches them, so concurrent writes to buckets not yet
// visited may or may not be observed.
//
// This adapts the host codebase's HTreeIterator (HasNext/Next, with
// searchNextChild/searchNextElement walking a recursive page path) to
// HTree's flat 256-way bucket table: there is only one level to walk, so
// the path/indices stack collapses into a single root index plus a cursor
// into the current bucket.
type Iterator struct {
	tree *HTree
	root *htreeRoot
	idx  int // next child slot in root.Children to examine

	bucket *htreeBucket
	bi     int // next entry index within bucket

	LastError error
}

// NewIterator creates an Iterator over tree. If the root page cannot be
// fetched, HasNext reports false and LastError holds the fetch error.
func NewIterator(tree *HTree) *Iterator {
	it := &Iterator{tree: tree}

	root, err := tree.fetchRoot()
	if err != nil {
		it.LastError = err
		it.idx = MaxPageChildren
		return it
	}
	it.root = root
	return it
}

// advance loads buckets starting at it.idx until it finds one with at
// least one entry, or runs out of child slots.
func (it *Iterator) advance() {
	for it.bucket == nil && it.idx < MaxPageChildren {
		loc := it.root.Children[it.idx]
		it.idx++
		if loc == 0 {
			continue
		}
		b, err := it.tree.fetchBucket(loc)
		if err != nil {
			it.LastError = err
			continue
		}
		if len(b.Keys) > 0 {
			it.bucket = b
			it.bi = 0
		}
	}
}

// HasNext reports whether Next will return another entry.
func (it *Iterator) HasNext() bool {
	if it.bucket != nil && it.bi < len(it.bucket.Keys) {
		return true
	}
	it.bucket = nil
	it.advance()
	return it.bucket != nil
}

// Next returns the next key/value pair in iteration order, or (nil, nil)
// once exhausted (LastError is set to ErrNoMoreItems in that case).
func (it *Iterator) Next() ([]byte, interface{}) {
	if !it.HasNext() {
		it.LastError = ErrNoMoreItems
		return nil, nil
	}
	key, val := it.bucket.Keys[it.bi], it.bucket.Values[it.bi]
	it.bi++
	return key, val
}

// String renders a short summary of the iterator, for debugging.
func (it *Iterator) String() string {
	return "hash.Iterator@" + it.tree.String()
}
