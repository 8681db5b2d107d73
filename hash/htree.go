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
Package hash provides the HTree hashtable used to back Tessera's secondary
indexes (see package index).

HTree is adapted from the host codebase's persistent hashtable: a root page
fans out into a fixed number of buckets by hash code, and each bucket holds
its keys and values directly. The host codebase's HTree recurses through up
to four 8-bit page levels so that a single bucket never grows past
MaxBucketElements entries; Tessera's index layer caps any one key's posting
list at index.MaxKeysetSize long before a single flat bucket level would
become a problem, so this adaptation keeps one 256-way level and lets
buckets grow - trading the host's deep paging for a much simpler
implementation at the scale a single secondary index actually needs.

Every bucket is itself stored through storage.Manager, so the tree can be
reconstructed from a location handle via LoadHTree the same way the host
codebase's HTree can.
*/
package hash

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/tesseradb/tessera/storage"
)

// MaxPageChildren is the number of buckets the root page fans out into.
const MaxPageChildren = 256

// htreeRoot is the on-disk (Manager-backed) representation of the tree
// root: a fixed-size table of child bucket locations, 0 meaning "no bucket
// allocated yet".
type htreeRoot struct {
	Children [MaxPageChildren]uint64
}

// htreeBucket is the on-disk representation of a single bucket: parallel
// Keys/Values slices, mirroring the host codebase's htreeNode in bucket
// mode.
type htreeBucket struct {
	Keys   [][]byte
	Values []interface{}
}

// HTree is a hash-bucketed key/value store addressable by a storage
// location, so a caller can reopen the same tree across process restarts
// given the same Manager and root location.
type HTree struct {
	sm   storage.Manager
	loc  uint64
	mu   sync.Mutex
}

// NewHTree creates a new, empty HTree backed by sm.
func NewHTree(sm storage.Manager) (*HTree, error) {
	loc, err := sm.Insert(&htreeRoot{})
	if err != nil {
		return nil, err
	}
	return &HTree{sm: sm, loc: loc}, nil
}

// LoadHTree reopens an HTree previously created by NewHTree at location loc.
func LoadHTree(sm storage.Manager, loc uint64) (*HTree, error) {
	var root htreeRoot
	if err := sm.Fetch(loc, &root); err != nil {
		return nil, err
	}
	return &HTree{sm: sm, loc: loc}, nil
}

// Location returns the storage location of this tree's root.
func (t *HTree) Location() uint64 { return t.loc }

func bucketIndex(key []byte) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % MaxPageChildren)
}

func (t *HTree) fetchRoot() (*htreeRoot, error) {
	var root htreeRoot
	if err := t.sm.Fetch(t.loc, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

func (t *HTree) fetchBucket(loc uint64) (*htreeBucket, error) {
	var b htreeBucket
	if err := t.sm.Fetch(loc, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func keyIndex(b *htreeBucket, key []byte) int {
	for i, k := range b.Keys {
		if string(k) == string(key) {
			return i
		}
	}
	return -1
}

// Get returns the value for key, or nil if key is not present.
func (t *HTree) Get(key []byte) (interface{}, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root, err := t.fetchRoot()
	if err != nil {
		return nil, err
	}

	loc := root.Children[bucketIndex(key)]
	if loc == 0 {
		return nil, nil
	}

	b, err := t.fetchBucket(loc)
	if err != nil {
		return nil, err
	}

	if i := keyIndex(b, key); i >= 0 {
		return b.Values[i], nil
	}
	return nil, nil
}

// Exists reports whether key is present.
func (t *HTree) Exists(key []byte) (bool, error) {
	v, err := t.Get(key)
	return v != nil, err
}

// Put adds or updates the value for key, returning the previous value (nil
// if there was none). Storing a nil value is equivalent to removing the
// key, matching the host codebase's HTree semantics.
func (t *HTree) Put(key []byte, value interface{}) (interface{}, error) {
	if value == nil {
		return t.Remove(key)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	root, err := t.fetchRoot()
	if err != nil {
		return nil, err
	}

	idx := bucketIndex(key)
	loc := root.Children[idx]

	if loc == 0 {
		nb := &htreeBucket{Keys: [][]byte{key}, Values: []interface{}{value}}
		bloc, err := t.sm.Insert(nb)
		if err != nil {
			return nil, err
		}
		root.Children[idx] = bloc
		if err := t.sm.Update(t.loc, root); err != nil {
			return nil, err
		}
		return nil, nil
	}

	b, err := t.fetchBucket(loc)
	if err != nil {
		return nil, err
	}

	var old interface{}
	if i := keyIndex(b, key); i >= 0 {
		old = b.Values[i]
		b.Values[i] = value
	} else {
		b.Keys = append(b.Keys, key)
		b.Values = append(b.Values, value)
	}

	return old, t.sm.Update(loc, b)
}

// Remove removes key, returning the removed value (nil if it was absent).
func (t *HTree) Remove(key []byte) (interface{}, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root, err := t.fetchRoot()
	if err != nil {
		return nil, err
	}

	idx := bucketIndex(key)
	loc := root.Children[idx]
	if loc == 0 {
		return nil, nil
	}

	b, err := t.fetchBucket(loc)
	if err != nil {
		return nil, err
	}

	i := keyIndex(b, key)
	if i < 0 {
		return nil, nil
	}

	old := b.Values[i]
	b.Keys = append(b.Keys[:i], b.Keys[i+1:]...)
	b.Values = append(b.Values[:i], b.Values[i+1:]...)

	if len(b.Keys) == 0 {
		root.Children[idx] = 0
		if err := t.sm.Free(loc); err != nil {
			return nil, err
		}
		return old, t.sm.Update(t.loc, root)
	}

	return old, t.sm.Update(loc, b)
}

// String renders a short summary of the tree, for debugging.
func (t *HTree) String() string {
	return fmt.Sprintf("HTree@%d(%s)", t.loc, t.sm.Name())
}
