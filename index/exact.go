/*
 * Tessera
 *
 * Copyright 2024 The Tessera Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package index

import (
	"bytes"
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"sort"
	"strings"

	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/hash"
	"github.com/tesseradb/tessera/storage"
)

// prefixHash marks an HTree key as a whole-value posting list.
const prefixHash = "h"

// hashEntry is the on-disk posting list for one (attribute, value) pair.
type hashEntry struct {
	IDs map[uint64]bool
}

func init() {
	gob.Register(&hashEntry{})
}

// ExactMatch indexes whole attribute values (as an MD5 digest, so long
// values cost a fixed-size key) to the set of entities carrying that exact
// value.
type ExactMatch struct {
	sm    storage.Manager
	tree  *hash.HTree
	attrs map[string]bool
}

// NewExactMatch creates an empty ExactMatch index over sm. If attrs is
// non-empty, only those attribute names are indexed.
func NewExactMatch(sm storage.Manager, attrs ...string) (*ExactMatch, error) {
	tree, err := hash.NewHTree(sm)
	if err != nil {
		return nil, gerr.New(gerr.IndexError, "cannot create exact-match index: %v", err)
	}

	em := &ExactMatch{sm: sm, tree: tree}
	if len(attrs) > 0 {
		em.attrs = make(map[string]bool, len(attrs))
		for _, a := range attrs {
			em.attrs[a] = true
		}
	}
	return em, nil
}

func (em *ExactMatch) covers(attr string) bool {
	return em.attrs == nil || em.attrs[attr]
}

func hashKey(attr, value string) []byte {
	if !CaseSensitive {
		value = strings.ToLower(value)
	}
	sum := md5.Sum([]byte(value))
	return []byte(prefixHash + attr + "\x00" + string(sum[:]))
}

// Index adds a newly created entity's covered attributes to the index.
func (em *ExactMatch) Index(id uint64, attrs Attrs) error {
	for attr, val := range attrs {
		if !em.covers(attr) {
			continue
		}
		if err := em.add(id, attr, val); err != nil {
			return gerr.New(gerr.IndexError, "%v", err)
		}
	}
	return nil
}

// Unindex removes a deleted entity's covered attributes from the index.
func (em *ExactMatch) Unindex(id uint64, attrs Attrs) error {
	for attr, val := range attrs {
		if !em.covers(attr) {
			continue
		}
		if err := em.remove(id, attr, val); err != nil {
			return gerr.New(gerr.IndexError, "%v", err)
		}
	}
	return nil
}

// Reindex moves id's postings from oldAttrs to newAttrs.
func (em *ExactMatch) Reindex(id uint64, oldAttrs, newAttrs Attrs) error {
	seen := make(map[string]bool)
	for a := range oldAttrs {
		seen[a] = true
	}
	for a := range newAttrs {
		seen[a] = true
	}

	for attr := range seen {
		if !em.covers(attr) {
			continue
		}

		newVal, newOK := newAttrs[attr]
		oldVal, oldOK := oldAttrs[attr]

		if oldOK && (!newOK || oldVal != newVal) {
			if err := em.remove(id, attr, oldVal); err != nil {
				return gerr.New(gerr.IndexError, "%v", err)
			}
		}
		if newOK && (!oldOK || oldVal != newVal) {
			if err := em.add(id, attr, newVal); err != nil {
				return gerr.New(gerr.IndexError, "%v", err)
			}
		}
	}
	return nil
}

// Rebuild discards all postings and repopulates the index from entities.
func (em *ExactMatch) Rebuild(entities []Entity) error {
	tree, err := hash.NewHTree(em.sm)
	if err != nil {
		return gerr.New(gerr.IndexError, "cannot rebuild exact-match index: %v", err)
	}
	em.tree = tree

	for _, e := range entities {
		if err := em.Index(e.ID, e.Attrs); err != nil {
			return err
		}
	}
	return nil
}

func (em *ExactMatch) add(id uint64, attr, value string) error {
	key := hashKey(attr, value)

	obj, err := em.tree.Get(key)
	if err != nil {
		return err
	}

	var entry *hashEntry
	if obj == nil {
		entry = &hashEntry{IDs: make(map[uint64]bool)}
	} else {
		entry = obj.(*hashEntry)
	}

	if len(entry.IDs) >= MaxKeysetSize && !entry.IDs[id] {
		return gerr.New(gerr.IndexError, "posting list for attribute %q exceeds MaxKeysetSize", attr)
	}

	entry.IDs[id] = true
	_, err = em.tree.Put(key, entry)
	return err
}

func (em *ExactMatch) remove(id uint64, attr, value string) error {
	key := hashKey(attr, value)

	obj, err := em.tree.Get(key)
	if err != nil {
		return err
	}
	if obj == nil {
		return nil
	}

	entry := obj.(*hashEntry)
	delete(entry.IDs, id)

	if len(entry.IDs) == 0 {
		_, err = em.tree.Remove(key)
	} else {
		_, err = em.tree.Put(key, entry)
	}
	return err
}

// Lookup returns every entity id whose attr attribute equals value exactly,
// in ascending order.
func (em *ExactMatch) Lookup(attr, value string) ([]uint64, error) {
	obj, err := em.tree.Get(hashKey(attr, value))
	if err != nil {
		return nil, gerr.New(gerr.IndexError, "%v", err)
	}
	if obj == nil {
		return nil, nil
	}

	entry := obj.(*hashEntry)
	ret := make([]uint64, 0, len(entry.IDs))
	for id := range entry.IDs {
		ret = append(ret, id)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret, nil
}

// Count returns how many entities have attr equal to value.
func (em *ExactMatch) Count(attr, value string) (int, error) {
	res, err := em.Lookup(attr, value)
	return len(res), err
}

// CoveredAttrs returns the attribute names this index was restricted to, or
// nil if it covers every attribute. Used by package snapshot to record an
// index's configuration in GRAPH_SCHEMA.
func (em *ExactMatch) CoveredAttrs() []string {
	if em.attrs == nil {
		return nil
	}
	out := make([]string, 0, len(em.attrs))
	for a := range em.attrs {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// String renders every posting in this index, for debugging.
func (em *ExactMatch) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "ExactMatch@%v\n", em.tree.Location())

	it := hash.NewIterator(em.tree)
	for it.HasNext() {
		key, val := it.Next()
		ids := make([]uint64, 0)
		for id := range val.(*hashEntry).IDs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		fmt.Fprintf(&buf, "    %q %v\n", string(key), ids)
	}
	return buf.String()
}
