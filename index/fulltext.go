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
	"encoding/gob"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/krotik/common/bitutil"
	"github.com/krotik/common/sortutil"
	"github.com/krotik/common/stringutil"

	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/hash"
	"github.com/tesseradb/tessera/storage"
)

// prefixWord marks an HTree key as a word-position posting list.
const prefixWord = "w"

// CaseSensitive controls whether word extraction and lookup treat case as
// significant. False by default, matching the host codebase's default.
var CaseSensitive = false

// wordEntry is the on-disk posting list for one (attribute, word) pair:
// entity id -> packed ascending word positions within that attribute's
// text.
type wordEntry struct {
	Positions map[uint64]string
}

func init() {
	gob.Register(&wordEntry{})
}

// FullText indexes attribute text by word, tracking each word's position
// within the attribute so phrase queries can require adjacency.
type FullText struct {
	sm    storage.Manager
	tree  *hash.HTree
	attrs map[string]bool // which attrs this index covers; nil means all
}

// NewFullText creates an empty FullText index over sm. If attrs is
// non-empty, only those attribute names are indexed; other attributes are
// ignored by Index/Reindex/Unindex.
func NewFullText(sm storage.Manager, attrs ...string) (*FullText, error) {
	tree, err := hash.NewHTree(sm)
	if err != nil {
		return nil, gerr.New(gerr.IndexError, "cannot create full-text index: %v", err)
	}

	ft := &FullText{sm: sm, tree: tree}
	if len(attrs) > 0 {
		ft.attrs = make(map[string]bool, len(attrs))
		for _, a := range attrs {
			ft.attrs[a] = true
		}
	}
	return ft, nil
}

func (ft *FullText) covers(attr string) bool {
	return ft.attrs == nil || ft.attrs[attr]
}

// Index adds a newly created entity's covered attributes to the index.
func (ft *FullText) Index(id uint64, attrs Attrs) error {
	return ft.Reindex(id, nil, attrs)
}

// Unindex removes a deleted entity's covered attributes from the index.
func (ft *FullText) Unindex(id uint64, attrs Attrs) error {
	return ft.Reindex(id, attrs, nil)
}

// Reindex updates the word postings for id from oldAttrs to newAttrs. Both
// may be nil (pure insert or pure delete).
func (ft *FullText) Reindex(id uint64, oldAttrs, newAttrs Attrs) error {
	seen := make(map[string]bool)
	for a := range oldAttrs {
		seen[a] = true
	}
	for a := range newAttrs {
		seen[a] = true
	}

	empty := newWordSet(1)

	for attr := range seen {
		if !ft.covers(attr) {
			continue
		}

		newVal, newOK := newAttrs[attr]
		oldVal, oldOK := oldAttrs[attr]

		newWords, oldWords := empty, empty
		if newOK {
			newWords = extractWords(newVal)
		}
		if oldOK {
			oldWords = extractWords(oldVal)
		}

		toAdd, toRemove := newWords, empty
		if oldOK {
			if !oldWords.Empty() && !newWords.Empty() {
				toAdd = copyWordSet(newWords)
				toAdd.RemoveAll(oldWords)

				toRemove = copyWordSet(oldWords)
				toRemove.RemoveAll(newWords)
			} else {
				toRemove = oldWords
			}
		}

		for w, pos := range toRemove.set {
			if err := ft.removeEntry(id, attr, w, pos); err != nil {
				return gerr.New(gerr.IndexError, "%v", err)
			}
		}
		for w, pos := range toAdd.set {
			if err := ft.addEntry(id, attr, w, pos); err != nil {
				return gerr.New(gerr.IndexError, "%v", err)
			}
		}
	}

	return nil
}

// Rebuild discards all postings and repopulates the index from entities.
func (ft *FullText) Rebuild(entities []Entity) error {
	tree, err := hash.NewHTree(ft.sm)
	if err != nil {
		return gerr.New(gerr.IndexError, "cannot rebuild full-text index: %v", err)
	}
	ft.tree = tree

	for _, e := range entities {
		if err := ft.Index(e.ID, e.Attrs); err != nil {
			return err
		}
	}
	return nil
}

func wordKey(attr, word string) []byte {
	return []byte(prefixWord + attr + "\x00" + word)
}

func (ft *FullText) addEntry(id uint64, attr, word string, pos []uint64) error {
	key := wordKey(attr, word)

	obj, err := ft.tree.Get(key)
	if err != nil {
		return err
	}

	var entry *wordEntry
	if obj == nil {
		entry = &wordEntry{Positions: make(map[uint64]string)}
	} else {
		entry = obj.(*wordEntry)
	}

	if existing, ok := entry.Positions[id]; ok {
		pos = append(bitutil.UnpackList(existing), pos...)
		sortutil.UInt64s(pos)
		pos = removeDuplicateUints(pos)
	}

	if len(pos) == 0 {
		return gerr.New(gerr.InternalInvariant, "adding a full-text entry without position information")
	}
	if len(entry.Positions) >= MaxKeysetSize {
		return gerr.New(gerr.IndexError, "posting list for %q exceeds MaxKeysetSize", word)
	}

	entry.Positions[id] = bitutil.PackList(pos, pos[len(pos)-1])

	_, err = ft.tree.Put(key, entry)
	return err
}

func (ft *FullText) removeEntry(id uint64, attr, word string, pos []uint64) error {
	key := wordKey(attr, word)

	obj, err := ft.tree.Get(key)
	if err != nil {
		return err
	}
	if obj == nil {
		return nil
	}
	entry := obj.(*wordEntry)

	if existing, ok := entry.Positions[id]; ok {
		remove := make(map[uint64]bool, len(pos))
		for _, p := range pos {
			remove[p] = true
		}

		kept := make([]uint64, 0, len(existing))
		for _, p := range bitutil.UnpackList(existing) {
			if !remove[p] {
				kept = append(kept, p)
			}
		}

		if len(kept) == 0 {
			delete(entry.Positions, id)
		} else {
			entry.Positions[id] = bitutil.PackList(kept, kept[len(kept)-1])
		}
	}

	if len(entry.Positions) == 0 {
		_, err = ft.tree.Remove(key)
	} else {
		_, err = ft.tree.Put(key, entry)
	}
	return err
}

// LookupWord returns every entity id that contains word in attr, mapped to
// the word's positions within that attribute's text.
func (ft *FullText) LookupWord(attr, word string) (map[uint64][]uint64, error) {
	if !CaseSensitive {
		word = strings.ToLower(word)
	}

	obj, err := ft.tree.Get(wordKey(attr, word))
	if err != nil {
		return nil, gerr.New(gerr.IndexError, "%v", err)
	}
	if obj == nil {
		return nil, nil
	}

	entry := obj.(*wordEntry)
	ret := make(map[uint64][]uint64, len(entry.Positions))
	for id, packed := range entry.Positions {
		ret[id] = bitutil.UnpackList(packed)
	}
	return ret, nil
}

// Count returns how many entities contain word in attr.
func (ft *FullText) Count(attr, word string) (int, error) {
	res, err := ft.LookupWord(attr, word)
	return len(res), err
}

// CoveredAttrs returns the attribute names this index was restricted to, or
// nil if it covers every attribute. Used by package snapshot to record an
// index's configuration in GRAPH_SCHEMA.
func (ft *FullText) CoveredAttrs() []string {
	if ft.attrs == nil {
		return nil
	}
	out := make([]string, 0, len(ft.attrs))
	for a := range ft.attrs {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// LookupPhrase returns, in ascending id order, every entity id whose attr
// contains phrase as a contiguous run of words.
func (ft *FullText) LookupPhrase(attr, phrase string) ([]uint64, error) {
	words := strings.FieldsFunc(phrase, func(r rune) bool {
		return !stringutil.IsAlphaNumeric(string(r)) && (unicode.IsSpace(r) || unicode.IsControl(r) || unicode.IsPunct(r))
	})
	if len(words) == 0 {
		return nil, nil
	}

	results := make([]map[uint64][]uint64, len(words))
	for i, w := range words {
		res, err := ft.LookupWord(attr, w)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	if len(results[0]) == 0 {
		return nil, nil
	}

	var ret []uint64
	var path []uint64

	for id := range results[0] {
		path = path[:0]
		if found := findPhrasePath(id, 0, path, words, results); found == len(words) {
			ret = append(ret, id)
		}
	}

	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret, nil
}

func findPhrasePath(id uint64, index int, path []uint64, words []string, results []map[uint64][]uint64) int {
	result := results[index]

	posArr, ok := result[id]
	if !ok {
		return len(path)
	}

	if index > 0 {
		for _, pos := range posArr {
			if pos == path[index-1]+1 {
				path = append(path, pos)
				break
			}
			if pos > path[index-1] {
				return len(path)
			}
		}

		if len(path) < index+1 {
			return len(path)
		}
		if index < len(words)-1 {
			return findPhrasePath(id, index+1, path, words, results)
		}
		return index + 1
	}

	for _, pos := range posArr {
		path = path[:0]
		path = append(path, pos)

		if len(words) == 1 {
			return 1
		}
		if ret := findPhrasePath(id, 1, path, words, results); ret == len(words) {
			return ret
		}
	}

	return len(path)
}

func extractWords(s string) *wordSet {
	text := s
	if !CaseSensitive {
		text = strings.ToLower(text)
	}

	initCap := int(math.Ceil(float64(len(text)) * 0.01))
	if initCap < 4 {
		initCap = 4
	}

	ws := newWordSet(initCap)

	var pos uint64
	wstart := -1

	for i, r := range text {
		if !stringutil.IsAlphaNumeric(string(r)) && (unicode.IsSpace(r) || unicode.IsControl(r) || unicode.IsPunct(r)) {
			if wstart >= 0 {
				ws.Add(text[wstart:i], pos+1)
				pos++
				wstart = -1
			}
		} else if wstart == -1 {
			wstart = i
		}
	}
	if wstart >= 0 {
		ws.Add(text[wstart:], pos+1)
	}

	return ws
}

// String renders every posting in this index, for debugging.
func (ft *FullText) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "FullText@%v\n", ft.tree.Location())

	it := hash.NewIterator(ft.tree)
	for it.HasNext() {
		key, val := it.Next()
		posmap := make(map[uint64][]uint64)
		for id, packed := range val.(*wordEntry).Positions {
			posmap[id] = bitutil.UnpackList(packed)
		}
		fmt.Fprintf(&buf, "    %q %v\n", string(key), posmap)
	}
	return buf.String()
}
