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
	"fmt"
	"sort"

	"github.com/krotik/common/sortutil"
)

// wordSet maps a word to its ascending, deduplicated positions within the
// text it was extracted from.
type wordSet struct {
	set        map[string][]uint64
	initArrCap int
}

func newWordSet(initArrCap int) *wordSet {
	return &wordSet{set: make(map[string][]uint64), initArrCap: initArrCap}
}

func copyWordSet(ws *wordSet) *wordSet {
	ret := newWordSet(ws.initArrCap)
	ret.AddAll(ws)
	return ret
}

// Add records word at pos, returning true if word was not already present.
func (ws *wordSet) Add(word string, pos uint64) bool {
	v, ok := ws.set[word]

	if !ok {
		ws.set[word] = make([]uint64, 1, ws.initArrCap)
		ws.set[word][0] = pos
		return true
	}

	l := len(v)
	if v[l-1] < pos {
		ws.set[word] = append(v, pos)
		return false
	}

	for _, ex := range v {
		if ex == pos {
			return false
		}
	}

	ws.set[word] = append(v, pos)
	sortutil.UInt64s(ws.set[word])

	return false
}

func (ws *wordSet) AddAll(other *wordSet) {
	for w, positions := range other.set {
		for _, p := range positions {
			ws.Add(w, p)
		}
	}
}

func (ws *wordSet) Empty() bool { return len(ws.set) == 0 }

func (ws *wordSet) Pos(word string) []uint64 { return ws.set[word] }

// RemoveAll removes, for every word in other, the positions other also
// lists for that word; words left with no positions are dropped entirely.
func (ws *wordSet) RemoveAll(other *wordSet) {
	for w, posArr2 := range other.set {
		posArr, ok := ws.set[w]
		if !ok {
			continue
		}

		j := 0
		for i := 0; i < len(posArr2); i++ {
			for ; j < len(posArr); j++ {
				if posArr[j] == posArr2[i] {
					posArr = append(posArr[:j], posArr[j+1:]...)
					ws.set[w] = posArr
					break
				} else if posArr[j] > posArr2[i] {
					break
				}
			}
		}

		if len(ws.set[w]) == 0 {
			delete(ws.set, w)
		}
	}
}

func (ws *wordSet) String() string {
	var buf bytes.Buffer

	words := make([]string, 0, len(ws.set))
	for w := range ws.set {
		words = append(words, w)
	}
	sort.Strings(words)

	buf.WriteString("wordSet:\n")
	for _, w := range words {
		fmt.Fprintf(&buf, "    %v %v\n", w, ws.set[w])
	}

	return buf.String()
}

func removeDuplicateUints(list []uint64) []uint64 {
	if len(list) == 0 {
		return list
	}

	res := make([]uint64, 1, len(list))
	res[0] = list[0]

	last := list[0]
	for _, item := range list[1:] {
		if item != last {
			res = append(res, item)
			last = item
		}
	}

	return res
}
