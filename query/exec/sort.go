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
	"sort"

	"github.com/tesseradb/tessera/store"
	"github.com/tesseradb/tessera/value"
)

// SortKey is one ORDER BY term.
type SortKey struct {
	Expr       Expr
	Descending bool
}

// Sort is a blocking operator: it drains Child, orders every row by Keys,
// then replays them.
type Sort struct {
	Graph *store.Graph
	Child Operator
	Keys  []SortKey

	rows    []Row
	pos     int
	drained bool
}

func (s *Sort) Init() error { return s.Child.Init() }

func (s *Sort) drain() error {
	var rows []Row
	for {
		row, err := s.Child.Next()
		if err == Done {
			break
		}
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	keyed := make([][]value.Value, len(rows))
	for i, row := range rows {
		vals := make([]value.Value, len(s.Keys))
		for k, key := range s.Keys {
			v, err := key.Expr.Eval(s.Graph, row)
			if err != nil {
				return err
			}
			vals[k] = v
		}
		keyed[i] = vals
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for k := range s.Keys {
			cmp, ok := value.Compare(keyed[idx[a]][k], keyed[idx[b]][k])
			if !ok || cmp == 0 {
				continue
			}
			if s.Keys[k].Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	s.rows = make([]Row, len(rows))
	for i, j := range idx {
		s.rows[i] = rows[j]
	}
	s.drained = true
	return nil
}

func (s *Sort) Next() (Row, error) {
	if !s.drained {
		if err := s.drain(); err != nil {
			return nil, err
		}
	}
	if s.pos >= len(s.rows) {
		return nil, Done
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func (s *Sort) Reset() error {
	s.rows, s.pos, s.drained = nil, 0, false
	return s.Child.Reset()
}

func (s *Sort) Free() {
	s.Child.Free()
	s.rows = nil
}

// Skip discards the first N rows from Child.
type Skip struct {
	Child Operator
	N     int

	skipped int
}

func (s *Skip) Init() error { s.skipped = 0; return s.Child.Init() }

func (s *Skip) Next() (Row, error) {
	for s.skipped < s.N {
		if _, err := s.Child.Next(); err != nil {
			return nil, err
		}
		s.skipped++
	}
	return s.Child.Next()
}

func (s *Skip) Reset() error { s.skipped = 0; return s.Child.Reset() }
func (s *Skip) Free()        { s.Child.Free() }

// Limit stops producing after N rows.
type Limit struct {
	Child Operator
	N     int

	produced int
}

func (l *Limit) Init() error { l.produced = 0; return l.Child.Init() }

func (l *Limit) Next() (Row, error) {
	if l.produced >= l.N {
		return nil, Done
	}
	row, err := l.Child.Next()
	if err != nil {
		return nil, err
	}
	l.produced++
	return row, nil
}

func (l *Limit) Reset() error { l.produced = 0; return l.Child.Reset() }
func (l *Limit) Free()        { l.Child.Free() }
