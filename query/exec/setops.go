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

import "sort"

// Union concatenates its children's rows in order. If Distinct is set
// (plain UNION rather than UNION ALL), rows already seen are dropped -
// "de-duplicates per clause semantics" per the operator table.
type Union struct {
	Children []Operator
	Distinct bool

	idx  int
	seen map[string]bool
}

func (u *Union) Init() error {
	u.idx = 0
	if u.Distinct {
		u.seen = make(map[string]bool)
	}
	for _, c := range u.Children {
		if err := c.Init(); err != nil {
			return err
		}
	}
	return nil
}

func (u *Union) Next() (Row, error) {
	for u.idx < len(u.Children) {
		row, err := u.Children[u.idx].Next()
		if err == Done {
			u.idx++
			continue
		}
		if err != nil {
			return nil, err
		}
		if u.Distinct {
			key := rowKey(row)
			if u.seen[key] {
				continue
			}
			u.seen[key] = true
		}
		return row, nil
	}
	return nil, Done
}

func (u *Union) Reset() error {
	u.idx = 0
	if u.Distinct {
		u.seen = make(map[string]bool)
	}
	for _, c := range u.Children {
		if err := c.Reset(); err != nil {
			return err
		}
	}
	return nil
}

func (u *Union) Free() {
	for _, c := range u.Children {
		c.Free()
	}
}

func rowKey(row Row) string {
	names := make([]string, 0, len(row))
	for k := range row {
		names = append(names, k)
	}
	sort.Strings(names)
	key := ""
	for _, k := range names {
		key += k + "=" + row[k].String() + "\x1f"
	}
	return key
}

// Apply runs Inner once per Outer row, with Outer's bindings visible to
// Inner (a correlated subquery / OPTIONAL MATCH-style dependent join).
// Build constructs a fresh Inner operator per outer row since Inner's own
// scans/traversals close over the outer row's bindings.
type Apply struct {
	Outer Operator
	Build func(outer Row) (Operator, error)

	outerRow Row
	inner    Operator
}

func (a *Apply) Init() error { return a.Outer.Init() }

func (a *Apply) Next() (Row, error) {
	for {
		if a.inner != nil {
			row, err := a.inner.Next()
			if err == Done {
				a.inner.Free()
				a.inner = nil
				continue
			}
			if err != nil {
				return nil, err
			}
			out := a.outerRow.Clone()
			for k, v := range row {
				out[k] = v
			}
			return out, nil
		}

		row, err := a.Outer.Next()
		if err != nil {
			return nil, err
		}
		a.outerRow = row

		inner, err := a.Build(row)
		if err != nil {
			return nil, err
		}
		if err := inner.Init(); err != nil {
			return nil, err
		}
		a.inner = inner
	}
}

func (a *Apply) Reset() error {
	if a.inner != nil {
		a.inner.Free()
		a.inner = nil
	}
	return a.Outer.Reset()
}

func (a *Apply) Free() {
	if a.inner != nil {
		a.inner.Free()
	}
	a.Outer.Free()
}
