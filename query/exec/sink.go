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
	"fmt"
	"strings"
)

// Sink drains a plan's root operator and holds its rows together with the
// output column names; String and CSV render them as text. It carries no
// per-column type header and no summary statistics. It generalizes the host codebase's SearchResult/
// SearchResultHeader pair (eql/result.go) into one concrete type, since
// Tessera has one row shape (Row) rather than per-query-kind result
// structs.
type Sink struct {
	Columns []string
	Rows    []Row
}

// Drain pulls every row from root into the Sink, stopping at the first
// error (including Done, which Drain swallows as the normal end of input).
// Drain collects every row in memory; it applies no output backpressure.
func Drain(root Operator, columns []string) (*Sink, error) {
	s := &Sink{Columns: columns}

	if err := root.Init(); err != nil {
		return nil, err
	}
	defer root.Free()

	for {
		row, err := root.Next()
		if err == Done {
			break
		}
		if err != nil {
			return nil, err
		}
		s.Rows = append(s.Rows, row)
	}

	return s, nil
}

// RowCount returns the number of rows in the sink.
func (s *Sink) RowCount() int { return len(s.Rows) }

// Row returns the values of one output row, in column order. A column the
// row never bound renders as the null value.
func (s *Sink) Row(line int) []string {
	row := s.Rows[line]
	out := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		if v, ok := row[col]; ok {
			out[i] = v.String()
		} else {
			out[i] = "null"
		}
	}
	return out
}

// AllRows returns every output row, in column order.
func (s *Sink) AllRows() [][]string {
	out := make([][]string, len(s.Rows))
	for i := range s.Rows {
		out[i] = s.Row(i)
	}
	return out
}

// String renders the sink as text for console/debug output: one line per
// row with cells joined by " | ", then a row count. Columns are not padded.
func (s *Sink) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(s.Columns, " | "))
	b.WriteString("\n")
	for _, row := range s.AllRows() {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "(%d rows)\n", len(s.Rows))
	return b.String()
}

// CSV renders the sink as comma-separated values, header first.
func (s *Sink) CSV() string {
	var b strings.Builder
	b.WriteString(strings.Join(s.Columns, ","))
	b.WriteString("\n")
	for _, row := range s.AllRows() {
		quoted := make([]string, len(row))
		for i, cell := range row {
			quoted[i] = fmt.Sprintf("%q", cell)
		}
		b.WriteString(strings.Join(quoted, ","))
		b.WriteString("\n")
	}
	return b.String()
}
