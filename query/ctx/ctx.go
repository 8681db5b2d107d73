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
Package ctx carries the per-query state every operator consults at each
next() call: the deadline/cancellation flag a watchdog polls against, a
schema snapshot taken at query start (copy-on-write per SPEC_FULL.md §5), and
the thread-pool-size tunable read from package config.
*/
package ctx

import (
	"sync/atomic"
	"time"

	"github.com/tesseradb/tessera/attr"
	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/store"
)

// SchemaSnapshot is the copy-on-write view of a graph's label/relation/
// attribute names a planner reads from, taken once at query start so a
// concurrent writer interning a brand new name mid-query never changes
// what this query sees.
type SchemaSnapshot struct {
	Labels    []string
	Relations []string
	Attrs     []string
}

// Snapshot builds a SchemaSnapshot of g's current attribute/label/relation
// pools.
func Snapshot(g *store.Graph) SchemaSnapshot {
	return SchemaSnapshot{
		Labels:    g.Labels.Names(),
		Relations: g.Relations.Names(),
		Attrs:     g.Attrs.Names(),
	}
}

// QueryCtx is threaded through every operator in a physical plan.
type QueryCtx struct {
	Graph  *store.Graph
	Schema SchemaSnapshot

	deadline time.Time
	canceled int32 // atomic; set by Cancel or by a watchdog goroutine

	ThreadCount int
}

// New creates a QueryCtx with the given deadline (zero means no deadline)
// and thread-pool size.
func New(g *store.Graph, deadline time.Time, threadCount int) *QueryCtx {
	return &QueryCtx{
		Graph:       g,
		Schema:      Snapshot(g),
		deadline:    deadline,
		ThreadCount: threadCount,
	}
}

// Cancel marks the query canceled. Safe to call from any goroutine,
// concurrently with operators polling Canceled.
func (q *QueryCtx) Cancel() {
	atomic.StoreInt32(&q.canceled, 1)
}

// Canceled reports whether Cancel was called or the deadline has passed.
// Scan and traversal operators reach this through CheckCanceled at every
// Next; no other place checks cancellation.
func (q *QueryCtx) Canceled() bool {
	if atomic.LoadInt32(&q.canceled) != 0 {
		return true
	}
	if !q.deadline.IsZero() && time.Now().After(q.deadline) {
		return true
	}
	return false
}

// CheckCanceled returns a QueryTimedOut error if the query has been
// canceled or its deadline has passed, nil otherwise. Operators call this
// at the top of next() and propagate a non-nil result upward unchanged.
func (q *QueryCtx) CheckCanceled() error {
	if q.Canceled() {
		return gerr.New(gerr.QueryTimedOut, "query canceled or deadline exceeded")
	}
	return nil
}

// ResolveLabel/ResolveRelation/ResolveAttr look a name up against the
// snapshot taken at query start, rather than the live pool, so a plan's
// column resolution is stable for the query's duration even if a
// concurrent writer interns new names.
func (s SchemaSnapshot) ResolveLabel(name string) (attr.ID, bool) {
	return indexOf(s.Labels, name)
}

func (s SchemaSnapshot) ResolveRelation(name string) (attr.ID, bool) {
	return indexOf(s.Relations, name)
}

func (s SchemaSnapshot) ResolveAttr(name string) (attr.ID, bool) {
	return indexOf(s.Attrs, name)
}

func indexOf(names []string, name string) (attr.ID, bool) {
	for i, n := range names {
		if n == name {
			return attr.ID(i), true
		}
	}
	return 0, false
}
