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
	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/query/ctx"
	"github.com/tesseradb/tessera/store"
)

// AllNodeScan produces every live NodeID, ascending, bound to Var. "Live"
// means currently allocated: freed IDs (on the free list or staged for one,
// pending Flush) are skipped, and the ordering is stable for the lifetime
// of a single query since ctx's schema snapshot does not change mid-query.
type AllNodeScan struct {
	Ctx *ctx.QueryCtx
	Var string

	ids []store.NodeID
	pos int
}

func (s *AllNodeScan) Init() error {
	s.ids = s.Ctx.Graph.LiveNodeIDs()
	s.pos = 0
	return nil
}

func (s *AllNodeScan) Next() (Row, error) {
	if err := checkCanceled(s.Ctx); err != nil {
		return nil, err
	}
	if s.pos >= len(s.ids) {
		return nil, Done
	}
	id := s.ids[s.pos]
	s.pos++
	return Row{s.Var: NodeBinding(id)}, nil
}

func (s *AllNodeScan) Reset() error { s.pos = 0; return nil }
func (s *AllNodeScan) Free()        { s.ids = nil }

// NodeByLabelScan produces every live NodeID carrying Label, bound to Var.
type NodeByLabelScan struct {
	Ctx   *ctx.QueryCtx
	Var   string
	Label string

	ids []store.NodeID
	pos int
}

func (s *NodeByLabelScan) Init() error {
	labelID, ok := s.Ctx.Schema.ResolveLabel(s.Label)
	if !ok {
		s.ids = nil
		return nil
	}
	s.ids = s.Ctx.Graph.NodesWithLabel(labelID)
	s.pos = 0
	return nil
}

func (s *NodeByLabelScan) Next() (Row, error) {
	if err := checkCanceled(s.Ctx); err != nil {
		return nil, err
	}
	if s.pos >= len(s.ids) {
		return nil, Done
	}
	id := s.ids[s.pos]
	s.pos++
	return Row{s.Var: NodeBinding(id)}, nil
}

func (s *NodeByLabelScan) Reset() error { s.pos = 0; return nil }
func (s *NodeByLabelScan) Free()        { s.ids = nil }

// IndexScan produces NodeIDs or EdgeIDs satisfying an index lookup,
// honoring the index's own range ordering. Lookup is supplied by the
// planner, already closed over the concrete index.Shadow the store
// registered under RegisterNodeIndex/RegisterEdgeIndex and the predicate
// being evaluated - IndexScan itself stays index-implementation-agnostic.
type IndexScan struct {
	Ctx      *ctx.QueryCtx
	Var      string
	Lookup   func() ([]uint64, error)
	AsEdge   bool

	ids []uint64
	pos int
}

func (s *IndexScan) Init() error {
	ids, err := s.Lookup()
	if err != nil {
		return gerr.New(gerr.IndexError, "exec: index scan failed: %v", err)
	}
	s.ids = ids
	s.pos = 0
	return nil
}

func (s *IndexScan) Next() (Row, error) {
	if err := checkCanceled(s.Ctx); err != nil {
		return nil, err
	}
	if s.pos >= len(s.ids) {
		return nil, Done
	}
	id := s.ids[s.pos]
	s.pos++
	if s.AsEdge {
		return Row{s.Var: EdgeBinding(store.EdgeID(id))}, nil
	}
	return Row{s.Var: NodeBinding(store.NodeID(id))}, nil
}

func (s *IndexScan) Reset() error { s.pos = 0; return nil }
func (s *IndexScan) Free()        { s.ids = nil }
