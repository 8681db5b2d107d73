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
	"github.com/tesseradb/tessera/store"
	"github.com/tesseradb/tessera/value"
)

// PropSpec is one property assignment evaluated per row: SET name = Expr.
type PropSpec struct {
	Name string
	Expr Expr
}

func evalProps(g *store.Graph, row Row, specs []PropSpec) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(specs))
	for _, s := range specs {
		v, err := s.Expr.Eval(g, row)
		if err != nil {
			return nil, err
		}
		out[s.Name] = v
	}
	return out, nil
}

// CreateNode creates one node per input row, bound to Var, with Labels and
// Props evaluated against that row. Writes are deferred to the end of the
// chunk only in the sense that the store itself batches matrix flushes;
// each Next still performs its write immediately, since §4.6.3 requires a
// failed write later in the same query to leave earlier writes in place
// rather than be rolled back as a unit.
type CreateNode struct {
	Graph  *store.Graph
	Child  Operator
	Var    string
	Labels []string
	Props  []PropSpec

	// done guards the no-Child case: a CREATE with no preceding MATCH
	// produces exactly one row.
	done bool
}

func (c *CreateNode) Init() error {
	if c.Child != nil {
		return c.Child.Init()
	}
	return nil
}

func (c *CreateNode) Next() (Row, error) {
	row := Row{}
	if c.Child != nil {
		r, err := c.Child.Next()
		if err != nil {
			return nil, err
		}
		row = r
	} else if c.done {
		return nil, Done
	}
	c.done = true

	props, err := evalProps(c.Graph, row, c.Props)
	if err != nil {
		return nil, err
	}

	id, err := c.Graph.CreateNode(c.Labels, props)
	if err != nil {
		return nil, err
	}

	out := row.Clone()
	out[c.Var] = NodeBinding(id)
	return out, nil
}

func (c *CreateNode) Reset() error {
	c.done = false
	if c.Child != nil {
		return c.Child.Reset()
	}
	return nil
}

func (c *CreateNode) Free() {
	if c.Child != nil {
		c.Child.Free()
	}
}

// CreateEdge creates one edge per input row between the nodes bound to
// FromVar/ToVar.
type CreateEdge struct {
	Graph    *store.Graph
	Child    Operator
	FromVar  string
	ToVar    string
	Var      string
	Relation string
	Props    []PropSpec
}

func (c *CreateEdge) Init() error { return c.Child.Init() }

func (c *CreateEdge) Next() (Row, error) {
	row, err := c.Child.Next()
	if err != nil {
		return nil, err
	}

	from, ok := ResolveNode(c.Graph, row, c.FromVar)
	if !ok {
		return nil, typeError("exec: %q is not bound to a node", c.FromVar)
	}
	to, ok := ResolveNode(c.Graph, row, c.ToVar)
	if !ok {
		return nil, typeError("exec: %q is not bound to a node", c.ToVar)
	}

	props, err := evalProps(c.Graph, row, c.Props)
	if err != nil {
		return nil, err
	}

	id, err := c.Graph.CreateEdge(from.ID, to.ID, c.Relation, props)
	if err != nil {
		return nil, err
	}

	out := row.Clone()
	if c.Var != "" {
		out[c.Var] = EdgeBinding(id)
	}
	return out, nil
}

func (c *CreateEdge) Reset() error { return c.Child.Reset() }
func (c *CreateEdge) Free()        { c.Child.Free() }

// UpdateNode applies SET/REMOVE to the node bound to Var, for every row.
type UpdateNode struct {
	Graph  *store.Graph
	Child  Operator
	Var    string
	Set    []PropSpec
	Remove []string
}

func (u *UpdateNode) Init() error { return u.Child.Init() }

func (u *UpdateNode) Next() (Row, error) {
	row, err := u.Child.Next()
	if err != nil {
		return nil, err
	}

	n, ok := ResolveNode(u.Graph, row, u.Var)
	if !ok {
		return nil, typeError("exec: %q is not bound to a node", u.Var)
	}

	props, err := evalProps(u.Graph, row, u.Set)
	if err != nil {
		return nil, err
	}
	if err := u.Graph.UpdateNodeProps(n.ID, props, u.Remove); err != nil {
		return nil, err
	}
	return row, nil
}

func (u *UpdateNode) Reset() error { return u.Child.Reset() }
func (u *UpdateNode) Free()        { u.Child.Free() }

// UpdateEdge is UpdateNode's edge-bound counterpart.
type UpdateEdge struct {
	Graph  *store.Graph
	Child  Operator
	Var    string
	Set    []PropSpec
	Remove []string
}

func (u *UpdateEdge) Init() error { return u.Child.Init() }

func (u *UpdateEdge) Next() (Row, error) {
	row, err := u.Child.Next()
	if err != nil {
		return nil, err
	}

	e, ok := ResolveEdge(u.Graph, row, u.Var)
	if !ok {
		return nil, typeError("exec: %q is not bound to an edge", u.Var)
	}

	props, err := evalProps(u.Graph, row, u.Set)
	if err != nil {
		return nil, err
	}
	if err := u.Graph.UpdateEdgeProps(e.ID, props, u.Remove); err != nil {
		return nil, err
	}
	return row, nil
}

func (u *UpdateEdge) Reset() error { return u.Child.Reset() }
func (u *UpdateEdge) Free()        { u.Child.Free() }

// DeleteEntity deletes every node or edge bound to Var, per row. Deleting a
// node always deletes its incident edges too (store.DeleteNode does this,
// as in a Cypher DETACH DELETE); there is no non-detach variant that would
// reject a node that still has edges.
type DeleteEntity struct {
	Graph *store.Graph
	Child Operator
	Var   string
}

func (d *DeleteEntity) Init() error { return d.Child.Init() }

func (d *DeleteEntity) Next() (Row, error) {
	row, err := d.Child.Next()
	if err != nil {
		return nil, err
	}

	if n, ok := ResolveNode(d.Graph, row, d.Var); ok {
		d.Graph.DeleteNode(n.ID)
		return row, nil
	}
	if e, ok := ResolveEdge(d.Graph, row, d.Var); ok {
		d.Graph.DeleteEdge(e.ID)
		return row, nil
	}
	return nil, gerr.New(gerr.SemanticError, "exec: %q is not bound to a node or edge", d.Var)
}

func (d *DeleteEntity) Reset() error { return d.Child.Reset() }
func (d *DeleteEntity) Free()        { d.Child.Free() }
