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
Package constraint implements Mandatory and Unique constraints and the
synchronous write-path enforcement a store consults before committing a
create or update.

This generalizes the host codebase's two hardcoded graph rules
(SystemRuleDeleteNodeEdges, SystemRuleUpdateNodeStats) - both reactions to a
write event, dispatched through a registry keyed by event type - into a
registrable Registry keyed by label, consulted synchronously rather than as
a post-commit event.
*/
package constraint

import (
	"sort"
	"strings"
	"sync"

	"github.com/tesseradb/tessera/gerr"
	"github.com/tesseradb/tessera/index"
)

// Kind identifies what a Constraint enforces.
type Kind int

const (
	// Mandatory requires every one of a constraint's attributes to be
	// present on every entity of the constrained label.
	Mandatory Kind = iota

	// Unique requires the tuple of a constraint's attribute values to be
	// distinct across every entity of the constrained label.
	Unique
)

func (k Kind) String() string {
	if k == Unique {
		return "Unique"
	}
	return "Mandatory"
}

// Status is a constraint's position in its activation state machine.
type Status int

const (
	// Pending constraints are still being (or have not yet been) scanned
	// against existing entities; they do not yet enforce on writes.
	Pending Status = iota

	// Active constraints enforce on every write.
	Active

	// Failed constraints found a violation during their Pending scan and
	// never enforce; a caller must drop and recreate them after fixing
	// the data.
	Failed
)

func (s Status) String() string {
	switch s {
	case Active:
		return "Active"
	case Failed:
		return "Failed"
	default:
		return "Pending"
	}
}

// tupleSep separates the attribute values concatenated into a Unique
// constraint's composite key. Chosen the same way package index chooses
// its key separators: a control byte a user-supplied attribute value
// cannot contain verbatim through the query language's string literals.
const tupleSep = "\x00"

// Constraint is a single Mandatory or Unique constraint on a label.
type Constraint struct {
	mu sync.RWMutex

	name   string
	kind   Kind
	label  string
	attrs  []string
	status Status

	// holders tracks, for an Active Unique constraint, which entity
	// currently holds each composite tuple key. Mandatory constraints
	// leave this nil.
	holders map[string]uint64
}

// New creates a constraint in Pending status. Call Activate before relying
// on it to enforce anything.
func New(name string, kind Kind, label string, attrs []string) *Constraint {
	c := &Constraint{name: name, kind: kind, label: label, attrs: append([]string{}, attrs...)}
	if kind == Unique {
		c.holders = make(map[string]uint64)
	}
	return c
}

// Name, Kind, Label, and Attrs report the constraint's identity.
func (c *Constraint) Name() string    { return c.name }
func (c *Constraint) Kind() Kind      { return c.kind }
func (c *Constraint) Label() string   { return c.label }
func (c *Constraint) Attrs() []string { return append([]string{}, c.attrs...) }

// Status reports the constraint's current activation status.
func (c *Constraint) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Activate scans entities (every existing entity of this constraint's
// label) for a violation. On success the constraint becomes Active; on the
// first violation found it becomes Failed and stays that way.
func (c *Constraint) Activate(entities []index.Entity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	holders := make(map[string]uint64)

	for _, e := range entities {
		if err := c.checkLocked(e.ID, nil, e.Attrs, holders); err != nil {
			c.status = Failed
			return err
		}
		c.recordLocked(e.ID, e.Attrs, holders)
	}

	c.holders = holders
	c.status = Active
	return nil
}

// CheckCreate enforces the constraint against a not-yet-committed create.
// It is a no-op for a non-Active constraint.
func (c *Constraint) CheckCreate(id uint64, attrs index.Attrs) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.status != Active {
		return nil
	}
	return c.checkLocked(id, nil, attrs, c.holders)
}

// CheckUpdate enforces the constraint against a not-yet-committed update
// from oldAttrs to newAttrs. It is a no-op for a non-Active constraint.
func (c *Constraint) CheckUpdate(id uint64, oldAttrs, newAttrs index.Attrs) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.status != Active {
		return nil
	}
	return c.checkLocked(id, oldAttrs, newAttrs, c.holders)
}

// Observe records a write that CheckCreate/CheckUpdate already approved,
// updating the constraint's internal bookkeeping (the Unique tuple-holder
// table). Callers must call Observe only after the write actually commits.
func (c *Constraint) Observe(id uint64, oldAttrs, newAttrs index.Attrs) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != Active || c.kind != Unique {
		return
	}

	if oldAttrs != nil {
		if key, ok := c.tupleKey(oldAttrs); ok {
			delete(c.holders, key)
		}
	}
	if key, ok := c.tupleKey(newAttrs); ok {
		c.holders[key] = id
	}
}

// Forget removes a deleted entity's tuple from a Unique constraint's
// bookkeeping.
func (c *Constraint) Forget(id uint64, attrs index.Attrs) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != Active || c.kind != Unique {
		return
	}
	if key, ok := c.tupleKey(attrs); ok {
		if c.holders[key] == id {
			delete(c.holders, key)
		}
	}
}

func (c *Constraint) checkLocked(id uint64, oldAttrs, newAttrs index.Attrs, holders map[string]uint64) error {
	switch c.kind {
	case Mandatory:
		for _, a := range c.attrs {
			if _, ok := newAttrs[a]; !ok {
				return gerr.New(gerr.ConstraintViolation,
					"entity %d is missing mandatory attribute %q required by constraint %q", id, a, c.name)
			}
		}
	case Unique:
		key, ok := c.tupleKey(newAttrs)
		if !ok {
			// Constraint attributes are not all present: nothing to
			// deduplicate against. A Mandatory constraint on the same
			// attributes (if any) is responsible for rejecting this.
			return nil
		}
		if holder, exists := holders[key]; exists && holder != id {
			return gerr.New(gerr.ConstraintViolation,
				"entity %d duplicates the tuple %v already held by entity %d under unique constraint %q",
				id, c.attrs, holder, c.name)
		}
	}
	return nil
}

func (c *Constraint) recordLocked(id uint64, attrs index.Attrs, holders map[string]uint64) {
	if c.kind != Unique {
		return
	}
	if key, ok := c.tupleKey(attrs); ok {
		holders[key] = id
	}
}

// tupleKey builds the composite key for a Unique constraint's attribute
// tuple. ok is false if attrs does not carry every constrained attribute.
func (c *Constraint) tupleKey(attrs index.Attrs) (string, bool) {
	parts := make([]string, len(c.attrs))
	for i, a := range c.attrs {
		v, ok := attrs[a]
		if !ok {
			return "", false
		}
		parts[i] = v
	}
	return strings.Join(parts, tupleSep), true
}

// Registry holds every constraint a store enforces, grouped by label.
type Registry struct {
	mu      sync.RWMutex
	byLabel map[string][]*Constraint
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byLabel: make(map[string][]*Constraint)}
}

// Add registers a constraint. The caller is responsible for calling
// Activate before writes against its label start being enforced.
func (r *Registry) Add(c *Constraint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byLabel[c.label] = append(r.byLabel[c.label], c)
}

// Constraints returns every constraint registered for label, in
// registration order.
func (r *Registry) Constraints(label string) []*Constraint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Constraint{}, r.byLabel[label]...)
}

// Names returns every constraint name across every label, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, cs := range r.byLabel {
		for _, c := range cs {
			names = append(names, c.name)
		}
	}
	sort.Strings(names)
	return names
}

// CheckCreate runs every Active constraint on label against a
// not-yet-committed create.
func (r *Registry) CheckCreate(label string, id uint64, attrs index.Attrs) error {
	for _, c := range r.Constraints(label) {
		if err := c.CheckCreate(id, attrs); err != nil {
			return err
		}
	}
	return nil
}

// CheckUpdate runs every Active constraint on label against a
// not-yet-committed update.
func (r *Registry) CheckUpdate(label string, id uint64, oldAttrs, newAttrs index.Attrs) error {
	for _, c := range r.Constraints(label) {
		if err := c.CheckUpdate(id, oldAttrs, newAttrs); err != nil {
			return err
		}
	}
	return nil
}

// Observe notifies every constraint on label that a create/update of id
// from oldAttrs (nil on create) to newAttrs committed successfully.
func (r *Registry) Observe(label string, id uint64, oldAttrs, newAttrs index.Attrs) {
	for _, c := range r.Constraints(label) {
		c.Observe(id, oldAttrs, newAttrs)
	}
}

// Forget notifies every constraint on label that id was deleted.
func (r *Registry) Forget(label string, id uint64, attrs index.Attrs) {
	for _, c := range r.Constraints(label) {
		c.Forget(id, attrs)
	}
}
