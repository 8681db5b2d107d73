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
Package attr provides the dense-integer name interning used throughout
Tessera for attribute, label, and relation names.

Pool

A Pool is a bidirectional mapping between a name string and a dense ID
assigned in first-seen order. IDs are never recycled within a Pool's
lifetime - a renamed or dropped attribute still occupies its slot. This
mirrors the host codebase's names manager, generalized from separate
16/32-bit node/edge/role tables into one reusable interning primitive; a
graph keeps three independent Pools (attributes, labels, relations).
*/
package attr

import (
	"sync"

	"github.com/krotik/common/errorutil"
)

// ID is a dense identifier assigned by a Pool.
type ID uint32

// Pool interns names into dense IDs and resolves IDs back to names.
type Pool struct {
	lock  sync.Mutex // short-held latch serializing the intern path
	byID  []string
	byName map[string]ID
}

// NewPool creates an empty Pool.
func NewPool() *Pool {
	return &Pool{
		byName: make(map[string]ID),
	}
}

// Intern returns the ID for name, assigning the next dense ID if name has
// never been seen before. Once assigned, an ID is stable for the Pool's
// lifetime.
func (p *Pool) Intern(name string) ID {
	p.lock.Lock()
	defer p.lock.Unlock()

	if id, ok := p.byName[name]; ok {
		return id
	}

	id := ID(len(p.byID))
	p.byID = append(p.byID, name)
	p.byName[name] = id

	return id
}

// Lookup returns the ID already assigned to name, if any, without assigning
// a new one.
func (p *Pool) Lookup(name string) (ID, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()

	id, ok := p.byName[name]
	return id, ok
}

// NameOf returns the name for id. Passing an out-of-range id is a programmer
// error - the caller is expected to only ever pass IDs this Pool itself
// handed out.
func (p *Pool) NameOf(id ID) string {
	p.lock.Lock()
	defer p.lock.Unlock()

	errorutil.AssertTrue(int(id) < len(p.byID), "attr: id out of range")

	return p.byID[id]
}

// Count returns the number of interned names.
func (p *Pool) Count() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return len(p.byID)
}

// Names returns a snapshot of every interned name in assignment order. The
// returned slice is a copy and safe to retain.
func (p *Pool) Names() []string {
	p.lock.Lock()
	defer p.lock.Unlock()

	out := make([]string, len(p.byID))
	copy(out, p.byID)

	return out
}
