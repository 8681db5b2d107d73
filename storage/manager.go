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
Package storage provides the abstract object-storage interface used to back
the secondary index layer (see package hash and package index).

Tessera's own primary graph state lives in matrices and in-process node/edge
records (see package store) - the embedding host is responsible for that
data's durability. Manager exists purely to give the hash.HTree-based
secondary indexes a persistent-looking handle API, mirroring the host
codebase's own separation between its StorageManager abstraction and the
HTree built on top of it.
*/
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/krotik/common/datautil"
)

// ErrSlotNotFound is returned when a storage location does not exist.
var ErrSlotNotFound = errors.New("storage: slot not found")

// ErrNotInCache is returned by FetchCached when an entry is not cached.
var ErrNotInCache = errors.New("storage: not in cache")

// Manager describes an abstract object-storage manager: insert, fetch,
// update, and free objects by an opaque location handle, plus a small set
// of named "root" values a caller can use to find its own entry points
// (e.g. the HTree root bucket).
type Manager interface {
	// Name returns the name of this Manager instance.
	Name() string

	// Root returns a root value.
	Root(root int) uint64

	// SetRoot writes a root value.
	SetRoot(root int, val uint64)

	// Insert inserts an object and returns its storage location.
	Insert(o interface{}) (uint64, error)

	// Update updates a storage location.
	Update(loc uint64, o interface{}) error

	// Free frees a storage location.
	Free(loc uint64) error

	// Fetch fetches an object from a given storage location and writes it
	// to o.
	Fetch(loc uint64, o interface{}) error

	// Flush writes all pending changes to the backing medium, if any.
	Flush() error
}

// MemoryManager is an in-memory Manager, grounded on the host codebase's
// MemoryStorageManager: a graph's secondary indexes live entirely in
// process memory, reconstructed via rebuild() after a snapshot load rather
// than persisted independently (see index.Shadow.Rebuild).
type MemoryManager struct {
	name string

	mu       sync.Mutex
	roots    map[int]uint64
	data     map[uint64]interface{}
	locCount uint64
}

// NewMemoryManager creates a new, empty MemoryManager.
func NewMemoryManager(name string) *MemoryManager {
	return &MemoryManager{
		name:     name,
		roots:    make(map[int]uint64),
		data:     make(map[uint64]interface{}),
		locCount: 1,
	}
}

// Name returns the name of this manager.
func (m *MemoryManager) Name() string { return m.name }

// Root returns a root value.
func (m *MemoryManager) Root(root int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roots[root]
}

// SetRoot writes a root value.
func (m *MemoryManager) SetRoot(root int, val uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots[root] = val
}

// Insert inserts an object and returns its storage location.
func (m *MemoryManager) Insert(o interface{}) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc := m.locCount
	m.locCount++
	m.data[loc] = o
	return loc, nil
}

// Update updates a storage location.
func (m *MemoryManager) Update(loc uint64, o interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[loc]; !ok {
		return fmt.Errorf("%w: location %d", ErrSlotNotFound, loc)
	}
	m.data[loc] = o
	return nil
}

// Free frees a storage location.
func (m *MemoryManager) Free(loc uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, loc)
	return nil
}

// Fetch fetches an object from a given storage location and writes it to o
// via a deep copy, matching the host codebase's FetchCached/Fetch split
// (Fetch always hands back an independent copy; see FetchCached for the
// shared-reference fast path).
func (m *MemoryManager) Fetch(loc uint64, o interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.data[loc]
	if !ok {
		return fmt.Errorf("%w: location %d", ErrSlotNotFound, loc)
	}
	return datautil.CopyObject(obj, o)
}

// FetchCached fetches an object from storage and returns it without
// copying. Returns ErrNotInCache if the location does not exist.
func (m *MemoryManager) FetchCached(loc uint64) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.data[loc]
	if !ok {
		return nil, ErrNotInCache
	}
	return obj, nil
}

// Flush is a no-op for MemoryManager; nothing is buffered beyond the map
// itself.
func (m *MemoryManager) Flush() error { return nil }

// String renders every stored entry, for debugging.
func (m *MemoryManager) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "MemoryManager %v\n", m.name)
	for k, v := range m.data {
		fmt.Fprintf(buf, "%v - %v\n", k, v)
	}
	return buf.String()
}
