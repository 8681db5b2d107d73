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
Package matrix implements the sparse delta-matrix representation that backs
every adjacency and label matrix in the graph store.

A DeltaMatrix is not one matrix but a triple (M, Δ⁺, Δ⁻):

  - M holds the last synchronized state.
  - Δ⁺ holds pending insertions not yet merged into M.
  - Δ⁻ holds pending deletions: entries present in M that should be treated
    as logically absent.

The logical matrix is (M ∪ Δ⁺) \ Δ⁻. Flush folds Δ⁺/Δ⁻ into M and empties
them; it is the only transition from Pending back to Synchronized. Pointwise
reads (Get) always consult all three layers; algebraic reads (Multiply,
Transpose) require Synchronized. Multiply delegates to
github.com/katalvlaran/lvlath's dense Mul kernel, which stands in for the
GraphBLAS-style provider the specification treats as opaque; Transpose is
computed directly on M without lvlath.
*/
package matrix

import (
	"sync"

	lvmatrix "github.com/katalvlaran/lvlath/matrix"

	"github.com/tesseradb/tessera/gerr"
)

// Cell is the value stored at a logically-present entry. Zero is never
// stored - presence is encoded by key membership in a row map.
type Cell uint8

const (
	// CellSingle marks an entry backed by exactly one edge.
	CellSingle Cell = 1
	// CellMulti marks an entry backed by more than one edge of the same
	// relation between the same ordered pair; the EdgeIDs themselves live
	// in a side table the store keeps next to the matrix (see store.Graph).
	CellMulti Cell = 2
)

// State is the Synchronized/Pending state machine described by SPEC_FULL.md
// §4.2.
type State int

const (
	// Synchronized means Δ⁺ = Δ⁻ = ∅; Multiply/Transpose are legal.
	Synchronized State = iota
	// Pending means at least one of Δ⁺/Δ⁻ is non-empty.
	Pending
)

// DeltaMatrix is a square sparse boolean-ish matrix with buffered mutation.
type DeltaMatrix struct {
	mu sync.RWMutex

	dim int

	m      map[int]map[int]Cell
	plus   map[int]map[int]Cell
	minus  map[int]map[int]Cell
}

// New creates an empty DeltaMatrix of dimension dim x dim.
func New(dim int) *DeltaMatrix {
	return &DeltaMatrix{
		dim:   dim,
		m:     make(map[int]map[int]Cell),
		plus:  make(map[int]map[int]Cell),
		minus: make(map[int]map[int]Cell),
	}
}

// Dim returns the current dimension.
func (d *DeltaMatrix) Dim() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dim
}

// State reports whether d is Synchronized or Pending.
func (d *DeltaMatrix) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stateLocked()
}

func (d *DeltaMatrix) stateLocked() State {
	if len(d.plus) == 0 && len(d.minus) == 0 {
		return Synchronized
	}
	return Pending
}

// Resize grows the matrix to at least dim x dim. Resize preserves every
// logically present entry and never changes Synchronized/Pending state. It
// never shrinks: dim smaller than the current dimension is a no-op.
func (d *DeltaMatrix) Resize(dim int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dim > d.dim {
		d.dim = dim
	}
}

func rowOf(rows map[int]map[int]Cell, i int) map[int]Cell {
	row, ok := rows[i]
	if !ok {
		row = make(map[int]Cell)
		rows[i] = row
	}
	return row
}

// Set marks (i, j) as logically present with the given cell value. If i or j
// is beyond the current dimension, the matrix grows to accommodate it.
//
// A change of tag on an entry that is already logically present (e.g.
// upgrading CellSingle to CellMulti when a second parallel edge is added)
// does not change set-membership, so it is applied directly wherever the
// entry currently lives (M, Δ⁺, or un-deleted via Δ⁻) rather than going
// through the insert/delete delta machinery. Set on an entry currently
// recorded in Δ⁻ removes it from Δ⁻ rather than adding it to Δ⁺ (invariant 4
// of SPEC_FULL.md §3) - the entry is already in M, undoing the pending
// deletion is enough.
func (d *DeltaMatrix) Set(i, j int, v Cell) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i+1 > d.dim {
		d.dim = i + 1
	}
	if j+1 > d.dim {
		d.dim = j + 1
	}

	if mrow, ok := d.minus[i]; ok {
		if _, present := mrow[j]; present {
			delete(mrow, j)
			if len(mrow) == 0 {
				delete(d.minus, i)
			}
			rowOf(d.m, i)[j] = v
			return
		}
	}

	if prow, ok := d.plus[i]; ok {
		if _, present := prow[j]; present {
			prow[j] = v
			return
		}
	}

	if mrow, ok := d.m[i]; ok {
		if _, present := mrow[j]; present {
			mrow[j] = v
			return
		}
	}

	rowOf(d.plus, i)[j] = v
}

// Clear marks (i, j) as logically absent.
//
// Clear on an entry currently recorded in Δ⁺ removes it from Δ⁺ rather than
// adding it to Δ⁻ (invariant 4) - the entry was never folded into M, so
// there is nothing to mark deleted.
func (d *DeltaMatrix) Clear(i, j int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prow, ok := d.plus[i]; ok {
		if _, present := prow[j]; present {
			delete(prow, j)
			if len(prow) == 0 {
				delete(d.plus, i)
			}
			return
		}
	}

	if mrow, ok := d.m[i]; ok {
		if _, present := mrow[j]; present {
			if _, alreadyDeleted := d.minus[i][j]; !alreadyDeleted {
				rowOf(d.minus, i)[j] = mrow[j]
			}
		}
	}
}

// Get returns the logical value at (i, j), consulting Δ⁺/Δ⁻ on top of M.
func (d *DeltaMatrix) Get(i, j int) (Cell, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.getLocked(i, j)
}

func (d *DeltaMatrix) getLocked(i, j int) (Cell, bool) {
	if mrow, ok := d.minus[i]; ok {
		if _, deleted := mrow[j]; deleted {
			return 0, false
		}
	}
	if prow, ok := d.plus[i]; ok {
		if v, ok := prow[j]; ok {
			return v, true
		}
	}
	if mrow, ok := d.m[i]; ok {
		if v, ok := mrow[j]; ok {
			return v, true
		}
	}
	return 0, false
}

// Nnz returns the count of logically-present entries.
func (d *DeltaMatrix) Nnz() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	count := 0
	seen := make(map[[2]int]bool)

	for i, row := range d.m {
		for j := range row {
			if minusRow, ok := d.minus[i]; ok {
				if _, deleted := minusRow[j]; deleted {
					continue
				}
			}
			seen[[2]int{i, j}] = true
			count++
		}
	}
	for i, row := range d.plus {
		for j := range row {
			key := [2]int{i, j}
			if !seen[key] {
				count++
			}
		}
	}
	return count
}

// Flush folds Δ⁺ and Δ⁻ into M and empties them, transitioning Pending to
// Synchronized. Flushing an already-Synchronized matrix is a no-op,
// matching flush(flush(store)) == flush(store).
func (d *DeltaMatrix) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushLocked()
}

func (d *DeltaMatrix) flushLocked() {
	for i, row := range d.minus {
		mrow, ok := d.m[i]
		if !ok {
			continue
		}
		for j := range row {
			delete(mrow, j)
		}
		if len(mrow) == 0 {
			delete(d.m, i)
		}
	}
	for i, row := range d.plus {
		mrow := rowOf(d.m, i)
		for j, v := range row {
			mrow[j] = v
		}
	}
	d.plus = make(map[int]map[int]Cell)
	d.minus = make(map[int]map[int]Cell)
}

// Entry is a (column, value) pair yielded by Iter.
type Entry struct {
	Col int
	Val Cell
}

// Iter returns the logically-present entries of row i in ascending column
// order, consulting all three layers. The returned slice is a point-in-time
// snapshot; it is not restartable against further mutation of d.
func (d *DeltaMatrix) Iter(row int) []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cols := make(map[int]Cell)

	if mrow, ok := d.m[row]; ok {
		for j, v := range mrow {
			cols[j] = v
		}
	}
	if mrow, ok := d.minus[row]; ok {
		for j := range mrow {
			delete(cols, j)
		}
	}
	if prow, ok := d.plus[row]; ok {
		for j, v := range prow {
			cols[j] = v
		}
	}

	out := make([]Entry, 0, len(cols))
	for j, v := range cols {
		out = append(out, Entry{Col: j, Val: v})
	}
	insertionSort(out)
	return out
}

func insertionSort(es []Entry) {
	for i := 1; i < len(es); i++ {
		for j := i; j > 0 && es[j-1].Col > es[j].Col; j-- {
			es[j-1], es[j] = es[j], es[j-1]
		}
	}
}

// Clone returns a deep, independent copy of d, including pending deltas.
func (d *DeltaMatrix) Clone() *DeltaMatrix {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := New(d.dim)
	out.m = cloneRows(d.m)
	out.plus = cloneRows(d.plus)
	out.minus = cloneRows(d.minus)
	return out
}

func cloneRows(rows map[int]map[int]Cell) map[int]map[int]Cell {
	out := make(map[int]map[int]Cell, len(rows))
	for i, row := range rows {
		r := make(map[int]Cell, len(row))
		for j, v := range row {
			r[j] = v
		}
		out[i] = r
	}
	return out
}

// Semiring parameterizes Multiply's accumulation (add) and per-term
// (multiply) operators, mirroring the GraphBLAS semiring concept the
// specification names.
type Semiring struct {
	Name string
	Add  func(a, b float64) float64
	Mul  func(a, b float64) float64
}

// Boolean is the semiring used for reachability-style traversal: logical OR
// to accumulate, logical AND to combine a row/column pair.
var Boolean = Semiring{
	Name: "boolean",
	Add: func(a, b float64) float64 {
		if a != 0 || b != 0 {
			return 1
		}
		return 0
	},
	Mul: func(a, b float64) float64 {
		if a != 0 && b != 0 {
			return 1
		}
		return 0
	},
}

// toDense materializes the Synchronized M layer as an lvlath dense matrix,
// the concrete stand-in for the "typed matrix" the specification treats as
// an opaque provider type.
func (d *DeltaMatrix) toDense() (*lvmatrix.Dense, error) {
	dense, err := lvmatrix.NewZeros(d.dim, d.dim)
	if err != nil {
		return nil, gerr.New(gerr.InternalInvariant, "matrix: dense staging failed: %v", err)
	}
	for i, row := range d.m {
		for j, v := range row {
			if v != 0 {
				if err := dense.Set(i, j, 1.0); err != nil {
					return nil, gerr.New(gerr.InternalInvariant, "matrix: dense set failed: %v", err)
				}
			}
		}
	}
	return dense, nil
}

// Multiply computes self · B under sr, restricted to the entries allowed by
// mask (nil means unmasked). Both self and B must be Synchronized.
func (d *DeltaMatrix) Multiply(b *DeltaMatrix, mask *DeltaMatrix, sr Semiring) (*DeltaMatrix, error) {
	d.mu.RLock()
	selfState := d.stateLocked()
	dim := d.dim
	d.mu.RUnlock()

	if selfState != Synchronized {
		return nil, gerr.UnsynchronizedMatrix("Multiply")
	}
	if b.State() != Synchronized {
		return nil, gerr.UnsynchronizedMatrix("Multiply")
	}

	da, err := d.toDense()
	if err != nil {
		return nil, err
	}
	db, err := b.toDense()
	if err != nil {
		return nil, err
	}

	// Boolean semiring multiply reduces to standard dense Mul followed by a
	// clamp to {0,1}; non-boolean semirings fall back to an explicit
	// row/col accumulation, since lvlath's Mul kernel is defined over the
	// ordinary (+, ×) ring.
	var result [][]float64
	if sr.Name == Boolean.Name {
		prod, err := lvmatrix.Mul(da, db)
		if err != nil {
			return nil, gerr.New(gerr.InternalInvariant, "matrix: multiply failed: %v", err)
		}
		result = make([][]float64, prod.Rows())
		for i := 0; i < prod.Rows(); i++ {
			result[i] = make([]float64, prod.Cols())
			for j := 0; j < prod.Cols(); j++ {
				v, _ := prod.At(i, j)
				result[i][j] = v
			}
		}
	} else {
		n := dim
		result = make([][]float64, n)
		for i := 0; i < n; i++ {
			result[i] = make([]float64, n)
			for j := 0; j < n; j++ {
				acc := 0.0
				for k := 0; k < n; k++ {
					av, _ := da.At(i, k)
					bv, _ := db.At(k, j)
					acc = sr.Add(acc, sr.Mul(av, bv))
				}
				result[i][j] = acc
			}
		}
	}

	out := New(dim)
	for i := range result {
		for j := range result[i] {
			if result[i][j] == 0 {
				continue
			}
			if mask != nil {
				if _, ok := mask.Get(i, j); !ok {
					continue
				}
			}
			rowOf(out.m, i)[j] = CellSingle
		}
	}
	return out, nil
}

// Transpose returns a new Synchronized DeltaMatrix equal to self transposed.
// self must be Synchronized.
func (d *DeltaMatrix) Transpose() (*DeltaMatrix, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stateLocked() != Synchronized {
		return nil, gerr.UnsynchronizedMatrix("Transpose")
	}

	out := New(d.dim)
	for i, row := range d.m {
		for j, v := range row {
			rowOf(out.m, j)[i] = v
		}
	}
	return out, nil
}

// Union returns a new Synchronized DeltaMatrix that is the logical OR of a
// and b, used to build ADJ from every A_r and to expand undirected edges to
// A_r ∪ A_rᵀ.
func Union(a, b *DeltaMatrix) *DeltaMatrix {
	dim := a.Dim()
	if bd := b.Dim(); bd > dim {
		dim = bd
	}
	out := New(dim)
	for i := 0; i < dim; i++ {
		for _, e := range a.Iter(i) {
			out.Set(i, e.Col, e.Val)
		}
		for _, e := range b.Iter(i) {
			if cur, ok := out.Get(i, e.Col); !ok || cur < e.Val {
				out.Set(i, e.Col, e.Val)
			}
		}
	}
	out.Flush()
	return out
}
