// Package dirty tracks which screen cells need recompositing before the
// next flush.
//
// A single Tracker is shared by every sprite of one scene manager. It is
// not safe for concurrent use: the owner of the scene serializes all
// access to it.
package dirty

import (
	"iter"
	"slices"

	"github.com/dshills/tableau/internal/renderer/core"
)

// Tracker maps an absolute row to the sorted, duplicate-free set of
// dirty columns in that row.
type Tracker struct {
	rows  map[int][]int
	cells int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{rows: make(map[int][]int)}
}

// SetDirty marks a single cell dirty.
func (t *Tracker) SetDirty(pos core.Pos) {
	cols := t.rows[pos.Row]
	i, found := slices.BinarySearch(cols, pos.Col)
	if found {
		return
	}
	t.rows[pos.Row] = slices.Insert(cols, i, pos.Col)
	t.cells++
}

// DirtyRegion marks every cell of b dirty. Empty bounds mark nothing.
func (t *Tracker) DirtyRegion(b core.Bounds) {
	if b.IsEmpty() {
		return
	}
	for row := b.YMin; row < b.YMax; row++ {
		t.rows[row] = t.mergeSpan(t.rows[row], b.XMin, b.XMax)
	}
}

// mergeSpan inserts the columns [from, to) into the sorted slice cols.
func (t *Tracker) mergeSpan(cols []int, from, to int) []int {
	lo, _ := slices.BinarySearch(cols, from)
	hi, _ := slices.BinarySearch(cols, to)

	present := hi - lo
	span := to - from
	if present == span {
		return cols
	}
	t.cells += span - present

	merged := make([]int, 0, len(cols)+span-present)
	merged = append(merged, cols[:lo]...)
	for col := from; col < to; col++ {
		merged = append(merged, col)
	}
	return append(merged, cols[hi:]...)
}

// IsDirty returns true if any cell is dirty.
func (t *Tracker) IsDirty() bool {
	return t.cells > 0
}

// IsCellDirty returns true if the given cell is dirty.
func (t *Tracker) IsCellDirty(pos core.Pos) bool {
	_, found := slices.BinarySearch(t.rows[pos.Row], pos.Col)
	return found
}

// Len returns the number of dirty cells.
func (t *Tracker) Len() int {
	return t.cells
}

// RowCount returns the number of rows with at least one dirty cell.
func (t *Tracker) RowCount() int {
	return len(t.rows)
}

// Rows yields each dirty row with its dirty columns, rows ascending.
// The column slices are owned by the tracker and must not be modified;
// the tracker must not be mutated during iteration.
func (t *Tracker) Rows() iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		keys := make([]int, 0, len(t.rows))
		for row := range t.rows {
			keys = append(keys, row)
		}
		slices.Sort(keys)

		for _, row := range keys {
			if !yield(row, t.rows[row]) {
				return
			}
		}
	}
}

// Clear empties the tracker.
func (t *Tracker) Clear() {
	clear(t.rows)
	t.cells = 0
}

// Stats returns statistics about the tracker state.
func (t *Tracker) Stats() TrackerStats {
	return TrackerStats{
		DirtyCells: t.cells,
		DirtyRows:  len(t.rows),
	}
}

// TrackerStats contains statistics about the tracker state.
type TrackerStats struct {
	DirtyCells int
	DirtyRows  int
}
