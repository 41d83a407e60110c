package core

import (
	"fmt"
	"iter"
)

// Pos is a signed (row, col) point.
type Pos struct {
	Row int
	Col int
}

// NewPos creates a position.
func NewPos(row, col int) Pos {
	return Pos{Row: row, Col: col}
}

// Add returns p shifted by other.
func (p Pos) Add(other Pos) Pos {
	return Pos{Row: p.Row + other.Row, Col: p.Col + other.Col}
}

// Sub returns p relative to other.
func (p Pos) Sub(other Pos) Pos {
	return Pos{Row: p.Row - other.Row, Col: p.Col - other.Col}
}

// String returns "(row, col)".
func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Bounds is the half-open rectangle [YMin, YMax) x [XMin, XMax).
// A Bounds with either extent <= 0 is empty and contains no points.
type Bounds struct {
	YMin, YMax int
	XMin, XMax int
}

// NewBounds creates bounds from its edges.
func NewBounds(yMin, yMax, xMin, xMax int) Bounds {
	return Bounds{YMin: yMin, YMax: yMax, XMin: xMin, XMax: xMax}
}

// BoundsFromSize creates bounds covering height x width cells at anchor.
func BoundsFromSize(anchor Pos, height, width int) Bounds {
	return Bounds{
		YMin: anchor.Row,
		YMax: anchor.Row + height,
		XMin: anchor.Col,
		XMax: anchor.Col + width,
	}
}

// Height returns the number of rows, zero when inverted.
func (b Bounds) Height() int {
	if b.YMax <= b.YMin {
		return 0
	}
	return b.YMax - b.YMin
}

// Width returns the number of columns, zero when inverted.
func (b Bounds) Width() int {
	if b.XMax <= b.XMin {
		return 0
	}
	return b.XMax - b.XMin
}

// Len returns the number of points contained.
func (b Bounds) Len() int {
	return b.Height() * b.Width()
}

// IsEmpty returns true if the bounds contain no points.
func (b Bounds) IsEmpty() bool {
	return b.Height() == 0 || b.Width() == 0
}

// TopLeft returns the anchor corner.
func (b Bounds) TopLeft() Pos {
	return Pos{Row: b.YMin, Col: b.XMin}
}

// Contains returns true if p lies inside the bounds.
func (b Bounds) Contains(p Pos) bool {
	if b.IsEmpty() {
		return false
	}
	return p.Row >= b.YMin && p.Row < b.YMax &&
		p.Col >= b.XMin && p.Col < b.XMax
}

// Union returns the smallest bounds covering both. Empty operands are ignored.
func (b Bounds) Union(other Bounds) Bounds {
	if b.IsEmpty() {
		if other.IsEmpty() {
			return Bounds{}
		}
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return Bounds{
		YMin: min(b.YMin, other.YMin),
		YMax: max(b.YMax, other.YMax),
		XMin: min(b.XMin, other.XMin),
		XMax: max(b.XMax, other.XMax),
	}
}

// Intersect returns the overlap of two bounds, or the zero Bounds.
func (b Bounds) Intersect(other Bounds) Bounds {
	r := Bounds{
		YMin: max(b.YMin, other.YMin),
		YMax: min(b.YMax, other.YMax),
		XMin: max(b.XMin, other.XMin),
		XMax: min(b.XMax, other.XMax),
	}
	if b.IsEmpty() || other.IsEmpty() || r.IsEmpty() {
		return Bounds{}
	}
	return r
}

// Shift returns the bounds translated by delta. Empty bounds stay empty.
func (b Bounds) Shift(delta Pos) Bounds {
	if b.IsEmpty() {
		return Bounds{}
	}
	return Bounds{
		YMin: b.YMin + delta.Row,
		YMax: b.YMax + delta.Row,
		XMin: b.XMin + delta.Col,
		XMax: b.XMax + delta.Col,
	}
}

// Points yields every contained point in row-major order.
func (b Bounds) Points() iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		if b.IsEmpty() {
			return
		}
		for row := b.YMin; row < b.YMax; row++ {
			for col := b.XMin; col < b.XMax; col++ {
				if !yield(Pos{Row: row, Col: col}) {
					return
				}
			}
		}
	}
}

// String returns "[y0,y1)x[x0,x1)".
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d)x[%d,%d)", b.YMin, b.YMax, b.XMin, b.XMax)
}
