// Package termable groups horizontally contiguous, style-compatible cells
// into runs so each run can be written with one cursor move and one
// styled print.
package termable

import (
	"strings"

	"github.com/dshills/tableau/internal/renderer/core"
)

// Kind is the run variant.
type Kind uint8

const (
	// KindBackground is a run of blank cells sharing a background.
	KindBackground Kind = iota

	// KindGlyph is a run of glyphs sharing foreground and background.
	KindGlyph
)

// Run is a maximal span of cells that prints with a single style.
type Run struct {
	kind  Kind
	start core.Pos
	last  int
	count int
	text  []rune
	fg    core.Color
	bg    core.Color
}

// NewRun starts a run at pos with an opaque cell.
func NewRun(pos core.Pos, cell core.Cell) *Run {
	r := &Run{
		kind:  KindBackground,
		start: pos,
		last:  pos.Col,
		count: 1,
		fg:    core.ColorDefault,
		bg:    cell.Bg,
	}
	if cell.Kind == core.KindGlyph {
		r.kind = KindGlyph
		r.fg = cell.Fg
		r.text = append(r.text, cell.Glyph)
	}
	return r
}

// Extend appends the cell at col if it directly follows the run and is
// style compatible. It returns false when the run must be finalized.
func (r *Run) Extend(col int, cell core.Cell) bool {
	if col != r.last+1 || !cell.IsOpaque() || !cell.Bg.Equals(r.bg) {
		return false
	}

	switch r.kind {
	case KindBackground:
		if cell.Kind == core.KindGlyph {
			// Absorb the glyph by converting into a glyph run.
			r.text = make([]rune, r.count, r.count+8)
			for i := range r.text {
				r.text[i] = ' '
			}
			r.text = append(r.text, cell.Glyph)
			r.kind = KindGlyph
			r.fg = cell.Fg
		}
	case KindGlyph:
		switch cell.Kind {
		case core.KindGlyph:
			if !cell.Fg.Equals(r.fg) {
				return false
			}
			r.text = append(r.text, cell.Glyph)
		default:
			r.text = append(r.text, ' ')
		}
	}

	r.last = col
	r.count++
	return true
}

// Kind returns the run variant.
func (r *Run) Kind() Kind {
	return r.kind
}

// Start returns the position of the first cell.
func (r *Run) Start() core.Pos {
	return r.start
}

// Len returns the number of cells in the run.
func (r *Run) Len() int {
	return r.count
}

// Text returns the characters to print.
func (r *Run) Text() string {
	if r.kind == KindBackground {
		return strings.Repeat(" ", r.count)
	}
	return string(r.text)
}

// Style returns the style to print the run with.
func (r *Run) Style() core.Style {
	return core.NewStyle(r.fg, r.bg)
}

// Encoder accumulates resolved cells of one row, left to right, into runs.
type Encoder struct {
	current *Run
}

// Push adds the resolved cell at pos. When the cell cannot extend the
// open run, that run is returned finished and a new one begins.
func (e *Encoder) Push(pos core.Pos, cell core.Cell) *Run {
	if e.current != nil && e.current.start.Row == pos.Row && e.current.Extend(pos.Col, cell) {
		return nil
	}
	done := e.current
	e.current = NewRun(pos, cell)
	return done
}

// Finish returns the open run, if any, and resets the encoder.
func (e *Encoder) Finish() *Run {
	done := e.current
	e.current = nil
	return done
}
