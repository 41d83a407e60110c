package core

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// CellKind distinguishes the cell variants.
type CellKind uint8

const (
	// KindTransparent shows whatever is beneath. It is the zero value.
	KindTransparent CellKind = iota

	// KindBlank is an opaque space: only the background is drawn.
	KindBlank

	// KindGlyph is an opaque glyph with a foreground and background.
	KindGlyph
)

// String returns the string representation of the kind.
func (k CellKind) String() string {
	switch k {
	case KindTransparent:
		return "transparent"
	case KindBlank:
		return "blank"
	case KindGlyph:
		return "glyph"
	default:
		return "unknown"
	}
}

// Cell is the smallest renderable unit of a sprite image.
//
// The zero Cell is transparent. Blank is the reduced opaque form of a
// space glyph: it carries no foreground.
type Cell struct {
	Kind  CellKind
	Glyph rune
	Fg    Color
	Bg    Color
}

// Transparent returns a cell that lets lower sprites show through.
func Transparent() Cell {
	return Cell{}
}

// Blank returns an opaque space painted with bg.
func Blank(bg Color) Cell {
	return Cell{Kind: KindBlank, Glyph: ' ', Fg: ColorDefault, Bg: bg}
}

// WideGlyph replaces runes wider than one column. A cell always covers
// exactly one terminal column.
const WideGlyph = '?'

// Opaque returns an opaque cell. Spaces and zero-width runes are reduced
// to Blank since they have no visible foreground; wide runes become
// WideGlyph.
func Opaque(r rune, fg, bg Color) Cell {
	switch w := GlyphWidth(r); {
	case r == ' ' || w == 0:
		return Blank(bg)
	case w > 1:
		r = WideGlyph
	}
	return Cell{Kind: KindGlyph, Glyph: r, Fg: fg, Bg: bg}
}

// DefaultCell is what the terminal shows where no sprite is opaque.
func DefaultCell() Cell {
	return Blank(ColorDefault)
}

// IsTransparent returns true if the cell contributes nothing.
func (c Cell) IsTransparent() bool {
	return c.Kind == KindTransparent
}

// IsOpaque returns true for Blank and Glyph cells.
func (c Cell) IsOpaque() bool {
	return c.Kind != KindTransparent
}

// Rune returns the rune to print for the cell.
func (c Cell) Rune() rune {
	if c.Kind == KindGlyph {
		return c.Glyph
	}
	return ' '
}

// Style returns the cell's style. Blank cells use the default foreground.
func (c Cell) Style() Style {
	if c.Kind == KindGlyph {
		return Style{Foreground: c.Fg, Background: c.Bg}
	}
	return Style{Foreground: ColorDefault, Background: c.Bg}
}

// Equals returns true if two cells render identically.
func (c Cell) Equals(other Cell) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case KindTransparent:
		return true
	case KindBlank:
		return c.Bg.Equals(other.Bg)
	default:
		return c.Glyph == other.Glyph && c.Fg.Equals(other.Fg) && c.Bg.Equals(other.Bg)
	}
}

// String returns a debug representation of the cell.
func (c Cell) String() string {
	switch c.Kind {
	case KindTransparent:
		return "transparent"
	case KindBlank:
		return fmt.Sprintf("blank(%s)", c.Bg)
	default:
		return fmt.Sprintf("%q(%s/%s)", c.Glyph, c.Fg, c.Bg)
	}
}

// GlyphWidth returns the display width of a rune in terminal columns.
func GlyphWidth(r rune) int {
	return runewidth.RuneWidth(r)
}
