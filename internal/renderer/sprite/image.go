// Package sprite provides images of styled cells and the positioned,
// orderable sprites that own them.
package sprite

import (
	"github.com/dshills/tableau/internal/renderer/core"
)

// Image is a fixed-size grid of cells addressed by row and column.
type Image struct {
	height int
	width  int
	cells  []core.Cell
}

// NewImage creates a fully transparent image. Both dimensions must be at least 1.
func NewImage(height, width int) (*Image, error) {
	if height < 1 {
		return nil, &core.ConversionError{Value: height, Target: "image height"}
	}
	if width < 1 {
		return nil, &core.ConversionError{Value: width, Target: "image width"}
	}
	return &Image{
		height: height,
		width:  width,
		cells:  make([]core.Cell, height*width),
	}, nil
}

// FromLines builds an image from text art. Every line becomes a row;
// the width is the longest line in runes. Spaces and missing trailing
// cells are transparent, every other rune is painted with fg on bg.
func FromLines(lines []string, fg, bg core.Color) (*Image, error) {
	width := 0
	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(line)
		width = max(width, len(rows[i]))
	}

	img, err := NewImage(len(lines), width)
	if err != nil {
		return nil, err
	}
	for row, runes := range rows {
		for col, r := range runes {
			if r == ' ' {
				continue
			}
			img.cells[row*width+col] = core.Opaque(r, fg, bg)
		}
	}
	return img, nil
}

// Height returns the number of rows.
func (img *Image) Height() int {
	return img.height
}

// Width returns the number of columns.
func (img *Image) Width() int {
	return img.width
}

// Size returns height and width.
func (img *Image) Size() (height, width int) {
	return img.height, img.width
}

// Bounds returns the image extent anchored at the origin.
func (img *Image) Bounds() core.Bounds {
	return core.BoundsFromSize(core.Pos{}, img.height, img.width)
}

func (img *Image) index(op string, pos core.Pos) (int, error) {
	if pos.Row < 0 || pos.Row >= img.height || pos.Col < 0 || pos.Col >= img.width {
		return 0, &core.BoundsError{Op: op, Pos: pos, Height: img.height, Width: img.width}
	}
	return pos.Row*img.width + pos.Col, nil
}

// Get returns the cell at pos. Reads outside the image fail with
// core.ErrOutOfBounds, which is distinct from an in-range transparent cell.
func (img *Image) Get(pos core.Pos) (core.Cell, error) {
	i, err := img.index("get", pos)
	if err != nil {
		return core.Cell{}, err
	}
	return img.cells[i], nil
}

// Set writes the cell at pos.
func (img *Image) Set(pos core.Pos, cell core.Cell) error {
	i, err := img.index("set", pos)
	if err != nil {
		return err
	}
	img.cells[i] = cell
	return nil
}

// Fill sets every cell.
func (img *Image) Fill(cell core.Cell) {
	for i := range img.cells {
		img.cells[i] = cell
	}
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	cells := make([]core.Cell, len(img.cells))
	copy(cells, img.cells)
	return &Image{height: img.height, width: img.width, cells: cells}
}
