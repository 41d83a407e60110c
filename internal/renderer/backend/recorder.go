package backend

import (
	"strings"

	"github.com/dshills/tableau/internal/renderer/core"
)

// Command is one cursor move followed by one styled print.
type Command struct {
	Row   uint16
	Col   uint16
	Text  string
	Style core.Style
}

// Recorder is an in-memory Screen for tests. It records every command
// and applies prints to an emulated cell grid so the visible result can
// be asserted.
type Recorder struct {
	height, width int
	cells         [][]core.Cell
	cursorRow     uint16
	cursorCol     uint16
	commands      []Command
	flushes       int
	failOp        string
	failErr       error
}

// NewRecorder creates a recorder with the given viewport size.
func NewRecorder(height, width int) *Recorder {
	r := &Recorder{}
	r.Resize(height, width)
	return r
}

// Resize changes the viewport. The emulated grid is reset to defaults.
func (r *Recorder) Resize(height, width int) {
	r.height = height
	r.width = width
	r.cells = make([][]core.Cell, height)
	for y := range r.cells {
		r.cells[y] = make([]core.Cell, width)
		for x := range r.cells[y] {
			r.cells[y][x] = core.DefaultCell()
		}
	}
}

// FailOn makes the named operation ("move", "print" or "flush") return err.
func (r *Recorder) FailOn(op string, err error) {
	r.failOp = op
	r.failErr = err
}

// Size implements SizeProvider.
func (r *Recorder) Size() (int, int) {
	return r.height, r.width
}

// MoveTo implements Sink.
func (r *Recorder) MoveTo(row, col uint16) error {
	if r.failOp == "move" {
		return r.failErr
	}
	r.cursorRow = row
	r.cursorCol = col
	return nil
}

// Print implements Sink.
func (r *Recorder) Print(text string, style core.Style) error {
	if r.failOp == "print" {
		return r.failErr
	}
	r.commands = append(r.commands, Command{
		Row:   r.cursorRow,
		Col:   r.cursorCol,
		Text:  text,
		Style: style,
	})

	y := int(r.cursorRow)
	for _, ch := range text {
		x := int(r.cursorCol)
		if y < r.height && x < r.width {
			r.cells[y][x] = core.Opaque(ch, style.Foreground, style.Background)
		}
		r.cursorCol++
	}
	return nil
}

// Flush implements Sink.
func (r *Recorder) Flush() error {
	if r.failOp == "flush" {
		return r.failErr
	}
	r.flushes++
	return nil
}

// Commands returns the commands recorded since the last Reset.
func (r *Recorder) Commands() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Flushes returns how many times Flush succeeded.
func (r *Recorder) Flushes() int {
	return r.flushes
}

// Reset forgets recorded commands. The emulated grid is kept.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
}

// CellAt returns the emulated cell, or the default cell outside the grid.
func (r *Recorder) CellAt(row, col int) core.Cell {
	if row < 0 || row >= r.height || col < 0 || col >= r.width {
		return core.DefaultCell()
	}
	return r.cells[row][col]
}

// Line returns the emulated text of a row.
func (r *Recorder) Line(row int) string {
	if row < 0 || row >= r.height {
		return ""
	}
	var b strings.Builder
	for _, c := range r.cells[row] {
		b.WriteRune(c.Rune())
	}
	return b.String()
}
