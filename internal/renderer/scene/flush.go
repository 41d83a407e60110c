package scene

import (
	"github.com/dshills/tableau/internal/renderer/core"
	"github.com/dshills/tableau/internal/renderer/sprite"
	"github.com/dshills/tableau/internal/renderer/termable"
)

// Composite resolves the cell visible at an absolute position: the
// opaque cell of the topmost drawn sprite covering it, or the
// background cell when none does.
func (m *Manager) Composite(pos core.Pos) core.Cell {
	m.sort()
	return m.composite(pos, nil)
}

// composite walks the sprites top down. A sprite whose read fails is
// treated as transparent; the failure is counted and, when warned is
// non-nil, logged once per sprite.
func (m *Manager) composite(pos core.Pos, warned map[core.ID]bool) core.Cell {
	for i := len(m.sprites) - 1; i >= 0; i-- {
		s := m.sprites[i]
		if !s.Drawn() || !s.Bounds().Contains(pos) {
			continue
		}
		cell, err := s.CellAt(pos)
		if err != nil {
			m.stats.CompositeFailures++
			if warned != nil && !warned[s.ID()] {
				warned[s.ID()] = true
				m.logger.Warn("composite failed session=%s sprite=%d pos=%s: %v", m.session, s.ID(), pos, err)
			}
			continue
		}
		if cell.IsOpaque() {
			return cell
		}
	}
	return m.background
}

// HitTest returns the topmost drawn, clickable sprite that is opaque at
// pos.
func (m *Manager) HitTest(pos core.Pos) (*sprite.Sprite, bool) {
	m.sort()
	for i := len(m.sprites) - 1; i >= 0; i-- {
		s := m.sprites[i]
		if !s.Drawn() || !s.Clickable() || !s.Bounds().Contains(pos) {
			continue
		}
		if cell, err := s.CellAt(pos); err == nil && cell.IsOpaque() {
			return s, true
		}
	}
	return nil, false
}

// Flush composites every dirty cell inside the viewport, writes the
// result to the sink as runs, clears the dirt and flushes the sink.
//
// Dirty cells outside the viewport are dropped. If the sink fails the
// error is returned as a *core.SinkError and the dirt is kept, so a later
// flush redraws the same cells.
func (m *Manager) Flush() error {
	m.sort()

	height, width := m.size.Size()
	viewport := core.NewBounds(0, height, 0, width)

	ts := m.dirt.Stats()
	m.stats.Flushes++
	m.stats.DirtyCells = ts.DirtyCells
	m.stats.DirtyRows = ts.DirtyRows
	m.stats.Runs = 0
	m.stats.Skipped = 0
	m.stats.CompositeFailures = 0

	warned := make(map[core.ID]bool)
	for row, cols := range m.dirt.Rows() {
		var enc termable.Encoder
		for _, col := range cols {
			pos := core.NewPos(row, col)
			if !viewport.Contains(pos) {
				m.stats.Skipped++
				continue
			}
			if run := enc.Push(pos, m.composite(pos, warned)); run != nil {
				if err := m.emit(run); err != nil {
					return err
				}
			}
		}
		if run := enc.Finish(); run != nil {
			if err := m.emit(run); err != nil {
				return err
			}
		}
	}

	m.dirt.Clear()
	if err := m.sink.Flush(); err != nil {
		return &core.SinkError{Op: "flush", Err: err}
	}

	m.logger.Debug("flush session=%s cells=%d rows=%d runs=%d skipped=%d failures=%d",
		m.session, m.stats.DirtyCells, m.stats.DirtyRows, m.stats.Runs,
		m.stats.Skipped, m.stats.CompositeFailures)
	return nil
}

// emit writes one run as a cursor move followed by a styled print.
func (m *Manager) emit(run *termable.Run) error {
	start := run.Start()
	row, err := core.ToUint16(start.Row)
	if err != nil {
		return err
	}
	col, err := core.ToUint16(start.Col)
	if err != nil {
		return err
	}

	if err := m.sink.MoveTo(row, col); err != nil {
		return &core.SinkError{Op: "move", Err: err}
	}
	if err := m.sink.Print(run.Text(), run.Style()); err != nil {
		return &core.SinkError{Op: "print", Err: err}
	}
	m.stats.Runs++
	return nil
}
