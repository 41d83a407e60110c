package sprite

import (
	"errors"
	"testing"

	"github.com/dshills/tableau/internal/renderer/core"
	"github.com/dshills/tableau/internal/renderer/dirty"
)

func newSprite(t *testing.T, h, w int) (*Sprite, *dirty.Tracker) {
	t.Helper()
	img, err := NewImage(h, w)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	d := dirty.NewTracker()
	s := New(img, d)
	return s, d
}

func dirtyCells(d *dirty.Tracker) map[core.Pos]bool {
	out := make(map[core.Pos]bool)
	for row, cols := range d.Rows() {
		for _, col := range cols {
			out[core.NewPos(row, col)] = true
		}
	}
	return out
}

func TestNewDirtiesWholeBox(t *testing.T) {
	s, d := newSprite(t, 2, 3)
	if d.Len() != 6 {
		t.Errorf("new sprite dirtied %d cells, want 6", d.Len())
	}
	if !s.Visible() || !s.Drawn() || s.Clickable() {
		t.Error("unexpected default flags")
	}
	if s.Order() != 0 || s.Anchor() != (core.Pos{}) {
		t.Error("unexpected default placement")
	}
}

func TestSpriteIDsUnique(t *testing.T) {
	a, _ := newSprite(t, 1, 1)
	b, _ := newSprite(t, 1, 1)
	if a.ID() == b.ID() {
		t.Errorf("sprites share id %d", a.ID())
	}
}

func TestSetMarksAbsolutePosition(t *testing.T) {
	s, d := newSprite(t, 3, 3)
	s.Reanchor(core.NewPos(10, 20))
	d.Clear()

	if err := s.Set(core.NewPos(1, 2), core.Opaque('Q', core.ColorRed, core.ColorDefault)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	cells := dirtyCells(d)
	if len(cells) != 1 || !cells[core.NewPos(11, 22)] {
		t.Errorf("dirty = %v, want only (11, 22)", cells)
	}
}

func TestSetOutOfBounds(t *testing.T) {
	s, d := newSprite(t, 2, 2)
	d.Clear()

	err := s.Set(core.NewPos(2, 0), core.Blank(core.ColorRed))
	if !errors.Is(err, core.ErrOutOfBounds) {
		t.Errorf("Set error = %v, want ErrOutOfBounds", err)
	}
	if d.IsDirty() {
		t.Error("failed Set should not mark dirt")
	}
	if _, err := s.Get(core.NewPos(0, -1)); !errors.Is(err, core.ErrOutOfBounds) {
		t.Errorf("Get error = %v, want ErrOutOfBounds", err)
	}
}

func TestReanchorDirtiesOldAndNew(t *testing.T) {
	s, d := newSprite(t, 3, 3)
	d.Clear()

	s.Reanchor(core.NewPos(0, 1))

	cells := dirtyCells(d)
	want := core.NewBounds(0, 3, 0, 4)
	for p := range want.Points() {
		if !cells[p] {
			t.Errorf("cell %s not dirty", p)
		}
	}
	if len(cells) != want.Len() {
		t.Errorf("dirty cells = %d, want %d", len(cells), want.Len())
	}
	if s.Bounds() != core.NewBounds(0, 3, 1, 4) {
		t.Errorf("Bounds() = %s", s.Bounds())
	}
}

func TestSetVisibleDirties(t *testing.T) {
	s, d := newSprite(t, 2, 2)
	d.Clear()

	s.SetVisible(true)
	if d.IsDirty() {
		t.Error("unchanged visibility should not mark dirt")
	}

	s.SetVisible(false)
	if d.Len() != 4 {
		t.Errorf("hide dirtied %d cells, want 4", d.Len())
	}
	if s.Drawn() {
		t.Error("hidden sprite should not be drawn")
	}
}

func TestSetClickableNoDirt(t *testing.T) {
	s, d := newSprite(t, 2, 2)
	d.Clear()

	s.SetClickable(true)
	if !s.Clickable() {
		t.Error("Clickable() should be true")
	}
	if d.IsDirty() {
		t.Error("clickability should not mark dirt")
	}
}

func TestReorder(t *testing.T) {
	s, d := newSprite(t, 1, 2)
	d.Clear()

	s.Reorder(0)
	if d.IsDirty() {
		t.Error("unchanged order should not mark dirt")
	}
	s.Reorder(5)
	if s.Order() != 5 {
		t.Errorf("Order() = %d, want 5", s.Order())
	}
	if d.Len() != 2 {
		t.Errorf("reorder dirtied %d cells, want 2", d.Len())
	}
}

func TestPlace(t *testing.T) {
	s, d := newSprite(t, 1, 1)
	s.Reanchor(core.NewPos(1, 1))
	d.Clear()

	s.Place(core.NewPos(10, 10), true)
	if s.Position() != core.NewPos(11, 11) {
		t.Errorf("Position() = %s, want (11, 11)", s.Position())
	}
	cells := dirtyCells(d)
	if !cells[core.NewPos(1, 1)] || !cells[core.NewPos(11, 11)] {
		t.Errorf("dirty = %v, want old and new cell", cells)
	}

	d.Clear()
	s.Place(core.NewPos(10, 10), false)
	if s.Drawn() {
		t.Error("sprite in hidden group should not be drawn")
	}
	if !s.Visible() {
		t.Error("own flag should be unaffected by group visibility")
	}
	if !d.IsDirty() {
		t.Error("hiding via group should mark dirt")
	}
}

func TestNewOptions(t *testing.T) {
	img, err := NewImage(1, 2)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}

	d := dirty.NewTracker()
	s := New(img, d, WithAnchor(core.NewPos(3, 4)), WithOrder(7))
	if s.Order() != 7 {
		t.Errorf("Order() = %d, want 7", s.Order())
	}
	cells := dirtyCells(d)
	if len(cells) != 2 || !cells[core.NewPos(3, 4)] || !cells[core.NewPos(3, 5)] {
		t.Errorf("dirty = %v, want only the box at (3, 4)", cells)
	}

	d = dirty.NewTracker()
	s = New(img, d, WithAnchor(core.NewPos(1, 0)), Detached())
	if d.IsDirty() {
		t.Error("detached sprite should not mark dirt")
	}
	s.Place(core.NewPos(2, 2), true)
	cells = dirtyCells(d)
	if len(cells) != 2 || !cells[core.NewPos(3, 2)] || !cells[core.NewPos(3, 3)] {
		t.Errorf("dirty = %v, want only the placed box", cells)
	}
}

func TestCellAt(t *testing.T) {
	s, _ := newSprite(t, 2, 2)
	s.Reanchor(core.NewPos(5, 5))
	cell := core.Opaque('Z', core.ColorCyan, core.ColorDefault)
	_ = s.Set(core.NewPos(1, 1), cell)

	got, err := s.CellAt(core.NewPos(6, 6))
	if err != nil || !got.Equals(cell) {
		t.Errorf("CellAt() = %s, %v; want %s", got, err, cell)
	}
	if _, err := s.CellAt(core.NewPos(4, 5)); !errors.Is(err, core.ErrOutOfBounds) {
		t.Errorf("CellAt outside error = %v", err)
	}
}
