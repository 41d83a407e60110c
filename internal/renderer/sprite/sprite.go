package sprite

import (
	"github.com/dshills/tableau/internal/renderer/core"
	"github.com/dshills/tableau/internal/renderer/dirty"
)

// Sprite is an image placed at an anchor with a draw order.
//
// The anchor is relative to the sprite's origin, which is the sum of the
// anchors of the scene groups containing it. Every mutation that changes
// what the sprite draws marks the affected absolute cells dirty in the
// tracker shared by all sprites of the scene.
//
// A Sprite is a shared handle: the scene graph and the compositing list
// hold the same pointer. It is not safe for concurrent use.
type Sprite struct {
	id    core.ID
	image *Image
	dirt  *dirty.Tracker

	anchor core.Pos
	origin core.Pos
	order  int

	visible   bool
	shown     bool // every enclosing group is visible
	clickable bool
	detached  bool // not yet placed by a scene
}

// Option configures a Sprite at creation.
type Option func(*Sprite)

// WithAnchor sets the initial anchor.
func WithAnchor(anchor core.Pos) Option {
	return func(s *Sprite) {
		s.anchor = anchor
	}
}

// WithOrder sets the initial draw order.
func WithOrder(order int) Option {
	return func(s *Sprite) {
		s.order = order
	}
}

// Detached leaves the sprite clean until its first Place, which marks
// only the placed box dirty.
func Detached() Option {
	return func(s *Sprite) {
		s.detached = true
	}
}

// New creates a visible sprite, anchored at the origin with order 0
// unless opts say otherwise. Unless detached, the box at the initial
// anchor is marked dirty so its first frame is drawn.
func New(img *Image, dirt *dirty.Tracker, opts ...Option) *Sprite {
	s := &Sprite{
		id:      core.NextID(),
		image:   img,
		dirt:    dirt,
		visible: true,
		shown:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.detached {
		s.DirtyAll()
	}
	return s
}

// ID returns the process-unique sprite id.
func (s *Sprite) ID() core.ID {
	return s.id
}

// Image returns the sprite's pixel buffer. Edits made directly on it are
// not tracked; call DirtyAll afterwards.
func (s *Sprite) Image() *Image {
	return s.image
}

// Anchor returns the anchor relative to the sprite's origin.
func (s *Sprite) Anchor() core.Pos {
	return s.anchor
}

// Position returns the absolute top-left placement.
func (s *Sprite) Position() core.Pos {
	return s.origin.Add(s.anchor)
}

// Order returns the draw priority. Higher orders draw on top.
func (s *Sprite) Order() int {
	return s.order
}

// Visible returns the sprite's own visibility flag.
func (s *Sprite) Visible() bool {
	return s.visible
}

// Drawn returns true if the sprite and all its enclosing groups are visible.
func (s *Sprite) Drawn() bool {
	return s.visible && s.shown
}

// Clickable returns true if the sprite takes part in hit testing.
func (s *Sprite) Clickable() bool {
	return s.clickable
}

// Bounds returns the absolute half-open box the sprite covers.
func (s *Sprite) Bounds() core.Bounds {
	return core.BoundsFromSize(s.Position(), s.image.height, s.image.width)
}

// Get reads a cell relative to the sprite's image.
func (s *Sprite) Get(pos core.Pos) (core.Cell, error) {
	return s.image.Get(pos)
}

// Set writes a cell relative to the sprite's image and marks the
// corresponding absolute cell dirty.
func (s *Sprite) Set(pos core.Pos, cell core.Cell) error {
	if err := s.image.Set(pos, cell); err != nil {
		return err
	}
	s.dirt.SetDirty(s.Position().Add(pos))
	return nil
}

// CellAt reads the cell covering an absolute position.
func (s *Sprite) CellAt(abs core.Pos) (core.Cell, error) {
	return s.image.Get(abs.Sub(s.Position()))
}

// Reanchor moves the sprite. Both the old and the new box are marked dirty.
func (s *Sprite) Reanchor(anchor core.Pos) {
	if anchor == s.anchor {
		return
	}
	s.dirt.DirtyRegion(s.Bounds())
	s.anchor = anchor
	s.dirt.DirtyRegion(s.Bounds())
}

// Reorder changes the draw priority. The owning scene resorts its
// compositing list before the next flush. The box is marked dirty since
// overlapping cells may now resolve to a different sprite.
func (s *Sprite) Reorder(order int) {
	if order == s.order {
		return
	}
	s.order = order
	s.DirtyAll()
}

// SetVisible shows or hides the sprite.
func (s *Sprite) SetVisible(visible bool) {
	if visible == s.visible {
		return
	}
	s.visible = visible
	s.DirtyAll()
}

// SetClickable toggles hit testing. Drawn cells are unaffected.
func (s *Sprite) SetClickable(clickable bool) {
	s.clickable = clickable
}

// DirtyAll marks the sprite's entire current box dirty.
func (s *Sprite) DirtyAll() {
	s.dirt.DirtyRegion(s.Bounds())
}

// Place sets the placement derived from the scene graph: the origin of
// the enclosing groups and whether all of them are visible. Old and new
// boxes are dirtied when anything changed.
func (s *Sprite) Place(origin core.Pos, shown bool) {
	if s.detached {
		s.detached = false
		s.origin = origin
		s.shown = shown
		s.DirtyAll()
		return
	}
	if origin == s.origin && shown == s.shown {
		return
	}
	s.dirt.DirtyRegion(s.Bounds())
	s.origin = origin
	s.shown = shown
	s.dirt.DirtyRegion(s.Bounds())
}
