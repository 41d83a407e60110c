// Package scene composes sprites into terminal frames.
//
// A Manager owns a scene graph of sprites, a compositing list of the
// same sprites sorted by draw order, and the dirt tracker they all
// share. Flush composites only the dirty cells and writes them to a
// sink as runs.
//
// A Manager and its sprites are not safe for concurrent use. Callers
// driving it from several goroutines must serialize access.
package scene

import (
	"cmp"
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/tableau/internal/renderer/backend"
	"github.com/dshills/tableau/internal/renderer/core"
	"github.com/dshills/tableau/internal/renderer/dirty"
	"github.com/dshills/tableau/internal/renderer/sprite"
)

// ErrAttached is returned when a sprite is added to a scene twice.
var ErrAttached = errors.New("sprite already attached")

// Logger receives flush diagnostics.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for flush diagnostics.
func WithLogger(l Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithBackground sets the color of cells no sprite covers.
func WithBackground(bg core.Color) Option {
	return func(m *Manager) {
		m.background = core.Blank(bg)
	}
}

// Stats holds scene counters. Flush counters describe the last flush.
type Stats struct {
	Sprites           int
	Flushes           int
	DirtyCells        int
	DirtyRows         int
	Runs              int
	Skipped           int // dirty cells outside the viewport
	CompositeFailures int
}

// Manager owns a scene graph and renders it incrementally.
type Manager struct {
	session uuid.UUID
	root    *Node
	dirt    *dirty.Tracker

	// sprites is sorted ascending by (order, id); compositing walks it
	// from the end so higher orders, then later sprites, win.
	sprites []*sprite.Sprite
	byID    map[core.ID]*sprite.Sprite

	sink       backend.Sink
	size       backend.SizeProvider
	background core.Cell
	logger     Logger
	stats      Stats
}

// NewManager creates an empty scene writing to sink and clipped to the
// viewport reported by size.
func NewManager(sink backend.Sink, size backend.SizeProvider, opts ...Option) *Manager {
	m := &Manager{
		session:    uuid.New(),
		root:       NewBranch(core.Pos{}),
		dirt:       dirty.NewTracker(),
		byID:       make(map[core.ID]*sprite.Sprite),
		sink:       sink,
		size:       size,
		background: core.DefaultCell(),
		logger:     nopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the id identifying this scene in logs.
func (m *Manager) Session() uuid.UUID {
	return m.session
}

// Root returns the id of the root group.
func (m *Manager) Root() core.ID {
	return m.root.ID()
}

// Dirt returns the tracker shared by the scene's sprites.
func (m *Manager) Dirt() *dirty.Tracker {
	return m.dirt
}

// NewSprite creates a sprite sharing the scene's tracker. It is not
// drawn, and marks nothing dirty, until attached with AddSprite.
func (m *Manager) NewSprite(img *sprite.Image, opts ...sprite.Option) *sprite.Sprite {
	return sprite.New(img, m.dirt, append([]sprite.Option{sprite.Detached()}, opts...)...)
}

// AddSprite attaches s under the group with the given id.
func (m *Manager) AddSprite(parent core.ID, s *sprite.Sprite) error {
	return m.AddTree(parent, NewLeaf(s))
}

// AddGroup creates an empty group under parent and returns its id.
func (m *Manager) AddGroup(parent core.ID, anchor core.Pos) (core.ID, error) {
	group := NewBranch(anchor)
	if err := m.AddTree(parent, group); err != nil {
		return 0, err
	}
	return group.ID(), nil
}

// AddTree attaches a whole subtree under parent. Every sprite in it is
// placed and marked dirty.
func (m *Manager) AddTree(parent core.ID, subtree *Node) error {
	added := subtree.Sprites()
	for _, s := range added {
		if _, ok := m.byID[s.ID()]; ok {
			return ErrAttached
		}
	}
	if err := m.root.AddTree(parent, subtree); err != nil {
		return err
	}

	for _, s := range added {
		m.byID[s.ID()] = s
		m.sprites = append(m.sprites, s)
	}
	m.place()
	for _, s := range added {
		s.DirtyAll()
	}
	return nil
}

// Remove detaches the node with the given id and every sprite under it.
// The region they last occupied is marked dirty so whatever lies below
// shows through on the next flush.
func (m *Manager) Remove(id core.ID) error {
	node, err := m.root.Remove(id)
	if err != nil {
		return err
	}

	removed := node.Sprites()
	for _, s := range removed {
		s.DirtyAll()
		delete(m.byID, s.ID())
	}
	m.sprites = slices.DeleteFunc(m.sprites, func(s *sprite.Sprite) bool {
		_, ok := m.byID[s.ID()]
		return !ok
	})
	return nil
}

// MoveGroup sets the local anchor of a node. For a leaf this reanchors
// its sprite.
func (m *Manager) MoveGroup(id core.ID, anchor core.Pos) error {
	node := m.root.Find(id)
	if node == nil {
		return &core.IDError{Op: "move", ID: id}
	}
	if node.IsLeaf() {
		node.Sprite().Reanchor(anchor)
		return nil
	}
	node.anchor = anchor
	m.place()
	return nil
}

// SetGroupVisible shows or hides a node and everything under it.
func (m *Manager) SetGroupVisible(id core.ID, visible bool) error {
	node := m.root.Find(id)
	if node == nil {
		return &core.IDError{Op: "show", ID: id}
	}
	if node.IsLeaf() {
		node.Sprite().SetVisible(visible)
		return nil
	}
	node.visible = visible
	m.place()
	return nil
}

// Reorder changes a sprite's draw order. Calling Reorder on the sprite
// handle directly is equivalent.
func (m *Manager) Reorder(id core.ID, order int) error {
	s, ok := m.byID[id]
	if !ok {
		return &core.IDError{Op: "reorder", ID: id}
	}
	s.Reorder(order)
	return nil
}

// Sprite returns the attached sprite with the given id.
func (m *Manager) Sprite(id core.ID) (*sprite.Sprite, bool) {
	s, ok := m.byID[id]
	return s, ok
}

// Find returns the scene graph node with the given id, or nil.
func (m *Manager) Find(id core.ID) *Node {
	return m.root.Find(id)
}

// Sprites returns the attached sprites, bottom first.
func (m *Manager) Sprites() []*sprite.Sprite {
	m.sort()
	return slices.Clone(m.sprites)
}

// Size returns the current viewport as (height, width).
func (m *Manager) Size() (int, int) {
	return m.size.Size()
}

// Invalidate marks the whole viewport dirty, e.g. after a resize.
func (m *Manager) Invalidate() {
	height, width := m.size.Size()
	m.dirt.DirtyRegion(core.NewBounds(0, height, 0, width))
}

// Stats returns the scene counters.
func (m *Manager) Stats() Stats {
	s := m.stats
	s.Sprites = len(m.sprites)
	return s
}

// place pushes the placements derived from the graph into the sprites.
func (m *Manager) place() {
	for p := range m.root.Leaves() {
		p.Sprite.Place(p.Origin, p.Shown)
	}
}

// sort restores (order, id) order. Sprites can be reordered through
// their own handles, so the list is checked rather than flagged.
func (m *Manager) sort() {
	if slices.IsSortedFunc(m.sprites, compareSprites) {
		return
	}
	slices.SortFunc(m.sprites, compareSprites)
}

func compareSprites(a, b *sprite.Sprite) int {
	if c := cmp.Compare(a.Order(), b.Order()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID(), b.ID())
}
