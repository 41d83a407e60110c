package scene

import (
	"iter"
	"slices"

	"github.com/dshills/tableau/internal/renderer/core"
	"github.com/dshills/tableau/internal/renderer/sprite"
)

// NodeKind distinguishes leaves from branches.
type NodeKind uint8

const (
	// KindLeaf wraps exactly one sprite.
	KindLeaf NodeKind = iota

	// KindBranch groups child nodes. It draws nothing itself.
	KindBranch
)

// String returns the kind name.
func (k NodeKind) String() string {
	if k == KindLeaf {
		return "leaf"
	}
	return "branch"
}

// Node is one element of the scene graph.
//
// A leaf carries a sprite and shares its id. A branch carries an anchor
// that offsets every descendant and a visible flag that hides all of
// them. Geometry is never cached on nodes; Bounds and Leaves recompute
// it from the sprites on each call.
type Node struct {
	id   core.ID
	kind NodeKind

	// Leaf
	sprite *sprite.Sprite

	// Branch
	children []*Node
	anchor   core.Pos
	visible  bool
}

// NewLeaf wraps a sprite in a leaf node.
func NewLeaf(s *sprite.Sprite) *Node {
	return &Node{id: s.ID(), kind: KindLeaf, sprite: s}
}

// NewBranch creates an empty, visible group anchored at anchor.
func NewBranch(anchor core.Pos) *Node {
	return &Node{id: core.NextID(), kind: KindBranch, anchor: anchor, visible: true}
}

// ID returns the node id.
func (n *Node) ID() core.ID {
	return n.id
}

// Kind returns whether the node is a leaf or a branch.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// IsLeaf reports whether the node wraps a sprite.
func (n *Node) IsLeaf() bool {
	return n.kind == KindLeaf
}

// Sprite returns the leaf's sprite, or nil for a branch.
func (n *Node) Sprite() *sprite.Sprite {
	return n.sprite
}

// Children returns a branch's children, front first.
func (n *Node) Children() []*Node {
	return n.children
}

// Anchor returns the node's local anchor.
func (n *Node) Anchor() core.Pos {
	if n.kind == KindLeaf {
		return n.sprite.Anchor()
	}
	return n.anchor
}

// Visible returns the node's own visible flag.
func (n *Node) Visible() bool {
	if n.kind == KindLeaf {
		return n.sprite.Visible()
	}
	return n.visible
}

// Push attaches child at the front of the node's children. A leaf is
// first turned into a branch holding a copy of itself, so the sprite it
// wrapped stays reachable under the same id; the converted node gets a
// fresh id.
func (n *Node) Push(child *Node) {
	if n.kind == KindLeaf {
		old := &Node{id: n.id, kind: KindLeaf, sprite: n.sprite}
		*n = Node{
			id:       core.NextID(),
			kind:     KindBranch,
			children: []*Node{old},
			visible:  true,
		}
	}
	n.children = slices.Insert(n.children, 0, child)
}

// PushSprite attaches a new leaf for s at the front of the node.
func (n *Node) PushSprite(s *sprite.Sprite) *Node {
	leaf := NewLeaf(s)
	n.Push(leaf)
	return leaf
}

// Find returns the node with the given id in this subtree. The search is
// depth-first; at each level direct children are checked before any of
// them is descended into.
func (n *Node) Find(id core.ID) *Node {
	if n.id == id {
		return n
	}
	for _, c := range n.children {
		if c.id == id {
			return c
		}
	}
	for _, c := range n.children {
		if c.kind != KindBranch {
			continue
		}
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// parentOf returns the branch whose direct child has the given id.
func (n *Node) parentOf(id core.ID) (*Node, int) {
	for i, c := range n.children {
		if c.id == id {
			return n, i
		}
	}
	for _, c := range n.children {
		if c.kind != KindBranch {
			continue
		}
		if p, i := c.parentOf(id); p != nil {
			return p, i
		}
	}
	return nil, -1
}

// AddTree attaches subtree under the node with the given parent id.
func (n *Node) AddTree(parent core.ID, subtree *Node) error {
	p := n.Find(parent)
	if p == nil {
		return &core.IDError{Op: "add tree", ID: parent}
	}
	p.Push(subtree)
	return nil
}

// Remove detaches the subtree with the given id and returns it. The node
// Remove is called on cannot remove itself.
func (n *Node) Remove(id core.ID) (*Node, error) {
	p, i := n.parentOf(id)
	if p == nil {
		return nil, &core.IDError{Op: "remove", ID: id}
	}
	child := p.children[i]
	p.children = slices.Delete(p.children, i, i+1)
	return child, nil
}

// Placement is a leaf's sprite with the position and visibility derived
// from its ancestors.
type Placement struct {
	Sprite *sprite.Sprite
	Origin core.Pos // sum of the ancestor anchors
	Shown  bool     // every ancestor is visible
}

// Visible returns the effective visibility: the sprite's own flag and
// every ancestor's.
func (p Placement) Visible() bool {
	return p.Shown && p.Sprite.Visible()
}

// Position returns the absolute top-left of the sprite.
func (p Placement) Position() core.Pos {
	return p.Origin.Add(p.Sprite.Anchor())
}

// Leaves yields a placement for every leaf of the subtree. The node's
// own anchor and visibility count as ancestors of its descendants.
func (n *Node) Leaves() iter.Seq[Placement] {
	return func(yield func(Placement) bool) {
		n.leaves(core.Pos{}, true, yield)
	}
}

func (n *Node) leaves(origin core.Pos, shown bool, yield func(Placement) bool) bool {
	if n.kind == KindLeaf {
		return yield(Placement{Sprite: n.sprite, Origin: origin, Shown: shown})
	}
	origin = origin.Add(n.anchor)
	shown = shown && n.visible
	for _, c := range n.children {
		if !c.leaves(origin, shown, yield) {
			return false
		}
	}
	return true
}

// Sprites returns every sprite in the subtree.
func (n *Node) Sprites() []*sprite.Sprite {
	var out []*sprite.Sprite
	for p := range n.Leaves() {
		out = append(out, p.Sprite)
	}
	return out
}

// Bounds returns the union of the absolute boxes of every sprite in the
// subtree, as last placed by the scene manager.
func (n *Node) Bounds() core.Bounds {
	var b core.Bounds
	for p := range n.Leaves() {
		b = b.Union(p.Sprite.Bounds())
	}
	return b
}
