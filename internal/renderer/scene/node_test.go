package scene

import (
	"errors"
	"testing"

	"github.com/dshills/tableau/internal/renderer/core"
	"github.com/dshills/tableau/internal/renderer/dirty"
	"github.com/dshills/tableau/internal/renderer/sprite"
)

func leafSprite(t *testing.T, d *dirty.Tracker, h, w int) *sprite.Sprite {
	t.Helper()
	img, err := sprite.NewImage(h, w)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	return sprite.New(img, d)
}

func TestPushInsertsAtFront(t *testing.T) {
	d := dirty.NewTracker()
	root := NewBranch(core.Pos{})
	a := root.PushSprite(leafSprite(t, d, 1, 1))
	b := root.PushSprite(leafSprite(t, d, 1, 1))

	children := root.Children()
	if len(children) != 2 || children[0] != b || children[1] != a {
		t.Errorf("expected [b a], got %v", children)
	}
}

func TestPushOnLeafConvertsToBranch(t *testing.T) {
	d := dirty.NewTracker()
	first := leafSprite(t, d, 1, 1)
	node := NewLeaf(first)
	leafID := node.ID()

	second := leafSprite(t, d, 1, 1)
	node.PushSprite(second)

	if node.Kind() != KindBranch {
		t.Fatalf("Kind() = %v, want branch", node.Kind())
	}
	if node.ID() == leafID {
		t.Error("converted branch should get a fresh id")
	}
	old := node.Find(leafID)
	if old == nil || old.Sprite() != first {
		t.Error("original sprite should stay reachable under its id")
	}
	if got := len(node.Children()); got != 2 {
		t.Errorf("len(Children()) = %d, want 2", got)
	}
}

func TestFindChecksChildrenBeforeDescending(t *testing.T) {
	d := dirty.NewTracker()
	root := NewBranch(core.Pos{})
	group := NewBranch(core.Pos{})
	deep := leafSprite(t, d, 1, 1)
	group.PushSprite(deep)
	root.Push(group)
	shallow := root.PushSprite(leafSprite(t, d, 1, 1))

	if got := root.Find(shallow.ID()); got != shallow {
		t.Errorf("Find(shallow) = %v, want %v", got, shallow)
	}
	if got := root.Find(deep.ID()); got == nil || got.Sprite() != deep {
		t.Error("Find should descend into groups")
	}
	if got := root.Find(root.ID()); got != root {
		t.Error("Find should match the node itself")
	}
	if got := root.Find(core.ID(1 << 62)); got != nil {
		t.Errorf("Find(missing) = %v, want nil", got)
	}
}

func TestLeavesAccumulatesAnchorsAndVisibility(t *testing.T) {
	d := dirty.NewTracker()
	root := NewBranch(core.NewPos(1, 1))
	outer := NewBranch(core.NewPos(2, 3))
	inner := NewBranch(core.NewPos(10, 0))
	inner.visible = false

	a := leafSprite(t, d, 1, 1)
	a.Reanchor(core.NewPos(0, 5))
	b := leafSprite(t, d, 1, 1)

	outer.PushSprite(a)
	inner.PushSprite(b)
	outer.Push(inner)
	root.Push(outer)

	got := make(map[core.ID]Placement)
	for p := range root.Leaves() {
		got[p.Sprite.ID()] = p
	}

	pa := got[a.ID()]
	if pa.Origin != core.NewPos(3, 4) || !pa.Visible() {
		t.Errorf("placement of a = %+v", pa)
	}
	if pa.Position() != core.NewPos(3, 9) {
		t.Errorf("Position() = %v, want (3,9)", pa.Position())
	}

	pb := got[b.ID()]
	if pb.Origin != core.NewPos(13, 4) || pb.Visible() {
		t.Errorf("placement of b = %+v", pb)
	}
}

func TestLeavesStopsEarly(t *testing.T) {
	d := dirty.NewTracker()
	root := NewBranch(core.Pos{})
	for range 5 {
		root.PushSprite(leafSprite(t, d, 1, 1))
	}
	n := 0
	for range root.Leaves() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d leaves, want 2", n)
	}
}

func TestAddTreeUnknownParent(t *testing.T) {
	root := NewBranch(core.Pos{})
	err := root.AddTree(core.ID(1<<62), NewBranch(core.Pos{}))
	if !errors.Is(err, core.ErrIDNotFound) {
		t.Errorf("AddTree() error = %v, want ErrIDNotFound", err)
	}
}

func TestRemoveDetachesSubtree(t *testing.T) {
	d := dirty.NewTracker()
	root := NewBranch(core.Pos{})
	group := NewBranch(core.Pos{})
	s := leafSprite(t, d, 1, 1)
	group.PushSprite(s)
	root.Push(group)

	got, err := root.Remove(group.ID())
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if got != group {
		t.Error("Remove should return the detached node")
	}
	if root.Find(s.ID()) != nil {
		t.Error("sprite should be gone from the tree")
	}
	if _, err := root.Remove(group.ID()); !errors.Is(err, core.ErrIDNotFound) {
		t.Errorf("second Remove() error = %v, want ErrIDNotFound", err)
	}
	if _, err := root.Remove(root.ID()); !errors.Is(err, core.ErrIDNotFound) {
		t.Errorf("Remove(root) error = %v, want ErrIDNotFound", err)
	}
}

func TestBoundsIsUnionOfSprites(t *testing.T) {
	d := dirty.NewTracker()
	root := NewBranch(core.Pos{})
	a := leafSprite(t, d, 2, 2)
	b := leafSprite(t, d, 1, 3)
	b.Reanchor(core.NewPos(4, 1))
	root.PushSprite(a)
	root.PushSprite(b)

	want := core.NewBounds(0, 5, 0, 4)
	if got := root.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if got := NewBranch(core.Pos{}).Bounds(); !got.IsEmpty() {
		t.Errorf("empty branch Bounds() = %v, want empty", got)
	}
}
