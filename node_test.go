package gizmo

import (
	"errors"
	"math"
	"testing"
)

// --- Constructor defaults ---

func TestNewContainerDefaults(t *testing.T) {
	n := NewContainer("test")
	assertNodeDefaults(t, n, "test")
	if n.Selectable {
		t.Error("containers should not be selectable")
	}
	if !n.Bounds.IsEmpty() {
		t.Errorf("container Bounds = %v, want empty", n.Bounds)
	}
}

func TestNewShapeDefaults(t *testing.T) {
	bounds := Rect{X: -5, Y: -5, Width: 10, Height: 10}
	n := NewShape("box", bounds)
	assertNodeDefaults(t, n, "box")
	if !n.Selectable {
		t.Error("shapes should be selectable")
	}
	if n.Bounds != bounds {
		t.Errorf("Bounds = %v, want %v", n.Bounds, bounds)
	}
}

func assertNodeDefaults(t *testing.T, n *Node, name string) {
	t.Helper()
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if !n.Visible {
		t.Error("Visible should be true")
	}
	if !n.transformDirty {
		t.Error("transformDirty should be true")
	}
}

func TestUniqueIDs(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewShape("c", Rect{})
	if a.ID == b.ID || b.ID == c.ID || a.ID == c.ID {
		t.Errorf("IDs should be unique: %d, %d, %d", a.ID, b.ID, c.ID)
	}
}

// --- AddChild ---

func TestAddChildBasic(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("child.Parent should be parent")
	}
	if parent.NumChildren() != 1 {
		t.Errorf("NumChildren = %d, want 1", parent.NumChildren())
	}
	if parent.ChildIndex(child) != 0 {
		t.Errorf("ChildIndex = %d, want 0", parent.ChildIndex(child))
	}
}

func TestAddChildMovesBetweenParents(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")

	p1.AddChild(child)
	p2.AddChild(child)
	if p1.NumChildren() != 0 {
		t.Error("p1 should have 0 children after the move")
	}
	if p2.NumChildren() != 1 || child.Parent != p2 {
		t.Error("child should belong to p2")
	}
}

func TestAddChildAtIndex(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewContainer("c")
	d := NewContainer("d")
	parent.AddChild(a)
	parent.AddChild(b)

	parent.AddChildAt(c, 1)  // a c b
	parent.AddChildAt(d, 99) // out of range appends: a c b d

	want := []*Node{a, c, b, d}
	got := parent.Children()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d = %q, want %q", i, got[i].Name, want[i].Name)
		}
	}
	if parent.ChildIndex(NewContainer("stranger")) != -1 {
		t.Error("ChildIndex of a non-child should be -1")
	}
}

func TestAddChildAtSameParentReorders(t *testing.T) {
	parent := NewContainer("parent")
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewContainer("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	parent.AddChildAt(c, 0)
	if parent.ChildIndex(c) != 0 || parent.ChildIndex(a) != 1 || parent.NumChildren() != 3 {
		t.Errorf("order = %v, want c a b", names(parent.Children()))
	}
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestAddChildNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on nil child")
		}
	}()
	NewContainer("p").AddChild(nil)
}

func TestAddChildCyclePanics(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	a.AddChild(b)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on cycle")
		}
	}()
	b.AddChild(a)
}

func TestAddChildSelfPanics(t *testing.T) {
	a := NewContainer("a")
	defer func() {
		if recover() == nil {
			t.Error("expected panic when adding a node to itself")
		}
	}()
	a.AddChild(a)
}

// --- RemoveChild ---

func TestRemoveChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.RemoveChild(child)

	if child.Parent != nil {
		t.Error("child.Parent should be nil")
	}
	if parent.NumChildren() != 0 {
		t.Error("parent should have no children")
	}
}

func TestRemoveChildWrongParentPanics(t *testing.T) {
	p1 := NewContainer("p1")
	p2 := NewContainer("p2")
	child := NewContainer("child")
	p1.AddChild(child)
	defer func() {
		if recover() == nil {
			t.Error("expected panic removing a child of another node")
		}
	}()
	p2.RemoveChild(child)
}

func TestRemoveFromParentNoParent(t *testing.T) {
	n := NewContainer("n")
	n.RemoveFromParent() // no-op
	if n.Parent != nil {
		t.Error("Parent should stay nil")
	}
}

func TestIsAncestorOf(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	c := NewContainer("c")
	a.AddChild(b)
	b.AddChild(c)

	if !a.IsAncestorOf(c) || !a.IsAncestorOf(a) {
		t.Error("a should be an ancestor of c and of itself")
	}
	if c.IsAncestorOf(a) {
		t.Error("c is not an ancestor of a")
	}
}

// --- Bounds ---

func TestLocalBoundsUnionsChildren(t *testing.T) {
	parent := NewContainer("parent")
	big := NewShape("big", Rect{Width: 10, Height: 10})
	big.SetTransform(Transform{Position: Vec2{100, 0}, Scale: Vec2{2, 2}})
	small := NewShape("small", Rect{Width: 5, Height: 5})
	small.SetPosition(-10, -10)
	parent.AddChild(big)
	parent.AddChild(small)

	got := parent.LocalBounds()
	want := Rect{X: -10, Y: -10, Width: 130, Height: 30}
	if got != want {
		t.Errorf("LocalBounds = %v, want %v", got, want)
	}
}

func TestLocalBoundsSkipsHidden(t *testing.T) {
	parent := NewShape("parent", Rect{Width: 10, Height: 10})
	hidden := NewShape("hidden", Rect{Width: 100, Height: 100})
	hidden.Visible = false
	parent.AddChild(hidden)

	if got := parent.LocalBounds(); got != parent.Bounds {
		t.Errorf("LocalBounds = %v, want own bounds %v", got, parent.Bounds)
	}
}

func TestLocalBoundsRotatedChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewShape("child", Rect{Width: 20, Height: 10})
	child.SetRotation(math.Pi / 2)
	parent.AddChild(child)

	got := parent.LocalBounds()
	assertNear(t, "x", got.X, -10)
	assertNear(t, "y", got.Y, 0)
	assertNear(t, "w", got.Width, 10)
	assertNear(t, "h", got.Height, 20)
}

func TestWorldQuad(t *testing.T) {
	n := NewShape("n", Rect{Width: 10, Height: 20})
	n.SetTransform(Transform{Position: Vec2{5, 5}, Scale: Vec2{2, 1}})
	q := n.WorldQuad()
	want := [4]Vec2{{5, 5}, {25, 5}, {25, 25}, {5, 25}}
	for i := range q {
		assertVec(t, "corner", q[i], want[i])
	}
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	grandchild := NewContainer("grandchild")
	parent.AddChild(child)
	child.AddChild(grandchild)

	child.Dispose()
	if !child.IsDisposed() || !grandchild.IsDisposed() {
		t.Error("child and grandchild should be disposed")
	}
	if parent.NumChildren() != 0 {
		t.Error("disposed child should be removed from its parent")
	}
	if child.ID != 0 {
		t.Error("disposed node ID should be cleared")
	}
	child.Dispose() // second call is a no-op
}

func TestDebugDisposedPanics(t *testing.T) {
	globalDebug = true
	defer func() { globalDebug = false }()

	n := NewContainer("n")
	n.Dispose()
	defer func() {
		if recover() == nil {
			t.Error("expected panic adding a disposed node in debug mode")
		}
	}()
	NewContainer("p").AddChild(n)
}

// --- Reparent ---

func TestReparentPreservesWorld(t *testing.T) {
	stage := NewContainer("stage")
	from := NewContainer("from")
	from.SetTransform(Transform{
		Position: Vec2{10, 20},
		Scale:    Vec2{2, 1.5},
		Rotation: 0.3,
		Skew:     Vec2{0.2, 0},
		Pivot:    Vec2{3, 4},
	})
	to := NewContainer("to")
	to.SetTransform(Transform{
		Position: Vec2{-5, 7},
		Scale:    Vec2{0.5, 3},
		Rotation: -0.7,
		Skew:     Vec2{0, 0.1},
	})
	stage.AddChild(from)
	stage.AddChild(to)

	n := NewShape("n", Rect{Width: 10, Height: 10})
	n.SetTransform(Transform{
		Position: Vec2{4, -2},
		Scale:    Vec2{1.2, 0.8},
		Rotation: 1.1,
		Skew:     Vec2{0.15, 0.05},
		Pivot:    Vec2{5, 5},
	})
	from.AddChild(n)
	before := n.WorldTransform()

	if err := Reparent(n, to); err != nil {
		t.Fatal(err)
	}
	if n.Parent != to {
		t.Fatal("node should be under the new parent")
	}
	assertMatrix(t, "world after reparent", n.WorldTransform(), before)
	assertVec(t, "pivot kept", n.Transform().Pivot, Vec2{5, 5})
	if n.SkewY != 0 {
		t.Errorf("SkewY = %v, want 0 after decomposition", n.SkewY)
	}

	// And back again.
	if err := Reparent(n, from); err != nil {
		t.Fatal(err)
	}
	assertMatrix(t, "world after round trip", n.WorldTransform(), before)
}

func TestReparentAtIndex(t *testing.T) {
	p := NewContainer("p")
	a := NewContainer("a")
	b := NewContainer("b")
	p.AddChild(a)
	p.AddChild(b)
	n := NewContainer("n")

	if err := ReparentAt(n, p, 1); err != nil {
		t.Fatal(err)
	}
	if p.ChildIndex(n) != 1 {
		t.Errorf("index = %d, want 1", p.ChildIndex(n))
	}
}

func TestReparentToNilDetaches(t *testing.T) {
	parent := NewContainer("parent")
	parent.SetTransform(Transform{Position: Vec2{50, 50}, Scale: Vec2{2, 2}, Rotation: 0.5})
	n := NewContainer("n")
	n.SetPosition(10, 0)
	parent.AddChild(n)
	before := n.WorldTransform()

	if err := Reparent(n, nil); err != nil {
		t.Fatal(err)
	}
	if n.Parent != nil {
		t.Error("node should be detached")
	}
	assertMatrix(t, "local equals old world", n.LocalTransform(), before)
}

func TestReparentDegenerateLeavesNodeUntouched(t *testing.T) {
	from := NewContainer("from")
	to := NewContainer("to")
	n := NewContainer("n")
	n.SetTransform(Transform{Position: Vec2{1, 2}, Scale: Vec2{0, 1}})
	from.AddChild(n)
	before := n.Transform()

	err := Reparent(n, to)
	if !errors.Is(err, ErrDegenerateTransform) {
		t.Fatalf("err = %v, want ErrDegenerateTransform", err)
	}
	if n.Parent != from {
		t.Error("node should stay under its old parent")
	}
	if n.Transform() != before {
		t.Errorf("transform = %+v, want %+v", n.Transform(), before)
	}
}

func TestReparentSingularParent(t *testing.T) {
	to := NewContainer("to")
	to.SetScale(0, 0)
	n := NewContainer("n")
	NewContainer("from").AddChild(n)

	if err := Reparent(n, to); !errors.Is(err, ErrDegenerateTransform) {
		t.Errorf("err = %v, want ErrDegenerateTransform", err)
	}
}
