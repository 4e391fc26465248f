package gizmo

import (
	"errors"
	"math"
	"testing"
)

// click presses and releases the left button at a screen point.
func click(e *Editor, x, y float64, mods KeyModifiers) {
	e.processPointer(x, y, true, MouseButtonLeft, mods)
	e.processPointer(x, y, false, MouseButtonLeft, mods)
}

// drain feeds every queued synthetic event through the pointer state machine.
func drain(e *Editor) {
	for e.processInjectedInput() {
	}
}

func square(e *Editor, store *MapStore, name string, x, y float64) *Node {
	return editorShape(e, store, nil, name, Rect{Width: 50, Height: 50}, at2(x, y))
}

func TestNewEditorRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HandleSize = 0
	if _, err := NewEditor(cfg, nil); err == nil {
		t.Error("expected an error for a zero handle size")
	}
}

func TestNewEditorDefaultsToMapStore(t *testing.T) {
	e, err := NewEditor(DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if _, ok := e.Store().(*MapStore); !ok {
		t.Errorf("Store() = %T, want *MapStore", e.Store())
	}
	if e.Root() == nil || e.Root().Selectable {
		t.Error("stage should exist and not be selectable")
	}
}

func TestHandlerPriorityOrder(t *testing.T) {
	e, _ := newTestEditor(t)
	hs := e.Handlers()
	if len(hs) != 12 {
		t.Fatalf("len = %d, want 12", len(hs))
	}
	if hs[0] != Handler(e.PivotHandler()) {
		t.Error("pivot should be checked first")
	}
	for i, a := range Anchors() {
		r, ok := hs[1+i].(*ResizeHandler)
		if !ok || r.Anchor() != a {
			t.Errorf("handler %d should resize %s", 1+i, a)
		}
		if e.ResizeHandler(a) != r {
			t.Errorf("ResizeHandler(%s) mismatch", a)
		}
	}
	want := []Mode{ModeRotate, ModeSkew, ModeTranslate}
	for i, m := range want {
		if got := hs[9+i].Mode(); got != m {
			t.Errorf("handler %d mode = %s, want %s", 9+i, got, m)
		}
	}
}

func TestHandlerAt(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	if err := e.Select(a); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		x, y float64
		want Handler
	}{
		{"pivot over corner", 0, 0, e.PivotHandler()},
		{"right grip", 50, 25, e.ResizeHandler(AnchorRight)},
		{"knob", 25, -24, e.RotateHandler()},
		{"bottom edge", 10, 50, e.SkewHandler()},
		{"inside", 25, 25, e.TranslateHandler()},
		{"outside", 200, 200, nil},
	}
	for _, tt := range tests {
		if got := e.HandlerAt(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: HandlerAt(%v, %v) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestClickSelection(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	b := square(e, store, "b", 100, 0)

	click(e, 25, 25, 0)
	if got := e.Proxy().Nodes(); len(got) != 1 || got[0] != a {
		t.Fatalf("after click on a: %v", names(got))
	}

	click(e, 125, 25, ModShift)
	if e.Proxy().Len() != 2 || !e.Proxy().Contains(b) {
		t.Fatalf("shift-click should add b: %v", names(e.Proxy().Nodes()))
	}

	click(e, 25, 25, ModShift)
	if got := e.Proxy().Nodes(); len(got) != 1 || got[0] != b {
		t.Fatalf("shift-click should toggle a off: %v", names(got))
	}

	click(e, 300, 300, 0)
	if e.Proxy().Len() != 0 {
		t.Errorf("click on empty space should clear: %v", names(e.Proxy().Nodes()))
	}
	if e.Session().Active() {
		t.Error("no session should be left open")
	}
}

func TestClickReplacesSelection(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	b := square(e, store, "b", 100, 0)
	_ = e.Select(a)

	click(e, 125, 25, 0)
	if got := e.Proxy().Nodes(); len(got) != 1 || got[0] != b {
		t.Errorf("plain click should replace the selection: %v", names(got))
	}
	x, y := a.LocalToWorld(0, 0)
	assertNear(t, "a x", x, 0)
	assertNear(t, "a y", y, 0)
}

func TestClickThenDragMovesNewSelection(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)

	e.InjectDrag(25, 25, 65, 45, 4)
	drain(e)

	if !e.Proxy().Contains(a) {
		t.Fatal("a should be selected by the press")
	}
	x, y := a.LocalToWorld(0, 0)
	assertNear(t, "x", x, 40)
	assertNear(t, "y", y, 20)
	c, _ := store.TransformComponents(a.ID)
	assertVec(t, "stored position", c.Position, Vec2{40, 20})
	if e.Session().Active() || e.pointer.owner != nil {
		t.Error("release should end the drag")
	}
}

func TestResizeDragThroughInput(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)

	e.InjectDrag(50, 25, 100, 25, 2)
	drain(e)

	c, _ := store.TransformComponents(a.ID)
	assertVec(t, "scale", c.Scale, Vec2{2, 1})
	assertVec(t, "position", c.Position, Vec2{})
}

func TestExternalEditInterruptsManipulation(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)

	e.processPointer(25, 25, true, MouseButtonLeft, 0)
	if e.pointer.owner != Handler(e.TranslateHandler()) {
		t.Fatal("translate should own the press")
	}
	logs := captureLogs(t)

	store.Edit(a.ID, TransformComponents{Mask: CompPosition, Position: Vec2{5, 5}})
	if e.Session().Active() || e.pointer.owner != nil {
		t.Error("external edit should end the manipulation")
	}
	assertVec(t, "proxy position", e.Proxy().Transform().Position, Vec2{5, 5})
	if logs.Len() == 0 {
		t.Error("expected a warning")
	}

	// The rest of the drag is ignored.
	e.processPointer(80, 80, true, MouseButtonLeft, 0)
	e.processPointer(80, 80, false, MouseButtonLeft, 0)
	assertVec(t, "proxy position", e.Proxy().Transform().Position, Vec2{5, 5})
}

func TestAbsorbUnselectedNode(t *testing.T) {
	e, store := newTestEditor(t)
	b := square(e, store, "b", 100, 0)

	store.Edit(b.ID, TransformComponents{Mask: CompRotation, Rotation: 0.5})
	assertNear(t, "rotation", b.Transform().Rotation, 0.5)
	assertVec(t, "position kept", b.Transform().Position, Vec2{100, 0})

	captureLogs(t)
	store.Edit(b.ID, TransformComponents{Mask: CompScale, Scale: Vec2{0, 1}})
	assertVec(t, "scale", b.Transform().Scale, Vec2{1, 1})
}

func TestAbsorbIgnoresUnregisteredNode(t *testing.T) {
	e, store := newTestEditor(t)
	n := NewShape("loose", Rect{Width: 10, Height: 10})
	e.Root().AddChild(n)
	store.Add(n.ID, ComponentsFromTransform(n.Transform(), CompAll))

	store.Edit(n.ID, TransformComponents{Mask: CompPosition, Position: Vec2{9, 9}})
	assertVec(t, "position", n.Transform().Position, Vec2{})
}

func TestOnCommit(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)

	var got [][]uint32
	sub := e.OnCommit(func(ids []uint32) { got = append(got, ids) })

	h := e.TranslateHandler()
	h.PointerDown(at(10, 10))
	h.PointerMove(at(20, 10))
	if len(got) != 0 {
		t.Fatal("commit should fire when the manipulation ends")
	}
	h.PointerUp(at(20, 10))
	if len(got) != 1 || len(got[0]) != 1 || got[0][0] != a.ID {
		t.Fatalf("got %v, want [[%d]]", got, a.ID)
	}

	// Sessions owned by something else are not commits.
	_ = e.Session().Begin("host")
	_ = e.Session().End("host")
	if len(got) != 1 {
		t.Error("foreign session should not fire OnCommit")
	}

	sub.Remove()
	h.PointerDown(at(10, 10))
	h.PointerUp(at(10, 10))
	if len(got) != 1 {
		t.Error("removed callback should not fire")
	}
}

func TestNudgeCommits(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)
	commits := 0
	e.OnCommit(func([]uint32) { commits++ })

	e.TranslateHandler().Nudge(e.Config().NudgeStepLarge, 0)
	x, _ := a.LocalToWorld(0, 0)
	assertNear(t, "x", x, 10)
	if commits != 1 {
		t.Errorf("commits = %d, want 1", commits)
	}
}

func TestCancelKeepsLastTransform(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)

	e.processPointer(25, -24, true, MouseButtonLeft, 0)
	e.processPointer(50, 25, true, MouseButtonLeft, 0)
	rot := e.Proxy().Transform().Rotation
	if rot == 0 {
		t.Fatal("rotation should have changed")
	}

	e.Cancel()
	if e.Session().Active() {
		t.Error("Cancel should end the session")
	}
	e.processPointer(0, 60, true, MouseButtonLeft, 0)
	assertNear(t, "rotation", e.Proxy().Transform().Rotation, rot)
}

func TestFocusSelection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FocusDuration = 0
	e, store := newTestEditorWith(t, cfg)
	a := square(e, store, "a", 0, 0)

	e.FocusSelection()
	if e.Camera().X != 0 || e.Camera().Y != 0 {
		t.Error("focus without a selection should not move the camera")
	}

	_ = e.Select(a)
	e.FocusSelection()
	assertNear(t, "camera x", e.Camera().X, 25)
	assertNear(t, "camera y", e.Camera().Y, 25)
}

func TestFocusSelectionScrolls(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)

	e.FocusSelection()
	if !e.Camera().Scrolling() {
		t.Fatal("focus should animate")
	}
	e.Camera().update(0.3)
	if e.Camera().Scrolling() {
		t.Error("scroll should be finished")
	}
	assertNear(t, "camera x", e.Camera().X, 25)
	assertNear(t, "camera y", e.Camera().Y, 25)
}

func TestSetViewportKeepsHandlersOnScreen(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)

	e.SetViewport(Rect{Width: 800, Height: 600})
	assertVec(t, "grip", e.ResizeHandler(AnchorRight).Center(), Vec2{50, 25})
}

func TestWheelZoom(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)
	e.SetViewport(Rect{Width: 800, Height: 600})

	e.zoomAt(400, 300, 1)
	assertNear(t, "zoom", e.Camera().Zoom, 1.1)

	wx, wy := e.Camera().ScreenToWorld(100, 120)
	e.zoomAt(100, 120, 3)
	x, y := e.Camera().ScreenToWorld(100, 120)
	assertNear(t, "anchored x", x, wx)
	assertNear(t, "anchored y", y, wy)

	e.zoomAt(100, 120, -2)
	assertNear(t, "zoom out", e.Camera().Zoom, 1.1*1.1)

	// Hit areas follow the view.
	sx, sy := e.Camera().WorldToScreen(50, 25)
	assertVec(t, "grip", e.ResizeHandler(AnchorRight).Center(), Vec2{sx, sy})
}

func TestMiddleButtonPans(t *testing.T) {
	e, _ := newTestEditor(t)
	e.SetViewport(Rect{Width: 800, Height: 600})
	wx, wy := e.Camera().ScreenToWorld(100, 100)

	e.processPointer(100, 100, true, MouseButtonMiddle, 0)
	e.processPointer(150, 130, true, MouseButtonMiddle, 0)
	e.processPointer(150, 130, false, MouseButtonMiddle, 0)

	x, y := e.Camera().ScreenToWorld(150, 130)
	assertNear(t, "x", x, wx)
	assertNear(t, "y", y, wy)
	if e.pointer.panning {
		t.Error("release should stop panning")
	}
}

func TestMiddleButtonDoesNotSelect(t *testing.T) {
	e, store := newTestEditor(t)
	square(e, store, "a", 0, 0)

	e.processPointer(25, 25, true, MouseButtonMiddle, 0)
	e.processPointer(25, 25, false, MouseButtonMiddle, 0)
	if e.Proxy().Len() != 0 {
		t.Error("middle click should not select")
	}
}

func TestHoverTracksHandler(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)

	e.processPointer(25, -24, false, MouseButtonLeft, 0)
	if e.pointer.hover != Handler(e.RotateHandler()) {
		t.Errorf("hover = %v, want rotate", e.pointer.hover)
	}
	e.processPointer(300, 300, false, MouseButtonLeft, 0)
	if e.pointer.hover != nil {
		t.Error("hover should clear off the selection")
	}
}

func TestRegistry(t *testing.T) {
	e, store := newTestEditor(t)
	group := NewContainer("group")
	e.Root().AddChild(group)
	a := editorShape(e, store, group, "a", Rect{Width: 10, Height: 10}, at2(0, 0))
	e.Register(group)

	if n, ok := e.Lookup(a.ID); !ok || n != a {
		t.Error("Lookup should find a")
	}
	if e.Find("a") != a {
		t.Error("Find should find a")
	}
	if e.Find("group") != nil {
		t.Error("Find should skip containers")
	}
	if e.Find("missing") != nil {
		t.Error("Find should return nil for unknown names")
	}

	_ = e.Select(a)
	e.Unregister(group)
	if _, ok := e.Lookup(a.ID); ok {
		t.Error("Unregister should forget descendants")
	}
	if e.Proxy().Contains(a) {
		t.Error("Unregister should unselect")
	}
	if a.Parent != group {
		t.Error("a should be back under its group")
	}
}

func TestSelectThroughEditor(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	loose := NewShape("loose", Rect{Width: 1, Height: 1})

	if err := e.Select(loose); !errors.Is(err, ErrNotInScene) {
		t.Errorf("err = %v, want ErrNotInScene", err)
	}
	if err := e.Select(a); err != nil {
		t.Fatal(err)
	}
	if err := e.Unselect(); err != nil {
		t.Fatal(err)
	}
	if e.Proxy().Node().Parent != nil {
		t.Error("empty proxy should be detached")
	}
}

func TestClose(t *testing.T) {
	e, store := newTestEditor(t)
	a := square(e, store, "a", 0, 0)
	_ = e.Select(a)
	e.TranslateHandler().PointerDown(at(25, 25))

	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if e.Session().Active() {
		t.Error("Close should end the session")
	}
	if e.Proxy().Len() != 0 || a.Parent != e.Root() {
		t.Error("Close should release the selection")
	}
	if len(e.Handlers()) != 0 {
		t.Error("Close should detach the handlers")
	}

	store.Edit(a.ID, TransformComponents{Mask: CompRotation, Rotation: math.Pi})
	if a.Transform().Rotation != 0 {
		t.Error("closed editor should stop absorbing store changes")
	}
}

func TestAbsorbMemberParentEdit(t *testing.T) {
	e, store := newTestEditor(t)
	group := NewContainer("group")
	e.Root().AddChild(group)
	e.Register(group)
	store.Add(group.ID, ComponentsFromTransform(group.Transform(), CompAll))
	n1 := editorShape(e, store, group, "n1", Rect{Width: 10, Height: 10}, at2(0, 0))
	n2 := editorShape(e, store, nil, "n2", Rect{Width: 10, Height: 10}, at2(100, 0))
	if err := e.Select(n1, n2); err != nil {
		t.Fatal(err)
	}
	if e.Proxy().Node().Parent != e.Root() {
		t.Fatal("proxy should sit under the stage")
	}

	store.Edit(group.ID, TransformComponents{Mask: CompPosition, Position: Vec2{0, 200}})
	x, y := n1.LocalToWorld(0, 0)
	assertNear(t, "n1 world x", x, 0)
	assertNear(t, "n1 world y", y, 200)
	x, y = n2.LocalToWorld(0, 0)
	assertNear(t, "n2 world x", x, 100)
	assertNear(t, "n2 world y", y, 0)

	if !e.TranslateHandler().Nudge(5, 0) {
		t.Fatal("nudge should succeed")
	}
	c, _ := store.TransformComponents(n1.ID)
	assertVec(t, "stored n1 position", c.Position, Vec2{5, 0})

	if err := e.Unselect(); err != nil {
		t.Fatal(err)
	}
	if n1.Parent != group {
		t.Fatal("n1 should be back under its group")
	}
	assertVec(t, "n1 position", n1.Transform().Position, Vec2{5, 0})
	x, y = n1.LocalToWorld(0, 0)
	assertNear(t, "n1 world x", x, 5)
	assertNear(t, "n1 world y", y, 200)
}

func TestAbsorbMemberParentEditCancelsDrag(t *testing.T) {
	e, store := newTestEditor(t)
	group := NewContainer("group")
	e.Root().AddChild(group)
	e.Register(group)
	store.Add(group.ID, ComponentsFromTransform(group.Transform(), CompAll))
	n1 := editorShape(e, store, group, "n1", Rect{Width: 50, Height: 50}, at2(0, 0))
	n2 := editorShape(e, store, nil, "n2", Rect{Width: 50, Height: 50}, at2(100, 0))
	_ = e.Select(n1, n2)

	e.processPointer(25, 25, true, MouseButtonLeft, 0)
	if !e.Session().Active() {
		t.Fatal("translate should be active")
	}
	captureLogs(t)
	store.Edit(group.ID, TransformComponents{Mask: CompPosition, Position: Vec2{0, 200}})
	if e.Session().Active() || e.pointer.owner != nil {
		t.Error("edit of a member's parent should end the manipulation")
	}
	_, y := n1.LocalToWorld(0, 0)
	assertNear(t, "n1 world y", y, 200)
}

func TestReleaseOutsideEveryHitAreaEndsSession(t *testing.T) {
	tests := []struct {
		name       string
		downX      float64
		downY      float64
		moveX      float64
		moveY      float64
		wantHolder func(e *Editor) Handler
	}{
		{"rotate knob", 25, -24, 60, 10, func(e *Editor) Handler { return e.RotateHandler() }},
		{"resize grip", 50, 25, 80, 25, func(e *Editor) Handler { return e.ResizeHandler(AnchorRight) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store := newTestEditor(t)
			a := square(e, store, "a", 0, 0)
			_ = e.Select(a)

			e.processPointer(tt.downX, tt.downY, true, MouseButtonLeft, 0)
			if e.pointer.owner != tt.wantHolder(e) {
				t.Fatalf("owner = %v, want %s handler", e.pointer.owner, tt.name)
			}
			e.processPointer(tt.moveX, tt.moveY, true, MouseButtonLeft, 0)
			e.processPointer(900, 900, true, MouseButtonLeft, 0)
			if e.HandlerAt(900, 900) != nil {
				t.Fatal("release point should be outside every hit area")
			}
			before := e.Proxy().Transform()

			e.processPointer(900, 900, false, MouseButtonLeft, 0)
			if e.Session().Active() {
				t.Error("release should end the session")
			}
			if e.pointer.owner != nil {
				t.Error("release should clear the pointer owner")
			}
			if e.Proxy().Transform() != before {
				t.Error("release should not change the transform")
			}
			if e.Proxy().Len() != 1 {
				t.Error("release outside should keep the selection")
			}
		})
	}
}
