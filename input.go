package gizmo

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// --- Per-pointer state ---

type pointerState struct {
	down    bool
	button  MouseButton // button captured at press time
	lastX   float64     // screen space
	lastY   float64
	owner   Handler // handler that accepted the press
	panning bool
	hover   Handler
}

// --- Hit testing ---

// collectSelectable walks the tree in painter order, appending visible
// selectable nodes to buf. The selection proxy is walked through so its
// members stay hit-testable.
func collectSelectable(n *Node, buf []*Node) []*Node {
	if !n.Visible {
		return buf
	}
	if n.Selectable && !n.Bounds.IsEmpty() {
		buf = append(buf, n)
	}
	for _, child := range n.children {
		buf = collectSelectable(child, buf)
	}
	return buf
}

// hitTest finds the topmost selectable node whose content contains the
// world point. Returns nil if nothing is hit.
func (e *Editor) hitTest(wx, wy float64) *Node {
	e.hitBuf = collectSelectable(e.root, e.hitBuf[:0])

	// Iterate backward (reverse painter order): topmost visual node first.
	for i := len(e.hitBuf) - 1; i >= 0; i-- {
		n := e.hitBuf[i]
		lx, ly := n.WorldToLocal(wx, wy)
		if n.Bounds.Contains(lx, ly) {
			return n
		}
	}
	return nil
}

// HandlerAt returns the handler whose hit area contains the screen point,
// checked in priority order (pivot, resize anchors, rotate, skew,
// translate). Returns nil when no handler is hit or nothing is selected.
func (e *Editor) HandlerAt(sx, sy float64) Handler {
	for _, h := range e.handlers {
		if h.Contains(sx, sy) {
			return h
		}
	}
	return nil
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Editor.Update() to handle mouse input. A
// queued synthetic event replaces real input for the frame.
func (e *Editor) processInput() {
	if e.processInjectedInput() {
		return
	}
	mods := readModifiers()
	e.processMousePointer(mods)
	e.processWheel()
}

// processMousePointer polls the cursor and buttons.
func (e *Editor) processMousePointer(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()

	// Detect which button is pressed. If pointer is already down, use the
	// stored button to avoid changing mid-interaction.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}

	e.processPointer(float64(mx), float64(my), pressed, button, mods)
}

// processWheel zooms around the cursor.
func (e *Editor) processWheel() {
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	e.zoomAt(float64(mx), float64(my), dy)
}

// zoomAt applies steps wheel notches of ZoomStep around the screen point.
func (e *Editor) zoomAt(sx, sy, steps float64) {
	factor := 1.0
	step := e.cfg.ZoomStep
	if steps < 0 {
		step = 1 / step
		steps = -steps
	}
	for ; steps > 0; steps-- {
		factor *= step
	}
	e.camera.ZoomAt(sx, sy, factor)
	e.refreshHandlers()
}

// processPointer runs the pointer state machine. Once a handler accepts a
// press it receives every move and the release, wherever they happen.
func (e *Editor) processPointer(sx, sy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &e.pointer
	world := e.camera.screenToWorld(Vec2{sx, sy})
	ev := PointerEvent{
		ScreenX: sx, ScreenY: sy,
		WorldX: world.X, WorldY: world.Y,
		Button:    button,
		Modifiers: mods,
	}

	switch {
	case pressed && !ps.down:
		// Just pressed: capture the button for the whole interaction.
		ps.down = true
		ps.button = button
		ps.lastX, ps.lastY = sx, sy
		switch button {
		case MouseButtonMiddle:
			ps.panning = true
		case MouseButtonLeft:
			e.pointerDown(ev)
		}

	case !pressed && ps.down:
		ev.Button = ps.button
		if ps.owner != nil {
			ps.owner.PointerUp(ev)
		}
		ps.down = false
		ps.owner = nil
		ps.panning = false

	case pressed && ps.down:
		ev.Button = ps.button
		if sx == ps.lastX && sy == ps.lastY {
			return
		}
		if ps.panning {
			e.camera.Pan(sx-ps.lastX, sy-ps.lastY)
			e.refreshHandlers()
		} else if ps.owner != nil {
			ps.owner.PointerMove(ev)
		}
		ps.lastX, ps.lastY = sx, sy

	default:
		// Hover move.
		ps.hover = e.HandlerAt(sx, sy)
		ps.lastX, ps.lastY = sx, sy
	}
}

// pointerDown routes a left press to the handler under it, or performs a
// click selection. A freshly selected node can be dragged right away.
// Shift over the translate area toggles selection instead of dragging.
func (e *Editor) pointerDown(ev PointerEvent) {
	ps := &e.pointer
	h := e.HandlerAt(ev.ScreenX, ev.ScreenY)
	if h == Handler(e.translate) && ev.Modifiers&ModShift != 0 {
		h = nil
	}
	if h != nil {
		if h.PointerDown(ev) {
			ps.owner = h
		}
		return
	}
	if !e.clickSelect(ev) {
		return
	}
	if e.translate.Contains(ev.ScreenX, ev.ScreenY) && e.translate.PointerDown(ev) {
		ps.owner = e.translate
	}
}

// clickSelect updates the selection from a press outside every handler.
// Shift toggles the hit node; a plain press replaces the selection, and a
// press on empty space clears it. Reports whether a node was selected.
func (e *Editor) clickSelect(ev PointerEvent) bool {
	n := e.hitTest(ev.WorldX, ev.WorldY)
	shift := ev.Modifiers&ModShift != 0
	var err error
	switch {
	case n == nil:
		if !shift && e.proxy.Len() > 0 {
			err = e.proxy.Unselect()
		}
	case shift && e.proxy.Contains(n):
		err = e.proxy.Unselect(n)
	case shift:
		err = e.proxy.Select(n)
	default:
		if e.proxy.Len() > 0 {
			err = e.proxy.Unselect()
		}
		if err == nil {
			err = e.proxy.Select(n)
		}
	}
	if err != nil {
		logger().Warn("click selection", "error", err)
		return false
	}
	return n != nil && e.proxy.Contains(n)
}
