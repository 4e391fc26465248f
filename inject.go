package gizmo

// syntheticPointerEvent represents a single injected pointer event.
// Screen coordinates are used and converted to world coordinates via the
// editor camera, identical to real mouse input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
	button           MouseButton
	mods             KeyModifiers
}

// InjectPress queues a pointer press event at the given screen coordinates
// (left button). The event is consumed on the next frame's processInput call.
func (e *Editor) InjectPress(x, y float64) {
	e.InjectPressMods(x, y, 0)
}

// InjectPressMods is InjectPress with modifier keys held.
func (e *Editor) InjectPressMods(x, y float64, mods KeyModifiers) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
		mods:    mods,
	})
}

// InjectMove queues a pointer move event at the given screen coordinates
// with the button held down. Use this between InjectPress and InjectRelease
// to simulate a drag.
func (e *Editor) InjectMove(x, y float64) {
	e.InjectMoveMods(x, y, 0)
}

// InjectMoveMods is InjectMove with modifier keys held.
func (e *Editor) InjectMoveMods(x, y float64, mods KeyModifiers) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
		mods:    mods,
	})
}

// InjectRelease queues a pointer release event at the given screen coordinates.
func (e *Editor) InjectRelease(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates. Consumes two frames.
func (e *Editor) InjectClick(x, y float64) {
	e.InjectPress(x, y)
	e.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// frames-2 linearly interpolated moves, a move onto (toX, toY) and the
// release there. The sequence consumes frames+1 frames. Minimum frames is 2.
func (e *Editor) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	e.InjectDragMods(fromX, fromY, toX, toY, frames, 0)
}

// InjectDragMods is InjectDrag with modifier keys held throughout.
func (e *Editor) InjectDragMods(fromX, fromY, toX, toY float64, frames int, mods KeyModifiers) {
	if frames < 2 {
		frames = 2
	}
	e.InjectPressMods(fromX, fromY, mods)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		e.InjectMoveMods(x, y, mods)
	}
	e.InjectMoveMods(toX, toY, mods)
	e.InjectRelease(toX, toY)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through processPointer. Returns true if an event was consumed (real mouse
// input should be skipped).
func (e *Editor) processInjectedInput() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	e.processPointer(evt.screenX, evt.screenY, evt.pressed, evt.button, evt.mods)
	return true
}
