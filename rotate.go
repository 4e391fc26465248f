package gizmo

import "math"

// RotateHandler rotates the selection around its pivot by dragging the knob
// above the top edge.
type RotateHandler struct {
	handle

	knob      Vec2 // screen space
	snapRot   float64
	snapAngle float64
}

// NewRotateHandler creates a rotate handler bound to proxy.
func NewRotateHandler(proxy *SelectionProxy, view *Camera, cfg Config) *RotateHandler {
	h := &RotateHandler{}
	h.attach(h, proxy, view, cfg)
	h.Refresh()
	return h
}

// Mode returns ModeRotate.
func (h *RotateHandler) Mode() Mode { return ModeRotate }

// Knob returns the screen position of the rotate knob.
func (h *RotateHandler) Knob() Vec2 { return h.knob }

// Refresh places the knob RotateHandleOffset pixels outside the middle of
// the top edge, along the edge's outward normal.
func (h *RotateHandler) Refresh() {
	if !h.proxy.Interactive() {
		h.area = nil
		return
	}
	c := h.screenCorners()
	top := Vec2{(c[0].X + c[1].X) / 2, (c[0].Y + c[1].Y) / 2}
	center := Vec2{(c[0].X + c[2].X) / 2, (c[0].Y + c[2].Y) / 2}
	dir := top.Sub(center)
	if l := dir.Len(); l > 1e-9 {
		dir = Vec2{dir.X / l, dir.Y / l}
	} else {
		dir = Vec2{0, -1}
	}
	h.knob = Vec2{top.X + dir.X*h.cfg.RotateHandleOffset, top.Y + dir.Y*h.cfg.RotateHandleOffset}
	h.area = HitCircle{CenterX: h.knob.X, CenterY: h.knob.Y, Radius: h.cfg.HandleSize}
}

// PointerDown captures the rotation and the pointer's angle around the pivot.
func (h *RotateHandler) PointerDown(ev PointerEvent) bool {
	if !h.begin() {
		return false
	}
	t := h.proxy.Transform()
	h.snapRot = t.Rotation
	h.snapAngle = h.angleTo(ev, t)
	return true
}

// PointerMove adds the pointer's angular travel to the snapshot rotation.
// Shift snaps the result to multiples of RotationSnap.
func (h *RotateHandler) PointerMove(ev PointerEvent) {
	if !h.active() {
		return
	}
	t := h.proxy.Transform()
	rot := h.snapRot + (h.angleTo(ev, t) - h.snapAngle)
	if ev.Modifiers&ModShift != 0 {
		if step := h.cfg.rotationSnapRad(); step > 0 {
			rot = math.Round(rot/step) * step
		}
	}
	t.Rotation = rot
	h.commit(t)
}

// angleTo returns the angle from the live proxy position (the pivot in
// parent space) to the pointer.
func (h *RotateHandler) angleTo(ev PointerEvent, t Transform) float64 {
	d := h.pointerInParent(ev).Sub(t.Position)
	return math.Atan2(d.Y, d.X)
}
