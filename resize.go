package gizmo

import "math"

// ResizeHandler scales the selection by dragging one of the eight anchors
// while the opposite anchor stays fixed.
type ResizeHandler struct {
	handle
	anchor Anchor

	center Vec2 // screen space

	snap     Transform
	bounds   Rect
	frameInv [6]float64 // world -> unscaled local frame at pointer-down
	click    Vec2       // pointer in the unscaled frame
	fixed    Vec2       // opposite anchor in proxy-local space
	fixedAt  Vec2       // opposite anchor in parent space at pointer-down
}

// NewResizeHandler creates a resize handler for one anchor.
func NewResizeHandler(proxy *SelectionProxy, anchor Anchor, view *Camera, cfg Config) *ResizeHandler {
	h := &ResizeHandler{anchor: anchor}
	h.attach(h, proxy, view, cfg)
	h.Refresh()
	return h
}

// Mode returns ModeResize.
func (h *ResizeHandler) Mode() Mode { return ModeResize }

// Anchor returns the anchor this handler drags.
func (h *ResizeHandler) Anchor() Anchor { return h.anchor }

// Center returns the screen position of the anchor grip.
func (h *ResizeHandler) Center() Vec2 { return h.center }

// Refresh centers a HandleSize square on the anchor's screen position.
func (h *ResizeHandler) Refresh() {
	if !h.proxy.Interactive() {
		h.area = nil
		return
	}
	local := h.anchor.Point(h.proxy.Bounds())
	world := transformVec(h.proxy.node.WorldTransform(), local)
	h.center = h.view.worldToScreen(world)
	s := h.cfg.HandleSize
	h.area = HitRect{X: h.center.X - s/2, Y: h.center.Y - s/2, Width: s, Height: s}
}

// PointerDown snapshots the transform, the bounds, the pointer in the
// unscaled local frame and the parent-space position of the fixed anchor.
func (h *ResizeHandler) PointerDown(ev PointerEvent) bool {
	if !h.begin() {
		return false
	}
	h.snap = h.proxy.Transform()
	h.bounds = h.proxy.Bounds()

	unscaled := h.snap
	unscaled.Scale = Vec2{1, 1}
	frame := multiplyAffine(h.proxy.parentWorld(), unscaled.Matrix())
	h.frameInv = invertAffine(frame)
	h.click = transformVec(h.frameInv, ev.World())

	h.fixed = h.anchor.Opposite().Point(h.bounds)
	h.fixedAt = transformVec(h.snap.Matrix(), h.fixed)
	return true
}

// PointerMove converts the pointer travel into a scale change on the
// anchor's axes, then shifts the position so the fixed anchor stays put.
func (h *ResizeHandler) PointerMove(ev PointerEvent) {
	if !h.active() {
		return
	}
	t := h.resized(transformVec(h.frameInv, ev.World()), ev.Modifiers&ModShift != 0)
	h.commit(t)
}

// resized computes the transform for the pointer at cur in the snapshot frame.
func (h *ResizeHandler) resized(cur Vec2, keepAspect bool) Transform {
	t := h.snap
	d := cur.Sub(h.click)
	sx, sy := h.anchor.sign()

	scale := h.snap.Scale
	if h.anchor.Axis&AxisHorizontal != 0 && h.bounds.Width > 0 {
		scale.X += d.X * sx / h.bounds.Width
	}
	if h.anchor.Axis&AxisVertical != 0 && h.bounds.Height > 0 {
		scale.Y += d.Y * sy / h.bounds.Height
	}
	if keepAspect && h.anchor.IsCorner() {
		fx := scale.X / h.snap.Scale.X
		fy := scale.Y / h.snap.Scale.Y
		f := fx
		if math.Abs(fy-1) > math.Abs(fx-1) {
			f = fy
		}
		scale = Vec2{h.snap.Scale.X * f, h.snap.Scale.Y * f}
	}
	scale.X = clampScale(scale.X, h.snap.Scale.X, h.cfg.MinScale)
	scale.Y = clampScale(scale.Y, h.snap.Scale.Y, h.cfg.MinScale)
	t.Scale = scale

	// Re-anchor from the snapshot every move.
	at := transformVec(t.Matrix(), h.fixed)
	t.Position = t.Position.Add(h.fixedAt.Sub(at))
	return t
}

// clampScale keeps |v| at or above limit. A value of exactly zero takes the
// sign of the previous scale.
func clampScale(v, prev, limit float64) float64 {
	if math.Abs(v) >= limit {
		return v
	}
	if v < 0 || (v == 0 && prev < 0) {
		return -limit
	}
	return limit
}
