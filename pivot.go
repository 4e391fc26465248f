package gizmo

import "math"

// PivotHandler moves the selection's pivot without moving the selection.
type PivotHandler struct {
	handle

	center Vec2 // screen space
}

// NewPivotHandler creates a pivot handler bound to proxy.
func NewPivotHandler(proxy *SelectionProxy, view *Camera, cfg Config) *PivotHandler {
	h := &PivotHandler{}
	h.attach(h, proxy, view, cfg)
	h.Refresh()
	return h
}

// Mode returns ModePivot.
func (h *PivotHandler) Mode() Mode { return ModePivot }

// Center returns the screen position of the pivot marker.
func (h *PivotHandler) Center() Vec2 { return h.center }

// Refresh centers a PivotRadius circle on the pivot's screen position.
func (h *PivotHandler) Refresh() {
	if !h.proxy.Interactive() {
		h.area = nil
		return
	}
	h.center = h.view.worldToScreen(h.proxy.WorldPivot())
	h.area = HitCircle{CenterX: h.center.X, CenterY: h.center.Y, Radius: h.cfg.PivotRadius}
}

// PointerDown starts a pivot drag.
func (h *PivotHandler) PointerDown(PointerEvent) bool {
	return h.begin()
}

// PointerMove moves the pivot under the pointer and compensates the
// position so the local matrix is unchanged. Shift snaps to the nearest
// corner, edge midpoint or center of the bounds.
func (h *PivotHandler) PointerMove(ev PointerEvent) {
	if !h.active() {
		return
	}
	t := h.proxy.Transform()
	m := t.Matrix()
	inv, ok := tryInvertAffine(m)
	if !ok {
		return
	}
	ptr := h.pointerInParent(ev)
	pivot := transformVec(inv, ptr)
	if ev.Modifiers&ModShift != 0 {
		pivot = nearestSnapPoint(boundsPoints(h.proxy.Bounds()), m, ptr)
	}
	t.Position = t.Position.Add(transformVec(m, pivot).Sub(transformVec(m, t.Pivot)))
	t.Pivot = pivot
	h.commit(t)
}

// nearestSnapPoint returns the point of pts whose image under m is closest
// to target.
func nearestSnapPoint(pts [9]Vec2, m [6]float64, target Vec2) Vec2 {
	best := pts[0]
	bestDist := math.Inf(1)
	for _, p := range pts {
		if d := transformVec(m, p).Sub(target).Len(); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}
