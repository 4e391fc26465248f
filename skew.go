package gizmo

import "math"

// SkewHandler shears the selection by dragging one of its edges. Dragging
// the top or bottom edge changes Skew.X; the left or right edge changes
// Skew.Y. The midpoint of the opposite edge stays fixed.
type SkewHandler struct {
	handle

	snap    Transform
	axisX   bool       // true: Skew.X (top/bottom edge)
	ref     Vec2       // opposite edge midpoint, proxy-local
	refAt   Vec2       // ref in parent space at pointer-down
	measure [6]float64 // world -> measurement frame
	refM    Vec2       // ref in the measurement frame
	v0      Vec2       // ref -> pointer at pointer-down, measurement frame
}

// NewSkewHandler creates a skew handler bound to proxy.
func NewSkewHandler(proxy *SelectionProxy, view *Camera, cfg Config) *SkewHandler {
	h := &SkewHandler{}
	h.attach(h, proxy, view, cfg)
	h.Refresh()
	return h
}

// Mode returns ModeSkew.
func (h *SkewHandler) Mode() Mode { return ModeSkew }

// Refresh sets the hit area to a band of EdgeTolerance pixels around the
// screen-space bounds outline.
func (h *SkewHandler) Refresh() {
	if !h.proxy.Interactive() {
		h.area = nil
		return
	}
	corners := h.screenCorners()
	h.area = HitOutline{Points: corners[:], Tolerance: h.cfg.EdgeTolerance}
}

// PointerDown picks the dragged edge and records the measurement frame:
// the proxy's parent, position and rotation with skew and scale left out.
func (h *SkewHandler) PointerDown(ev PointerEvent) bool {
	if !h.begin() {
		return false
	}
	h.snap = h.proxy.Transform()
	b := h.proxy.Bounds()
	c := b.Center()

	inv := invertAffine(h.proxy.node.WorldTransform())
	p := transformVec(inv, ev.World())
	var nx, ny float64
	if b.Width > 0 {
		nx = (p.X - c.X) / (b.Width / 2)
	}
	if b.Height > 0 {
		ny = (p.Y - c.Y) / (b.Height / 2)
	}
	h.axisX = math.Abs(ny) >= math.Abs(nx)
	switch {
	case h.axisX && ny < 0:
		h.ref = Vec2{c.X, b.Y + b.Height}
	case h.axisX:
		h.ref = Vec2{c.X, b.Y}
	case nx < 0:
		h.ref = Vec2{b.X + b.Width, c.Y}
	default:
		h.ref = Vec2{b.X, c.Y}
	}
	h.refAt = transformVec(h.snap.Matrix(), h.ref)

	frame := Transform{Position: h.snap.Position, Scale: Vec2{1, 1}, Rotation: h.snap.Rotation}
	parent := h.proxy.parentWorld()
	h.measure = invertAffine(multiplyAffine(parent, frame.Matrix()))
	h.refM = transformVec(h.measure, transformVec(parent, h.refAt))
	h.v0 = h.measured(ev)
	return true
}

// PointerMove turns the signed angle swept by the pointer around the
// reference point into skew, then re-anchors the reference point.
func (h *SkewHandler) PointerMove(ev PointerEvent) {
	if !h.active() {
		return
	}
	h.commit(h.skewed(h.measured(ev)))
}

// measured returns the vector from the reference point to the pointer in
// the measurement frame.
func (h *SkewHandler) measured(ev PointerEvent) Vec2 {
	return transformVec(h.measure, ev.World()).Sub(h.refM)
}

// skewed computes the transform for the pointer at v1 relative to the
// reference point.
func (h *SkewHandler) skewed(v1 Vec2) Transform {
	t := h.snap
	v0 := h.v0
	delta := math.Atan2(v0.X*v1.Y-v0.Y*v1.X, v0.X*v1.X+v0.Y*v1.Y)
	limit := h.cfg.maxSkewRad()

	// The perpendicular scale follows the pointer's distance from the
	// reference edge so the dragged edge stays under the pointer.
	if h.axisX {
		t.Skew.X = clampAbs(h.snap.Skew.X-delta, limit)
		if math.Abs(v0.Y) > 1e-9 {
			t.Scale.Y = followScale(h.snap.Scale.Y, v1.Y/v0.Y, h.cfg.MinScale)
		}
	} else {
		t.Skew.Y = clampAbs(h.snap.Skew.Y+delta, limit)
		if math.Abs(v0.X) > 1e-9 {
			t.Scale.X = followScale(h.snap.Scale.X, v1.X/v0.X, h.cfg.MinScale)
		}
	}

	at := transformVec(t.Matrix(), h.ref)
	t.Position = t.Position.Add(h.refAt.Sub(at))
	return t
}

// followScale multiplies s by ratio without letting it reach or cross zero.
func followScale(s, ratio, limit float64) float64 {
	v := math.Abs(s) * math.Max(ratio, 0)
	v = math.Max(v, limit)
	if s < 0 {
		return -v
	}
	return v
}

func clampAbs(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
