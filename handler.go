package gizmo

import (
	"errors"
	"math"
)

// PointerEvent is one pointer sample delivered to a Handler. Screen
// coordinates are used for hit testing; world coordinates drive the math.
type PointerEvent struct {
	ScreenX, ScreenY float64
	WorldX, WorldY   float64
	Button           MouseButton
	Modifiers        KeyModifiers
}

// World returns the world-space pointer position.
func (e PointerEvent) World() Vec2 {
	return Vec2{e.WorldX, e.WorldY}
}

// Handler is one manipulation mode driving a SelectionProxy. The set of
// implementations is closed: TranslateHandler, RotateHandler,
// ResizeHandler, SkewHandler and PivotHandler.
//
// Every handler follows Idle → Active → Idle: PointerDown acquires the
// proxy's HandlingSession (a refused acquisition is ignored and reported as
// false), PointerMove commits a new proxy transform only while the handler
// owns the session, and PointerUp releases it.
type Handler interface {
	Mode() Mode
	// Contains reports whether the screen point lies in the handler's hit area.
	Contains(sx, sy float64) bool
	PointerDown(ev PointerEvent) bool
	PointerMove(ev PointerEvent)
	PointerUp(ev PointerEvent)
	// Refresh re-reads the proxy's live placement into the hit area.
	Refresh()
	// Detach removes the handler's subscriptions and unregisters it.
	Detach()

	base() *handle
}

// handle holds the state shared by all handlers.
type handle struct {
	self    Handler
	proxy   *SelectionProxy
	view    *Camera
	cfg     Config
	area    HitShape
	updated CallbackHandle
}

func (h *handle) base() *handle { return h }

// attach registers self with the proxy and subscribes to proxy updates.
func (h *handle) attach(self Handler, proxy *SelectionProxy, view *Camera, cfg Config) {
	h.self = self
	h.proxy = proxy
	h.view = view
	h.cfg = cfg
	proxy.addHandler(self)
	h.updated = proxy.OnUpdated(func(*SelectionProxy) { self.Refresh() })
}

// Detach ends a session held by this handler, removes the update
// subscription and unregisters the handler from its proxy.
func (h *handle) Detach() {
	h.end()
	h.updated.Remove()
	h.proxy.removeHandler(h.self)
	h.area = nil
}

// Contains reports whether (sx, sy) lies in the hit area of an interactive proxy.
func (h *handle) Contains(sx, sy float64) bool {
	return h.proxy.Interactive() && h.area != nil && h.area.Contains(sx, sy)
}

// active reports whether this handler owns the session.
func (h *handle) active() bool {
	return h.proxy.session.IsOwner(h.self)
}

// begin tries to acquire the session. A refusal is not an error for the
// user: another handler is already driving the proxy.
func (h *handle) begin() bool {
	if !h.proxy.Interactive() {
		return false
	}
	if err := h.proxy.session.Begin(h.self); err != nil {
		logger().Debug("pointer down ignored", "mode", h.self.Mode().String(), "error", err)
		return false
	}
	return true
}

// end releases the session if this handler holds it.
func (h *handle) end() {
	if !h.active() {
		return
	}
	if err := h.proxy.session.End(h.self); err != nil {
		logger().Error("end handling", "mode", h.self.Mode().String(), "error", err)
	}
}

// PointerUp releases the session. Shared by every handler.
func (h *handle) PointerUp(PointerEvent) {
	h.end()
}

// commit pushes t through the proxy. A rejected transform leaves the proxy
// at its last valid placement.
func (h *handle) commit(t Transform) {
	if err := h.proxy.Commit(t); err != nil {
		if errors.Is(err, ErrDegenerateTransform) {
			logger().Debug("manipulation step rejected", "mode", h.self.Mode().String(), "error", err)
			return
		}
		logger().Error("commit manipulation", "mode", h.self.Mode().String(), "error", err)
	}
}

// pointerInParent maps the event to the proxy's parent space.
func (h *handle) pointerInParent(ev PointerEvent) Vec2 {
	return transformVec(invertAffine(h.proxy.parentWorld()), ev.World())
}

// screenCorners returns the proxy's bounds corners in screen space.
func (h *handle) screenCorners() [4]Vec2 {
	corners := h.proxy.WorldCorners()
	for i := range corners {
		corners[i] = h.view.worldToScreen(corners[i])
	}
	return corners
}

// --- Hit shapes ---

// HitShape is a hit testing region.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitPolygon is a convex polygon hit area.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	// Check that the point is on the same side of every edge.
	var positive, negative bool
	for i := 0; i < n; i++ {
		x1 := p.Points[i].X
		y1 := p.Points[i].Y
		j := (i + 1) % n
		x2 := p.Points[j].X
		y2 := p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// HitOutline is a band of the given half-width around a closed polyline.
type HitOutline struct {
	Points    []Vec2
	Tolerance float64
}

// Contains reports whether (x, y) lies within Tolerance of any edge.
func (o HitOutline) Contains(x, y float64) bool {
	n := len(o.Points)
	if n < 2 {
		return false
	}
	p := Vec2{x, y}
	for i := 0; i < n; i++ {
		if distToSegment(p, o.Points[i], o.Points[(i+1)%n]) <= o.Tolerance {
			return true
		}
	}
	return false
}

// distToSegment returns the distance from p to the segment ab.
func distToSegment(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(Vec2{a.X + ab.X*t, a.Y + ab.Y*t}).Len()
}
