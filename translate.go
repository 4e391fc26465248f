package gizmo

// TranslateHandler moves the selection by dragging inside its bounds.
type TranslateHandler struct {
	handle

	snapPos Vec2
	snapPtr Vec2
}

// NewTranslateHandler creates a translate handler bound to proxy. view maps
// world to screen for hit testing; nil means the identity view.
func NewTranslateHandler(proxy *SelectionProxy, view *Camera, cfg Config) *TranslateHandler {
	h := &TranslateHandler{}
	h.attach(h, proxy, view, cfg)
	h.Refresh()
	return h
}

// Mode returns ModeTranslate.
func (h *TranslateHandler) Mode() Mode { return ModeTranslate }

// Refresh sets the hit area to the screen-space bounds quad.
func (h *TranslateHandler) Refresh() {
	if !h.proxy.Interactive() {
		h.area = nil
		return
	}
	corners := h.screenCorners()
	h.area = HitPolygon{Points: corners[:]}
}

// PointerDown captures the proxy position and the pointer in parent space.
func (h *TranslateHandler) PointerDown(ev PointerEvent) bool {
	if !h.begin() {
		return false
	}
	h.snapPos = h.proxy.Transform().Position
	h.snapPtr = h.pointerInParent(ev)
	return true
}

// PointerMove offsets the snapshot position by the pointer's travel.
func (h *TranslateHandler) PointerMove(ev PointerEvent) {
	if !h.active() {
		return
	}
	cur := h.pointerInParent(ev)
	t := h.proxy.Transform()
	t.Position = h.snapPos.Add(cur.Sub(h.snapPtr))
	h.commit(t)
}

// Nudge moves the selection by a world-space offset in one step, as a
// keyboard shortcut would. It reports false when another handler holds the
// session or nothing is selected.
func (h *TranslateHandler) Nudge(dx, dy float64) bool {
	if !h.begin() {
		return false
	}
	defer h.end()

	inv := invertAffine(h.proxy.parentWorld())
	d := Vec2{inv[0]*dx + inv[2]*dy, inv[1]*dx + inv[3]*dy}
	t := h.proxy.Transform()
	t.Position = t.Position.Add(d)
	h.commit(t)
	return true
}
