package gizmo

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"
)

// Editor is the top-level object that owns the stage, the selection proxy,
// its handlers, the camera and the input state, and keeps a ComponentStore
// in sync with the nodes being edited.
type Editor struct {
	root    *Node
	cfg     Config
	store   ComponentStore
	session *HandlingSession
	proxy   *SelectionProxy
	camera  *Camera
	nodes   map[uint32]*Node
	debug   bool

	// Handlers. handlers holds all of them in hit-test priority order.
	translate *TranslateHandler
	rotate    *RotateHandler
	skew      *SkewHandler
	pivot     *PivotHandler
	resize    [8]*ResizeHandler
	handlers  []Handler

	overlay overlay

	// Input state
	pointer     pointerState
	hitBuf      []*Node
	injectQueue []syntheticPointerEvent
	testRunner  *TestRunner

	storeSub Subscription
	subs     []CallbackHandle
	onCommit callbackList[[]uint32]
}

// NewEditor creates an editor with an empty stage. store may be nil, in
// which case an in-memory MapStore is used.
func NewEditor(cfg Config, store ComponentStore) (*Editor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = NewMapStore()
	}
	root := NewContainer("stage")
	e := &Editor{
		root:    root,
		cfg:     cfg,
		store:   store,
		session: NewHandlingSession(),
		camera:  NewCamera(Rect{}),
		nodes:   make(map[uint32]*Node),
	}
	e.camera.MinZoom = cfg.MinZoom
	e.camera.MaxZoom = cfg.MaxZoom
	e.proxy = NewSelectionProxy(root, e.session, store)

	e.pivot = NewPivotHandler(e.proxy, e.camera, cfg)
	e.handlers = append(e.handlers, e.pivot)
	for i, a := range Anchors() {
		e.resize[i] = NewResizeHandler(e.proxy, a, e.camera, cfg)
		e.handlers = append(e.handlers, e.resize[i])
	}
	e.rotate = NewRotateHandler(e.proxy, e.camera, cfg)
	e.skew = NewSkewHandler(e.proxy, e.camera, cfg)
	e.translate = NewTranslateHandler(e.proxy, e.camera, cfg)
	e.handlers = append(e.handlers, e.rotate, e.skew, e.translate)

	e.storeSub = store.OnChange(e.absorb)
	e.subs = append(e.subs, e.session.OnEnd(func(owner any) {
		if e.proxy.ownsHandler(owner) {
			e.onCommit.fire(e.selectedIDs())
		}
	}))
	e.SetDebugMode(cfg.Debug)
	return e, nil
}

// Root returns the stage container. Add scene content under it and call
// Register so the editor can resolve store IDs.
func (e *Editor) Root() *Node {
	return e.root
}

// Proxy returns the selection proxy.
func (e *Editor) Proxy() *SelectionProxy {
	return e.proxy
}

// Session returns the handling session shared by all handlers.
func (e *Editor) Session() *HandlingSession {
	return e.session
}

// Camera returns the editor camera.
func (e *Editor) Camera() *Camera {
	return e.camera
}

// Store returns the component store the editor writes to.
func (e *Editor) Store() ComponentStore {
	return e.store
}

// Config returns the editor configuration.
func (e *Editor) Config() Config {
	return e.cfg
}

// Handlers returns the handlers in hit-test priority order. The returned
// slice MUST NOT be mutated.
func (e *Editor) Handlers() []Handler {
	return e.handlers
}

// TranslateHandler returns the translate handler.
func (e *Editor) TranslateHandler() *TranslateHandler { return e.translate }

// RotateHandler returns the rotate handler.
func (e *Editor) RotateHandler() *RotateHandler { return e.rotate }

// SkewHandler returns the skew handler.
func (e *Editor) SkewHandler() *SkewHandler { return e.skew }

// PivotHandler returns the pivot handler.
func (e *Editor) PivotHandler() *PivotHandler { return e.pivot }

// ResizeHandler returns the resize handler for anchor, or nil.
func (e *Editor) ResizeHandler(anchor Anchor) *ResizeHandler {
	for _, h := range e.resize {
		if h.anchor == anchor {
			return h
		}
	}
	return nil
}

// --- Node registry ---

// Register makes n and its descendants resolvable by ID.
func (e *Editor) Register(n *Node) {
	e.nodes[n.ID] = n
	for _, child := range n.children {
		e.Register(child)
	}
}

// Unregister forgets n and its descendants, unselecting them first.
func (e *Editor) Unregister(n *Node) {
	if e.proxy.Contains(n) {
		if err := e.proxy.Unselect(n); err != nil {
			logger().Warn("unselect on unregister", "node", n.Name, "error", err)
		}
	}
	delete(e.nodes, n.ID)
	for _, child := range n.children {
		e.Unregister(child)
	}
}

// Lookup returns the registered node with the given ID.
func (e *Editor) Lookup(id uint32) (*Node, bool) {
	n, ok := e.nodes[id]
	return n, ok
}

// Find returns the first registered node under the stage with the given
// name, searching depth-first in child order.
func (e *Editor) Find(name string) *Node {
	return findByName(e.root, name)
}

func findByName(n *Node, name string) *Node {
	if n.Name == name && n.Selectable {
		return n
	}
	for _, child := range n.children {
		if found := findByName(child, name); found != nil {
			return found
		}
	}
	return nil
}

// --- Selection ---

// Select adds nodes to the selection.
func (e *Editor) Select(nodes ...*Node) error {
	return e.proxy.Select(nodes...)
}

// Unselect removes nodes from the selection, or clears it when called
// without arguments.
func (e *Editor) Unselect(nodes ...*Node) error {
	return e.proxy.Unselect(nodes...)
}

// selectedIDs returns the IDs of the selected nodes.
func (e *Editor) selectedIDs() []uint32 {
	ids := make([]uint32, 0, e.proxy.Len())
	for _, n := range e.proxy.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

// OnCommit registers fn to run when a manipulation ends, with the IDs of
// the nodes it touched. Undo plumbing hooks in here.
func (e *Editor) OnCommit(fn func(ids []uint32)) CallbackHandle {
	return e.onCommit.add(fn)
}

// --- Store synchronization ---

// absorb applies an external store change. A change to a selected node, or
// to an ancestor of a selected node's own parent, interrupts any
// manipulation in progress and re-derives the proxy; other nodes take the
// stored values directly.
func (e *Editor) absorb(id uint32) {
	n, ok := e.nodes[id]
	if !ok {
		return
	}
	if e.proxy.Contains(n) {
		if e.session.Active() {
			logger().Warn("external change during manipulation", "node", n.Name, "id", id)
			e.Cancel()
		}
		if err := e.proxy.SyncFromNodes(); err != nil {
			logger().Warn("absorb external change", "node", n.Name, "error", err)
		}
		return
	}
	c, ok := e.store.TransformComponents(id)
	if !ok {
		return
	}
	t := c.Apply(n.Transform())
	if err := t.validate(); err != nil {
		logger().Warn("ignoring invalid stored transform", "node", n.Name, "error", err)
		return
	}
	if e.proxy.hostedBy(n) {
		// Members sit under the proxy, away from this node; rebuild so they
		// follow it.
		if e.session.Active() {
			logger().Warn("external change during manipulation", "node", n.Name, "id", id)
			e.Cancel()
		}
		n.SetTransform(t)
		if err := e.proxy.SyncFromNodes(); err != nil {
			logger().Warn("absorb external change", "node", n.Name, "error", err)
		}
		return
	}
	n.SetTransform(t)
	e.refreshHandlers()
}

// --- Frame loop ---

// Update advances the camera, processes input and keyboard shortcuts, and
// fades the overlay. Call once per ebiten tick.
func (e *Editor) Update() {
	dt := float32(1.0 / float64(ebiten.TPS()))

	if e.testRunner != nil {
		e.testRunner.step(e)
	}
	if !ebiten.IsFocused() {
		e.Cancel()
	}
	if e.camera.Scrolling() {
		e.camera.update(dt)
		e.refreshHandlers()
	}
	e.processInput()
	e.processKeys()

	hot := e.pointer.hover
	if e.pointer.owner != nil {
		hot = e.pointer.owner
	}
	e.overlay.update(dt, hot, e.handlers, e.cfg.HoverFade)
}

// processKeys handles keyboard shortcuts: Escape clears the selection,
// arrows nudge it (Shift for the large step) and F focuses the camera on it.
func (e *Editor) processKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		e.Cancel()
		if err := e.proxy.Unselect(); err != nil {
			logger().Warn("unselect", "error", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		e.FocusSelection()
	}

	step := e.cfg.NudgeStep
	if readModifiers()&ModShift != 0 {
		step = e.cfg.NudgeStepLarge
	}
	var dx, dy float64
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		dx -= step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		dx += step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		dy -= step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		dy += step
	}
	if dx != 0 || dy != 0 {
		e.translate.Nudge(dx, dy)
	}
}

// Cancel ends a manipulation in progress, as when the window loses focus.
// The proxy keeps the last committed transform.
func (e *Editor) Cancel() {
	if owner, ok := e.session.Owner().(Handler); ok && e.proxy.ownsHandler(owner) {
		owner.PointerUp(PointerEvent{})
	}
	e.pointer.owner = nil
}

// Draw renders the selection overlay onto screen. Scene content is drawn
// by the host.
func (e *Editor) Draw(screen *ebiten.Image) {
	e.overlay.draw(screen, e)
}

// SetViewport sets the screen rectangle the editor covers and centers the
// camera so world and screen coordinates coincide at zoom 1.
func (e *Editor) SetViewport(r Rect) {
	e.camera.Viewport = r
	e.camera.X = r.X + r.Width/2
	e.camera.Y = r.Y + r.Height/2
	e.camera.MarkDirty()
	e.refreshHandlers()
}

// FocusSelection scrolls the camera to the center of the selection.
func (e *Editor) FocusSelection() {
	if !e.proxy.Interactive() {
		return
	}
	var center Vec2
	for _, c := range e.proxy.WorldCorners() {
		center.X += c.X / 4
		center.Y += c.Y / 4
	}
	e.camera.ScrollTo(center.X, center.Y, e.cfg.FocusDuration, ease.OutQuad)
	if !e.camera.Scrolling() {
		e.refreshHandlers()
	}
}

// refreshHandlers re-reads hit areas after the view changed.
func (e *Editor) refreshHandlers() {
	for _, h := range e.handlers {
		h.Refresh()
	}
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics and tree depth and child count warnings are logged.
func (e *Editor) SetDebugMode(enabled bool) {
	e.debug = enabled
	globalDebug = enabled
}

// Close detaches every handler and stops listening to the store. The
// selection is released first.
func (e *Editor) Close() error {
	e.Cancel()
	var err error
	if e.proxy.Len() > 0 {
		if uerr := e.proxy.Unselect(); uerr != nil {
			err = fmt.Errorf("gizmo: close editor: %w", uerr)
		}
	}
	for _, h := range e.handlers {
		h.Detach()
	}
	e.handlers = nil
	for _, s := range e.subs {
		s.Remove()
	}
	e.subs = nil
	if e.storeSub != nil {
		e.storeSub.Remove()
		e.storeSub = nil
	}
	return err
}
