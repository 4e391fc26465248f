package gizmo

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// worldMatchEpsilon is the per-element tolerance used to decide whether a
// member moved since its rest transform was last derived.
const worldMatchEpsilon = 1e-9

// member is one selected node plus the placement it returns to on release.
type member struct {
	node   *Node
	parent *Node
	index  int

	// rest is the node's transform in parent's space; world is the node's
	// world matrix at the moment rest was derived.
	rest  Transform
	world [6]float64
}

// SelectionProxy aggregates the selected nodes into one manipulable object.
//
// Selected nodes are reparented under the proxy node without changing their
// world placement. With a single member the proxy's transform is a verbatim
// copy of that member's transform and the member sits under it with an
// identity matrix. With several members the proxy sits under their common
// parent (or the stage when they differ) with an identity matrix whose pivot
// is the center of the members' combined bounds.
type SelectionProxy struct {
	node    *Node
	stage   *Node
	session *HandlingSession
	store   ComponentStore

	members  []member
	handlers []Handler

	onSelected   callbackList[[]*Node]
	onUnselected callbackList[[]*Node]
	onUpdated    callbackList[*SelectionProxy]
}

// NewSelectionProxy creates an empty proxy. stage is the parent used when
// the selected nodes do not share a parent. store may be nil.
func NewSelectionProxy(stage *Node, session *HandlingSession, store ComponentStore) *SelectionProxy {
	if session == nil {
		session = NewHandlingSession()
	}
	node := NewContainer("selection")
	return &SelectionProxy{
		node:    node,
		stage:   stage,
		session: session,
		store:   store,
	}
}

// --- Accessors ---

// Node returns the proxy node. It is attached to the scene only while the
// selection is not empty.
func (p *SelectionProxy) Node() *Node {
	return p.node
}

// Session returns the handling session guarding this proxy.
func (p *SelectionProxy) Session() *HandlingSession {
	return p.session
}

// Interactive reports whether the proxy has members and can be manipulated.
func (p *SelectionProxy) Interactive() bool {
	return len(p.members) > 0
}

// Len returns the number of selected nodes.
func (p *SelectionProxy) Len() int {
	return len(p.members)
}

// Nodes returns the selected nodes in selection order.
func (p *SelectionProxy) Nodes() []*Node {
	nodes := make([]*Node, len(p.members))
	for i := range p.members {
		nodes[i] = p.members[i].node
	}
	return nodes
}

// Contains reports whether n is selected.
func (p *SelectionProxy) Contains(n *Node) bool {
	return p.memberIndex(n) >= 0
}

func (p *SelectionProxy) memberIndex(n *Node) int {
	for i := range p.members {
		if p.members[i].node == n {
			return i
		}
	}
	return -1
}

// Transform returns the proxy's local transform.
func (p *SelectionProxy) Transform() Transform {
	return p.node.Transform()
}

// Bounds returns the selection's bounds in the proxy's local space.
func (p *SelectionProxy) Bounds() Rect {
	return p.node.LocalBounds()
}

// WorldCorners returns the corners of Bounds in world space (TL, TR, BR, BL).
func (p *SelectionProxy) WorldCorners() [4]Vec2 {
	return p.node.WorldQuad()
}

// WorldPivot returns the pivot's world position.
func (p *SelectionProxy) WorldPivot() Vec2 {
	t := p.node.Transform()
	x, y := p.node.LocalToWorld(t.Pivot.X, t.Pivot.Y)
	return Vec2{x, y}
}

// parentWorld returns the world matrix of the proxy's parent space.
func (p *SelectionProxy) parentWorld() [6]float64 {
	return p.node.parentWorld()
}

// --- Notifications ---

// OnSelected registers fn to receive the nodes added by each Select.
func (p *SelectionProxy) OnSelected(fn func(nodes []*Node)) CallbackHandle {
	return p.onSelected.add(fn)
}

// OnUnselected registers fn to receive the nodes removed by each Unselect.
func (p *SelectionProxy) OnUnselected(fn func(nodes []*Node)) CallbackHandle {
	return p.onUnselected.add(fn)
}

// OnUpdated registers fn to run whenever the proxy's transform, bounds or
// membership changed.
func (p *SelectionProxy) OnUpdated(fn func(p *SelectionProxy)) CallbackHandle {
	return p.onUpdated.add(fn)
}

// --- Selection ---

// Select adds nodes to the selection. Nodes that are already selected are
// skipped with a warning, as are nodes nested inside (or containing) a
// selected node. Every node must be attached to a parent.
func (p *SelectionProxy) Select(nodes ...*Node) error {
	var added []*Node
	for _, n := range nodes {
		if n == nil || n == p.node || n == p.stage {
			continue
		}
		if p.Contains(n) || slices.Contains(added, n) {
			logger().Warn("node already selected", "node", n.Name, "id", n.ID)
			continue
		}
		if p.nestedWith(n, added) {
			logger().Warn("node nested with a selected node", "node", n.Name, "id", n.ID)
			continue
		}
		if n.Parent == nil {
			return fmt.Errorf("gizmo: select %q: %w", n.Name, ErrNotInScene)
		}
		added = append(added, n)
	}
	if len(added) == 0 {
		return nil
	}
	if err := p.endOwnedSession(); err != nil {
		return err
	}

	old := slices.Clone(p.members)
	if err := p.release(); err != nil {
		return err
	}
	for _, n := range added {
		p.members = append(p.members, member{node: n})
	}
	if err := p.capture(); err != nil {
		p.members = old
		if rerr := p.capture(); rerr != nil {
			logger().Error("restore selection", "error", rerr)
		}
		return err
	}
	p.onSelected.fire(added)
	p.onUpdated.fire(p)
	return nil
}

// Unselect removes nodes from the selection; with no arguments it clears
// the selection. An active session owned by one of this proxy's handlers is
// ended first. Nodes that are not selected are skipped with a warning.
func (p *SelectionProxy) Unselect(nodes ...*Node) error {
	if len(nodes) == 0 {
		nodes = p.Nodes()
	}
	var removed []*Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !p.Contains(n) {
			logger().Warn("node not selected", "node", n.Name, "id", n.ID)
			continue
		}
		if !slices.Contains(removed, n) {
			removed = append(removed, n)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	if err := p.endOwnedSession(); err != nil {
		return err
	}
	if err := p.release(); err != nil {
		return err
	}
	p.members = slices.DeleteFunc(p.members, func(m member) bool {
		return slices.Contains(removed, m.node)
	})
	if err := p.capture(); err != nil {
		p.abandon(removed)
		return err
	}
	p.onUnselected.fire(removed)
	p.onUpdated.fire(p)
	return nil
}

// nestedWith reports whether n is an ancestor or descendant of a selected
// node or of one of the pending nodes.
func (p *SelectionProxy) nestedWith(n *Node, pending []*Node) bool {
	for i := range p.members {
		m := &p.members[i]
		if isAncestor(n, m.node) || isAncestor(n, m.parent) || isAncestor(m.node, n) {
			return true
		}
	}
	for _, o := range pending {
		if isAncestor(n, o) || isAncestor(o, n) {
			return true
		}
	}
	return false
}

// --- Synchronization ---

// SyncFromNodes re-derives the proxy from its members. Components held by
// the store override the members' current transforms; components a node
// does not carry keep their current values. A single member is copied into
// the proxy verbatim; several members get a fresh pivot and bounds.
func (p *SelectionProxy) SyncFromNodes() error {
	if len(p.members) == 0 {
		return nil
	}
	if err := p.endOwnedSession(); err != nil {
		return err
	}
	if err := p.release(); err != nil {
		return err
	}
	if p.store != nil {
		for i := range p.members {
			m := &p.members[i]
			c, ok := p.store.TransformComponents(m.node.ID)
			if !ok {
				continue
			}
			t := c.Apply(m.node.Transform())
			if err := t.validate(); err != nil {
				logger().Warn("ignoring invalid stored transform", "node", m.node.Name, "error", err)
				continue
			}
			m.node.SetTransform(t)
		}
	}
	if err := p.capture(); err != nil {
		p.abandon(nil)
		return err
	}
	p.onUpdated.fire(p)
	return nil
}

// abandon drops the remaining members after a failed capture. They are
// already back under their own parents.
func (p *SelectionProxy) abandon(removed []*Node) {
	removed = append(removed, p.Nodes()...)
	p.members = nil
	logger().Warn("selection dropped after failed capture", "nodes", len(removed))
	p.onUnselected.fire(removed)
	p.onUpdated.fire(p)
}

// SyncToNodes derives every member's transform in its own parent's space
// from the proxy's current placement and writes it to the store. Nothing is
// written if any member's matrix cannot be decomposed.
func (p *SelectionProxy) SyncToNodes() error {
	if len(p.members) == 0 {
		return nil
	}
	rests := make([]Transform, len(p.members))
	for i := range p.members {
		t, err := p.restFor(&p.members[i])
		if err != nil {
			return err
		}
		rests[i] = t
	}
	for i := range p.members {
		m := &p.members[i]
		m.rest = rests[i]
		m.world = m.node.WorldTransform()
		if p.store != nil {
			p.store.SetTransformComponents(m.node.ID, ComponentsFromTransform(m.rest, CompAll))
		}
	}
	p.onUpdated.fire(p)
	return nil
}

// SetTransform replaces the proxy's transform without touching the store.
func (p *SelectionProxy) SetTransform(t Transform) error {
	if err := t.validate(); err != nil {
		return err
	}
	p.node.SetTransform(t)
	return nil
}

// Commit replaces the proxy's transform and pushes the result to the
// members. On failure the previous transform is restored.
func (p *SelectionProxy) Commit(t Transform) error {
	if len(p.members) == 0 {
		return nil
	}
	prev := p.node.Transform()
	if err := p.SetTransform(t); err != nil {
		return err
	}
	if err := p.SyncToNodes(); err != nil {
		p.node.SetTransform(prev)
		return err
	}
	return nil
}

// restFor returns a member's transform in its original parent's space.
func (p *SelectionProxy) restFor(m *member) (Transform, error) {
	if len(p.members) == 1 {
		return p.node.Transform(), nil
	}
	world := m.node.WorldTransform()
	if matrixNear(world, m.world, worldMatchEpsilon) {
		return m.rest, nil
	}
	return transformUnder(world, m.node.Transform().Pivot, m.parent.WorldTransform())
}

// release returns every member to its original parent and child index and
// detaches the proxy node. Members keep their records.
func (p *SelectionProxy) release() error {
	if len(p.members) == 0 {
		return nil
	}
	rests := make([]Transform, len(p.members))
	for i := range p.members {
		t, err := p.restFor(&p.members[i])
		if err != nil {
			return err
		}
		rests[i] = t
	}

	// Re-insert in ascending index order so every recorded index is valid.
	order := make([]int, len(p.members))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.members[order[a]].index < p.members[order[b]].index
	})
	for _, i := range order {
		m := &p.members[i]
		m.parent.AddChildAt(m.node, m.index)
		m.node.SetTransform(rests[i])
		m.rest = rests[i]
	}
	p.node.RemoveFromParent()
	p.node.SetTransform(IdentityTransform())
	return nil
}

// capture records every member's current placement and moves the members
// under the proxy node. Nothing changes when a member's matrix cannot be
// expressed under the proxy.
func (p *SelectionProxy) capture() error {
	if len(p.members) == 0 {
		return nil
	}
	for i := range p.members {
		m := &p.members[i]
		m.parent = m.node.Parent
		m.index = m.parent.ChildIndex(m.node)
		m.rest = m.node.Transform()
		m.world = m.node.WorldTransform()
	}

	if len(p.members) == 1 {
		m := &p.members[0]
		t := m.rest
		m.parent.AddChildAt(p.node, m.index)
		p.node.SetTransform(t)
		p.node.AddChild(m.node)
		m.node.SetTransform(Transform{Position: t.Pivot, Scale: Vec2{1, 1}, Pivot: t.Pivot})
		return nil
	}

	parent := p.commonParent()
	parentWorld := parent.WorldTransform()
	invParent, ok := tryInvertAffine(parentWorld)
	if !ok {
		return fmt.Errorf("gizmo: selection parent %q is singular: %w", parent.Name, ErrDegenerateTransform)
	}

	var bounds Rect
	var origin Vec2
	for i := range p.members {
		m := &p.members[i]
		rel := multiplyAffine(invParent, m.world)
		bounds = bounds.Union(transformRectBounds(rel, m.node.LocalBounds()))
		o := transformVec(rel, Vec2{})
		origin.X += o.X / float64(len(p.members))
		origin.Y += o.Y / float64(len(p.members))
	}
	center := origin
	if !bounds.IsEmpty() {
		center = bounds.Center()
	}
	proxyT := Transform{Position: center, Scale: Vec2{1, 1}, Pivot: center}
	proxyWorld := multiplyAffine(parentWorld, proxyT.Matrix())

	locals := make([]Transform, len(p.members))
	for i := range p.members {
		m := &p.members[i]
		t, err := transformUnder(m.world, m.rest.Pivot, proxyWorld)
		if err != nil {
			return fmt.Errorf("gizmo: capture %q: %w", m.node.Name, err)
		}
		locals[i] = t
	}

	parent.AddChild(p.node)
	p.node.SetTransform(proxyT)
	for i := range p.members {
		p.node.AddChild(p.members[i].node)
		p.members[i].node.SetTransform(locals[i])
	}
	return nil
}

// commonParent returns the parent shared by all members, or the stage.
func (p *SelectionProxy) commonParent() *Node {
	parent := p.members[0].parent
	for i := 1; i < len(p.members); i++ {
		if p.members[i].parent != parent {
			if p.stage != nil {
				return p.stage
			}
			return rootOf(parent)
		}
	}
	return parent
}

// rootOf returns the topmost ancestor of n.
func rootOf(n *Node) *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// hostedBy reports whether n is a member's original parent or one of its
// ancestors.
func (p *SelectionProxy) hostedBy(n *Node) bool {
	for i := range p.members {
		if n.IsAncestorOf(p.members[i].parent) {
			return true
		}
	}
	return false
}

// --- Handler ownership ---

func (p *SelectionProxy) addHandler(h Handler) {
	p.handlers = append(p.handlers, h)
}

func (p *SelectionProxy) removeHandler(h Handler) {
	p.handlers = slices.DeleteFunc(p.handlers, func(o Handler) bool { return o == h })
}

// ownsHandler reports whether owner is one of this proxy's handlers.
func (p *SelectionProxy) ownsHandler(owner any) bool {
	for _, h := range p.handlers {
		if any(h) == owner {
			return true
		}
	}
	return false
}

// endOwnedSession force-ends a session held by one of this proxy's handlers.
func (p *SelectionProxy) endOwnedSession() error {
	owner := p.session.Owner()
	if owner == nil || !p.ownsHandler(owner) {
		return nil
	}
	return p.session.End(owner)
}

// matrixNear reports whether every element of a and b differs by at most eps.
func matrixNear(a, b [6]float64, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
