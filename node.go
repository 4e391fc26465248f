package gizmo

import "math"

// nodeIDCounter is a plain counter; the editor is single-threaded.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the scene graph element manipulated by the editor. It carries a
// local transform, a cached world matrix and the local rectangle covered by
// its visual content.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy. Parent is a non-owning back-reference; children are owned.
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64

	// Computed
	worldTransform [6]float64
	transformDirty bool

	// Bounds is the local-space rectangle of the node's own visual content.
	// Containers leave it empty and report their children's bounds instead.
	Bounds Rect

	// Visibility & interaction
	Visible    bool
	Selectable bool

	// Metadata
	UserData any

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Visible = true
	n.transformDirty = true
}

// NewContainer creates a node with no visual content of its own.
func NewContainer(name string) *Node {
	n := &Node{Name: name}
	nodeDefaults(n)
	return n
}

// NewShape creates a selectable node whose visual content covers bounds.
func NewShape(name string, bounds Rect) *Node {
	n := &Node{Name: name, Bounds: bounds, Selectable: true}
	nodeDefaults(n)
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// The child's local transform is kept, so its world placement follows the
// new parent; use Reparent to keep the world placement instead.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.AddChildAt(child, -1)
}

// AddChildAt inserts child at the given index. An index of -1, or one past
// the last child, appends. Same reparenting and cycle-check behavior as
// AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("gizmo: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("gizmo: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(n.children) {
		index = len(n.children)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("gizmo: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildIndex returns the index of child among n's children, or -1.
func (n *Node) ChildIndex(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// IsAncestorOf reports whether n is node or one of its ancestors.
func (n *Node) IsAncestorOf(node *Node) bool {
	return isAncestor(n, node)
}

// --- Bounds ---

// LocalBounds returns the axis-aligned bounds of the node's content and all
// of its visible descendants, in the node's local space.
func (n *Node) LocalBounds() Rect {
	r := n.Bounds
	for _, child := range n.children {
		if !child.Visible {
			continue
		}
		r = r.Union(transformRectBounds(child.LocalTransform(), child.LocalBounds()))
	}
	return r
}

// WorldQuad returns the four corners of LocalBounds mapped to world space
// (TL, TR, BR, BL in local terms).
func (n *Node) WorldQuad() [4]Vec2 {
	m := n.WorldTransform()
	corners := n.LocalBounds().Corners()
	for i := range corners {
		corners[i] = transformVec(m, corners[i])
	}
	return corners
}

// transformRectBounds returns the axis-aligned bounds of r after applying m.
func transformRectBounds(m [6]float64, r Rect) Rect {
	if r.IsEmpty() {
		return Rect{}
	}
	corners := r.Corners()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := transformPoint(m, c.X, c.Y)
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
