package gizmo

// ComponentMask names which transform components a node carries.
type ComponentMask uint8

const (
	CompPosition ComponentMask = 1 << iota // Position component
	CompScale                              // Scale component
	CompRotation                           // Rotation component
	CompSkew                               // Skew component
	CompPivot                              // Pivot component

	// CompAll is every transform component.
	CompAll = CompPosition | CompScale | CompRotation | CompSkew | CompPivot
)

// Has reports whether every component in other is present in m.
func (m ComponentMask) Has(other ComponentMask) bool {
	return m&other == other
}

// TransformComponents is the component-store representation of a node's
// transform. Only the fields named by Mask are meaningful.
type TransformComponents struct {
	Mask     ComponentMask
	Position Vec2
	Scale    Vec2
	Rotation float64
	Skew     Vec2
	Pivot    Vec2
}

// ComponentsFromTransform returns the components of t restricted to mask.
func ComponentsFromTransform(t Transform, mask ComponentMask) TransformComponents {
	c := TransformComponents{Mask: mask}
	if mask.Has(CompPosition) {
		c.Position = t.Position
	}
	if mask.Has(CompScale) {
		c.Scale = t.Scale
	}
	if mask.Has(CompRotation) {
		c.Rotation = t.Rotation
	}
	if mask.Has(CompSkew) {
		c.Skew = t.Skew
	}
	if mask.Has(CompPivot) {
		c.Pivot = t.Pivot
	}
	return c
}

// Apply returns t with every component present in c overwritten.
func (c TransformComponents) Apply(t Transform) Transform {
	if c.Mask.Has(CompPosition) {
		t.Position = c.Position
	}
	if c.Mask.Has(CompScale) {
		t.Scale = c.Scale
	}
	if c.Mask.Has(CompRotation) {
		t.Rotation = c.Rotation
	}
	if c.Mask.Has(CompSkew) {
		t.Skew = c.Skew
	}
	if c.Mask.Has(CompPivot) {
		t.Pivot = c.Pivot
	}
	return t
}

// ComponentStore is the declarative entity/component store the editor keeps
// in sync with its nodes. Node IDs are the keys.
//
// SetTransformComponents is called after every manipulation commit and every
// reparent; implementations must not report those writes back through
// OnChange. Edits made elsewhere (inspector panels, scripts) are reported
// through OnChange and absorbed by the editor.
type ComponentStore interface {
	TransformComponents(nodeID uint32) (TransformComponents, bool)
	SetTransformComponents(nodeID uint32, c TransformComponents)
	OnChange(fn func(nodeID uint32)) Subscription
}

// MapStore is an in-memory ComponentStore. Writes through
// SetTransformComponents only touch components a node already has.
type MapStore struct {
	values   map[uint32]TransformComponents
	onChange callbackList[uint32]
}

// NewMapStore returns an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{values: make(map[uint32]TransformComponents)}
}

// Add registers a node's components. The mask in c decides which
// components exist for the node from now on.
func (s *MapStore) Add(nodeID uint32, c TransformComponents) {
	s.values[nodeID] = c
}

// Remove forgets a node.
func (s *MapStore) Remove(nodeID uint32) {
	delete(s.values, nodeID)
}

// TransformComponents returns the stored components of a node.
func (s *MapStore) TransformComponents(nodeID uint32) (TransformComponents, bool) {
	c, ok := s.values[nodeID]
	return c, ok
}

// SetTransformComponents overwrites the components of a node that are both
// present in c and already carried by the node. Unknown nodes are ignored.
func (s *MapStore) SetTransformComponents(nodeID uint32, c TransformComponents) {
	cur, ok := s.values[nodeID]
	if !ok {
		return
	}
	c.Mask &= cur.Mask
	s.values[nodeID] = mergeComponents(cur, c)
}

// Edit changes components as an external editor would and notifies
// OnChange subscribers.
func (s *MapStore) Edit(nodeID uint32, c TransformComponents) {
	if _, ok := s.values[nodeID]; !ok {
		return
	}
	s.SetTransformComponents(nodeID, c)
	s.onChange.fire(nodeID)
}

// OnChange registers fn for external edits.
func (s *MapStore) OnChange(fn func(nodeID uint32)) Subscription {
	return s.onChange.add(fn)
}

// mergeComponents overwrites the fields of dst named by src.Mask, keeping
// dst.Mask.
func mergeComponents(dst, src TransformComponents) TransformComponents {
	if src.Mask.Has(CompPosition) {
		dst.Position = src.Position
	}
	if src.Mask.Has(CompScale) {
		dst.Scale = src.Scale
	}
	if src.Mask.Has(CompRotation) {
		dst.Rotation = src.Rotation
	}
	if src.Mask.Has(CompSkew) {
		dst.Skew = src.Skew
	}
	if src.Mask.Has(CompPivot) {
		dst.Pivot = src.Pivot
	}
	return dst
}
