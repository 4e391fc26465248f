package gizmo

// Reparent moves node under newParent while keeping its world matrix
// unchanged. The node's pivot is kept and its position, scale, rotation and
// skew are re-derived in the new parent's space. A nil newParent detaches
// the node and makes its local transform equal its old world placement.
//
// If the new local matrix cannot be decomposed the node is left untouched
// and an error wrapping ErrDegenerateTransform is returned.
func Reparent(node, newParent *Node) error {
	return ReparentAt(node, newParent, -1)
}

// ReparentAt is Reparent inserting the node at the given child index
// (-1 appends).
func ReparentAt(node, newParent *Node, index int) error {
	parentWorld := identityTransform
	if newParent != nil {
		parentWorld = newParent.WorldTransform()
	}
	t, err := transformUnder(node.WorldTransform(), node.Transform().Pivot, parentWorld)
	if err != nil {
		return err
	}
	if newParent == nil {
		node.RemoveFromParent()
	} else {
		newParent.AddChildAt(node, index)
	}
	node.SetTransform(t)
	logger().Debug("reparent", "node", node.Name, "id", node.ID, "parent", nodeName(newParent))
	return nil
}

// nodeName returns n.Name, tolerating nil.
func nodeName(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}
