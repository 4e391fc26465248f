package gizmo

import (
	"fmt"
	"math"
)

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// degenerateEpsilon is the smallest scale magnitude accepted by decomposition.
const degenerateEpsilon = 1e-12

// Transform is the decomposed placement of a node relative to its parent.
// Rotation and Skew are in radians.
type Transform struct {
	Position Vec2
	Scale    Vec2
	Rotation float64
	Skew     Vec2
	Pivot    Vec2
}

// IdentityTransform returns a Transform with unit scale and everything else zero.
func IdentityTransform() Transform {
	return Transform{Scale: Vec2{1, 1}}
}

// Matrix returns the local affine matrix [a, b, c, d, tx, ty].
func (t Transform) Matrix() [6]float64 {
	return computeLocalTransform(t)
}

// validate rejects transforms that cannot be decomposed again later.
func (t Transform) validate() error {
	if !t.Position.finite() || !t.Scale.finite() || !t.Skew.finite() || !t.Pivot.finite() || !isFinite(t.Rotation) {
		return fmt.Errorf("gizmo: non-finite transform %+v: %w", t, ErrDegenerateTransform)
	}
	if math.Abs(t.Scale.X) < degenerateEpsilon || math.Abs(t.Scale.Y) < degenerateEpsilon {
		return fmt.Errorf("gizmo: zero scale axis %+v: %w", t.Scale, ErrDegenerateTransform)
	}
	if !isFinite(math.Tan(t.Skew.X)) || !isFinite(math.Tan(t.Skew.Y)) {
		return fmt.Errorf("gizmo: skew %+v out of range: %w", t.Skew, ErrDegenerateTransform)
	}
	return nil
}

// computeLocalTransform computes the local affine matrix from the transform
// properties. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-Pivot) -> Scale -> Skew -> Rotate -> Translate(Position)
func computeLocalTransform(t Transform) [6]float64 {
	sx := t.Scale.X
	sy := t.Scale.Y

	sin, cos := math.Sincos(t.Rotation)

	var tanSkewX, tanSkewY float64
	if t.Skew.X != 0 {
		tanSkewX = math.Tan(t.Skew.X)
	}
	if t.Skew.Y != 0 {
		tanSkewY = math.Tan(t.Skew.Y)
	}

	// After Skew * Scale:
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := t.Pivot.X
	py := t.Pivot.Y
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	// After Rotate:
	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// After Translate(Position):
	return [6]float64{ra, rb, rc, rd, rtx + t.Position.X, rty + t.Position.Y}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m [6]float64) [6]float64 {
	inv, ok := tryInvertAffine(m)
	if !ok {
		return identityTransform
	}
	return inv
}

// tryInvertAffine is invertAffine that reports singular input instead of
// falling back to identity.
func tryInvertAffine(m [6]float64) ([6]float64, bool) {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 || !isFinite(det) {
		return identityTransform, false
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, true
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformVec is transformPoint for Vec2 values.
func transformVec(m [6]float64, v Vec2) Vec2 {
	x, y := transformPoint(m, v.X, v.Y)
	return Vec2{x, y}
}

// decomposeAffine splits the linear part of m into rotation, scale and skew.
// Rotation is the angle of the first column and Skew.Y is always zero; the
// shear of the second column measured in the rotated frame becomes Skew.X.
// A reflection shows up as a negative Scale.Y.
func decomposeAffine(m [6]float64) (rotation float64, scale, skew Vec2, err error) {
	a, b, c, d := m[0], m[1], m[2], m[3]
	sx := math.Hypot(a, b)
	if !isFinite(sx) || sx < degenerateEpsilon {
		return 0, Vec2{}, Vec2{}, fmt.Errorf("gizmo: decompose %v: x axis collapsed: %w", m, ErrDegenerateTransform)
	}
	rotation = math.Atan2(b, a)
	sin, cos := math.Sincos(rotation)
	u := cos*c + sin*d
	v := -sin*c + cos*d
	if !isFinite(v) || math.Abs(v) < degenerateEpsilon {
		return 0, Vec2{}, Vec2{}, fmt.Errorf("gizmo: decompose %v: y axis collapsed: %w", m, ErrDegenerateTransform)
	}
	return rotation, Vec2{sx, v}, Vec2{math.Atan(u / v), 0}, nil
}

// transformUnder returns the Transform that places a node whose world matrix
// is world under a parent whose world matrix is parentWorld. The pivot is
// kept; position is the pivot mapped through the resulting local matrix.
func transformUnder(world [6]float64, pivot Vec2, parentWorld [6]float64) (Transform, error) {
	inv, ok := tryInvertAffine(parentWorld)
	if !ok {
		return Transform{}, fmt.Errorf("gizmo: parent matrix %v is singular: %w", parentWorld, ErrDegenerateTransform)
	}
	local := multiplyAffine(inv, world)
	rotation, scale, skew, err := decomposeAffine(local)
	if err != nil {
		return Transform{}, err
	}
	return Transform{
		Position: transformVec(local, pivot),
		Scale:    scale,
		Rotation: rotation,
		Skew:     skew,
		Pivot:    pivot,
	}, nil
}

// updateWorldTransform recomputes a node's worldTransform for the whole subtree.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parentTransform [6]float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = multiplyAffine(parentTransform, computeLocalTransform(n.Transform()))
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, recompute)
	}
}

// --- Transform property setters ---

// Transform returns the node's local transform properties.
func (n *Node) Transform() Transform {
	return Transform{
		Position: Vec2{n.X, n.Y},
		Scale:    Vec2{n.ScaleX, n.ScaleY},
		Rotation: n.Rotation,
		Skew:     Vec2{n.SkewX, n.SkewY},
		Pivot:    Vec2{n.PivotX, n.PivotY},
	}
}

// SetTransform replaces all local transform properties and marks the
// subtree dirty.
func (n *Node) SetTransform(t Transform) {
	n.X, n.Y = t.Position.X, t.Position.Y
	n.ScaleX, n.ScaleY = t.Scale.X, t.Scale.Y
	n.Rotation = t.Rotation
	n.SkewX, n.SkewY = t.Skew.X, t.Skew.Y
	n.PivotX, n.PivotY = t.Pivot.X, t.Pivot.Y
	markSubtreeDirty(n)
}

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	markSubtreeDirty(n)
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	markSubtreeDirty(n)
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	markSubtreeDirty(n)
}

// SetSkew sets the node's SkewX and SkewY and marks it dirty.
func (n *Node) SetSkew(sx, sy float64) {
	n.SkewX = sx
	n.SkewY = sy
	markSubtreeDirty(n)
}

// SetPivot sets the node's PivotX and PivotY and marks it dirty.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX = px
	n.PivotY = py
	markSubtreeDirty(n)
}

// MarkDirty marks the node's transform and its descendants as dirty.
// Required after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	markSubtreeDirty(n)
}

// LocalTransform returns the node's local affine matrix.
func (n *Node) LocalTransform() [6]float64 {
	return computeLocalTransform(n.Transform())
}

// WorldTransform returns the node's world matrix, recomputing it through the
// parent chain when any ancestor changed since the last call.
func (n *Node) WorldTransform() [6]float64 {
	if n.transformDirty {
		local := computeLocalTransform(n.Transform())
		if n.Parent != nil {
			n.worldTransform = multiplyAffine(n.Parent.WorldTransform(), local)
		} else {
			n.worldTransform = local
		}
		n.transformDirty = false
	}
	return n.worldTransform
}

// parentWorld returns the parent's world matrix, or identity for a root.
func (n *Node) parentWorld() [6]float64 {
	if n.Parent == nil {
		return identityTransform
	}
	return n.Parent.WorldTransform()
}

// --- Coordinate conversion ---

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv := invertAffine(n.WorldTransform())
	return transformPoint(inv, wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.WorldTransform(), lx, ly)
}

// WorldToParent converts a world-space point to the coordinate space of this
// node's parent (world space for a root).
func (n *Node) WorldToParent(wx, wy float64) (px, py float64) {
	inv := invertAffine(n.parentWorld())
	return transformPoint(inv, wx, wy)
}

// ParentToLocal converts a point in the parent's coordinate space to this
// node's local space.
func (n *Node) ParentToLocal(px, py float64) (lx, ly float64) {
	inv := invertAffine(n.LocalTransform())
	return transformPoint(inv, px, py)
}
