package gizmo

// Axis flags which scale axes an anchor drives.
type Axis uint8

const (
	AxisHorizontal Axis = 1 << iota // drives Scale.X
	AxisVertical                    // drives Scale.Y
)

// Direction flags which side of the bounds an anchor sits on.
type Direction uint8

const (
	DirLeft Direction = 1 << iota
	DirRight
	DirUp
	DirDown
)

// Anchor is one of the eight resize grips on the selection bounds. Corners
// carry both axis flags, edge midpoints carry one.
type Anchor struct {
	Axis Axis
	Dir  Direction
}

var (
	AnchorTopLeft     = Anchor{AxisHorizontal | AxisVertical, DirLeft | DirUp}
	AnchorTop         = Anchor{AxisVertical, DirUp}
	AnchorTopRight    = Anchor{AxisHorizontal | AxisVertical, DirRight | DirUp}
	AnchorRight       = Anchor{AxisHorizontal, DirRight}
	AnchorBottomRight = Anchor{AxisHorizontal | AxisVertical, DirRight | DirDown}
	AnchorBottom      = Anchor{AxisVertical, DirDown}
	AnchorBottomLeft  = Anchor{AxisHorizontal | AxisVertical, DirLeft | DirDown}
	AnchorLeft        = Anchor{AxisHorizontal, DirLeft}
)

// Anchors returns the eight canonical anchors clockwise from the top-left.
func Anchors() [8]Anchor {
	return [8]Anchor{
		AnchorTopLeft, AnchorTop, AnchorTopRight, AnchorRight,
		AnchorBottomRight, AnchorBottom, AnchorBottomLeft, AnchorLeft,
	}
}

// IsCorner reports whether the anchor drives both axes.
func (a Anchor) IsCorner() bool {
	return a.Axis == AxisHorizontal|AxisVertical
}

// sign returns -1, 0 or +1 per axis: left/up are negative, right/down positive.
func (a Anchor) sign() (sx, sy float64) {
	switch {
	case a.Dir&DirLeft != 0:
		sx = -1
	case a.Dir&DirRight != 0:
		sx = 1
	}
	switch {
	case a.Dir&DirUp != 0:
		sy = -1
	case a.Dir&DirDown != 0:
		sy = 1
	}
	return sx, sy
}

// Opposite returns the anchor mirrored through the bounds center.
func (a Anchor) Opposite() Anchor {
	var d Direction
	if a.Dir&DirLeft != 0 {
		d |= DirRight
	}
	if a.Dir&DirRight != 0 {
		d |= DirLeft
	}
	if a.Dir&DirUp != 0 {
		d |= DirDown
	}
	if a.Dir&DirDown != 0 {
		d |= DirUp
	}
	return Anchor{Axis: a.Axis, Dir: d}
}

// Point returns the anchor's position on r.
func (a Anchor) Point(r Rect) Vec2 {
	sx, sy := a.sign()
	return Vec2{r.X + r.Width*(sx+1)/2, r.Y + r.Height*(sy+1)/2}
}

// String returns a short name such as "top-left".
func (a Anchor) String() string {
	var v, h string
	switch {
	case a.Dir&DirUp != 0:
		v = "top"
	case a.Dir&DirDown != 0:
		v = "bottom"
	}
	switch {
	case a.Dir&DirLeft != 0:
		h = "left"
	case a.Dir&DirRight != 0:
		h = "right"
	}
	switch {
	case v != "" && h != "":
		return v + "-" + h
	case v != "":
		return v
	case h != "":
		return h
	default:
		return "none"
	}
}

// boundsPoints returns the nine snap points of r: corners, edge midpoints
// and the center.
func boundsPoints(r Rect) [9]Vec2 {
	var pts [9]Vec2
	for i, a := range Anchors() {
		pts[i] = a.Point(r)
	}
	pts[8] = r.Center()
	return pts
}
