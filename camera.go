package gizmo

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera controls the editor's view into the scene: position, zoom,
// rotation and viewport. Handlers hit-test in screen space through it.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	// MinZoom and MaxZoom clamp ZoomAt. Zero disables the bound.
	MinZoom, MaxZoom float64

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	scrollTween *scrollAnim
}

// NewCamera creates a Camera centered on the viewport's middle at zoom 1,
// so world and screen coordinates coincide until the camera moves.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		X:        viewport.X + viewport.Width/2,
		Y:        viewport.Y + viewport.Height/2,
		Zoom:     1.0,
		Viewport: viewport,
		dirty:    true,
	}
}

// ScrollTo animates the camera to the given world position over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if duration <= 0 {
		c.X, c.Y = x, y
		c.scrollTween = nil
		c.dirty = true
		return
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// Pan moves the camera by a screen-space delta, as when dragging the canvas.
func (c *Camera) Pan(dsx, dsy float64) {
	c.scrollTween = nil
	sin, cos := math.Sincos(c.Rotation)
	dx := (cos*dsx - sin*dsy) / c.Zoom
	dy := (sin*dsx + cos*dsy) / c.Zoom
	c.X -= dx
	c.Y -= dy
	c.dirty = true
}

// ZoomAt multiplies the zoom by factor while keeping the world point under
// screen position (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float64) {
	if factor <= 0 || !isFinite(factor) {
		return
	}
	wx, wy := c.ScreenToWorld(sx, sy)
	z := c.Zoom * factor
	if c.MinZoom > 0 {
		z = math.Max(z, c.MinZoom)
	}
	if c.MaxZoom > 0 {
		z = math.Min(z, c.MaxZoom)
	}
	c.Zoom = z
	c.dirty = true
	// Shift so (wx, wy) lands back under the cursor.
	nx, ny := c.WorldToScreen(wx, wy)
	c.Pan(sx-nx, sy-ny)
}

// update advances the scroll animation. Called from Editor.Update().
func (c *Camera) update(dt float32) {
	prevX, prevY := c.X, c.Y

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.X != prevX || c.Y != prevY {
		c.dirty = true
	}
}

// computeViewMatrix recomputes the cached view matrix if dirty.
//
// viewMatrix = Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
// where cx, cy = viewport center.
func (c *Camera) computeViewMatrix() [6]float64 {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2

	sin, cos := math.Sincos(-c.Rotation)
	z := c.Zoom

	a := z * cos
	b := -z * sin
	cc := z * sin
	d := z * cos
	tx := cx + z*(-cos*c.X+sin*c.Y)
	ty := cy + z*(-sin*c.X-cos*c.Y)

	c.viewMatrix = [6]float64{a, cc, b, d, tx, ty}
	c.invViewMatrix = invertAffine(c.viewMatrix)
	return c.viewMatrix
}

// ViewMatrix returns the world-to-screen matrix.
func (c *Camera) ViewMatrix() [6]float64 {
	if c == nil {
		return identityTransform
	}
	return c.computeViewMatrix()
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	c.computeViewMatrix()
	sx, sy = transformPoint(c.viewMatrix, wx, wy)
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.computeViewMatrix()
	wx, wy = transformPoint(c.invViewMatrix, sx, sy)
	return
}

// worldToScreen is WorldToScreen for Vec2. A nil camera is the identity view.
func (c *Camera) worldToScreen(v Vec2) Vec2 {
	if c == nil {
		return v
	}
	x, y := c.WorldToScreen(v.X, v.Y)
	return Vec2{x, y}
}

// screenToWorld is ScreenToWorld for Vec2. A nil camera is the identity view.
func (c *Camera) screenToWorld(v Vec2) Vec2 {
	if c == nil {
		return v
	}
	x, y := c.ScreenToWorld(v.X, v.Y)
	return Vec2{x, y}
}

// VisibleBounds returns the axis-aligned bounding rect of the camera's visible
// area in world space.
func (c *Camera) VisibleBounds() Rect {
	c.computeViewMatrix()
	return transformRectBounds(c.invViewMatrix, c.Viewport)
}

// MarkDirty forces a recomputation of the view matrix.
func (c *Camera) MarkDirty() {
	c.dirty = true
}
