package gizmo

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween/ease"
)

// Overlay colors.
var (
	overlayOutline = Color{0.25, 0.6, 1, 1}
	overlayHandle  = ColorWhite
	overlayHot     = Color{1, 0.75, 0.2, 1}
)

// overlay draws the selection outline and handler grips in screen space.
// Each handler's highlight fades in while it is hovered or dragged.
type overlay struct {
	fades map[Handler]*fade
}

func (o *overlay) fadeFor(h Handler) *fade {
	if o.fades == nil {
		o.fades = make(map[Handler]*fade)
	}
	f, ok := o.fades[h]
	if !ok {
		f = &fade{}
		o.fades[h] = f
	}
	return f
}

// update retargets every handler's highlight and advances the fades.
func (o *overlay) update(dt float32, hot Handler, handlers []Handler, duration float32) {
	for _, h := range handlers {
		f := o.fadeFor(h)
		target := 0.0
		if h == hot {
			target = 1
		}
		f.to(target, duration, ease.OutQuad)
		f.Update(dt)
	}
}

// level returns the current highlight of h in [0, 1].
func (o *overlay) level(h Handler) float64 {
	if f, ok := o.fades[h]; ok {
		return f.value
	}
	return 0
}

// draw renders the overlay for the editor's current selection.
func (o *overlay) draw(dst *ebiten.Image, e *Editor) {
	if !e.proxy.Interactive() {
		return
	}
	c := e.translate.screenCorners()
	outline := overlayOutline.toRGBA()
	for i := range c {
		a, b := c[i], c[(i+1)%len(c)]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, outline, true)
	}

	size := float32(e.cfg.HandleSize)
	for _, h := range e.handlers {
		fill := lerpColor(overlayHandle, overlayHot, o.level(h)).toRGBA()
		switch h := h.(type) {
		case *ResizeHandler:
			p := h.Center()
			x, y := float32(p.X)-size/2, float32(p.Y)-size/2
			vector.DrawFilledRect(dst, x, y, size, size, fill, false)
			vector.StrokeRect(dst, x, y, size, size, 1, outline, false)
		case *RotateHandler:
			k := h.Knob()
			top := Vec2{(c[0].X + c[1].X) / 2, (c[0].Y + c[1].Y) / 2}
			vector.StrokeLine(dst, float32(top.X), float32(top.Y), float32(k.X), float32(k.Y), 1, outline, true)
			vector.DrawFilledCircle(dst, float32(k.X), float32(k.Y), size/2, fill, true)
			vector.StrokeCircle(dst, float32(k.X), float32(k.Y), size/2, 1, outline, true)
		case *PivotHandler:
			p := h.Center()
			r := float32(e.cfg.PivotRadius)
			vector.StrokeCircle(dst, float32(p.X), float32(p.Y), r, 1.5, fill, true)
			vector.StrokeLine(dst, float32(p.X)-r, float32(p.Y), float32(p.X)+r, float32(p.Y), 1, fill, true)
			vector.StrokeLine(dst, float32(p.X), float32(p.Y)-r, float32(p.X), float32(p.Y)+r, 1, fill, true)
		case *SkewHandler:
			if l := o.level(h); l > 0 {
				hot := lerpColor(overlayOutline, overlayHot, l).toRGBA()
				for i := range c {
					a, b := c[i], c[(i+1)%len(c)]
					vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 2, hot, true)
				}
			}
		}
	}
}

// lerpColor blends a toward b by t in [0, 1].
func lerpColor(a, b Color, t float64) Color {
	t = clamp01(t)
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
