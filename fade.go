package gizmo

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fade animates a highlight level between 0 and 1. Call Update(dt) each
// frame; retargeting mid-flight starts from the current value.
type fade struct {
	tween  *gween.Tween
	value  float64
	target float64
	Done   bool
}

// to starts a tween from the current value toward target. A zero duration
// jumps straight to the target.
func (f *fade) to(target float64, duration float32, fn ease.TweenFunc) {
	if target == f.target && (f.tween != nil || f.value == target) {
		return
	}
	f.target = target
	if duration <= 0 {
		f.value = target
		f.tween = nil
		f.Done = true
		return
	}
	f.tween = gween.New(float32(f.value), float32(target), duration, fn)
	f.Done = false
}

// Update advances the tween by dt seconds.
func (f *fade) Update(dt float32) {
	if f.tween == nil {
		return
	}
	val, finished := f.tween.Update(dt)
	f.value = float64(val)
	if finished {
		f.value = f.target
		f.tween = nil
		f.Done = true
	}
}
