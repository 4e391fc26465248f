package gizmo

import "slices"

// Subscription is a registered listener that can be torn down explicitly.
type Subscription interface {
	Remove()
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id     uint32
	remove func(id uint32)
}

// Remove unregisters this callback so it no longer fires. Safe to call more
// than once and on the zero value.
func (h CallbackHandle) Remove() {
	if h.remove == nil {
		return
	}
	h.remove(h.id)
}

type callbackEntry[T any] struct {
	id uint32
	fn func(T)
}

// callbackList is an ordered set of callbacks sharing one argument type.
type callbackList[T any] struct {
	entries []callbackEntry[T]
	nextID  uint32
}

func (l *callbackList[T]) add(fn func(T)) CallbackHandle {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, callbackEntry[T]{id: id, fn: fn})
	return CallbackHandle{id: id, remove: l.remove}
}

// remove deletes the entry with the given id.
// The entry is removed from the slice to avoid nil iteration waste.
func (l *callbackList[T]) remove(id uint32) {
	for i := range l.entries {
		if l.entries[i].id == id {
			copy(l.entries[i:], l.entries[i+1:])
			l.entries[len(l.entries)-1] = callbackEntry[T]{}
			l.entries = l.entries[:len(l.entries)-1]
			return
		}
	}
}

// fire calls every callback in registration order. Callbacks may add or
// remove entries; changes take effect on the next fire.
func (l *callbackList[T]) fire(v T) {
	if len(l.entries) == 0 {
		return
	}
	for _, e := range slices.Clone(l.entries) {
		e.fn(v)
	}
}
