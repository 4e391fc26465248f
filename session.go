package gizmo

import "fmt"

// HandlingSession is the mutual-exclusion token that lets exactly one
// manipulation handler drive a SelectionProxy at a time.
type HandlingSession struct {
	owner   any
	onBegin callbackList[any]
	onEnd   callbackList[any]
}

// NewHandlingSession returns an inactive session.
func NewHandlingSession() *HandlingSession {
	return &HandlingSession{}
}

// Begin makes owner the active session owner. It fails with
// ErrInvalidSessionState when a session is already active.
func (s *HandlingSession) Begin(owner any) error {
	if owner == nil {
		return fmt.Errorf("gizmo: begin handling with nil owner: %w", ErrInvalidSessionState)
	}
	if s.owner != nil {
		return fmt.Errorf("gizmo: begin handling while %T owns the session: %w", s.owner, ErrInvalidSessionState)
	}
	s.owner = owner
	logger().Debug("handling begin", "owner", fmt.Sprintf("%T", owner))
	s.onBegin.fire(owner)
	return nil
}

// End releases the session. It fails with ErrInvalidSessionState when no
// session is active or owner is not the current owner.
func (s *HandlingSession) End(owner any) error {
	if s.owner == nil {
		return fmt.Errorf("gizmo: end handling with no active session: %w", ErrInvalidSessionState)
	}
	if s.owner != owner {
		return fmt.Errorf("gizmo: end handling by %T while %T owns the session: %w", owner, s.owner, ErrInvalidSessionState)
	}
	s.owner = nil
	logger().Debug("handling end", "owner", fmt.Sprintf("%T", owner))
	s.onEnd.fire(owner)
	return nil
}

// Active reports whether a handler currently owns the session.
func (s *HandlingSession) Active() bool {
	return s.owner != nil
}

// Owner returns the current owner, or nil.
func (s *HandlingSession) Owner() any {
	return s.owner
}

// IsOwner reports whether owner holds the session.
func (s *HandlingSession) IsOwner(owner any) bool {
	return owner != nil && s.owner == owner
}

// OnBegin registers a callback fired after a session starts.
func (s *HandlingSession) OnBegin(fn func(owner any)) CallbackHandle {
	return s.onBegin.add(fn)
}

// OnEnd registers a callback fired after a session ends.
func (s *HandlingSession) OnEnd(fn func(owner any)) CallbackHandle {
	return s.onEnd.add(fn)
}
