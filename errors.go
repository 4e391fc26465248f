package gizmo

import "errors"

var (
	// ErrInvalidSessionState is returned when a HandlingSession is begun while
	// active, or ended while inactive or by an owner that does not hold it.
	// It always indicates a handler bug.
	ErrInvalidSessionState = errors.New("invalid handling session state")

	// ErrDegenerateTransform is returned when a matrix cannot be decomposed
	// (a collapsed scale axis) or a transform holds NaN/Inf values.
	ErrDegenerateTransform = errors.New("degenerate transform")

	// ErrNotInScene is returned when a node that must be attached to the
	// editor's scene graph has no parent.
	ErrNotInScene = errors.New("node is not in the scene")
)
