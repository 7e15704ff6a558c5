package engine

import "errors"

var (
	// ErrMountUnavailable is returned by Start when the mount target is missing, invalid or
	// already owned by another running scene.
	ErrMountUnavailable = errors.New("mount target unavailable")

	// ErrRendererUnavailable is returned by Start when the renderer cannot be created.
	ErrRendererUnavailable = errors.New("renderer unavailable")

	// ErrInvalidConfig is returned when a configuration cannot be parsed or fails validation.
	ErrInvalidConfig = errors.New("invalid scene configuration")
)
