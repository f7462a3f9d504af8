package workspace

import "errors"

var (
	// ErrExtensionsNil is returned when the workspace has no extension registry.
	ErrExtensionsNil = errors.New("extension registry is nil")

	// ErrTabNotFound is returned when no open tab has the requested name.
	ErrTabNotFound = errors.New("tab not found")
)
