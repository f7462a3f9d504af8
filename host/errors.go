package host

import "errors"

var (
	// ErrDirEmpty is returned when the registry has no extensions directory.
	ErrDirEmpty = errors.New("extensions directory is empty")

	// ErrCompilerNil is returned when the registry has no compiler.
	ErrCompilerNil = errors.New("compiler is nil")

	// ErrLoadFailed wraps a failure to read, compile or execute one extension.
	ErrLoadFailed = errors.New("failed to load extension")

	// ErrUnsupportedValue is returned for a global whose Go type has no script equivalent.
	ErrUnsupportedValue = errors.New("unsupported global value")
)
