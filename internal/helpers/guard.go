package helpers

import (
	"fmt"
)

// Guard runs fn and converts a panic into an error, so callers can treat a
// crashing collaborator the same way as one returning an error.
func Guard[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrPanic, e)
				return
			}
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn()
}

// GuardErr is Guard for functions that only return an error.
func GuardErr(fn func() error) error {
	_, err := Guard(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
