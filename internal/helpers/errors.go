package helpers

import "errors"

var ErrPanic = errors.New("recovered panic")
