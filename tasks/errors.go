package tasks

import "errors"

var ErrInvalidConcurrency = errors.New("max concurrent tasks must be at least 1")
