package compiler

import "errors"

var ErrContentNil = errors.New("content is nil")
var ErrValidationFailed = errors.New("risor script validation error")
var ErrBytecodeNil = errors.New("risor bytecode is nil")
