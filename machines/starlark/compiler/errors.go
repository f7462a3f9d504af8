package compiler

import "errors"

var ErrContentNil = errors.New("starlark content is nil")
var ErrValidationFailed = errors.New("starlark script validation error")
var ErrAnalyzeFailed = errors.New("starlark analysis failed")
var ErrProgramNil = errors.New("starlark program is nil")
