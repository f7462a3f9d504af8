package controller

import "errors"

var ErrCompilerNil = errors.New("compiler is nil")
var ErrLinterNil = errors.New("linter is nil")
var ErrSchedulerNil = errors.New("scheduler is nil")
var ErrHostNil = errors.New("host is nil")
