package lint

import "errors"

var ErrUnsupportedScript = errors.New("linter does not support this script type")
var ErrParseFailed = errors.New("unable to parse script for linting")
var ErrUnknownRule = errors.New("unknown lint rule")
