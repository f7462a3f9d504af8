package machines

import "errors"

var ErrUnsupportedScript = errors.New("unsupported script type")
