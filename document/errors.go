package document

import "errors"

var ErrNoPath = errors.New("document has no backing file")
var ErrNameEmpty = errors.New("document name is empty")
