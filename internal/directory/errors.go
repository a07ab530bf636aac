package directory

import "errors"

var errNilDocument = errors.New("nil document")
