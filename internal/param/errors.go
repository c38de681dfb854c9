package param

import "errors"

// ErrUnknownParameter is returned when a key does not name a parameter.
var ErrUnknownParameter = errors.New("unknown parameter")
