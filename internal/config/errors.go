package config

import "errors"

// ErrInvalidConfig indicates an environment variable holds a value that
// cannot be parsed or is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")
