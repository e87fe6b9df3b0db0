package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every *InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

// errMalformed marks a candidate that is not JSON at all. Locate skips
// those silently; only well-formed JSON with the wrong shape is fatal.
var errMalformed = errors.New("malformed json")

// InvalidConfigError reports a config file that parsed as JSON but does
// not have the expected shape.
type InvalidConfigError struct {
	Path   string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Path, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConfig) work.
func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
