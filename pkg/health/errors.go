package health

import "errors"

// ErrCheckTimeout marks a check that did not finish before the probe timeout.
var ErrCheckTimeout = errors.New("health: check timeout")
