package monitor

import "errors"

// Sentinel kinds for monitor errors.
var (
	ErrListen     = errors.New("monitor listen failed")
	ErrBadRequest = errors.New("bad request")
)
