package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNoDevices  = errors.New("no devices configured")
	ErrNoSessions = errors.New("no device could be opened")
)
